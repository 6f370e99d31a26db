package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parsePoints2 parses "x,y x,y ..." into pairs.
func parsePoints2(s string) ([][2]float64, error) {
	var out [][2]float64
	for _, field := range strings.Fields(s) {
		v, err := parseTuple(field, 2)
		if err != nil {
			return nil, err
		}
		out = append(out, [2]float64{v[0], v[1]})
	}
	return out, nil
}

// parsePoints3 parses "x,y,z x,y,z ..." into triples.
func parsePoints3(s string) ([][3]float64, error) {
	var out [][3]float64
	for _, field := range strings.Fields(s) {
		v, err := parseTuple(field, 3)
		if err != nil {
			return nil, err
		}
		out = append(out, [3]float64{v[0], v[1], v[2]})
	}
	return out, nil
}

func parseTuple(field string, n int) ([]float64, error) {
	parts := strings.Split(field, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("point %q: want %d coordinates, got %d", field, n, len(parts))
	}
	v := make([]float64, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", field, err)
		}
		v[i] = f
	}
	return v, nil
}
