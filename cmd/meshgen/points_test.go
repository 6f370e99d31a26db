package main

import "testing"

func TestParsePoints2(t *testing.T) {
	pts, err := parsePoints2("0,0 100,0  100,100\t0,100")
	if err != nil {
		t.Fatalf("parsePoints2 failed: %v", err)
	}
	if len(pts) != 4 {
		t.Fatalf("expected 4 points, got %d", len(pts))
	}
	if pts[2] != [2]float64{100, 100} {
		t.Errorf("expected (100,100), got %v", pts[2])
	}
}

func TestParsePoints3(t *testing.T) {
	pts, err := parsePoints3("0,0,0 0,0,-12.5")
	if err != nil {
		t.Fatalf("parsePoints3 failed: %v", err)
	}
	if len(pts) != 2 || pts[1][2] != -12.5 {
		t.Errorf("unexpected points %v", pts)
	}
}

func TestParsePointsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too few coordinates", "1"},
		{"too many coordinates", "1,2,3"},
		{"not a number", "1,x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parsePoints2(tt.input); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}
