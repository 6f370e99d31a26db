package mesh

import (
	"fmt"
	stdmath "math"
)

// Settings is the segment-count heuristic used for arcs and revolutions.
type Settings struct {
	BaseSegments int
	MinSegments  int
	MaxSegments  int
	// TargetSegmentLength, when positive, derives the count from arc length
	// and overrides BaseSegments.
	TargetSegmentLength float64
}

// DefaultSettings returns the stock heuristic.
func DefaultSettings() Settings {
	return Settings{
		BaseSegments: 24,
		MinSegments:  8,
		MaxSegments:  256,
	}
}

// Validate checks that the settings are usable.
func (s Settings) Validate() error {
	switch {
	case s.BaseSegments < 1:
		return fmt.Errorf("%w: base segments %d", ErrInvalidSettings, s.BaseSegments)
	case s.MinSegments < 1:
		return fmt.Errorf("%w: min segments %d", ErrInvalidSettings, s.MinSegments)
	case s.MaxSegments < s.MinSegments:
		return fmt.Errorf("%w: max segments %d below min %d", ErrInvalidSettings, s.MaxSegments, s.MinSegments)
	case s.TargetSegmentLength < 0 || stdmath.IsNaN(s.TargetSegmentLength):
		return fmt.Errorf("%w: target length %g", ErrInvalidSettings, s.TargetSegmentLength)
	}
	return nil
}

func (s Settings) orDefault() Settings {
	if s == (Settings{}) {
		return DefaultSettings()
	}
	return s
}

// Count returns the number of segments for an arc of the given length and
// radius, clamped to [MinSegments, MaxSegments].
func (s Settings) Count(arcLength, radius float64) int {
	s = s.orDefault()
	var n float64
	if s.TargetSegmentLength > 0 {
		n = stdmath.Ceil(arcLength / s.TargetSegmentLength)
	} else {
		lengthFactor := clamp(arcLength/100, 0.5, 3)
		radiusFactor := clamp(radius/50, 0.5, 2)
		n = stdmath.Round(float64(s.BaseSegments) * lengthFactor * radiusFactor)
	}
	if stdmath.IsNaN(n) {
		n = 0
	}
	c := int(clamp(n, float64(s.MinSegments), float64(s.MaxSegments)))
	return c
}

func clamp(v, lo, hi float64) float64 {
	return stdmath.Max(lo, stdmath.Min(hi, v))
}
