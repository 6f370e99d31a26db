package profile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/sweepmesh/internal/logger"
)

// DiagnosticCode classifies a recoverable anomaly.
type DiagnosticCode string

// Diagnostic codes emitted by the profile and mesh builders.
const (
	DiagFilletSkipped         DiagnosticCode = "fillet_skipped"
	DiagHoleOutside           DiagnosticCode = "hole_outside"
	DiagHoleSkipped           DiagnosticCode = "hole_skipped"
	DiagPiecesDropped         DiagnosticCode = "pieces_dropped"
	DiagTriangulationFallback DiagnosticCode = "triangulation_fallback"
	DiagDegenerateFace        DiagnosticCode = "degenerate_face"
	DiagTiltIgnored           DiagnosticCode = "tilt_ignored"
	DiagDiscontinuousPath     DiagnosticCode = "discontinuous_path"
	DiagZeroLengthSegment     DiagnosticCode = "zero_length_segment"
	DiagProfileClipped        DiagnosticCode = "profile_clipped"
)

// Diagnostic records a recoverable anomaly. Contour and Index locate it in
// the input when applicable, and are -1 otherwise.
type Diagnostic struct {
	Code    DiagnosticCode
	Contour int
	Index   int
	Message string
}

func (d Diagnostic) String() string {
	switch {
	case d.Contour >= 0 && d.Index >= 0:
		return fmt.Sprintf("%s: contour %d point %d: %s", d.Code, d.Contour, d.Index, d.Message)
	case d.Index >= 0:
		return fmt.Sprintf("%s: index %d: %s", d.Code, d.Index, d.Message)
	default:
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
}

// Diagnostics collects anomalies and mirrors each one to the warn log.
type Diagnostics []Diagnostic

// Add records a diagnostic.
func (ds *Diagnostics) Add(code DiagnosticCode, contour, index int, format string, args ...any) {
	d := Diagnostic{Code: code, Contour: contour, Index: index, Message: fmt.Sprintf(format, args...)}
	*ds = append(*ds, d)
	logger.Warn(d.Message,
		zap.String("code", string(code)),
		zap.Int("contour", contour),
		zap.Int("index", index),
	)
}

// Has reports whether any diagnostic carries code.
func (ds Diagnostics) Has(code DiagnosticCode) bool {
	for _, d := range ds {
		if d.Code == code {
			return true
		}
	}
	return false
}
