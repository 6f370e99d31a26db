// Package job resolves YAML job documents into mesh builder calls. A job
// carries only resolved numbers: contours, a path or rotation, and the
// builder kind.
package job

import (
	"bytes"
	"errors"
	"fmt"
	stdmath "math"
	"os"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/sweepmesh/pkg/math"
	"github.com/Faultbox/sweepmesh/pkg/mesh"
	"github.com/Faultbox/sweepmesh/pkg/path"
	"github.com/Faultbox/sweepmesh/pkg/profile"
)

// Builder kinds.
const (
	KindExtrude = "extrude"
	KindRevolve = "revolve"
	KindSweep   = "sweep"
)

// Segment types.
const (
	SegmentLine  = "line"
	SegmentArc   = "arc"
	SegmentArc3  = "arc3" // start, through, end
	SegmentChain = "polyline"
)

var (
	ErrNoJobs        = errors.New("document has no jobs")
	ErrUnknownKind   = errors.New("unknown job kind")
	ErrDuplicateName = errors.New("duplicate job name")
	ErrMissingField  = errors.New("missing field")
	ErrUnknownType   = errors.New("unknown segment type")
)

// Document is a batch of jobs.
type Document struct {
	Jobs []Job `yaml:"jobs"`
}

// Job is one mesh to build.
type Job struct {
	Name    string       `yaml:"name"`
	Kind    string       `yaml:"kind"`
	Profile ProfileSpec  `yaml:"profile"`
	Height  float64      `yaml:"height,omitempty"`
	Revolve *RevolveSpec `yaml:"revolve,omitempty"`
	Sweep   *SweepSpec   `yaml:"sweep,omitempty"`
}

// ProfileSpec lists the cross-section loops. With AutoDetect the loop of
// largest area is the outer contour and the Hole flags are ignored. Open
// profiles take the first contour as a polyline and only suit revolve jobs.
type ProfileSpec struct {
	Contours   []ContourSpec `yaml:"contours"`
	AutoDetect bool          `yaml:"auto_detect,omitempty"`
	Open       bool          `yaml:"open,omitempty"`
}

// ContourSpec is one loop. Radius applies to every corner not covered by
// Radii.
type ContourSpec struct {
	Points [][2]float64 `yaml:"points"`
	Radii  []float64    `yaml:"radii,omitempty"`
	Radius float64      `yaml:"radius,omitempty"`
	Hole   bool         `yaml:"hole,omitempty"`
}

// RevolveSpec is a rotation about an axis. Angle is in degrees.
type RevolveSpec struct {
	Axis     [3]float64 `yaml:"axis"`
	Center   [3]float64 `yaml:"center,omitempty"`
	Angle    float64    `yaml:"angle"`
	Segments int        `yaml:"segments,omitempty"`
}

// SweepSpec is a path with profile placement. Angles are in degrees.
type SweepSpec struct {
	Path      []SegmentSpec `yaml:"path"`
	TiltStart *[3]float64   `yaml:"tilt_start,omitempty"`
	TiltEnd   *[3]float64   `yaml:"tilt_end,omitempty"`
	Rotation  float64       `yaml:"rotation,omitempty"`
	Anchor    [2]float64    `yaml:"anchor,omitempty"`
	RefAxis   [3]float64    `yaml:"ref_axis,omitempty"`
	Mirror    bool          `yaml:"mirror,omitempty"`
}

// SegmentSpec is one path segment. Fields used depend on Type:
// line uses From and To; arc uses From, Center, Axis and Angle; arc3 uses
// From, Through and To; polyline uses Points.
type SegmentSpec struct {
	Type    string       `yaml:"type"`
	From    [3]float64   `yaml:"from,omitempty"`
	To      [3]float64   `yaml:"to,omitempty"`
	Through [3]float64   `yaml:"through,omitempty"`
	Center  [3]float64   `yaml:"center,omitempty"`
	Axis    [3]float64   `yaml:"axis,omitempty"`
	Angle   float64      `yaml:"angle,omitempty"`
	Points  [][3]float64 `yaml:"points,omitempty"`
}

// Parse decodes a job document. Unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding job document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadFile reads and parses a job document.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Validate names unnamed jobs and checks kinds and name uniqueness.
func (d *Document) Validate() error {
	if len(d.Jobs) == 0 {
		return ErrNoJobs
	}
	for i := range d.Jobs {
		j := &d.Jobs[i]
		if j.Name == "" {
			j.Name = fmt.Sprintf("%s-%d", j.Kind, i+1)
		}
		switch j.Kind {
		case KindExtrude, KindRevolve, KindSweep:
		default:
			return fmt.Errorf("job %q: %w %q", j.Name, ErrUnknownKind, j.Kind)
		}
	}
	if dups := lo.FindDuplicatesBy(d.Jobs, func(j Job) string { return j.Name }); len(dups) > 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateName, dups[0].Name)
	}
	return nil
}

// Env is the processing context shared by every job in a run.
type Env struct {
	Processor *profile.Processor
	Settings  mesh.Settings
}

// DefaultEnv uses default processor tolerances and segment settings.
func DefaultEnv() Env {
	return Env{Processor: profile.NewProcessor(), Settings: mesh.DefaultSettings()}
}

// Build runs the job's builder.
func (j *Job) Build(env Env) (*mesh.Mesh, error) {
	if env.Processor == nil {
		env.Processor = profile.NewProcessor()
	}
	switch j.Kind {
	case KindExtrude:
		p, err := j.processed(env)
		if err != nil {
			return nil, err
		}
		return mesh.Extrude(p, j.Height)

	case KindRevolve:
		if j.Revolve == nil {
			return nil, fmt.Errorf("%w: revolve", ErrMissingField)
		}
		p, err := j.processed(env)
		if err != nil {
			return nil, err
		}
		r := j.Revolve
		return mesh.Revolve(mesh.RevolutionSpec{
			Profile:  p,
			Axis:     vec3(r.Axis),
			Center:   vec3(r.Center),
			Angle:    r.Angle * stdmath.Pi / 180,
			Segments: r.Segments,
		}, env.Settings)

	case KindSweep:
		if j.Sweep == nil {
			return nil, fmt.Errorf("%w: sweep", ErrMissingField)
		}
		return j.sweep(env)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownKind, j.Kind)
}

func (j *Job) contours() ([]profile.Contour, error) {
	if len(j.Profile.Contours) == 0 {
		return nil, fmt.Errorf("%w: profile.contours", ErrMissingField)
	}
	if j.Profile.AutoDetect {
		points := make([][]math.Vec2, len(j.Profile.Contours))
		radii := make([][]float64, len(j.Profile.Contours))
		for i, c := range j.Profile.Contours {
			points[i] = vec2s(c.Points)
			radii[i] = c.radii()
		}
		return profile.FromWires(points, radii, true)
	}
	out := make([]profile.Contour, len(j.Profile.Contours))
	for i, c := range j.Profile.Contours {
		out[i] = profile.Contour{Points: vec2s(c.Points), Radii: c.radii(), Hole: c.Hole}
	}
	return out, nil
}

func (c ContourSpec) radii() []float64 {
	if c.Radius == 0 {
		return c.Radii
	}
	out := make([]float64, len(c.Points))
	for i := range out {
		out[i] = c.Radius
		if i < len(c.Radii) && c.Radii[i] != 0 {
			out[i] = c.Radii[i]
		}
	}
	return out
}

func (j *Job) processed(env Env) (*profile.Processed, error) {
	if j.Profile.Open {
		if len(j.Profile.Contours) == 0 {
			return nil, fmt.Errorf("%w: profile.contours", ErrMissingField)
		}
		return profile.NewOpen(vec2s(j.Profile.Contours[0].Points))
	}
	contours, err := j.contours()
	if err != nil {
		return nil, err
	}
	return env.Processor.Process(contours)
}

func (j *Job) sweep(env Env) (*mesh.Mesh, error) {
	s := j.Sweep
	pth, err := buildPath(s.Path)
	if err != nil {
		return nil, err
	}
	contours, err := j.contours()
	if err != nil {
		return nil, err
	}
	return mesh.SweepSolid(mesh.SweepSpec{
		Contours:  contours,
		Path:      pth,
		TiltStart: vec3Ptr(s.TiltStart),
		TiltEnd:   vec3Ptr(s.TiltEnd),
		Rotation:  s.Rotation * stdmath.Pi / 180,
		Anchor:    math.V2(s.Anchor[0], s.Anchor[1]),
		RefAxis:   vec3(s.RefAxis),
		Mirror:    s.Mirror,
		Processor: env.Processor,
	}, env.Settings)
}

func buildPath(specs []SegmentSpec) (path.Path, error) {
	if len(specs) == 0 {
		return path.Path{}, fmt.Errorf("%w: sweep.path", ErrMissingField)
	}
	var segs []path.Segment
	for i, s := range specs {
		switch s.Type {
		case SegmentLine:
			segs = append(segs, path.NewLine(vec3(s.From), vec3(s.To)))
		case SegmentArc:
			segs = append(segs, path.NewArc(vec3(s.Center), vec3(s.From), vec3(s.Axis), s.Angle*stdmath.Pi/180))
		case SegmentArc3:
			arc, err := path.ArcThrough(vec3(s.From), vec3(s.Through), vec3(s.To))
			if err != nil {
				return path.Path{}, fmt.Errorf("segment %d: %w", i, err)
			}
			segs = append(segs, arc)
		case SegmentChain:
			pts := make([]math.Vec3, len(s.Points))
			for k, p := range s.Points {
				pts[k] = vec3(p)
			}
			segs = append(segs, path.Polyline(pts...).Segments...)
		default:
			return path.Path{}, fmt.Errorf("segment %d: %w %q", i, ErrUnknownType, s.Type)
		}
	}
	return path.New(segs...), nil
}

func vec3(a [3]float64) math.Vec3 { return math.V3(a[0], a[1], a[2]) }

func vec3Ptr(a *[3]float64) *math.Vec3 {
	if a == nil {
		return nil
	}
	v := vec3(*a)
	return &v
}

func vec2s(pts [][2]float64) []math.Vec2 {
	out := make([]math.Vec2, len(pts))
	for i, p := range pts {
		out[i] = math.V2(p[0], p[1])
	}
	return out
}
