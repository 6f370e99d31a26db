package job

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/sweepmesh/pkg/math"
	"github.com/Faultbox/sweepmesh/pkg/mesh"
	"github.com/Faultbox/sweepmesh/pkg/path"
	"github.com/Faultbox/sweepmesh/pkg/profile"
)

const sampleDoc = `
jobs:
  - name: block
    kind: extrude
    height: 100
    profile:
      contours:
        - points: [[0, 0], [100, 0], [100, 100], [0, 100]]
  - name: cone
    kind: revolve
    profile:
      contours:
        - points: [[60, 0], [20, 150], [0, 150], [0, 0]]
    revolve:
      axis: [0, 1, 0]
      angle: 360
      segments: 32
  - kind: sweep
    profile:
      contours:
        - points: [[-5, -5], [5, -5], [5, 5], [-5, 5]]
          radius: 1
    sweep:
      path:
        - type: line
          from: [0, 0, 0]
          to: [100, 0, 0]
        - type: arc
          from: [100, 0, 0]
          center: [100, 50, 0]
          axis: [0, 0, 1]
          angle: 90
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)
	require.Len(t, doc.Jobs, 3)

	assert.Equal(t, "block", doc.Jobs[0].Name)
	assert.Equal(t, KindRevolve, doc.Jobs[1].Kind)
	assert.Equal(t, "sweep-3", doc.Jobs[2].Name)
	require.NotNil(t, doc.Jobs[2].Sweep)
	assert.Len(t, doc.Jobs[2].Sweep.Path, 2)
	assert.Equal(t, 1.0, doc.Jobs[2].Profile.Contours[0].Radius)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"empty", "jobs: []\n", ErrNoJobs},
		{"unknown kind", "jobs:\n  - kind: loft\n", ErrUnknownKind},
		{"duplicate", "jobs:\n  - {name: a, kind: extrude}\n  - {name: a, kind: sweep}\n", ErrDuplicateName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Parse([]byte("jobs:\n  - kind: extrude\n    colour: red\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(p, []byte(sampleDoc), 0644))
	doc, err := LoadFile(p)
	require.NoError(t, err)
	assert.Len(t, doc.Jobs, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuildAllKinds(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	block, err := doc.Jobs[0].Build(DefaultEnv())
	require.NoError(t, err)
	assert.Equal(t, 12, block.TriangleCount())

	cone, err := doc.Jobs[1].Build(DefaultEnv())
	require.NoError(t, err)
	assert.Equal(t, 128, cone.TriangleCount())
	assert.Equal(t, 0, cone.OpenEdges())

	swept, err := doc.Jobs[2].Build(DefaultEnv())
	require.NoError(t, err)
	require.NoError(t, swept.Validate())
	assert.False(t, swept.Diagnostics.Has(profile.DiagDiscontinuousPath))
	assert.InDelta(t, 155, swept.Bounds.Max.X, 1e-6)
}

func TestBuildOpenRevolve(t *testing.T) {
	j := Job{
		Kind: KindRevolve,
		Profile: ProfileSpec{
			Open:     true,
			Contours: []ContourSpec{{Points: [][2]float64{{0, 0}, {50, 0}, {50, 100}, {0, 100}}}},
		},
		Revolve: &RevolveSpec{Axis: [3]float64{0, 1, 0}, Angle: 360, Segments: 16},
	}
	m, err := j.Build(DefaultEnv())
	require.NoError(t, err)
	assert.Equal(t, 0, m.OpenEdges())
	assert.Equal(t, 64, m.TriangleCount())
}

func TestBuildAutoDetect(t *testing.T) {
	j := Job{
		Kind:   KindExtrude,
		Height: 10,
		Profile: ProfileSpec{
			AutoDetect: true,
			Contours: []ContourSpec{
				{Points: [][2]float64{{25, 25}, {75, 25}, {75, 75}, {25, 75}}},
				{Points: [][2]float64{{0, 0}, {100, 0}, {100, 100}, {0, 100}}},
			},
		},
	}
	m, err := j.Build(DefaultEnv())
	require.NoError(t, err)
	assert.InDelta(t, (1e4-2500)*10, m.Volume(), 1e-6)
}

func TestBuildMissingFields(t *testing.T) {
	_, err := (&Job{Kind: KindRevolve}).Build(DefaultEnv())
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = (&Job{Kind: KindSweep}).Build(DefaultEnv())
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = (&Job{Kind: KindExtrude, Height: 1}).Build(DefaultEnv())
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = (&Job{Kind: KindExtrude, Profile: ProfileSpec{
		Contours: []ContourSpec{{Points: [][2]float64{{0, 0}, {1, 0}, {1, 1}}}},
	}}).Build(DefaultEnv())
	assert.ErrorIs(t, err, mesh.ErrNonPositiveHeight)
}

func TestBuildPath(t *testing.T) {
	pth, err := buildPath([]SegmentSpec{
		{Type: SegmentChain, Points: [][3]float64{{0, 0, 0}, {10, 0, 0}, {10, 10, 0}}},
		{Type: SegmentArc3, From: [3]float64{10, 10, 0}, Through: [3]float64{20, 20, 0}, To: [3]float64{30, 10, 0}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, pth.Len())
	ok, _ := pth.Continuity()
	assert.True(t, ok)

	arc, isArc := pth.Segments[2].(path.Arc)
	require.True(t, isArc)
	assert.InDelta(t, 10, arc.Radius, 1e-9)
	assert.True(t, arc.Center.NearlyEqual(math.V3(20, 10, 0), 1e-9))

	_, err = buildPath([]SegmentSpec{{Type: "spline"}})
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = buildPath([]SegmentSpec{{Type: SegmentArc3, To: [3]float64{1, 0, 0}, Through: [3]float64{2, 0, 0}}})
	assert.ErrorIs(t, err, path.ErrCollinear)
}

func TestContourRadii(t *testing.T) {
	c := ContourSpec{Points: make([][2]float64, 3), Radii: []float64{0, 5}, Radius: 2}
	assert.Equal(t, []float64{2, 5, 2}, c.radii())

	c = ContourSpec{Points: make([][2]float64, 3), Radii: []float64{1, 2, 3}}
	assert.Equal(t, []float64{1, 2, 3}, c.radii())
}

func TestKey(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)
	env := DefaultEnv()

	k1, err := doc.Jobs[0].Key(env)
	require.NoError(t, err)
	assert.Len(t, k1, 64)

	renamed := doc.Jobs[0]
	renamed.Name = "other"
	k2, err := renamed.Key(env)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	taller := doc.Jobs[0]
	taller.Height = 200
	k3, err := taller.Key(env)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)

	env.Settings.BaseSegments = 48
	k4, err := doc.Jobs[0].Key(env)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k4)
}
