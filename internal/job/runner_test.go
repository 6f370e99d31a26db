package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/Faultbox/sweepmesh/pkg/mesh"
)

func extrudeJob(name string, height float64) Job {
	return Job{
		Name:   name,
		Kind:   KindExtrude,
		Height: height,
		Profile: ProfileSpec{Contours: []ContourSpec{
			{Points: [][2]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}}},
		}},
	}
}

func TestRunnerBuildsInOrder(t *testing.T) {
	jobs := []Job{extrudeJob("a", 1), extrudeJob("b", 2), extrudeJob("c", 3), extrudeJob("d", 4)}
	r := NewRunner(DefaultEnv(), nil, 2)

	results, err := r.Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i, res := range results {
		require.NoError(t, res.Err)
		assert.Equal(t, jobs[i].Name, res.Job.Name)
		assert.InDelta(t, 100*jobs[i].Height, res.Mesh.Volume(), 1e-9)
		assert.False(t, res.Cached)
	}
}

func TestRunnerCollectsFailures(t *testing.T) {
	jobs := []Job{extrudeJob("ok", 1), extrudeJob("flat", 0), {Name: "empty", Kind: KindSweep}}
	results, err := NewRunner(DefaultEnv(), nil, 4).Run(context.Background(), jobs)
	require.Error(t, err)

	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, mesh.ErrNonPositiveHeight)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Mesh)
	assert.Nil(t, results[1].Mesh)
}

func TestRunnerReusesCache(t *testing.T) {
	cache := NewMemoryCache(8)
	jobs := []Job{extrudeJob("first", 5), extrudeJob("second", 5)}
	r := NewRunner(DefaultEnv(), cache, 1)

	results, err := r.Run(context.Background(), jobs)
	require.NoError(t, err)
	assert.False(t, results[0].Cached)
	assert.True(t, results[1].Cached)
	assert.Same(t, results[0].Mesh, results[1].Mesh)
	assert.Equal(t, 1, cache.Len())

	hits, misses := cache.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestRunnerOutput(t *testing.T) {
	var calls atomic.Int32
	r := NewRunner(DefaultEnv(), nil, 3)
	r.Output = func(_ context.Context, res Result) error {
		calls.Add(1)
		if res.Job.Name == "bad" {
			return errors.New("disk full")
		}
		return nil
	}

	results, err := r.Run(context.Background(), []Job{extrudeJob("good", 1), extrudeJob("bad", 1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, int32(2), calls.Load())
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := NewRunner(DefaultEnv(), nil, 1).Run(ctx, []Job{extrudeJob("a", 1)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results[0].Mesh)
}

func TestMemoryCacheEviction(t *testing.T) {
	c := NewMemoryCache(2)
	a, b, d := &mesh.Mesh{}, &mesh.Mesh{}, &mesh.Mesh{}
	c.Put("a", a)
	c.Put("b", b)

	_, ok := c.Get("a") // a is now most recent
	require.True(t, ok)
	c.Put("d", d)

	_, ok = c.Get("b")
	assert.False(t, ok, "b should be evicted")
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, 2, c.Len())

	disabled := NewMemoryCache(0)
	disabled.Put("a", a)
	assert.Equal(t, 0, disabled.Len())
}

func TestMemoryCacheConcurrent(t *testing.T) {
	c := NewMemoryCache(4)
	m := &mesh.Mesh{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%6)
			for n := 0; n < 100; n++ {
				if _, ok := c.Get(key); !ok {
					c.Put(key, m)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 4)
	hits, misses := c.Stats()
	assert.Equal(t, 8*100, hits+misses)
	assert.Positive(t, hits)
}
