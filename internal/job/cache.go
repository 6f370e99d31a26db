package job

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/sweepmesh/pkg/mesh"
	"github.com/Faultbox/sweepmesh/pkg/profile"
)

// Cache stores built meshes by content key. Implementations must be safe
// for concurrent use. Cached meshes are shared and must not be modified.
type Cache interface {
	Get(key string) (*mesh.Mesh, bool)
	Put(key string, m *mesh.Mesh)
}

// keyInput is everything that influences a job's output. The name is left
// out so identical geometry under different names shares an entry.
type keyInput struct {
	Kind      string             `yaml:"kind"`
	Profile   ProfileSpec        `yaml:"profile"`
	Height    float64            `yaml:"height"`
	Revolve   *RevolveSpec       `yaml:"revolve"`
	Sweep     *SweepSpec         `yaml:"sweep"`
	Settings  mesh.Settings      `yaml:"settings"`
	Tolerance float64            `yaml:"tolerance"`
	Arc       profile.ArcOptions `yaml:"arc"`
}

// Key returns the SHA-256 of the job's canonical YAML encoding together
// with the settings it is built with.
func (j *Job) Key(env Env) (string, error) {
	in := keyInput{
		Kind:     j.Kind,
		Profile:  j.Profile,
		Height:   j.Height,
		Revolve:  j.Revolve,
		Sweep:    j.Sweep,
		Settings: env.Settings,
	}
	if env.Processor != nil {
		in.Tolerance = env.Processor.Tolerance
		in.Arc = env.Processor.Arc
	}
	data, err := yaml.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("encoding job key: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// MemoryCache is a bounded least-recently-used Cache. A cache created with
// a non-positive size stores nothing.
type MemoryCache struct {
	entries *lru.Cache[string, *mesh.Mesh]

	hits, misses atomic.Int64
}

// NewMemoryCache returns a cache holding at most max meshes.
func NewMemoryCache(max int) *MemoryCache {
	c := &MemoryCache{}
	if max > 0 {
		// lru.New only fails for a non-positive size.
		c.entries, _ = lru.New[string, *mesh.Mesh](max)
	}
	return c
}

// Get returns the mesh stored under key and marks it recently used.
func (c *MemoryCache) Get(key string) (*mesh.Mesh, bool) {
	if c.entries != nil {
		if m, ok := c.entries.Get(key); ok {
			c.hits.Add(1)
			return m, true
		}
	}
	c.misses.Add(1)
	return nil, false
}

// Put stores m under key, evicting the least recently used entry when full.
func (c *MemoryCache) Put(key string, m *mesh.Mesh) {
	if c.entries == nil {
		return
	}
	c.entries.Add(key, m)
}

// Len returns the number of cached meshes.
func (c *MemoryCache) Len() int {
	if c.entries == nil {
		return 0
	}
	return c.entries.Len()
}

// Stats returns the hit and miss counts.
func (c *MemoryCache) Stats() (hits, misses int) {
	return int(c.hits.Load()), int(c.misses.Load())
}
