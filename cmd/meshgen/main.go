// meshgen is a CLI for building sweep, revolution and extrusion meshes and
// writing them as OBJ files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/sweepmesh/internal/config"
	"github.com/Faultbox/sweepmesh/internal/job"
	"github.com/Faultbox/sweepmesh/internal/logger"
	"github.com/Faultbox/sweepmesh/pkg/mesh"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "run":
		err = cmdRun(args)
	case "info":
		err = cmdInfo(args)
	case "extrude":
		err = cmdExtrude(args)
	case "revolve":
		err = cmdRevolve(args)
	case "sweep":
		err = cmdSweep(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshgen - parametric sweep and revolution mesh builder

Usage:
  meshgen <command> [options]

Commands:
  run <jobs.yaml>                   Build every job and write OBJ files
  info <jobs.yaml>                  Build every job and print mesh statistics
  extrude -points P -height H NAME  Extrude a profile along +Z
  revolve -points P -angle A NAME   Revolve a profile about the Y axis
  sweep -points P -path Q NAME      Sweep a profile along a polyline

Points are space separated "x,y" pairs; path points are "x,y,z" triples.

Common options:
  -config FILE        Config file (default ./config.yaml or user config dir)
  -out DIR            Output directory
  -segments N         Base segment count
  -target-length L    Target segment length
  -workers N          Concurrent jobs for run
  -reverse            Clockwise OBJ faces
  -debug              Debug logging

Examples:
  meshgen run -out build jobs.yaml
  meshgen extrude -points "0,0 100,0 100,100 0,100" -radius 10 -height 50 block
  meshgen revolve -points "60,0 20,150 0,150 0,0" -angle 360 cone
  meshgen sweep -points "-5,-5 5,-5 5,5 -5,5" -path "0,0,0 0,0,100 100,0,100" bar`)
}

// setup loads the config and starts logging for a parsed subcommand.
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("starting logger: %w", err)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)
	return cfg, nil
}

func env(cfg *config.Config) job.Env {
	return job.Env{Processor: cfg.Processor(), Settings: cfg.Settings()}
}

func loadJobs(name string, args []string) (*config.Config, *job.Document, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	config.RegisterFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		return nil, nil, fmt.Errorf("usage: meshgen %s [options] <jobs.yaml>", name)
	}
	cfg, err := setup()
	if err != nil {
		return nil, nil, err
	}
	doc, err := job.LoadFile(fs.Arg(0))
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", fs.Arg(0), err)
	}
	return cfg, doc, nil
}

func newRunner(cfg *config.Config) *job.Runner {
	var cache job.Cache
	if cfg.Jobs.CacheEntries > 0 {
		cache = job.NewMemoryCache(cfg.Jobs.CacheEntries)
	}
	return job.NewRunner(env(cfg), cache, cfg.Jobs.Workers)
}

func runContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	if cfg.Jobs.Timeout > 0 {
		return context.WithTimeout(context.Background(), cfg.Jobs.Timeout)
	}
	return context.WithCancel(context.Background())
}

func cmdRun(args []string) error {
	cfg, doc, err := loadJobs("run", args)
	if err != nil {
		return err
	}

	r := newRunner(cfg)
	r.Output = func(_ context.Context, res job.Result) error {
		path := filepath.Join(cfg.Export.Dir, res.Job.Name+".obj")
		if err := mesh.SaveOBJ(path, res.Mesh, cfg.Export.ReverseFaces); err != nil {
			return err
		}
		logger.Info("wrote mesh", zap.String("path", path), zap.Int("triangles", res.Mesh.TriangleCount()))
		return nil
	}

	ctx, cancel := runContext(cfg)
	defer cancel()
	start := time.Now()
	results, err := r.Run(ctx, doc.Jobs)
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		fmt.Printf("%-24s %7d tris  -> %s\n", res.Job.Name, res.Mesh.TriangleCount(),
			filepath.Join(cfg.Export.Dir, res.Job.Name+".obj"))
	}
	fmt.Fprintf(os.Stderr, "\n(%d jobs in %v)\n", len(results), time.Since(start).Round(time.Millisecond))
	return err
}

func cmdInfo(args []string) error {
	cfg, doc, err := loadJobs("info", args)
	if err != nil {
		return err
	}

	ctx, cancel := runContext(cfg)
	defer cancel()
	results, err := newRunner(cfg).Run(ctx, doc.Jobs)
	for _, res := range results {
		fmt.Printf("Job:       %s (%s)\n", res.Job.Name, res.Job.Kind)
		if res.Err != nil {
			fmt.Printf("  Error:   %v\n\n", res.Err)
			continue
		}
		printStats(res.Mesh)
	}
	return err
}

func printStats(m *mesh.Mesh) {
	fmt.Printf("  Vertices:  %d\n", m.VertexCount())
	fmt.Printf("  Triangles: %d\n", m.TriangleCount())
	if m.Bounds != nil {
		size := m.Bounds.Size()
		fmt.Printf("  Bounds:    [%.3f %.3f %.3f] .. [%.3f %.3f %.3f]\n",
			m.Bounds.Min.X, m.Bounds.Min.Y, m.Bounds.Min.Z, m.Bounds.Max.X, m.Bounds.Max.Y, m.Bounds.Max.Z)
		fmt.Printf("  Size:      %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
	}
	fmt.Printf("  Area:      %.3f\n", m.Area())
	fmt.Printf("  Volume:    %.3f\n", m.Volume())
	fmt.Printf("  Open edges: %d\n", m.OpenEdges())
	for _, d := range m.Diagnostics {
		fmt.Printf("  ! %s\n", d)
	}
	fmt.Println()
}

// single runs one ad-hoc job built from flags and writes it to the export
// directory.
func single(name string, args []string, define func(fs *flag.FlagSet) func(j *job.Job) error) error {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	config.RegisterFlags(fs)
	points := fs.String("points", "", "Profile points \"x,y x,y ...\"")
	radius := fs.Float64("radius", 0, "Fillet radius for every corner")
	fill := define(fs)
	fs.Parse(args)

	if fs.NArg() < 1 || *points == "" {
		return fmt.Errorf("usage: meshgen %s -points P [options] <name>", name)
	}
	pts, err := parsePoints2(*points)
	if err != nil {
		return err
	}

	cfg, err := setup()
	if err != nil {
		return err
	}
	j := job.Job{
		Name: fs.Arg(0),
		Kind: name,
		Profile: job.ProfileSpec{
			Contours: []job.ContourSpec{{Points: pts, Radius: *radius}},
		},
	}
	if err := fill(&j); err != nil {
		return err
	}

	m, err := j.Build(env(cfg))
	if err != nil {
		return err
	}
	path := filepath.Join(cfg.Export.Dir, j.Name+".obj")
	if err := mesh.SaveOBJ(path, m, cfg.Export.ReverseFaces); err != nil {
		return err
	}
	fmt.Printf("Wrote: %s\n", path)
	printStats(m)
	return nil
}

func cmdExtrude(args []string) error {
	return single(job.KindExtrude, args, func(fs *flag.FlagSet) func(*job.Job) error {
		height := fs.Float64("height", 100, "Extrusion height")
		return func(j *job.Job) error {
			j.Height = *height
			return nil
		}
	})
}

func cmdRevolve(args []string) error {
	return single(job.KindRevolve, args, func(fs *flag.FlagSet) func(*job.Job) error {
		angle := fs.Float64("angle", 360, "Revolution angle in degrees")
		segments := fs.Int("n", 0, "Segment count (0 = heuristic)")
		open := fs.Bool("open", false, "Treat the points as an open lathe curve")
		return func(j *job.Job) error {
			j.Profile.Open = *open
			j.Revolve = &job.RevolveSpec{Axis: [3]float64{0, 1, 0}, Angle: *angle, Segments: *segments}
			return nil
		}
	})
}

func cmdSweep(args []string) error {
	return single(job.KindSweep, args, func(fs *flag.FlagSet) func(*job.Job) error {
		pathPts := fs.String("path", "", "Path points \"x,y,z x,y,z ...\"")
		rotation := fs.Float64("rotation", 0, "Profile rotation in degrees")
		mirror := fs.Bool("mirror", false, "Mirror the profile")
		return func(j *job.Job) error {
			pts, err := parsePoints3(*pathPts)
			if err != nil {
				return err
			}
			if len(pts) < 2 {
				return fmt.Errorf("sweep needs at least two -path points")
			}
			j.Sweep = &job.SweepSpec{
				Path:     []job.SegmentSpec{{Type: job.SegmentChain, Points: pts}},
				Rotation: *rotation,
				Mirror:   *mirror,
			}
			return nil
		}
	})
}
