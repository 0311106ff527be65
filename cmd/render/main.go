package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mesh-painter/internal/batch"
	"mesh-painter/internal/config"
	"mesh-painter/internal/mathutil"
	"mesh-painter/internal/project"
	"mesh-painter/internal/raster"
	"mesh-painter/internal/selector"
)

// cameraMargin is the border in output pixels around fitted views.
const cameraMargin = 16

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to scene config (.json or .toml)")
	projectFile := flag.String("project", "", "Project file to render (default: paint.json)")
	outputDir := flag.String("output", "", "Output directory (default: renders)")
	format := flag.String("format", "", "Image format: webp or tga (default: webp)")
	size := flag.Int("size", 0, "Output image size in pixels (default: 256)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	view := flag.String("view", "", "Render only the view with this name")
	wireframe := flag.Bool("wireframe", false, "Overlay leaf triangle edges")
	noClip := flag.Bool("noclip", false, "Ignore the clipping plane saved in the project")
	verbose := flag.Bool("v", false, "Log engine activity to stderr")

	flag.Parse()

	if *verbose {
		config.EnableLogging(os.Stderr, slog.LevelDebug)
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		Project:   *projectFile,
		OutputDir: *outputDir,
		Format:    *format,
		Size:      *size,
		Workers:   *workers,
	})

	p, err := cfg.NewPainter()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building scene: %v\n", err)
		os.Exit(1)
	}

	pr, err := project.Load(cfg.Project)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading project: %v\n", err)
		os.Exit(1)
	}
	if err := pr.Apply(p); err != nil {
		fmt.Fprintf(os.Stderr, "Error restoring project: %v\n", err)
		os.Exit(1)
	}

	// Snapshot leaves once; workers only read them
	vols := p.Volumes()
	names := make([]string, len(vols))
	sels := make([]*selector.Selector, len(vols))
	trafos := make([]mathutil.Mat4, len(vols))
	for i, v := range vols {
		names[i], sels[i], trafos[i] = v.Name, v.Selector, v.Matrix
	}
	inst := cfg.Instance.Matrix()
	layers := raster.Layers(inst, sels, trafos)
	pts := config.WorldPoints(inst, vols)

	var jobs []batch.Job
	for _, v := range cfg.Views {
		if *view != "" && v.Name != *view {
			continue
		}
		jobs = append(jobs, batch.Job{Name: v.Name, Camera: v.Camera(pts, cfg.RenderSize, cameraMargin)})
	}
	if len(jobs) == 0 {
		fmt.Println("No views to render.")
		os.Exit(0)
	}

	fmt.Printf("Mesh painter preview → %s\n", cfg.Format)
	fmt.Printf("Project: %s (%d volumes)\n", cfg.Project, len(vols))
	fmt.Printf("Views: %d, Workers: %d\n", len(jobs), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	// Run batch
	if *noClip {
		p.Clipper().SetPosition(0, true, mathutil.Vec3{})
	}
	batchCfg := batch.Config{
		OutputDir:   cfg.OutputDir,
		Supersample: cfg.Supersample,
		Format:      cfg.Format,
		Workers:     cfg.Workers,
		Wireframe:   *wireframe,
		Clip:        p.Clipper().Plane(),
		Progress:    os.Stdout,
	}

	results := batch.Run(batchCfg, layers, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(jobs))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		for _, e := range errors[:min(len(errors), 20)] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	stats := batch.Summarize(names, layers)
	if err := batch.WriteManifest(manifestPath, cfg.Project, stats, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
