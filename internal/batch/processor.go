// Package batch renders a painted scene from several views in parallel and
// writes the previews with a manifest.
package batch

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"

	"mesh-painter/internal/camera"
	"mesh-painter/internal/geom"
	"mesh-painter/internal/postprocess"
	"mesh-painter/internal/raster"
)

// Config holds the shared settings of a batch run.
type Config struct {
	OutputDir   string
	Supersample int
	Format      string // "webp" or "tga"
	Workers     int
	Wireframe   bool
	// Clip is the world-space clipping plane of the painter, nil when off.
	Clip *geom.ClipPlane
	// Progress receives periodic status lines; nil disables them.
	Progress io.Writer
}

// Job is one preview to render.
type Job struct {
	Name   string
	Camera camera.Camera
}

// Result holds the outcome of rendering one job.
type Result struct {
	Name    string
	Image   string
	Success bool
	Error   string
}

// Run renders every job over the same layers using a worker pool. Layers
// are only read, so they are shared between workers.
func Run(cfg Config, layers []raster.Layer, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64
	workers := max(cfg.Workers, 1)

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress != nil {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						fmt.Fprintf(cfg.Progress, "  [%d/%d] %.1f views/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(cfg, layers, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(cfg Config, layers []raster.Layer, job Job) Result {
	res := Result{Name: job.Name}

	ss := max(cfg.Supersample, 1)
	img := raster.Render(job.Camera.Scaled(ss), layers, raster.Options{Wireframe: cfg.Wireframe, Clip: cfg.Clip})

	// Post-processing: supersample downsample
	if ss > 1 {
		img = postprocess.Downsample(img, job.Camera.Width, job.Camera.Height)
	}

	format := cfg.Format
	if format == "" {
		format = "webp"
	}
	res.Image = job.Name + "." + format
	outPath := filepath.Join(cfg.OutputDir, res.Image)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		res.Error = err.Error()
		return res
	}

	f, err := os.Create(outPath)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer f.Close()

	if err := Encode(f, img, format); err != nil {
		res.Error = err.Error()
		return res
	}

	res.Success = true
	return res
}

// Encode writes img as WebP (lossless) or TGA.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "webp":
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("WebP encode: %w", err)
		}
	case "tga":
		if err := tga.Encode(w, img); err != nil {
			return fmt.Errorf("TGA encode: %w", err)
		}
	default:
		return fmt.Errorf("batch: unknown image format %q", format)
	}
	return nil
}
