package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mesh-painter/internal/config"
	"mesh-painter/internal/project"
	"mesh-painter/internal/selector"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to scene config (.json or .toml)")
	events := flag.String("events", "", "Event script to replay (.json or .toml)")
	projectFile := flag.String("project", "", "Project file to write (default: paint.json)")
	radius := flag.Float64("radius", 0, "Initial brush radius (default: 2)")
	resume := flag.Bool("resume", false, "Load the existing project before replaying")
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
		Events:  *events,
		Project: *projectFile,
		Radius:  *radius,
	})

	if cfg.Events == "" {
		fmt.Fprintln(os.Stderr, "Error: no event script. Use -events or set \"events\" in the config.")
		os.Exit(1)
	}

	script, err := config.LoadScript(cfg.Events)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading events: %v\n", err)
		os.Exit(1)
	}

	p, err := cfg.NewPainter()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building scene: %v\n", err)
		os.Exit(1)
	}

	if *resume {
		pr, err := project.Load(cfg.Project)
		switch {
		case errors.Is(err, os.ErrNotExist):
			fmt.Printf("No project at %s, starting fresh\n", cfg.Project)
		case err != nil:
			fmt.Fprintf(os.Stderr, "Error loading project: %v\n", err)
			os.Exit(1)
		default:
			if err := pr.Apply(p); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: project restore: %v\n", err)
			}
		}
	}

	fmt.Printf("Scene: %d volumes, painter %s, brush %.2f\n", len(p.Volumes()), p.Type(), p.CursorRadius())
	fmt.Printf("Events: %s (%d steps)\n", cfg.Events, len(script.Steps))
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	consumed, err := script.Replay(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error replaying events: %v\n", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	fmt.Printf("Consumed %d events in %.1fms\n", consumed, float64(elapsed.Microseconds())/1000)
	for _, name := range p.History().Names() {
		fmt.Printf("  %s\n", name)
	}
	for _, v := range p.Volumes() {
		st := v.Selector.Stats()
		fmt.Printf("Volume %s: %d leaves, none=%d enforcer=%d blocker=%d\n", v.Name, st.Leaves,
			st.LeavesByState[selector.None], st.LeavesByState[selector.Enforcer], st.LeavesByState[selector.Blocker])
	}

	pr, err := project.FromPainter(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error serializing: %v\n", err)
		os.Exit(1)
	}
	if err := project.Save(cfg.Project, pr); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving project: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Project: %s\n", cfg.Project)
}
