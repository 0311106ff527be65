package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"

	"mesh-painter/internal/config"
	"mesh-painter/internal/project"
	"mesh-painter/internal/selector"
)

func main() {
	configFile := flag.String("config", "", "Path to scene config (.json or .toml)")
	projectFile := flag.String("project", "", "Project file to inspect (default: paint.json)")
	gc := flag.Bool("gc", false, "Garbage collect each volume and report the compaction")
	roundtrip := flag.Bool("roundtrip", false, "Re-serialize each volume into a fresh arena and compare")
	dump := flag.Bool("dump", false, "Print each volume's split history as JSON")
	verbose := flag.Bool("v", false, "Log engine activity to stderr")
	flag.Parse()

	if *verbose {
		config.EnableLogging(os.Stderr, slog.LevelDebug)
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{Project: *projectFile})

	p, err := cfg.NewPainter()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	pr, err := project.Load(cfg.Project)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := pr.Apply(p); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Project: %s, painter %s, %d volumes\n", cfg.Project, pr.Type, len(pr.Volumes))
	if len(pr.History) > 0 {
		fmt.Printf("History: %d entries, last %q\n", len(pr.History), pr.History[len(pr.History)-1])
	}

	failed := false
	for i, v := range p.Volumes() {
		s := v.Selector
		fmt.Printf("Volume[%d] %s: blob %d bytes\n", i, v.Name, len(pr.Volumes[i].Data))
		printStats(s)

		if *gc {
			before := s.TriangleCount()
			s.GarbageCollect()
			fmt.Printf("    GC: %d -> %d triangles\n", before, s.TriangleCount())
		}

		if *roundtrip {
			ok, err := roundTrip(cfg, i, s)
			switch {
			case err != nil:
				fmt.Printf("    Round trip: error: %v\n", err)
				failed = true
			case !ok:
				fmt.Println("    Round trip: MISMATCH")
				failed = true
			default:
				fmt.Println("    Round trip: ok")
			}
		}

		if *dump {
			data, err := json.MarshalIndent(s.Serialize(), "    ", "  ")
			if err != nil {
				fmt.Printf("    Dump: %v\n", err)
				continue
			}
			fmt.Printf("    %s\n", data)
		}
	}

	if failed {
		os.Exit(1)
	}
}

func printStats(s *selector.Selector) {
	st := s.Stats()
	fmt.Printf("    Facets: %d, Triangles: %d (valid %d), Vertices: %d\n",
		s.OriginalCount(), st.Triangles, st.ValidTriangles, st.Vertices)
	fmt.Printf("    Leaves: %d\n", st.Leaves)
	for _, k := range slices.Sorted(maps.Keys(st.LeavesByState)) {
		fmt.Printf("      %s: %d\n", k, st.LeavesByState[k])
	}
}

// roundTrip replays s's history into a fresh copy of volume i and compares
// the leaf geometry and states.
func roundTrip(cfg config.Config, i int, s *selector.Selector) (bool, error) {
	blob, err := s.SerializeBinary()
	if err != nil {
		return false, err
	}
	vols, err := cfg.BuildVolumes()
	if err != nil {
		return false, err
	}
	fresh := vols[i].Selector
	if err := fresh.DeserializeBinary(blob); err != nil {
		return false, err
	}
	a, b := s.LeafSnapshot(), fresh.LeafSnapshot()
	if len(a) != len(b) {
		return false, nil
	}
	for k := range a {
		if a[k].Verts != b[k].Verts || a[k].State != b[k].State || a[k].Facet != b[k].Facet {
			return false, nil
		}
	}
	return true, nil
}
