// mapgen generates one or more skirmish maps from a trained rule set and
// writes them as YAML archives.
//
// Usage:
//
//	mapgen --rules data/jungle.yaml --count 3 --size 64x64 --players 4 --symmetry rotational
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cinderworks/mapforge/internal/config"
	"github.com/cinderworks/mapforge/internal/importer"
	"github.com/cinderworks/mapforge/internal/logger"
	"github.com/cinderworks/mapforge/internal/pipeline"
	"github.com/cinderworks/mapforge/internal/resources"
	"github.com/cinderworks/mapforge/internal/rules"
	"github.com/cinderworks/mapforge/internal/symmetry"
	"github.com/cinderworks/mapforge/internal/validator"
)

func main() {
	rulesPath := flag.String("rules", "", "Trained rule set YAML (required)")
	size := flag.String("size", "", "Map size as WIDTHxHEIGHT (default from config)")
	players := flag.Int("players", 0, "Player count (default from config)")
	symKind := flag.String("symmetry", "", "Symmetry kind: mirror or rotational (default from config)")
	seed := flag.Int64("seed", 42, "Base seed for generation")
	count := flag.Int("count", 1, "Number of maps to generate")
	attempts := flag.Int("attempts", 0, "Generation attempts per map (default from config)")
	density := flag.Float64("resources", 0, "Resource density, 0 disables deposits")
	name := flag.String("name", "map", "Base name for output files")
	outDir := flag.String("out", "maps", "Output directory")
	configPath := flag.String("config", "config.yaml", "Service configuration file")
	flag.Parse()

	if *rulesPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --rules is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	width, height := cfg.Generation.Width, cfg.Generation.Height
	if *size != "" {
		width, height, err = parseSize(*size)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid size: %v\n", err)
			os.Exit(1)
		}
	}
	playerCount := cfg.Generation.Players
	if *players > 0 {
		playerCount = *players
	}
	symName := cfg.Generation.Symmetry
	if *symKind != "" {
		symName = *symKind
	}
	kind, err := symmetry.ParseKind(symName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	attemptCount := cfg.Generation.Attempts
	if *attempts > 0 {
		attemptCount = *attempts
	}

	rs, err := rules.LoadFile(*rulesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load rule set: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generating %d map(s), %dx%d, %d players, %s symmetry (seed: %d)\n",
		*count, width, height, playerCount, kind, *seed)

	for i := 0; i < *count; i++ {
		mapName := *name
		if *count > 1 {
			mapName = fmt.Sprintf("%s-%d", *name, i+1)
		}
		fmt.Printf("Generating %s... ", mapName)

		req := pipeline.Request{
			Width:         width,
			Height:        height,
			Players:       playerCount,
			Symmetry:      kind,
			Seed:          *seed + int64(i)*1_000_000,
			Attempts:      attemptCount,
			RuleSet:       rs,
			MaxBacktracks: cfg.Generation.MaxBacktracks,
		}
		req.Validation = validator.DefaultConfig()
		req.Validation.MinScore = cfg.Generation.MinScore
		if *density > 0 {
			req.Resources = resources.DefaultConfig()
			req.Resources.Density = *density
		}

		result, err := pipeline.Run(req)
		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
			os.Exit(1)
		}

		archive, err := importer.FromGrid(mapName, result.Seed, result.Terrain, result.Starts)
		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
			os.Exit(1)
		}
		path := filepath.Join(*outDir, mapName+".yaml")
		if err := archive.WriteFile(path); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("OK (seed %d, score %.2f)\n", result.Seed, result.Report.Overall())
	}

	fmt.Printf("\nWrote %d map(s) to %s\n", *count, *outDir)
}

// parseSize parses "64x64" into width and height.
func parseSize(s string) (int, int, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected WIDTHxHEIGHT, got %q", s)
	}
	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width: %w", err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height: %w", err)
	}
	if width < 1 || height < 1 {
		return 0, 0, fmt.Errorf("size must be positive")
	}
	return width, height, nil
}
