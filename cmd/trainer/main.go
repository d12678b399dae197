// trainer derives a tile rule set from a corpus of reference maps.
//
// Usage:
//
//	trainer --corpus data/reference --out data/jungle.yaml
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cinderworks/mapforge/internal/importer"
	"github.com/cinderworks/mapforge/internal/rules"
	"github.com/cinderworks/mapforge/internal/tile"
	"github.com/cinderworks/mapforge/internal/training"
)

func main() {
	corpusDir := flag.String("corpus", "", "Directory of YAML reference maps (required)")
	outPath := flag.String("out", "rules.yaml", "Output rule set file")
	rarity := flag.Float64("rarity", 0.001, "Drop tiles below this frequency share")
	minAdjacency := flag.Int("min-adjacency", 2, "Drop neighbor pairs seen fewer times")
	patterns := flag.Bool("patterns", false, "Also extract 2x2 patterns (reported, not stored)")
	flag.Parse()

	if *corpusDir == "" {
		fmt.Fprintln(os.Stderr, "Error: --corpus is required")
		flag.Usage()
		os.Exit(1)
	}

	maps, err := importer.LoadCorpus(*corpusDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(maps) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no reference maps found in %s\n", *corpusDir)
		os.Exit(1)
	}

	// Category assignments come from the archives themselves.
	categories := make(map[tile.ID]tile.Category)
	entries, err := os.ReadDir(*corpusDir)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			data, rerr := os.ReadFile(*corpusDir + "/" + e.Name())
			if rerr != nil {
				continue
			}
			if m, derr := importer.Decode(data); derr == nil {
				for id, cat := range m.CategoryTable() {
					categories[id] = cat
				}
			}
		}
	}

	cfg := training.Config{
		RarityThreshold:   *rarity,
		MinAdjacencyCount: *minAdjacency,
		Categories:        categories,
		ExtractPatterns:   *patterns,
	}

	fmt.Printf("Training on %d reference map(s)\n", len(maps))
	rs, patternLib := training.GenerateTrainingData(maps, cfg)

	if len(rs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: corpus produced an empty vocabulary")
		os.Exit(1)
	}
	if err := rs.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: trained rule set is invalid: %v\n", err)
		os.Exit(1)
	}

	if err := rules.SaveFile(rs, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Learned %d tile(s)", len(rs))
	if *patterns {
		fmt.Printf(", %d pattern(s)", len(patternLib))
	}
	fmt.Printf("\nWrote %s\n", *outPath)
}
