// Package training derives tile rule sets from a corpus of reference maps.
// Aggregation is a pure fold: accumulate co-occurrence counters over each
// map, then finalize once into an immutable rule set and pattern library.
package training

import (
	"github.com/cinderworks/mapforge/internal/rules"
	"github.com/cinderworks/mapforge/internal/tile"
)

// ReferenceMap is the only shape the trainer requires from an importer.
type ReferenceMap struct {
	Name    string
	Terrain *tile.Grid
}

// Config controls post-processing of the raw counters.
type Config struct {
	// RarityThreshold drops tiles whose global frequency share falls below
	// this fraction; rare tiles are treated as noise, not vocabulary.
	RarityThreshold float64

	// MinAdjacencyCount drops neighbor pairs seen fewer times than this.
	MinAdjacencyCount int

	// CategoryWeights multiplies each tile's normalized frequency by its
	// category's entry, letting operators bias toward buildable terrain
	// without re-deriving statistics. Missing categories multiply by 1.
	CategoryWeights map[tile.Category]float64

	// Categories assigns a category to each tile identifier. Tiles without
	// an entry keep CategoryUnknown.
	Categories map[tile.ID]tile.Category

	// ExtractPatterns also records 2×2 sub-grid patterns.
	ExtractPatterns bool
}

// DefaultConfig returns the standard thresholds: 0.1% rarity, minimum
// adjacency occurrence of 2.
func DefaultConfig() Config {
	return Config{
		RarityThreshold:   0.001,
		MinAdjacencyCount: 2,
	}
}

// Counters is the fold accumulator: per-tile frequency tallies and
// per-(tile, direction, neighbor) co-occurrence tallies.
type Counters struct {
	freq      map[tile.ID]int
	adjacency map[tile.ID]map[tile.Direction]map[tile.ID]int
	patterns  map[string]*PatternRecord
	total     int
}

// NewCounters creates an empty accumulator.
func NewCounters() *Counters {
	return &Counters{
		freq:      make(map[tile.ID]int),
		adjacency: make(map[tile.ID]map[tile.Direction]map[tile.ID]int),
		patterns:  make(map[string]*PatternRecord),
	}
}

// Accumulate folds one reference map into the counters.
func (c *Counters) Accumulate(m ReferenceMap, cfg Config) {
	g := m.Terrain
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			id := g.At(x, y)
			if id == "" {
				continue
			}
			c.freq[id]++
			c.total++

			for _, dir := range tile.AllDirections() {
				n, ok := g.Neighbor(x, y, dir)
				if !ok || n == "" {
					continue
				}
				c.bump(id, dir, n)
			}
		}
	}

	if cfg.ExtractPatterns {
		c.accumulatePatterns(g)
	}
}

func (c *Counters) bump(id tile.ID, dir tile.Direction, neighbor tile.ID) {
	byDir, ok := c.adjacency[id]
	if !ok {
		byDir = make(map[tile.Direction]map[tile.ID]int)
		c.adjacency[id] = byDir
	}
	byNeighbor, ok := byDir[dir]
	if !ok {
		byNeighbor = make(map[tile.ID]int)
		byDir[dir] = byNeighbor
	}
	byNeighbor[neighbor]++
}

// Finalize applies rarity filtering, adjacency thresholding, and category
// weighting, and emits the rule set plus the pattern library. The counters
// are not consumed; Finalize can be called again after more Accumulate calls.
func (c *Counters) Finalize(cfg Config) (rules.RuleSet, []PatternRecord) {
	rs := make(rules.RuleSet)
	if c.total == 0 {
		return rs, nil
	}

	// Rarity filter first: surviving vocabulary only.
	surviving := make(map[tile.ID]bool)
	for id, n := range c.freq {
		if float64(n)/float64(c.total) >= cfg.RarityThreshold {
			surviving[id] = true
		}
	}

	for id := range surviving {
		category := cfg.Categories[id]

		share := float64(c.freq[id]) / float64(c.total)
		if w, ok := cfg.CategoryWeights[category]; ok {
			share *= w
		}

		r := rules.NewRule(share, category)
		for dir, byNeighbor := range c.adjacency[id] {
			for n, count := range byNeighbor {
				if !surviving[n] {
					continue
				}
				if count < cfg.MinAdjacencyCount {
					continue
				}
				r.Allow(dir, n)
			}
		}
		rs[id] = r
	}

	return rs, c.PatternLibrary()
}

// GenerateTrainingData is the one-call contract: fold the whole corpus and
// finalize.
func GenerateTrainingData(maps []ReferenceMap, cfg Config) (rules.RuleSet, []PatternRecord) {
	c := NewCounters()
	for _, m := range maps {
		c.Accumulate(m, cfg)
	}
	return c.Finalize(cfg)
}
