// Package validator scores generated maps for playability. The pipeline
// treats the report as an opaque acceptance signal; the suggestions exist for
// operators reading logs, not for automated repair.
package validator

import (
	"fmt"
	"math"

	"github.com/cinderworks/mapforge/internal/symmetry"
	"github.com/cinderworks/mapforge/internal/tile"
)

// Config sets the scoring thresholds.
type Config struct {
	// MinScore is the acceptance floor applied to every score.
	MinScore float64

	// ResourceTile identifies deposit cells for the balance score.
	ResourceTile tile.ID

	// Categories classifies terrain for passability and the mix score.
	Categories map[tile.ID]tile.Category

	// BuildableTarget is the desired buildable fraction of the map; the
	// mix score decays with distance from it.
	BuildableTarget float64
}

// DefaultConfig accepts maps scoring at least 0.7 everywhere, with a 45%
// buildable-terrain target.
func DefaultConfig() Config {
	return Config{
		MinScore:        0.7,
		ResourceTile:    "minerals",
		BuildableTarget: 0.45,
	}
}

// Report carries one score per quality axis, each in [0, 1].
type Report struct {
	Connectivity    float64
	ResourceBalance float64
	TerrainMix      float64
	Suggestions     []string
}

// Overall is the weakest axis; a map is only as good as its worst property.
func (r Report) Overall() float64 {
	return math.Min(r.Connectivity, math.Min(r.ResourceBalance, r.TerrainMix))
}

// Acceptable reports whether every axis clears the floor.
func (r Report) Acceptable(minScore float64) bool {
	return r.Overall() >= minScore
}

// Validate scores the map. It never fails: an unusable map simply scores
// zero on the broken axis.
func Validate(g *tile.Grid, starts []symmetry.StartingPosition, cfg Config) Report {
	r := Report{
		Connectivity:    scoreConnectivity(g, starts, cfg),
		ResourceBalance: scoreResourceBalance(g, starts, cfg),
		TerrainMix:      scoreTerrainMix(g, cfg),
	}

	if r.Connectivity < 1 {
		r.Suggestions = append(r.Suggestions, "some starting positions are unreachable from each other; widen land bridges or reduce water density")
	}
	if r.ResourceBalance < cfg.MinScore {
		r.Suggestions = append(r.Suggestions, fmt.Sprintf("resource distribution favors one player (balance %.2f); re-place %s deposits symmetrically", r.ResourceBalance, cfg.ResourceTile))
	}
	if r.TerrainMix < cfg.MinScore {
		r.Suggestions = append(r.Suggestions, "buildable terrain share is far from target; adjust category weights or the noise palette")
	}
	return r
}

// scoreConnectivity runs BFS over passable terrain from the first start and
// reports the fraction of the remaining starts it can reach. No starts, or a
// start on impassable ground, scores zero.
func scoreConnectivity(g *tile.Grid, starts []symmetry.StartingPosition, cfg Config) float64 {
	if len(starts) < 2 {
		return 0
	}
	passable := func(x, y int) bool {
		return cfg.Categories[g.At(x, y)].Passable()
	}
	if !passable(starts[0].X, starts[0].Y) {
		return 0
	}

	visited := make([]bool, len(g.Cells))
	queue := []int{g.Index(starts[0].X, starts[0].Y)}
	visited[queue[0]] = true
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		x, y := g.Coords(i)
		for _, dir := range tile.AllDirections() {
			dx, dy := dir.Offset()
			nx, ny := x+dx, y+dy
			if !g.InBounds(nx, ny) || !passable(nx, ny) {
				continue
			}
			ni := g.Index(nx, ny)
			if !visited[ni] {
				visited[ni] = true
				queue = append(queue, ni)
			}
		}
	}

	reached := 0
	for _, s := range starts[1:] {
		if visited[g.Index(s.X, s.Y)] {
			reached++
		}
	}
	return float64(reached) / float64(len(starts)-1)
}

// scoreResourceBalance assigns each deposit to its nearest start and scores
// the ratio of the poorest to the richest share. A map with no deposits is
// trivially balanced; a map with no starts is not balanced by definition.
func scoreResourceBalance(g *tile.Grid, starts []symmetry.StartingPosition, cfg Config) float64 {
	if len(starts) == 0 {
		return 0
	}
	shares := make([]int, len(starts))
	total := 0
	for i, id := range g.Cells {
		if id != cfg.ResourceTile {
			continue
		}
		x, y := g.Coords(i)
		nearest, best := 0, math.MaxFloat64
		for j, s := range starts {
			dx, dy := float64(x-s.X), float64(y-s.Y)
			if d := dx*dx + dy*dy; d < best {
				best = d
				nearest = j
			}
		}
		shares[nearest]++
		total++
	}
	if total == 0 {
		return 1
	}

	lo, hi := shares[0], shares[0]
	for _, s := range shares[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	if hi == 0 {
		return 0
	}
	return float64(lo) / float64(hi)
}

// scoreTerrainMix compares the buildable fraction to the target, with a
// small bonus for having any impassable terrain at all (maps with zero
// obstacles play flat).
func scoreTerrainMix(g *tile.Grid, cfg Config) float64 {
	if len(g.Cells) == 0 {
		return 0
	}
	buildable, blocked := 0, 0
	for _, id := range g.Cells {
		cat := cfg.Categories[id]
		if cat.Buildable() {
			buildable++
		}
		if !cat.Passable() {
			blocked++
		}
	}

	share := float64(buildable) / float64(len(g.Cells))
	target := cfg.BuildableTarget
	if target <= 0 {
		target = 0.45
	}
	// Linear falloff: exact target scores 1, twice the distance of the
	// target away scores 0.
	score := 1 - math.Abs(share-target)/target
	if score < 0 {
		score = 0
	}
	if blocked == 0 {
		score *= 0.9
	}
	return score
}
