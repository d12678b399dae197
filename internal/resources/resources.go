// Package resources scatters harvestable deposits over generated terrain.
// Deposits grow as organic clusters from seed cells, and when a symmetry
// group is supplied every cluster is stamped onto all of its orbit copies so
// no player sees more resources than another.
package resources

import (
	"errors"
	"fmt"

	"github.com/cinderworks/mapforge/internal/rng"
	"github.com/cinderworks/mapforge/internal/symmetry"
	"github.com/cinderworks/mapforge/internal/tile"
)

// ErrNoPlacement reports that the terrain has no cell that can host a
// deposit.
var ErrNoPlacement = errors.New("no placeable cell for resources")

// Config controls deposit placement.
type Config struct {
	// Tile is the deposit tile written into the grid.
	Tile tile.ID

	// Density is the fraction of buildable terrain converted to deposits,
	// counting orbit copies. Values are clamped to [0, 0.5].
	Density float64

	// ClusterSize is the target cell count of one cluster before
	// symmetry stamping.
	ClusterSize int

	// StartClusters guarantees this many clusters within StartRadius of
	// every starting position, independent of density.
	StartClusters int
	StartRadius   int
}

// DefaultConfig places modest mineral fields: 4% coverage in clusters of
// six, two guaranteed patches per base.
func DefaultConfig() Config {
	return Config{
		Tile:          "minerals",
		Density:       0.04,
		ClusterSize:   6,
		StartClusters: 2,
		StartRadius:   6,
	}
}

// Place mutates g, converting buildable cells to deposits. categories tells
// the placer which terrain can host a deposit. group may be nil for
// asymmetric maps; when set, every cluster cell is transformed onto all
// orbit copies. starts may be empty, in which case no guaranteed patches
// are placed.
func Place(g *tile.Grid, categories map[tile.ID]tile.Category, group *symmetry.Group, starts []symmetry.StartingPosition, cfg Config, stream *rng.Stream) error {
	if cfg.Tile == "" {
		return fmt.Errorf("%w: no deposit tile configured", ErrNoPlacement)
	}

	buildable := func(x, y int) bool {
		return categories[g.At(x, y)].Buildable()
	}

	// Spawn cells never host a deposit; a base buried in minerals has
	// nowhere to build. Blocking the whole orbit keeps the rule symmetric
	// even when starts are supplied by hand.
	blocked := make(map[[2]int]bool, len(starts))
	for _, sp := range starts {
		if group == nil {
			blocked[[2]int{sp.X, sp.Y}] = true
			continue
		}
		for k := 0; k < group.Order; k++ {
			tx, ty := group.Transform(sp.X, sp.Y, k)
			blocked[[2]int{tx, ty}] = true
		}
	}
	open := func(x, y int) bool {
		return buildable(x, y) && !blocked[[2]int{x, y}]
	}

	var candidates []int
	for i := range g.Cells {
		x, y := g.Coords(i)
		if open(x, y) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return ErrNoPlacement
	}

	density := cfg.Density
	if density < 0 {
		density = 0
	}
	if density > 0.5 {
		density = 0.5
	}
	clusterSize := cfg.ClusterSize
	if clusterSize < 1 {
		clusterSize = 1
	}

	copies := 1
	if group != nil {
		copies = group.Order
	}

	// Guaranteed patches first, anchored to player 0's base and stamped
	// onto every orbit, so each base ends up with the same layout.
	if len(starts) > 0 && cfg.StartClusters > 0 {
		anchor := starts[0]
		for placed, tries := 0, 0; placed < cfg.StartClusters && tries < 200; tries++ {
			x := anchor.X + stream.Intn(2*cfg.StartRadius+1) - cfg.StartRadius
			y := anchor.Y + stream.Intn(2*cfg.StartRadius+1) - cfg.StartRadius
			if !g.InBounds(x, y) || !open(x, y) {
				continue
			}
			growCluster(g, group, x, y, clusterSize, cfg.Tile, open, stream)
			placed++
		}
	}

	budget := int(density * float64(len(candidates)))
	clusters := budget / (clusterSize * copies)

	for placed, tries := 0, 0; placed < clusters && tries < clusters*50+50; tries++ {
		i := candidates[stream.Intn(len(candidates))]
		x, y := g.Coords(i)
		if !open(x, y) {
			continue // already converted
		}
		growCluster(g, group, x, y, clusterSize, cfg.Tile, open, stream)
		placed++
	}
	return nil
}

// growCluster performs randomized frontier growth from the seed cell,
// stamping each grown cell onto its full orbit. open reports whether a cell
// may still be converted.
func growCluster(g *tile.Grid, group *symmetry.Group, x, y, size int, deposit tile.ID, open func(int, int) bool, stream *rng.Stream) {
	frontier := [][2]int{{x, y}}
	for grown := 0; grown < size && len(frontier) > 0; {
		pick := stream.Intn(len(frontier))
		cx, cy := frontier[pick][0], frontier[pick][1]
		frontier[pick] = frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		if !open(cx, cy) {
			continue
		}
		stamp(g, group, cx, cy, deposit)
		grown++

		for _, dir := range tile.AllDirections() {
			dx, dy := dir.Offset()
			nx, ny := cx+dx, cy+dy
			if g.InBounds(nx, ny) && open(nx, ny) {
				frontier = append(frontier, [2]int{nx, ny})
			}
		}
	}
}

func stamp(g *tile.Grid, group *symmetry.Group, x, y int, deposit tile.ID) {
	if group == nil {
		g.Set(x, y, deposit)
		return
	}
	for k := 0; k < group.Order; k++ {
		tx, ty := group.Transform(x, y, k)
		g.Set(tx, ty, deposit)
	}
}

// Count reports how many deposit cells the grid holds.
func Count(g *tile.Grid, deposit tile.ID) int {
	n := 0
	for _, id := range g.Cells {
		if id == deposit {
			n++
		}
	}
	return n
}
