package symmetry

import (
	"math"

	"github.com/cinderworks/mapforge/internal/rng"
	"github.com/cinderworks/mapforge/internal/tile"
)

// BaseGenerator is any terrain synthesizer: the WFC solver, the noise
// generator, or a test stub. Treated as opaque; its failures propagate
// unchanged.
type BaseGenerator func(width, height int, stream *rng.Stream) (*tile.Grid, error)

// StartingPosition is one player's spawn point. Immutable once created.
type StartingPosition struct {
	PlayerID int
	X, Y     int
	Team     int
}

// Options tune starting-position placement and tile orientation.
type Options struct {
	// Radius is the spawn distance from the grid center in cells.
	// Zero selects 35% of the smaller grid dimension.
	Radius float64

	// BaseAngle is the angular offset of player 0's spawn, in radians.
	// Nil selects the group default: pi for Mirror (the left half, mirrored
	// to the right), 0 otherwise. An explicit zero is honored as-is.
	BaseAngle *float64

	// Orient maps a tile to its k-th rotated/mirrored variant for tile sets
	// whose identifiers encode directionality. Nil copies tiles verbatim,
	// which is correct for most terrain vocabularies.
	Orient func(id tile.ID, k int) tile.ID
}

// Generate synthesizes a terrain grid invariant under the requested symmetry
// group, with one balanced starting position per player.
//
// The base generator fills the whole grid; the fundamental domain's cells are
// then stamped onto every symmetric copy, so the invariant
// tile(Transform(x,y,k)) == tile(x,y) holds exactly. Base generator failures
// are returned verbatim.
func Generate(width, height, playerCount int, kind Kind, base BaseGenerator, stream *rng.Stream, opts Options) (*tile.Grid, []StartingPosition, error) {
	group, err := NewGroup(kind, playerCount, width, height)
	if err != nil {
		return nil, nil, err
	}

	raw, err := base(width, height, stream)
	if err != nil {
		return nil, nil, err
	}

	grid := symmetrize(raw, group, opts.Orient)
	starts := placeStarts(group, opts)

	return grid, starts, nil
}

// symmetrize stamps each fundamental-domain cell onto its whole orbit.
// Copies are taken strictly from the domain's cells, never regenerated.
func symmetrize(raw *tile.Grid, g *Group, orient func(tile.ID, int) tile.ID) *tile.Grid {
	out := tile.NewGrid(raw.Width, raw.Height)

	for y := 0; y < raw.Height; y++ {
		for x := 0; x < raw.Width; x++ {
			cx, cy := g.Canonical(x, y)
			if cx != x || cy != y {
				continue // not a representative; filled by its orbit
			}
			v := raw.At(x, y)
			for k := 0; k < g.Order; k++ {
				tx, ty := g.Transform(x, y, k)
				tv := v
				if orient != nil {
					tv = orient(v, k)
				}
				out.Set(tx, ty, tv)
			}
		}
	}
	return out
}

// placeStarts computes player 0's spawn from the configured radius and angle,
// then derives every other spawn by the group transform. Deriving (rather
// than rounding each angle independently) keeps the position set exactly
// closed under the group and every spawn exactly equidistant from center.
func placeStarts(g *Group, opts Options) []StartingPosition {
	// Geometric center of the cell lattice; the group transforms are exact
	// isometries about this point.
	cx := float64(g.W-1) / 2
	cy := float64(g.H-1) / 2

	radius := opts.Radius
	if radius <= 0 {
		radius = 0.35 * math.Min(float64(g.W), float64(g.H))
	}
	// Clamp once so the clamped radius is shared by all players.
	maxR := math.Min(math.Min(cx, cy), math.Min(float64(g.W-1)-cx, float64(g.H-1)-cy))
	if radius > maxR {
		radius = maxR
	}

	var angle float64
	switch {
	case opts.BaseAngle != nil:
		angle = *opts.BaseAngle
	case g.Kind == Mirror:
		angle = math.Pi // left half by default, mirrored to the right
	}

	x0 := int(math.Round(cx + radius*math.Cos(angle)))
	y0 := int(math.Round(cy + radius*math.Sin(angle)))

	starts := make([]StartingPosition, g.Order)
	for k := 0; k < g.Order; k++ {
		x, y := g.Transform(x0, y0, k)
		starts[k] = StartingPosition{PlayerID: k, X: x, Y: y, Team: k}
	}
	return starts
}
