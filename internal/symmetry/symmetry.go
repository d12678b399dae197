// Package symmetry turns any base terrain generator into one that produces
// N-fold balanced multiplayer maps: the terrain is made invariant under a
// symmetry group and starting positions are placed at equal offsets from the
// grid center.
package symmetry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest rejects requests the symmetry machinery cannot honor:
	// fewer than two players, or a group that does not partition the grid.
	ErrInvalidRequest = errors.New("symmetry: invalid request")
)

// Kind selects the symmetry group.
type Kind int

const (
	// Mirror reflects across the vertical axis. Two players.
	Mirror Kind = iota
	// Rotational rotates about the grid center. Order 2 works on any
	// rectangle; order 4 requires a square grid.
	Rotational
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case Mirror:
		return "mirror"
	case Rotational:
		return "rotational"
	default:
		return "unknown"
	}
}

// ParseKind converts a configuration string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "mirror":
		return Mirror, nil
	case "rotational":
		return Rotational, nil
	default:
		return 0, fmt.Errorf("%w: unknown symmetry kind %q", ErrInvalidRequest, s)
	}
}

// Group is a concrete symmetry group over a width×height grid.
type Group struct {
	Kind  Kind
	Order int // number of symmetric copies; equals the player count
	W, H  int
}

// NewGroup validates the combination of kind, order, and grid dimensions.
//
// Mirror supports order 2 and requires an even width so the axis splits the
// grid exactly. Rotational supports order 2 on any rectangle and order 4 on
// square grids only; other orders are not grid automorphisms and are
// rejected rather than approximated.
func NewGroup(kind Kind, order, width, height int) (*Group, error) {
	if order < 2 {
		return nil, fmt.Errorf("%w: player count %d (need at least 2)", ErrInvalidRequest, order)
	}

	switch kind {
	case Mirror:
		if order != 2 {
			return nil, fmt.Errorf("%w: mirror symmetry needs exactly 2 players, got %d", ErrInvalidRequest, order)
		}
		if width%2 != 0 {
			return nil, fmt.Errorf("%w: mirror symmetry needs an even width, got %d", ErrInvalidRequest, width)
		}
	case Rotational:
		switch order {
		case 2:
			// 180° rotation works on any rectangle.
		case 4:
			if width != height {
				return nil, fmt.Errorf("%w: 4-fold rotation needs a square grid, got %dx%d", ErrInvalidRequest, width, height)
			}
		default:
			return nil, fmt.Errorf("%w: rotational order %d is not a grid symmetry", ErrInvalidRequest, order)
		}
	default:
		return nil, fmt.Errorf("%w: unknown symmetry kind %d", ErrInvalidRequest, kind)
	}

	return &Group{Kind: kind, Order: order, W: width, H: height}, nil
}

// Transform maps (x, y) to its k-th symmetric copy, k in [0, Order).
// k = 0 is the identity.
func (g *Group) Transform(x, y, k int) (int, int) {
	switch g.Kind {
	case Mirror:
		if k%2 == 0 {
			return x, y
		}
		return g.W - 1 - x, y
	case Rotational:
		switch g.Order {
		case 2:
			if k%2 == 0 {
				return x, y
			}
			return g.W - 1 - x, g.H - 1 - y
		case 4:
			// Quarter-turn on a square grid: (x, y) -> (W-1-y, x), applied
			// k times.
			for i := 0; i < k%4; i++ {
				x, y = g.W-1-y, x
			}
			return x, y
		}
	}
	return x, y
}

// Canonical returns the orbit representative of (x, y): the copy with the
// smallest row-major index. Every cell in an orbit shares the same
// representative, which defines the fundamental domain.
func (g *Group) Canonical(x, y int) (int, int) {
	bestX, bestY := x, y
	best := bestY*g.W + bestX
	for k := 1; k < g.Order; k++ {
		tx, ty := g.Transform(x, y, k)
		if idx := ty*g.W + tx; idx < best {
			best = idx
			bestX, bestY = tx, ty
		}
	}
	return bestX, bestY
}
