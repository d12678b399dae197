// Package wfc implements the Wave Function Collapse terrain synthesizer:
// entropy-guided cell collapse under adjacency constraints, with
// arc-consistency propagation and bounded snapshot backtracking.
package wfc

import (
	"errors"
	"fmt"
	"math"

	"github.com/cinderworks/mapforge/internal/rng"
	"github.com/cinderworks/mapforge/internal/rules"
	"github.com/cinderworks/mapforge/internal/tile"
)

var (
	// ErrContradiction means the constraint search exhausted its backtrack
	// budget without reaching a full collapse. Expected for over-constrained
	// rule sets or unlucky draws; callers retry with a new seed.
	ErrContradiction = errors.New("wfc: contradiction - no consistent assignment found")

	// ErrInvalidSize rejects non-positive grid dimensions.
	ErrInvalidSize = errors.New("wfc: invalid grid size")
)

// DefaultMaxBacktracks bounds the search so a contradictory rule set
// terminates instead of looping.
const DefaultMaxBacktracks = 1000

// Solver holds the state of one generation run. A solver is single-use:
// create, Solve, discard.
type Solver struct {
	Width, Height int
	MaxBacktracks int

	tiles   []tile.ID   // sorted rule-set vocabulary; index = tile index
	weights []float64   // unnormalized frequency per tile index
	compat  [4][][]bool // compat[dir][t] = mask of tiles allowed in dir of t
	rng     *rng.Stream

	domains []cellDomain // one per cell, row-major
	stack   []decision   // snapshots, one per collapse decision
}

// cellDomain is the set of tile indices still possible at one cell.
type cellDomain struct {
	possible []bool
	count    int
}

// decision records one collapse choice so it can be unwound.
type decision struct {
	cell     int
	snapshot []cellDomain
	tried    []bool // tile indices already attempted at this decision point
}

// NewSolver validates the rule set eagerly and prepares a solver. The stream
// is the sole source of nondeterminism; identical seeds yield identical grids.
func NewSolver(width, height int, rs rules.RuleSet, stream *rng.Stream) (*Solver, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}

	ids := rs.IDs()
	index := make(map[tile.ID]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	s := &Solver{
		Width:         width,
		Height:        height,
		MaxBacktracks: DefaultMaxBacktracks,
		tiles:         ids,
		weights:       make([]float64, len(ids)),
		rng:           stream,
	}
	for i, id := range ids {
		s.weights[i] = rs[id].Frequency
	}

	// Precompute the per-direction compatibility masks once; propagation is
	// the hot path.
	for _, dir := range tile.AllDirections() {
		masks := make([][]bool, len(ids))
		for i, id := range ids {
			mask := make([]bool, len(ids))
			for _, n := range rs[id].Neighbors(dir) {
				mask[index[n]] = true
			}
			masks[i] = mask
		}
		s.compat[dir] = masks
	}

	s.initDomains()
	return s, nil
}

func (s *Solver) initDomains() {
	n := s.Width * s.Height
	s.domains = make([]cellDomain, n)
	for i := range s.domains {
		possible := make([]bool, len(s.tiles))
		for t := range possible {
			possible[t] = true
		}
		s.domains[i] = cellDomain{possible: possible, count: len(s.tiles)}
	}
}

// Solve runs the collapse loop to completion and returns the terrain grid,
// or ErrContradiction if the backtrack budget is exhausted.
func (s *Solver) Solve() (*tile.Grid, error) {
	// Establish arc consistency across the whole grid before the first
	// collapse. This prunes tiles with no support in some direction and
	// catches vocabularies that cannot tile even a trivial grid, including
	// the degenerate case where every domain starts as a singleton and the
	// collapse loop alone would never check a single arc.
	seeds := make([]int, len(s.domains))
	for i := range seeds {
		seeds[i] = i
	}
	if !s.propagate(seeds...) {
		return nil, ErrContradiction
	}

	backtracks := 0

	for {
		cell := s.lowestEntropyCell()
		if cell < 0 {
			return s.extractGrid(), nil
		}

		s.stack = append(s.stack, decision{
			cell:     cell,
			snapshot: s.snapshot(),
			tried:    make([]bool, len(s.tiles)),
		})

		if !s.assignTop(&backtracks) {
			return nil, ErrContradiction
		}
	}
}

// assignTop repeatedly tries candidates at the top decision point, unwinding
// the stack when a point is exhausted. Returns false when the search fails.
func (s *Solver) assignTop(backtracks *int) bool {
	for {
		if len(s.stack) == 0 || *backtracks > s.MaxBacktracks {
			return false
		}
		top := &s.stack[len(s.stack)-1]

		s.restore(top.snapshot)

		choice := s.weightedPick(top.cell, top.tried)
		if choice < 0 {
			// Decision point exhausted; back up one more.
			s.stack = s.stack[:len(s.stack)-1]
			*backtracks++
			continue
		}
		top.tried[choice] = true

		s.collapseTo(top.cell, choice)
		if s.propagate(top.cell) {
			return true
		}
		*backtracks++
	}
}

// lowestEntropyCell returns the uncollapsed cell with minimal Shannon entropy
// over its domain's weights, scanning row-major so ties resolve
// deterministically. Returns -1 when every cell is collapsed.
func (s *Solver) lowestEntropyCell() int {
	best := -1
	bestEntropy := math.MaxFloat64

	for i := range s.domains {
		if s.domains[i].count <= 1 {
			continue
		}
		h := s.entropy(i)
		if h < bestEntropy {
			bestEntropy = h
			best = i
		}
	}
	return best
}

// entropy computes -Σ p·log p with p normalized over the cell's current
// domain, so rare tiles dominate locally once common ones are excluded.
func (s *Solver) entropy(cell int) float64 {
	d := &s.domains[cell]

	var total float64
	for t, ok := range d.possible {
		if ok {
			total += s.weights[t]
		}
	}
	if total <= 0 {
		return 0
	}

	var h float64
	for t, ok := range d.possible {
		if !ok {
			continue
		}
		p := s.weights[t] / total
		if p > 0 {
			h -= p * math.Log(p)
		}
	}
	return h
}

// weightedPick samples a tile index from the cell's domain proportionally to
// frequency, skipping indices already tried. Returns -1 when nothing is left.
func (s *Solver) weightedPick(cell int, tried []bool) int {
	d := &s.domains[cell]

	var total float64
	for t, ok := range d.possible {
		if ok && !tried[t] {
			total += s.weights[t]
		}
	}
	if total <= 0 {
		return -1
	}

	r := s.rng.Float64() * total
	last := -1
	for t, ok := range d.possible {
		if !ok || tried[t] {
			continue
		}
		last = t
		r -= s.weights[t]
		if r <= 0 {
			return t
		}
	}
	return last
}

// collapseTo shrinks a cell's domain to a singleton.
func (s *Solver) collapseTo(cell, choice int) {
	d := &s.domains[cell]
	for t := range d.possible {
		d.possible[t] = t == choice
	}
	d.count = 1
}

// propagate restores arc consistency outward from the seed cells using a
// worklist. A neighbor keeps a tile only while some tile in the adjacent
// cell's domain supports it. Returns false on an emptied domain.
func (s *Solver) propagate(seeds ...int) bool {
	queue := make([]int, 0, max(64, len(seeds)))
	queue = append(queue, seeds...)

	for head := 0; head < len(queue); head++ {
		c := queue[head]
		x, y := c%s.Width, c/s.Width

		for _, dir := range tile.AllDirections() {
			dx, dy := dir.Offset()
			nx, ny := x+dx, y+dy
			if nx < 0 || nx >= s.Width || ny < 0 || ny >= s.Height {
				continue
			}
			ni := ny*s.Width + nx

			// allowed = union of compat masks over the source domain.
			allowed := make([]bool, len(s.tiles))
			src := &s.domains[c]
			for t, ok := range src.possible {
				if !ok {
					continue
				}
				for n, a := range s.compat[dir][t] {
					if a {
						allowed[n] = true
					}
				}
			}

			dst := &s.domains[ni]
			changed := false
			for t, ok := range dst.possible {
				if ok && !allowed[t] {
					dst.possible[t] = false
					dst.count--
					changed = true
				}
			}
			if dst.count == 0 {
				return false
			}
			if changed {
				queue = append(queue, ni)
			}
		}
	}
	return true
}

// snapshot deep-copies all cell domains for later restore.
func (s *Solver) snapshot() []cellDomain {
	snap := make([]cellDomain, len(s.domains))
	for i := range s.domains {
		possible := make([]bool, len(s.domains[i].possible))
		copy(possible, s.domains[i].possible)
		snap[i] = cellDomain{possible: possible, count: s.domains[i].count}
	}
	return snap
}

func (s *Solver) restore(snap []cellDomain) {
	for i := range snap {
		copy(s.domains[i].possible, snap[i].possible)
		s.domains[i].count = snap[i].count
	}
}

// extractGrid maps each singleton domain to its tile.
func (s *Solver) extractGrid() *tile.Grid {
	g := tile.NewGrid(s.Width, s.Height)
	for i := range s.domains {
		for t, ok := range s.domains[i].possible {
			if ok {
				g.Cells[i] = s.tiles[t]
				break
			}
		}
	}
	return g
}

// DomainSize reports how many tiles remain possible at (x, y). Used by
// diagnostics and tests.
func (s *Solver) DomainSize(x, y int) int {
	return s.domains[y*s.Width+x].count
}

// Generate is the package-level convenience contract: synthesize one grid of
// the given size under the rule set, seeded by the stream.
func Generate(width, height int, rs rules.RuleSet, stream *rng.Stream) (*tile.Grid, error) {
	s, err := NewSolver(width, height, rs, stream)
	if err != nil {
		return nil, err
	}
	return s.Solve()
}
