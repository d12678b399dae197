package wfc

import (
	"errors"
	"testing"

	"github.com/cinderworks/mapforge/internal/rng"
	"github.com/cinderworks/mapforge/internal/rules"
	"github.com/cinderworks/mapforge/internal/tile"
)

// openSet builds the canonical two-tile set: a (0.7) and b (0.3), each
// allowing itself and the other in every direction. Every cell always has a
// legal neighbor, so generation can never contradict.
func openSet() rules.RuleSet {
	a := rules.NewRule(0.7, tile.CategorySand)
	b := rules.NewRule(0.3, tile.CategoryWater)
	for _, d := range tile.AllDirections() {
		a.Allow(d, "a")
		a.Allow(d, "b")
		b.Allow(d, "a")
		b.Allow(d, "b")
	}
	return rules.RuleSet{"a": a, "b": b}
}

// stripeSet allows tiles only beside themselves horizontally and anything
// vertically, forcing horizontal runs.
func stripeSet() rules.RuleSet {
	a := rules.NewRule(0.5, tile.CategorySand)
	b := rules.NewRule(0.5, tile.CategoryWater)
	a.Allow(tile.East, "a")
	a.Allow(tile.West, "a")
	b.Allow(tile.East, "b")
	b.Allow(tile.West, "b")
	for _, d := range []tile.Direction{tile.North, tile.South} {
		a.Allow(d, "a")
		a.Allow(d, "b")
		b.Allow(d, "a")
		b.Allow(d, "b")
	}
	return rules.RuleSet{"a": a, "b": b}
}

// impossibleSet has empty vertical adjacency for every tile, so any grid
// taller than one row cannot be completed.
func impossibleSet() rules.RuleSet {
	a := rules.NewRule(0.5, tile.CategorySand)
	b := rules.NewRule(0.5, tile.CategoryWater)
	for _, id := range []tile.ID{"a", "b"} {
		a.Allow(tile.East, id)
		a.Allow(tile.West, id)
		b.Allow(tile.East, id)
		b.Allow(tile.West, id)
	}
	return rules.RuleSet{"a": a, "b": b}
}

func TestGenerateFullyCollapses(t *testing.T) {
	g, err := Generate(4, 4, openSet(), rng.New(42))
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	for i, id := range g.Cells {
		if id == "" {
			t.Fatalf("cell %d left unassigned", i)
		}
	}
}

func TestAdjacencySoundness(t *testing.T) {
	rs := stripeSet()

	for _, seed := range []int64{1, 42, 100, 255, 1000, 5000, 9999} {
		g, err := Generate(8, 8, rs, rng.New(seed))
		if err != nil {
			t.Fatalf("seed %d: Generate() failed: %v", seed, err)
		}

		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				for _, dir := range tile.AllDirections() {
					n, ok := g.Neighbor(x, y, dir)
					if !ok {
						continue
					}
					if !rs[g.At(x, y)].Allows(dir, n) {
						t.Fatalf("seed %d: tile %q at (%d,%d) has illegal %s neighbor %q",
							seed, g.At(x, y), x, y, dir, n)
					}
				}
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	rs := openSet()

	first, err := Generate(10, 10, rs, rng.New(1234))
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := Generate(10, 10, rs, rng.New(1234))
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	for i := range first.Cells {
		if first.Cells[i] != second.Cells[i] {
			t.Fatalf("grids diverge at cell %d: %q vs %q", i, first.Cells[i], second.Cells[i])
		}
	}
}

func TestContradictionTerminates(t *testing.T) {
	s, err := NewSolver(3, 3, impossibleSet(), rng.New(7))
	if err != nil {
		t.Fatalf("NewSolver() failed: %v", err)
	}
	s.MaxBacktracks = 50

	_, err = s.Solve()
	if !errors.Is(err, ErrContradiction) {
		t.Errorf("Solve() = %v, want ErrContradiction", err)
	}
}

func TestSingleRowWithImpossibleVerticals(t *testing.T) {
	// With no vertical neighbors to satisfy, a one-row grid still solves.
	g, err := Generate(5, 1, impossibleSet(), rng.New(3))
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if g.Width != 5 || g.Height != 1 {
		t.Errorf("grid is %dx%d, want 5x1", g.Width, g.Height)
	}
}

func TestSingleTileWithoutSelfAdjacency(t *testing.T) {
	// One tile with empty adjacency: every domain starts as a singleton, so
	// the illegal arcs must be caught by the initial consistency pass rather
	// than slipping through a collapse loop that has nothing to collapse.
	rs := rules.RuleSet{"a": rules.NewRule(1, tile.CategorySand)}

	if _, err := Generate(2, 1, rs, rng.New(1)); !errors.Is(err, ErrContradiction) {
		t.Errorf("Generate(2,1) = %v, want ErrContradiction", err)
	}

	// A lone cell has no arcs to violate.
	g, err := Generate(1, 1, rs, rng.New(1))
	if err != nil {
		t.Fatalf("Generate(1,1) failed: %v", err)
	}
	if g.At(0, 0) != "a" {
		t.Errorf("cell = %q, want %q", g.At(0, 0), "a")
	}
}

func TestInvalidRuleSetRejectedEagerly(t *testing.T) {
	rs := openSet()
	rs["a"].Allow(tile.North, "ghost")

	_, err := NewSolver(4, 4, rs, rng.New(1))
	if !errors.Is(err, rules.ErrInvalidRuleSet) {
		t.Errorf("NewSolver() = %v, want ErrInvalidRuleSet", err)
	}
}

func TestInvalidSize(t *testing.T) {
	_, err := NewSolver(0, 5, openSet(), rng.New(1))
	if !errors.Is(err, ErrInvalidSize) {
		t.Errorf("NewSolver(0,5) = %v, want ErrInvalidSize", err)
	}
	_, err = NewSolver(5, -1, openSet(), rng.New(1))
	if !errors.Is(err, ErrInvalidSize) {
		t.Errorf("NewSolver(5,-1) = %v, want ErrInvalidSize", err)
	}
}

func TestPropagationOnlyShrinksDomains(t *testing.T) {
	s, err := NewSolver(5, 5, stripeSet(), rng.New(11))
	if err != nil {
		t.Fatalf("NewSolver() failed: %v", err)
	}

	before := make([]int, len(s.domains))
	for i := range s.domains {
		before[i] = s.domains[i].count
	}

	// Collapse the center cell and propagate once.
	center := s.Width*2 + 2
	s.collapseTo(center, 0)
	if !s.propagate(center) {
		t.Fatal("propagation from a fresh grid should not contradict")
	}

	for i := range s.domains {
		if s.domains[i].count > before[i] {
			t.Fatalf("cell %d domain grew from %d to %d", i, before[i], s.domains[i].count)
		}
	}
}

func TestWeightedPickRespectsTried(t *testing.T) {
	s, err := NewSolver(2, 2, openSet(), rng.New(5))
	if err != nil {
		t.Fatalf("NewSolver() failed: %v", err)
	}

	tried := make([]bool, 2)
	first := s.weightedPick(0, tried)
	if first < 0 {
		t.Fatal("pick from a full domain should succeed")
	}
	tried[first] = true

	second := s.weightedPick(0, tried)
	if second < 0 || second == first {
		t.Errorf("second pick = %d, want the remaining candidate", second)
	}
	tried[second] = true

	if got := s.weightedPick(0, tried); got != -1 {
		t.Errorf("exhausted pick = %d, want -1", got)
	}
}

func TestEntropyPrefersNarrowerDomain(t *testing.T) {
	// Three tiles, all mutually adjacent.
	rs := rules.RuleSet{}
	ids := []tile.ID{"a", "b", "c"}
	for _, id := range ids {
		rs[id] = rules.NewRule(1, tile.CategoryDirt)
	}
	for _, id := range ids {
		for _, d := range tile.AllDirections() {
			for _, n := range ids {
				rs[id].Allow(d, n)
			}
		}
	}

	s, err := NewSolver(3, 1, rs, rng.New(9))
	if err != nil {
		t.Fatalf("NewSolver() failed: %v", err)
	}

	// Shrink cell 2's domain by hand; it should be selected next.
	s.domains[2].possible[0] = false
	s.domains[2].count--

	if got := s.lowestEntropyCell(); got != 2 {
		t.Errorf("lowestEntropyCell() = %d, want 2", got)
	}
}

func TestEntropyTieBreaksRowMajor(t *testing.T) {
	s, err := NewSolver(3, 3, openSet(), rng.New(2))
	if err != nil {
		t.Fatalf("NewSolver() failed: %v", err)
	}

	// All cells identical: the first uncollapsed cell wins.
	if got := s.lowestEntropyCell(); got != 0 {
		t.Errorf("lowestEntropyCell() = %d, want 0", got)
	}
}

func TestBacktrackBudgetConfigurable(t *testing.T) {
	s, err := NewSolver(4, 4, impossibleSet(), rng.New(21))
	if err != nil {
		t.Fatalf("NewSolver() failed: %v", err)
	}
	s.MaxBacktracks = 0

	if _, err := s.Solve(); !errors.Is(err, ErrContradiction) {
		t.Errorf("zero budget should contradict immediately, got %v", err)
	}
}
