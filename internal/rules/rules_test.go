package rules

import (
	"errors"
	"testing"

	"github.com/cinderworks/mapforge/internal/tile"
)

// twoTileSet builds the canonical A/B rule set: both tiles allow each other
// and themselves in every direction.
func twoTileSet() RuleSet {
	a := NewRule(0.7, tile.CategorySand)
	b := NewRule(0.3, tile.CategoryWater)
	for _, d := range tile.AllDirections() {
		a.Allow(d, "a")
		a.Allow(d, "b")
		b.Allow(d, "a")
		b.Allow(d, "b")
	}
	return RuleSet{"a": a, "b": b}
}

func TestValidateAccepts(t *testing.T) {
	if err := twoTileSet().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateEmpty(t *testing.T) {
	err := RuleSet{}.Validate()
	if !errors.Is(err, ErrInvalidRuleSet) {
		t.Errorf("empty set: got %v, want ErrInvalidRuleSet", err)
	}
}

func TestValidateUnknownNeighbor(t *testing.T) {
	rs := twoTileSet()
	rs["a"].Allow(tile.East, "ghost")

	err := rs.Validate()
	if !errors.Is(err, ErrInvalidRuleSet) {
		t.Errorf("unknown neighbor: got %v, want ErrInvalidRuleSet", err)
	}
}

func TestValidateNonPositiveFrequency(t *testing.T) {
	rs := twoTileSet()
	rs["a"].Frequency = 0

	err := rs.Validate()
	if !errors.Is(err, ErrInvalidRuleSet) {
		t.Errorf("zero frequency: got %v, want ErrInvalidRuleSet", err)
	}
}

func TestConsistent(t *testing.T) {
	rs := twoTileSet()
	if !rs.Consistent() {
		t.Error("symmetric set should be consistent")
	}

	// Break symmetry: b east of a without a west of b.
	rs["b"].Adjacency[tile.West] = map[tile.ID]bool{"b": true}
	if rs.Consistent() {
		t.Error("asymmetric set should not be consistent")
	}
}

func TestIDsSorted(t *testing.T) {
	rs := RuleSet{
		"water": NewRule(1, tile.CategoryWater),
		"dirt":  NewRule(1, tile.CategoryDirt),
		"sand":  NewRule(1, tile.CategorySand),
	}

	ids := rs.IDs()
	want := []tile.ID{"dirt", "sand", "water"}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("IDs() = %v, want %v", ids, want)
		}
	}
}

func TestMergeUnionsAdjacency(t *testing.T) {
	a := RuleSet{"x": NewRule(0.4, tile.CategorySand)}
	a["x"].Allow(tile.East, "x")

	b := RuleSet{"x": NewRule(0.8, tile.CategorySand)}
	b["x"].Allow(tile.West, "x")

	merged := Merge(a, b)

	if got := merged["x"].Frequency; got != 0.6 {
		t.Errorf("merged frequency = %g, want 0.6", got)
	}
	if !merged["x"].Allows(tile.East, "x") || !merged["x"].Allows(tile.West, "x") {
		t.Error("merge should union adjacency from both sets")
	}
}

func TestMergeDisjointTiles(t *testing.T) {
	a := RuleSet{"x": NewRule(0.5, tile.CategorySand)}
	b := RuleSet{"y": NewRule(0.5, tile.CategoryWater)}

	merged := Merge(a, b)
	if len(merged) != 2 {
		t.Fatalf("merged set has %d tiles, want 2", len(merged))
	}
}

func TestMergeDoesNotAliasInputs(t *testing.T) {
	a := RuleSet{"x": NewRule(0.5, tile.CategorySand)}
	b := RuleSet{"x": NewRule(0.5, tile.CategorySand)}

	merged := Merge(a, b)
	merged["x"].Allow(tile.North, "x")

	if a["x"].Allows(tile.North, "x") || b["x"].Allows(tile.North, "x") {
		t.Error("mutating the merged set should not affect inputs")
	}
}
