package validator

import (
	"strings"
	"testing"

	"github.com/cinderworks/mapforge/internal/symmetry"
	"github.com/cinderworks/mapforge/internal/tile"
)

var testCategories = map[tile.ID]tile.Category{
	"grass":    tile.CategoryDirt,
	"water":    tile.CategoryWater,
	"minerals": tile.CategoryResource,
}

func fieldOf(w, h int, id tile.ID) *tile.Grid {
	g := tile.NewGrid(w, h)
	for i := range g.Cells {
		g.Cells[i] = id
	}
	return g
}

func twoStarts() []symmetry.StartingPosition {
	return []symmetry.StartingPosition{
		{PlayerID: 0, X: 1, Y: 1},
		{PlayerID: 1, X: 8, Y: 8},
	}
}

func TestConnectedStartsScoreFull(t *testing.T) {
	g := fieldOf(10, 10, "grass")
	cfg := DefaultConfig()
	cfg.Categories = testCategories

	r := Validate(g, twoStarts(), cfg)
	if r.Connectivity != 1.0 {
		t.Errorf("connectivity = %g, want 1.0 on open ground", r.Connectivity)
	}
}

func TestWaterWallBreaksConnectivity(t *testing.T) {
	g := fieldOf(10, 10, "grass")
	for y := 0; y < 10; y++ {
		g.Set(5, y, "water")
	}
	cfg := DefaultConfig()
	cfg.Categories = testCategories

	r := Validate(g, twoStarts(), cfg)
	if r.Connectivity != 0 {
		t.Errorf("connectivity = %g, want 0 across a full water wall", r.Connectivity)
	}
	found := false
	for _, s := range r.Suggestions {
		if strings.Contains(s, "unreachable") {
			found = true
		}
	}
	if !found {
		t.Error("expected an unreachability suggestion")
	}
}

func TestResourceBalance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Categories = testCategories

	// Perfectly mirrored deposits.
	g := fieldOf(10, 10, "grass")
	g.Set(2, 2, "minerals")
	g.Set(7, 7, "minerals")
	if r := Validate(g, twoStarts(), cfg); r.ResourceBalance != 1.0 {
		t.Errorf("balance = %g, want 1.0 for mirrored deposits", r.ResourceBalance)
	}

	// Everything near player 0.
	g = fieldOf(10, 10, "grass")
	g.Set(2, 2, "minerals")
	g.Set(2, 3, "minerals")
	if r := Validate(g, twoStarts(), cfg); r.ResourceBalance != 0 {
		t.Errorf("balance = %g, want 0 for one-sided deposits", r.ResourceBalance)
	}

	// No deposits at all: trivially balanced.
	g = fieldOf(10, 10, "grass")
	if r := Validate(g, twoStarts(), cfg); r.ResourceBalance != 1.0 {
		t.Errorf("balance = %g, want 1.0 with no deposits", r.ResourceBalance)
	}
}

func TestTerrainMixPrefersTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Categories = testCategories
	cfg.BuildableTarget = 0.5

	// Exactly half buildable, with water present as an obstacle.
	g := fieldOf(10, 10, "grass")
	for y := 5; y < 10; y++ {
		for x := 0; x < 10; x++ {
			g.Set(x, y, "water")
		}
	}
	atTarget := Validate(g, twoStarts(), cfg).TerrainMix

	allGrass := Validate(fieldOf(10, 10, "grass"), twoStarts(), cfg).TerrainMix
	allWater := Validate(fieldOf(10, 10, "water"), twoStarts(), cfg).TerrainMix

	if atTarget != 1.0 {
		t.Errorf("mix at target = %g, want 1.0", atTarget)
	}
	if allGrass >= atTarget {
		t.Errorf("uniform buildable map (%g) should score below the target mix (%g)", allGrass, atTarget)
	}
	if allWater != 0 {
		t.Errorf("all-water map mix = %g, want 0", allWater)
	}
}

func TestOverallIsWorstAxis(t *testing.T) {
	r := Report{Connectivity: 0.9, ResourceBalance: 0.3, TerrainMix: 0.8}
	if r.Overall() != 0.3 {
		t.Errorf("overall = %g, want 0.3", r.Overall())
	}
	if r.Acceptable(0.5) {
		t.Error("report with a 0.3 axis should not be acceptable at 0.5")
	}
	if !r.Acceptable(0.3) {
		t.Error("report should be acceptable at its own floor")
	}
}

func TestSingleStartScoresZeroConnectivity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Categories = testCategories
	r := Validate(fieldOf(5, 5, "grass"), []symmetry.StartingPosition{{X: 2, Y: 2}}, cfg)
	if r.Connectivity != 0 {
		t.Errorf("connectivity = %g with one start, want 0", r.Connectivity)
	}
}
