package tile

import "testing"

func TestDirectionOpposite(t *testing.T) {
	tests := []struct {
		dir  Direction
		want Direction
	}{
		{North, South},
		{South, North},
		{East, West},
		{West, East},
	}

	for _, tc := range tests {
		if got := tc.dir.Opposite(); got != tc.want {
			t.Errorf("%s.Opposite() = %s, want %s", tc.dir, got, tc.want)
		}
	}
}

func TestDirectionOffset(t *testing.T) {
	tests := []struct {
		dir    Direction
		dx, dy int
	}{
		{North, 0, -1},
		{East, 1, 0},
		{South, 0, 1},
		{West, -1, 0},
	}

	for _, tc := range tests {
		dx, dy := tc.dir.Offset()
		if dx != tc.dx || dy != tc.dy {
			t.Errorf("%s.Offset() = (%d, %d), want (%d, %d)", tc.dir, dx, dy, tc.dx, tc.dy)
		}
	}
}

func TestParseCategoryRoundTrip(t *testing.T) {
	categories := []Category{
		CategorySand, CategoryDirt, CategoryWater, CategoryShore,
		CategoryTree, CategoryRock, CategoryResource,
	}

	for _, c := range categories {
		if got := ParseCategory(c.String()); got != c {
			t.Errorf("ParseCategory(%q) = %v, want %v", c.String(), got, c)
		}
	}

	if got := ParseCategory("lava"); got != CategoryUnknown {
		t.Errorf("ParseCategory(\"lava\") = %v, want CategoryUnknown", got)
	}
}

func TestCategoryBuildablePassable(t *testing.T) {
	if !CategorySand.Buildable() || !CategoryDirt.Buildable() {
		t.Error("sand and dirt should be buildable")
	}
	if CategoryWater.Buildable() || CategoryRock.Buildable() {
		t.Error("water and rock should not be buildable")
	}
	if CategoryWater.Passable() || CategoryTree.Passable() {
		t.Error("water and tree should not be passable")
	}
	if !CategoryShore.Passable() {
		t.Error("shore should be passable")
	}
}

func TestGridIndexing(t *testing.T) {
	g := NewGrid(4, 3)

	if g.Index(0, 0) != 0 {
		t.Errorf("Index(0,0) = %d, want 0", g.Index(0, 0))
	}
	if g.Index(3, 2) != 11 {
		t.Errorf("Index(3,2) = %d, want 11", g.Index(3, 2))
	}

	x, y := g.Coords(7)
	if x != 3 || y != 1 {
		t.Errorf("Coords(7) = (%d, %d), want (3, 1)", x, y)
	}
}

func TestGridInBounds(t *testing.T) {
	g := NewGrid(4, 3)

	if !g.InBounds(0, 0) || !g.InBounds(3, 2) {
		t.Error("corners should be in bounds")
	}
	if g.InBounds(-1, 0) || g.InBounds(4, 0) || g.InBounds(0, 3) {
		t.Error("out-of-range coordinates should not be in bounds")
	}
}

func TestGridNeighbor(t *testing.T) {
	g := NewGrid(3, 3)
	g.Set(1, 0, "sand")

	id, ok := g.Neighbor(1, 1, North)
	if !ok || id != "sand" {
		t.Errorf("Neighbor(1,1,North) = (%q, %v), want (\"sand\", true)", id, ok)
	}

	if _, ok := g.Neighbor(0, 0, West); ok {
		t.Error("west of (0,0) should not exist")
	}
	if _, ok := g.Neighbor(2, 2, South); ok {
		t.Error("south of (2,2) should not exist")
	}
}

func TestGridClone(t *testing.T) {
	g := NewGrid(2, 2)
	g.Set(0, 0, "water")

	c := g.Clone()
	c.Set(0, 0, "dirt")

	if g.At(0, 0) != "water" {
		t.Error("mutating the clone should not affect the original")
	}
	if c.At(0, 0) != "dirt" {
		t.Error("clone should carry the mutation")
	}
}
