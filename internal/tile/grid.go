package tile

import "fmt"

// Grid is a width×height terrain map stored row-major. The zero ID marks an
// unassigned cell.
type Grid struct {
	Width  int
	Height int
	Cells  []ID
}

// NewGrid creates an empty grid of the given dimensions.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Cells:  make([]ID, width*height),
	}
}

// Index returns the flat index of (x, y).
func (g *Grid) Index(x, y int) int {
	return y*g.Width + x
}

// Coords returns the (x, y) position of a flat index.
func (g *Grid) Coords(i int) (x, y int) {
	return i % g.Width, i / g.Width
}

// InBounds reports whether (x, y) lies within the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// At returns the tile at (x, y). Callers must check bounds first.
func (g *Grid) At(x, y int) ID {
	return g.Cells[g.Index(x, y)]
}

// Set places a tile at (x, y).
func (g *Grid) Set(x, y int, id ID) {
	g.Cells[g.Index(x, y)] = id
}

// Neighbor returns the tile adjacent to (x, y) in the given direction and
// whether that neighbor exists.
func (g *Grid) Neighbor(x, y int, dir Direction) (ID, bool) {
	dx, dy := dir.Offset()
	nx, ny := x+dx, y+dy
	if !g.InBounds(nx, ny) {
		return "", false
	}
	return g.At(nx, ny), true
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := NewGrid(g.Width, g.Height)
	copy(c.Cells, g.Cells)
	return c
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d)", g.Width, g.Height)
}
