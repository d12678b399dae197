// Package tile provides the shared terrain data model: tile identifiers,
// tile categories, cardinal directions, and the row-major map grid.
package tile

import "strings"

// ID identifies a terrain tile variant (e.g. "sand_1", "water_deep").
// IDs are opaque strings; the category is carried explicitly rather than
// inferred from the name.
type ID string

// Category classifies tiles by terrain kind. Gameplay rules (buildability,
// passability) key off the category, never off the ID string.
type Category int

const (
	CategoryUnknown Category = iota
	CategorySand
	CategoryDirt
	CategoryWater
	CategoryShore
	CategoryTree
	CategoryRock
	CategoryResource
)

// String returns the string representation of a Category.
func (c Category) String() string {
	switch c {
	case CategorySand:
		return "sand"
	case CategoryDirt:
		return "dirt"
	case CategoryWater:
		return "water"
	case CategoryShore:
		return "shore"
	case CategoryTree:
		return "tree"
	case CategoryRock:
		return "rock"
	case CategoryResource:
		return "resource"
	default:
		return "unknown"
	}
}

// ParseCategory converts a string to a Category. Unrecognized strings map to
// CategoryUnknown.
func ParseCategory(s string) Category {
	switch strings.ToLower(s) {
	case "sand":
		return CategorySand
	case "dirt":
		return CategoryDirt
	case "water":
		return CategoryWater
	case "shore":
		return CategoryShore
	case "tree":
		return CategoryTree
	case "rock":
		return CategoryRock
	case "resource":
		return CategoryResource
	default:
		return CategoryUnknown
	}
}

// Buildable reports whether structures can be placed on tiles of this
// category.
func (c Category) Buildable() bool {
	switch c {
	case CategorySand, CategoryDirt:
		return true
	default:
		return false
	}
}

// Passable reports whether ground units can cross tiles of this category.
func (c Category) Passable() bool {
	switch c {
	case CategorySand, CategoryDirt, CategoryShore, CategoryResource:
		return true
	default:
		return false
	}
}

// Direction represents a cardinal direction in the grid.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// String returns the string representation of a Direction.
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// Opposite returns the opposite direction.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	default:
		return d
	}
}

// Offset returns the coordinate delta for moving one cell in this direction.
// North is -y, matching row-major grids with y growing downward.
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	case West:
		return -1, 0
	}
	return 0, 0
}

// AllDirections returns all four cardinal directions in a fixed order.
func AllDirections() []Direction {
	return []Direction{North, East, South, West}
}
