// Package rules defines tile adjacency and frequency constraints consumed by
// the WFC engine. A rule set is built once — by hand or by the trainer — and
// is immutable while a solver runs.
package rules

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cinderworks/mapforge/internal/tile"
)

var (
	// ErrInvalidRuleSet indicates the rule set references unknown tiles or
	// carries unusable frequencies. Detected eagerly, fatal to the call.
	ErrInvalidRuleSet = errors.New("rules: invalid rule set")
)

// Rule holds the constraints for one tile: its relative selection weight and
// the tiles allowed next to it in each cardinal direction.
//
// Adjacency is directional: b ∈ Adjacency[East] means b may sit immediately
// east of this tile. Frequencies are unnormalized weights.
type Rule struct {
	Frequency float64
	Category  tile.Category
	Adjacency map[tile.Direction]map[tile.ID]bool
}

// NewRule creates a rule with empty adjacency sets for all four directions.
func NewRule(frequency float64, category tile.Category) *Rule {
	r := &Rule{
		Frequency: frequency,
		Category:  category,
		Adjacency: make(map[tile.Direction]map[tile.ID]bool),
	}
	for _, d := range tile.AllDirections() {
		r.Adjacency[d] = make(map[tile.ID]bool)
	}
	return r
}

// Allow permits neighbor in the given direction.
func (r *Rule) Allow(dir tile.Direction, neighbor tile.ID) {
	if r.Adjacency[dir] == nil {
		r.Adjacency[dir] = make(map[tile.ID]bool)
	}
	r.Adjacency[dir][neighbor] = true
}

// Allows reports whether neighbor may sit in the given direction.
func (r *Rule) Allows(dir tile.Direction, neighbor tile.ID) bool {
	return r.Adjacency[dir][neighbor]
}

// Neighbors returns the allowed neighbors in a direction, sorted for
// deterministic iteration.
func (r *Rule) Neighbors(dir tile.Direction) []tile.ID {
	ids := make([]tile.ID, 0, len(r.Adjacency[dir]))
	for id := range r.Adjacency[dir] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RuleSet maps every known tile to its rule.
type RuleSet map[tile.ID]*Rule

// IDs returns all tile identifiers in sorted order. Solvers index tiles by
// position in this slice so that runs are reproducible.
func (rs RuleSet) IDs() []tile.ID {
	ids := make([]tile.ID, 0, len(rs))
	for id := range rs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Validate checks the rule set before generation: every tile referenced in an
// adjacency set must have its own rule, and every tile must carry a positive
// frequency. Errors wrap ErrInvalidRuleSet.
func (rs RuleSet) Validate() error {
	if len(rs) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidRuleSet)
	}
	for _, id := range rs.IDs() {
		r := rs[id]
		if r == nil {
			return fmt.Errorf("%w: tile %q has nil rule", ErrInvalidRuleSet, id)
		}
		if r.Frequency <= 0 {
			return fmt.Errorf("%w: tile %q has non-positive frequency %g", ErrInvalidRuleSet, id, r.Frequency)
		}
		for _, dir := range tile.AllDirections() {
			for _, n := range r.Neighbors(dir) {
				if _, ok := rs[n]; !ok {
					return fmt.Errorf("%w: tile %q allows unknown neighbor %q to the %s",
						ErrInvalidRuleSet, id, n, dir)
				}
			}
		}
	}
	return nil
}

// Consistent reports whether adjacency is symmetric: if b may sit east of a
// then a must be allowed west of b, and likewise for every direction pair.
// Trained rule sets are consistent by construction; hand-authored ones should
// be checked.
func (rs RuleSet) Consistent() bool {
	for id, r := range rs {
		for _, dir := range tile.AllDirections() {
			for n := range r.Adjacency[dir] {
				nr, ok := rs[n]
				if !ok || !nr.Allows(dir.Opposite(), id) {
					return false
				}
			}
		}
	}
	return true
}

// Merge unions two rule sets: adjacency lists are unioned per direction and
// frequencies of shared tiles are averaged. Intended for incremental training
// over append-only corpora; it is associative enough for that use, though not
// bit-identical to retraining from scratch.
func Merge(a, b RuleSet) RuleSet {
	out := make(RuleSet, len(a)+len(b))

	for id, r := range a {
		out[id] = cloneRule(r)
	}
	for id, r := range b {
		existing, ok := out[id]
		if !ok {
			out[id] = cloneRule(r)
			continue
		}
		existing.Frequency = (existing.Frequency + r.Frequency) / 2
		if existing.Category == tile.CategoryUnknown {
			existing.Category = r.Category
		}
		for _, dir := range tile.AllDirections() {
			for n := range r.Adjacency[dir] {
				existing.Allow(dir, n)
			}
		}
	}
	return out
}

func cloneRule(r *Rule) *Rule {
	c := NewRule(r.Frequency, r.Category)
	for _, dir := range tile.AllDirections() {
		for n := range r.Adjacency[dir] {
			c.Allow(dir, n)
		}
	}
	return c
}
