package rules

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cinderworks/mapforge/internal/tile"
)

// ruleYAML is the wire form of a single tile rule. The direction keys are
// up/down/left/right; up is north. This is the sole data contract between the
// trainer and the solver and is stable enough to hand-author.
type ruleYAML struct {
	Frequency float64       `yaml:"frequency"`
	Category  string        `yaml:"category,omitempty"`
	Adjacency adjacencyYAML `yaml:"adjacency"`
}

type adjacencyYAML struct {
	Up    []string `yaml:"up"`
	Down  []string `yaml:"down"`
	Left  []string `yaml:"left"`
	Right []string `yaml:"right"`
}

type ruleSetYAML struct {
	Tiles map[string]ruleYAML `yaml:"tiles"`
}

// Marshal serializes a rule set to YAML with tiles and neighbor lists sorted
// for stable diffs.
func Marshal(rs RuleSet) ([]byte, error) {
	doc := ruleSetYAML{Tiles: make(map[string]ruleYAML, len(rs))}

	for _, id := range rs.IDs() {
		r := rs[id]
		doc.Tiles[string(id)] = ruleYAML{
			Frequency: r.Frequency,
			Category:  r.Category.String(),
			Adjacency: adjacencyYAML{
				Up:    idStrings(r.Neighbors(tile.North)),
				Down:  idStrings(r.Neighbors(tile.South)),
				Left:  idStrings(r.Neighbors(tile.West)),
				Right: idStrings(r.Neighbors(tile.East)),
			},
		}
	}

	return yaml.Marshal(doc)
}

// Unmarshal parses a YAML rule set and validates it.
func Unmarshal(data []byte) (RuleSet, error) {
	var doc ruleSetYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("rules: parse: %w", err)
	}

	rs := make(RuleSet, len(doc.Tiles))
	for name, ry := range doc.Tiles {
		r := NewRule(ry.Frequency, tile.ParseCategory(ry.Category))
		addNeighbors(r, tile.North, ry.Adjacency.Up)
		addNeighbors(r, tile.South, ry.Adjacency.Down)
		addNeighbors(r, tile.West, ry.Adjacency.Left)
		addNeighbors(r, tile.East, ry.Adjacency.Right)
		rs[tile.ID(name)] = r
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

// LoadFile reads a rule set from a YAML file.
func LoadFile(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}
	return Unmarshal(data)
}

// SaveFile writes a rule set to a YAML file.
func SaveFile(rs RuleSet, path string) error {
	data, err := Marshal(rs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("rules: write %s: %w", path, err)
	}
	return nil
}

func addNeighbors(r *Rule, dir tile.Direction, names []string) {
	for _, n := range names {
		r.Allow(dir, tile.ID(n))
	}
}

func idStrings(ids []tile.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	sort.Strings(out)
	return out
}
