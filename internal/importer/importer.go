// Package importer reads and writes the YAML map archive format. Reference
// maps loaded here feed the trainer; generated maps are written back in the
// same shape so they can be re-imported as training material.
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cinderworks/mapforge/internal/symmetry"
	"github.com/cinderworks/mapforge/internal/tile"
	"github.com/cinderworks/mapforge/internal/training"
)

// ErrInvalidMapFile covers every archive shape problem: ragged rows, legend
// gaps, out-of-range starting positions.
var ErrInvalidMapFile = errors.New("invalid map file")

// legendAlphabet is the pool of single-rune codes assigned when exporting.
const legendAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MapFile is the on-disk archive shape. Terrain is stored as strings of
// single-rune codes with a legend mapping codes to tile identifiers, which
// keeps large maps readable in a diff.
type MapFile struct {
	Name       string            `yaml:"name"`
	Seed       int64             `yaml:"seed,omitempty"`
	Legend     map[string]string `yaml:"legend"`
	Rows       []string          `yaml:"rows"`
	Categories map[string]string `yaml:"categories,omitempty"`
	Starts     []StartEntry      `yaml:"starting_positions,omitempty"`
}

// StartEntry is one player's spawn in the archive.
type StartEntry struct {
	Player int `yaml:"player"`
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Team   int `yaml:"team"`
}

// Decode parses and validates an archive.
func Decode(data []byte) (*MapFile, error) {
	var m MapFile
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse map file: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *MapFile) validate() error {
	if len(m.Rows) == 0 {
		return fmt.Errorf("%w: no terrain rows", ErrInvalidMapFile)
	}
	width := len([]rune(m.Rows[0]))
	if width == 0 {
		return fmt.Errorf("%w: empty terrain row", ErrInvalidMapFile)
	}
	for i, row := range m.Rows {
		runes := []rune(row)
		if len(runes) != width {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidMapFile, i, len(runes), width)
		}
		for _, r := range runes {
			if _, ok := m.Legend[string(r)]; !ok {
				return fmt.Errorf("%w: row %d uses code %q missing from legend", ErrInvalidMapFile, i, string(r))
			}
		}
	}
	for _, s := range m.Starts {
		if s.X < 0 || s.X >= width || s.Y < 0 || s.Y >= len(m.Rows) {
			return fmt.Errorf("%w: starting position for player %d is out of bounds", ErrInvalidMapFile, s.Player)
		}
	}
	return nil
}

// Grid expands the legend-coded rows into a tile grid.
func (m *MapFile) Grid() *tile.Grid {
	g := tile.NewGrid(len([]rune(m.Rows[0])), len(m.Rows))
	for y, row := range m.Rows {
		for x, r := range []rune(row) {
			g.Set(x, y, tile.ID(m.Legend[string(r)]))
		}
	}
	return g
}

// CategoryTable converts the optional categories block for the trainer.
// Unparseable category names are ignored rather than failing the import;
// the tile just stays uncategorized.
func (m *MapFile) CategoryTable() map[tile.ID]tile.Category {
	if len(m.Categories) == 0 {
		return nil
	}
	out := make(map[tile.ID]tile.Category, len(m.Categories))
	for id, name := range m.Categories {
		if cat := tile.ParseCategory(name); cat != tile.CategoryUnknown {
			out[tile.ID(id)] = cat
		}
	}
	return out
}

// StartingPositions converts the archive entries to the generator's type.
func (m *MapFile) StartingPositions() []symmetry.StartingPosition {
	if len(m.Starts) == 0 {
		return nil
	}
	out := make([]symmetry.StartingPosition, len(m.Starts))
	for i, s := range m.Starts {
		out[i] = symmetry.StartingPosition{PlayerID: s.Player, X: s.X, Y: s.Y, Team: s.Team}
	}
	return out
}

// LoadReferenceMap reads one archive as training material.
func LoadReferenceMap(path string) (training.ReferenceMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return training.ReferenceMap{}, fmt.Errorf("failed to read map file: %w", err)
	}
	m, err := Decode(data)
	if err != nil {
		return training.ReferenceMap{}, fmt.Errorf("%s: %w", path, err)
	}
	name := m.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return training.ReferenceMap{Name: name, Terrain: m.Grid()}, nil
}

// LoadCorpus reads every .yaml/.yml archive directly under dir, sorted by
// filename so training folds in a stable order.
func LoadCorpus(dir string) ([]training.ReferenceMap, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	maps := make([]training.ReferenceMap, 0, len(paths))
	for _, p := range paths {
		m, err := LoadReferenceMap(p)
		if err != nil {
			return nil, err
		}
		maps = append(maps, m)
	}
	return maps, nil
}

// FromGrid builds an archive from a generated map, assigning legend codes to
// tile identifiers in sorted order so output is deterministic.
func FromGrid(name string, seed int64, g *tile.Grid, starts []symmetry.StartingPosition) (*MapFile, error) {
	seen := make(map[tile.ID]bool)
	for _, id := range g.Cells {
		seen[id] = true
	}
	ids := make([]tile.ID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if len(ids) > len(legendAlphabet) {
		return nil, fmt.Errorf("%w: %d distinct tiles exceeds the legend alphabet", ErrInvalidMapFile, len(ids))
	}

	legend := make(map[string]string, len(ids))
	codeOf := make(map[tile.ID]string, len(ids))
	for i, id := range ids {
		code := string(legendAlphabet[i])
		legend[code] = string(id)
		codeOf[id] = code
	}

	rows := make([]string, g.Height)
	var b strings.Builder
	for y := 0; y < g.Height; y++ {
		b.Reset()
		for x := 0; x < g.Width; x++ {
			b.WriteString(codeOf[g.At(x, y)])
		}
		rows[y] = b.String()
	}

	m := &MapFile{Name: name, Seed: seed, Legend: legend, Rows: rows}
	for _, s := range starts {
		m.Starts = append(m.Starts, StartEntry{Player: s.PlayerID, X: s.X, Y: s.Y, Team: s.Team})
	}
	return m, nil
}

// Marshal renders the archive as YAML without the file header.
func (m *MapFile) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode map file: %w", err)
	}
	return data, nil
}

// WriteFile writes the archive with a short provenance header.
func (m *MapFile) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create map file: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "# %s\n", m.Name)
	fmt.Fprintf(f, "# %dx%d, seed %d\n\n", len([]rune(m.Rows[0])), len(m.Rows), m.Seed)

	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	if err := encoder.Encode(m); err != nil {
		return fmt.Errorf("failed to encode map file: %w", err)
	}
	return encoder.Close()
}
