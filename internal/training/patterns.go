package training

import (
	"sort"
	"strings"

	"github.com/cinderworks/mapforge/internal/tile"
)

// PatternRecord is a 2×2 tile sub-grid with an occurrence weight. Patterns
// are an auxiliary signal for map analysis; generation does not require them.
type PatternRecord struct {
	Key    string
	Tiles  [4]tile.ID // row-major: NW, NE, SW, SE
	Weight float64
}

// patternKey serializes a 2×2 block to its canonical form.
func patternKey(p [4]tile.ID) string {
	parts := []string{string(p[0]), string(p[1]), string(p[2]), string(p[3])}
	return strings.Join(parts, "|")
}

// accumulatePatterns records every 2×2 sub-grid at full weight, plus its
// rotated and reflected variants at half weight — augmentations carry less
// confidence that they reflect an authentic design choice.
func (c *Counters) accumulatePatterns(g *tile.Grid) {
	for y := 0; y+1 < g.Height; y++ {
		for x := 0; x+1 < g.Width; x++ {
			p := [4]tile.ID{g.At(x, y), g.At(x+1, y), g.At(x, y+1), g.At(x+1, y+1)}
			if p[0] == "" || p[1] == "" || p[2] == "" || p[3] == "" {
				continue
			}

			c.addPattern(p, 1.0)
			for _, v := range variants(p) {
				c.addPattern(v, 0.5)
			}
		}
	}
}

func (c *Counters) addPattern(p [4]tile.ID, weight float64) {
	key := patternKey(p)
	rec, ok := c.patterns[key]
	if !ok {
		rec = &PatternRecord{Key: key, Tiles: p}
		c.patterns[key] = rec
	}
	rec.Weight += weight
}

// variants returns the three nontrivial rotations and the horizontal and
// vertical reflections of a 2×2 block.
func variants(p [4]tile.ID) [][4]tile.ID {
	rot90 := func(q [4]tile.ID) [4]tile.ID {
		// NW NE / SW SE rotated clockwise: SW NW / SE NE.
		return [4]tile.ID{q[2], q[0], q[3], q[1]}
	}

	r1 := rot90(p)
	r2 := rot90(r1)
	r3 := rot90(r2)
	flipH := [4]tile.ID{p[1], p[0], p[3], p[2]}
	flipV := [4]tile.ID{p[2], p[3], p[0], p[1]}

	return [][4]tile.ID{r1, r2, r3, flipH, flipV}
}

// PatternLibrary returns the recorded patterns sorted by weight descending,
// key ascending for equal weights.
func (c *Counters) PatternLibrary() []PatternRecord {
	out := make([]PatternRecord, 0, len(c.patterns))
	for _, rec := range c.patterns {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Key < out[j].Key
	})
	return out
}
