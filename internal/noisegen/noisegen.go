// Package noisegen synthesizes terrain from layered simplex noise. It is an
// alternative base generator for the symmetric pipeline: cheaper than
// constraint solving and immune to contradictions, at the cost of ignoring
// adjacency rules.
package noisegen

import (
	"errors"
	"fmt"
	"math"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/cinderworks/mapforge/internal/rng"
	"github.com/cinderworks/mapforge/internal/symmetry"
	"github.com/cinderworks/mapforge/internal/tile"
)

// ErrInvalidPalette reports an unusable band configuration.
var ErrInvalidPalette = errors.New("invalid noise palette")

// Band maps the elevation range up to Threshold onto one tile. Bands are
// evaluated in ascending threshold order; the last band should carry
// threshold 1.0 to cover the full range.
type Band struct {
	Threshold float64
	Tile      tile.ID
}

// Config shapes the noise field.
type Config struct {
	Octaves     int
	Frequency   float64
	Persistence float64
	Bands       []Band
}

// DefaultConfig returns a four-band island palette tuned for skirmish maps.
func DefaultConfig() Config {
	return Config{
		Octaves:     4,
		Frequency:   0.08,
		Persistence: 0.5,
		Bands: []Band{
			{Threshold: 0.35, Tile: "water"},
			{Threshold: 0.45, Tile: "shore"},
			{Threshold: 0.80, Tile: "grass"},
			{Threshold: 1.00, Tile: "rock"},
		},
	}
}

// Base returns a generator closure suitable for symmetric synthesis. The
// noise seed is drawn from the stream, so the same stream always yields the
// same terrain.
func Base(cfg Config) symmetry.BaseGenerator {
	return func(width, height int, stream *rng.Stream) (*tile.Grid, error) {
		if len(cfg.Bands) == 0 {
			return nil, fmt.Errorf("%w: no bands", ErrInvalidPalette)
		}
		bands := make([]Band, len(cfg.Bands))
		copy(bands, cfg.Bands)
		sort.Slice(bands, func(i, j int) bool { return bands[i].Threshold < bands[j].Threshold })
		for _, b := range bands {
			if b.Tile == "" {
				return nil, fmt.Errorf("%w: band at %g has no tile", ErrInvalidPalette, b.Threshold)
			}
		}

		octaves := cfg.Octaves
		if octaves < 1 {
			octaves = 1
		}
		frequency := cfg.Frequency
		if frequency <= 0 {
			frequency = 0.08
		}
		persistence := cfg.Persistence
		if persistence <= 0 {
			persistence = 0.5
		}

		noise := opensimplex.NewNormalized(int64(stream.Uint64()))
		half := float64(min(width, height)) / 2

		g := tile.NewGrid(width, height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				elev := octaveNoise(noise, float64(x), float64(y), octaves, frequency, persistence)

				// Edge falloff pushes water toward the map border so
				// bases never spawn flush against the world edge.
				cx := float64(x) - float64(width-1)/2
				cy := float64(y) - float64(height-1)/2
				dist := math.Sqrt(cx*cx+cy*cy) / half
				falloff := 1.0 - math.Pow(dist, 3.5)
				if falloff < 0 {
					falloff = 0
				}
				elev *= falloff

				g.Set(x, y, pickBand(bands, elev))
			}
		}
		return g, nil
	}
}

func pickBand(bands []Band, elev float64) tile.ID {
	for _, b := range bands {
		if elev <= b.Threshold {
			return b.Tile
		}
	}
	return bands[len(bands)-1].Tile
}

// octaveNoise layers doubling frequencies with decaying amplitude and
// renormalizes into [0, 1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
