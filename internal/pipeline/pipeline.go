// Package pipeline orchestrates full map production: symmetric synthesis
// over a base generator, resource placement, validation, and retries. One
// Run call turns any number of internal failures into a single outcome.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/cinderworks/mapforge/internal/logger"
	"github.com/cinderworks/mapforge/internal/resources"
	"github.com/cinderworks/mapforge/internal/rng"
	"github.com/cinderworks/mapforge/internal/rules"
	"github.com/cinderworks/mapforge/internal/symmetry"
	"github.com/cinderworks/mapforge/internal/tile"
	"github.com/cinderworks/mapforge/internal/validator"
	"github.com/cinderworks/mapforge/internal/wfc"
)

// ErrNoAcceptableMap reports that every attempt either failed to generate
// or scored below the acceptance floor.
var ErrNoAcceptableMap = errors.New("no acceptable map within attempt budget")

// seedStride separates attempt seeds far enough that consecutive attempts
// do not walk overlapping stream prefixes.
const seedStride = 1000

// resourceFork labels the stream fork used for deposit placement so terrain
// and resource randomness stay independent.
const resourceFork = 1

// Request describes one production job.
type Request struct {
	Width, Height int
	Players       int
	Symmetry      symmetry.Kind
	Seed          int64

	// Attempts caps generation retries. Zero means one attempt.
	Attempts int

	// RuleSet drives constraint-based synthesis. Ignored when Base is set.
	RuleSet rules.RuleSet

	// MaxBacktracks is passed through to the solver; zero keeps the
	// solver default.
	MaxBacktracks int

	// Base overrides the constraint solver with a custom generator.
	Base symmetry.BaseGenerator

	Resources  resources.Config
	Validation validator.Config
	Options    symmetry.Options
}

// Result is a finished, validated map.
type Result struct {
	Terrain *tile.Grid
	Starts  []symmetry.StartingPosition
	Report  validator.Report

	// Seed reproduces this exact map when passed back in a request with
	// Attempts = 1.
	Seed    int64
	Attempt int
}

// Run produces the best acceptable map within the attempt budget. Attempt k
// derives its seed as Seed + k*1000 so a logged winning seed can be replayed
// directly. Contradictions and low scores consume an attempt; any other
// generation error aborts immediately.
func Run(req Request) (*Result, error) {
	base := req.Base
	if base == nil {
		if req.RuleSet == nil {
			return nil, fmt.Errorf("%w: no rule set and no base generator", ErrNoAcceptableMap)
		}
		if err := req.RuleSet.Validate(); err != nil {
			return nil, err
		}
		base = solverBase(req.RuleSet, req.MaxBacktracks)
	}

	if req.Validation.Categories == nil && req.RuleSet != nil {
		req.Validation.Categories = categoriesOf(req.RuleSet)
	}

	attempts := req.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var best *Result
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		seed := req.Seed + int64(attempt)*seedStride
		stream := rng.New(seed)

		terrain, starts, err := symmetry.Generate(req.Width, req.Height, req.Players, req.Symmetry, base, stream, req.Options)
		if err != nil {
			if errors.Is(err, wfc.ErrContradiction) {
				logger.Debug("attempt hit contradiction", "attempt", attempt, "seed", seed)
				lastErr = err
				continue
			}
			return nil, err
		}

		if req.Resources.Tile != "" {
			group, gerr := symmetry.NewGroup(req.Symmetry, req.Players, req.Width, req.Height)
			if gerr != nil {
				return nil, gerr
			}
			if perr := resources.Place(terrain, req.Validation.Categories, group, starts, req.Resources, stream.Fork(resourceFork)); perr != nil {
				logger.Debug("resource placement failed", "attempt", attempt, "error", perr)
				lastErr = perr
				continue
			}
		}

		report := validator.Validate(terrain, starts, req.Validation)
		logger.Debug("attempt scored",
			"attempt", attempt,
			"seed", seed,
			"connectivity", report.Connectivity,
			"balance", report.ResourceBalance,
			"mix", report.TerrainMix)

		if !report.Acceptable(req.Validation.MinScore) {
			lastErr = fmt.Errorf("attempt %d scored %.2f, floor %.2f", attempt, report.Overall(), req.Validation.MinScore)
			continue
		}

		if best == nil || report.Overall() > best.Report.Overall() {
			best = &Result{
				Terrain: terrain,
				Starts:  starts,
				Report:  report,
				Seed:    seed,
				Attempt: attempt,
			}
		}
	}

	if best == nil {
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoAcceptableMap, lastErr)
		}
		return nil, ErrNoAcceptableMap
	}

	logger.Info("map accepted", "seed", best.Seed, "attempt", best.Attempt, "score", best.Report.Overall())
	return best, nil
}

// solverBase adapts the constraint solver to the base generator contract.
func solverBase(rs rules.RuleSet, maxBacktracks int) symmetry.BaseGenerator {
	return func(width, height int, stream *rng.Stream) (*tile.Grid, error) {
		solver, err := wfc.NewSolver(width, height, rs, stream)
		if err != nil {
			return nil, err
		}
		if maxBacktracks > 0 {
			solver.MaxBacktracks = maxBacktracks
		}
		return solver.Solve()
	}
}

// categoriesOf lifts each rule's category into the lookup table the
// resource placer and validator use.
func categoriesOf(rs rules.RuleSet) map[tile.ID]tile.Category {
	out := make(map[tile.ID]tile.Category, len(rs))
	for id, r := range rs {
		out[id] = r.Category
	}
	return out
}
