package server

import (
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/cinderworks/mapforge/internal/importer"
	"github.com/cinderworks/mapforge/internal/logger"
	"github.com/cinderworks/mapforge/internal/pipeline"
	"github.com/cinderworks/mapforge/internal/resources"
	"github.com/cinderworks/mapforge/internal/rules"
	"github.com/cinderworks/mapforge/internal/store"
	"github.com/cinderworks/mapforge/internal/symmetry"
	"github.com/cinderworks/mapforge/internal/validator"
)

// GenerateRequest is one generation job submitted by the client. Zero-value
// fields fall back to the service's configured generation defaults.
type GenerateRequest struct {
	// ID is echoed back on every response so clients can multiplex.
	ID    string `json:"id"`
	Token string `json:"token,omitempty"`

	Name     string `json:"name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Players  int    `json:"players"`
	Symmetry string `json:"symmetry"`
	Seed     int64  `json:"seed"`
	Attempts int    `json:"attempts"`

	// RuleSet names a rule set archived in the store.
	RuleSet string `json:"rule_set"`
	// RuleSetYAML inlines a rule set, taking precedence over RuleSet.
	RuleSetYAML string `json:"rule_set_yaml,omitempty"`

	ResourceDensity float64 `json:"resource_density"`

	// Archive stores the finished map before returning it.
	Archive bool `json:"archive"`
}

// Envelope is the single response shape: progress, result, or error.
type Envelope struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Stage string `json:"stage,omitempty"`
	Error string `json:"error,omitempty"`

	Seed    int64        `json:"seed,omitempty"`
	Score   float64      `json:"score,omitempty"`
	MapYAML string       `json:"map_yaml,omitempty"`
	MapID   int64        `json:"map_id,omitempty"`
	Starts  []StartEntry `json:"starts,omitempty"`
}

// StartEntry mirrors the archive's spawn rows for the JSON surface.
type StartEntry struct {
	Player int `json:"player"`
	X      int `json:"x"`
	Y      int `json:"y"`
	Team   int `json:"team"`
}

func (s *Server) serveRequest(conn *websocket.Conn, req GenerateRequest) {
	s.applyDefaults(&req)

	progress := func(stage string) {
		if err := conn.WriteJSON(Envelope{Type: "progress", ID: req.ID, Stage: stage}); err != nil {
			logger.Debug("failed to write progress", "error", err)
		}
	}

	progress("loading rules")
	rs, err := s.resolveRuleSet(req)
	if err != nil {
		writeError(conn, req.ID, err)
		return
	}

	kind, err := symmetry.ParseKind(req.Symmetry)
	if err != nil {
		writeError(conn, req.ID, err)
		return
	}

	progress("generating")
	preq := pipeline.Request{
		Width:         req.Width,
		Height:        req.Height,
		Players:       req.Players,
		Symmetry:      kind,
		Seed:          req.Seed,
		Attempts:      req.Attempts,
		RuleSet:       rs,
		MaxBacktracks: s.cfg.Generation.MaxBacktracks,
	}
	preq.Validation = validator.DefaultConfig()
	preq.Validation.MinScore = s.cfg.Generation.MinScore
	if req.ResourceDensity > 0 {
		preq.Resources = resources.DefaultConfig()
		preq.Resources.Density = req.ResourceDensity
	}

	result, err := pipeline.Run(preq)
	if err != nil {
		writeError(conn, req.ID, err)
		return
	}

	archive, err := importer.FromGrid(req.Name, result.Seed, result.Terrain, result.Starts)
	if err != nil {
		writeError(conn, req.ID, err)
		return
	}
	body, err := archive.Marshal()
	if err != nil {
		writeError(conn, req.ID, err)
		return
	}

	resp := Envelope{
		Type:    "result",
		ID:      req.ID,
		Seed:    result.Seed,
		Score:   result.Report.Overall(),
		MapYAML: string(body),
	}
	for _, st := range result.Starts {
		resp.Starts = append(resp.Starts, StartEntry{Player: st.PlayerID, X: st.X, Y: st.Y, Team: st.Team})
	}

	if req.Archive {
		progress("archiving")
		mapID, aerr := s.archiveResult(req, result, archive)
		if aerr != nil {
			writeError(conn, req.ID, aerr)
			return
		}
		resp.MapID = mapID
	}

	if err := conn.WriteJSON(resp); err != nil {
		logger.Debug("failed to write result", "error", err)
		return
	}
	logger.Info("map generated",
		"name", req.Name,
		"size", fmt.Sprintf("%dx%d", req.Width, req.Height),
		"seed", result.Seed,
		"score", result.Report.Overall())
}

func (s *Server) applyDefaults(req *GenerateRequest) {
	gen := s.cfg.Generation
	if req.Width <= 0 {
		req.Width = gen.Width
	}
	if req.Height <= 0 {
		req.Height = gen.Height
	}
	if req.Players <= 0 {
		req.Players = gen.Players
	}
	if req.Symmetry == "" {
		req.Symmetry = gen.Symmetry
	}
	if req.Attempts <= 0 {
		req.Attempts = gen.Attempts
	}
	if req.Name == "" {
		req.Name = fmt.Sprintf("generated-%d", req.Seed)
	}
}

func (s *Server) resolveRuleSet(req GenerateRequest) (rules.RuleSet, error) {
	if req.RuleSetYAML != "" {
		return rules.Unmarshal([]byte(req.RuleSetYAML))
	}
	if req.RuleSet != "" {
		if s.store == nil {
			return nil, errors.New("no store configured, inline the rule set instead")
		}
		return s.store.LoadRuleSet(req.RuleSet)
	}
	return nil, errors.New("request names no rule set")
}

func (s *Server) archiveResult(req GenerateRequest, result *pipeline.Result, archive *importer.MapFile) (int64, error) {
	if s.store == nil {
		return 0, errors.New("archiving requested but no store configured")
	}
	meta := store.MapMeta{
		Name:     req.Name,
		Seed:     result.Seed,
		Width:    req.Width,
		Height:   req.Height,
		Symmetry: req.Symmetry,
		Players:  req.Players,
		Score:    result.Report.Overall(),
	}
	return s.store.SaveMap(meta, archive)
}
