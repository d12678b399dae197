// Package store archives trained rule sets and generated maps in SQLite or
// PostgreSQL. Maps are stored as their YAML archive plus queryable metadata;
// starting positions get their own rows so tools can query spawn layouts
// without parsing terrain.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/cinderworks/mapforge/internal/importer"
	"github.com/cinderworks/mapforge/internal/rules"
	"github.com/cinderworks/mapforge/internal/symmetry"
)

var (
	// ErrNotFound reports a missing archive row.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate reports a name collision on insert.
	ErrDuplicate = errors.New("store: duplicate name")
)

// Store wraps the archive database.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Config selects and locates the backend.
type Config struct {
	// Driver is "sqlite" or "postgres".
	Driver string
	// Path is the database file for sqlite.
	Path string
	// DSN is the connection string for postgres.
	DSN string
}

// Open connects to the archive and runs migrations.
func Open(cfg Config) (*Store, error) {
	dialect := NewDialect(cfg.Driver)

	dsn := cfg.DSN
	if dialect.DriverName() == "sqlite" {
		if cfg.Path == "" {
			return nil, fmt.Errorf("store: sqlite driver needs a path")
		}
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = cfg.Path
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}

	s := &Store{db: db, dialect: dialect}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	pk := s.dialect.AutoIncrementPK()
	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS rule_sets (
			id %s,
			name TEXT UNIQUE NOT NULL,
			body TEXT NOT NULL,
			tile_count INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`, pk),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS maps (
			id %s,
			name TEXT NOT NULL,
			seed BIGINT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			symmetry TEXT NOT NULL,
			players INTEGER NOT NULL,
			score REAL NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`, pk),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS starting_positions (
			id %s,
			map_id BIGINT NOT NULL REFERENCES maps(id) ON DELETE CASCADE,
			player INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			team INTEGER NOT NULL
		)`, pk),

		`CREATE INDEX IF NOT EXISTS idx_maps_name ON maps(name)`,
		`CREATE INDEX IF NOT EXISTS idx_starts_map ON starting_positions(map_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// insertID runs an INSERT and returns the new row id across both backends.
func (s *Store) insertID(query string, args ...any) (int64, error) {
	query = s.dialect.Rebind(query)
	if s.dialect.SupportsLastInsertID() {
		res, err := s.db.Exec(query, args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	var id int64
	err := s.db.QueryRow(query+s.dialect.ReturningClause("id"), args...).Scan(&id)
	return id, err
}

// SaveRuleSet archives a trained rule set under a unique name.
func (s *Store) SaveRuleSet(name string, rs rules.RuleSet) (int64, error) {
	body, err := rules.Marshal(rs)
	if err != nil {
		return 0, err
	}

	id, err := s.insertID(
		`INSERT INTO rule_sets (name, body, tile_count, created_at) VALUES (?, ?, ?, ?)`,
		name, string(body), len(rs), time.Now().UTC(),
	)
	if err != nil {
		if s.dialect.IsDuplicateKeyError(err) {
			return 0, fmt.Errorf("%w: rule set %q", ErrDuplicate, name)
		}
		return 0, fmt.Errorf("failed to save rule set: %w", err)
	}
	return id, nil
}

// LoadRuleSet retrieves an archived rule set by name.
func (s *Store) LoadRuleSet(name string) (rules.RuleSet, error) {
	var body string
	query := s.dialect.Rebind(`SELECT body FROM rule_sets WHERE name = ?`)
	err := s.db.QueryRow(query, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: rule set %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rule set: %w", err)
	}
	return rules.Unmarshal([]byte(body))
}

// RuleSetInfo is one row of the rule set listing.
type RuleSetInfo struct {
	ID        int64
	Name      string
	TileCount int
	CreatedAt time.Time
}

// ListRuleSets returns all archived rule sets, newest first.
func (s *Store) ListRuleSets() ([]RuleSetInfo, error) {
	rows, err := s.db.Query(`SELECT id, name, tile_count, created_at FROM rule_sets ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rule sets: %w", err)
	}
	defer rows.Close()

	var out []RuleSetInfo
	for rows.Next() {
		var info RuleSetInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.TileCount, &info.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// MapMeta is the queryable metadata stored beside a map archive.
type MapMeta struct {
	Name     string
	Seed     int64
	Width    int
	Height   int
	Symmetry string
	Players  int
	Score    float64
}

// SaveMap archives a generated map with its starting positions.
func (s *Store) SaveMap(meta MapMeta, archive *importer.MapFile) (int64, error) {
	body, err := archive.Marshal()
	if err != nil {
		return 0, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := s.insertIDTx(tx,
		`INSERT INTO maps (name, seed, width, height, symmetry, players, score, body, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.Name, meta.Seed, meta.Width, meta.Height, meta.Symmetry, meta.Players, meta.Score, string(body), time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save map: %w", err)
	}

	startQuery := s.dialect.Rebind(`INSERT INTO starting_positions (map_id, player, x, y, team) VALUES (?, ?, ?, ?, ?)`)
	for _, st := range archive.Starts {
		if _, err := tx.Exec(startQuery, id, st.Player, st.X, st.Y, st.Team); err != nil {
			return 0, fmt.Errorf("failed to save starting position: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return id, nil
}

func (s *Store) insertIDTx(tx *sql.Tx, query string, args ...any) (int64, error) {
	query = s.dialect.Rebind(query)
	if s.dialect.SupportsLastInsertID() {
		res, err := tx.Exec(query, args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	var id int64
	err := tx.QueryRow(query+s.dialect.ReturningClause("id"), args...).Scan(&id)
	return id, err
}

// LoadMap retrieves an archived map by id.
func (s *Store) LoadMap(id int64) (MapMeta, *importer.MapFile, error) {
	var meta MapMeta
	var body string
	query := s.dialect.Rebind(`SELECT name, seed, width, height, symmetry, players, score, body FROM maps WHERE id = ?`)
	err := s.db.QueryRow(query, id).Scan(&meta.Name, &meta.Seed, &meta.Width, &meta.Height, &meta.Symmetry, &meta.Players, &meta.Score, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return MapMeta{}, nil, fmt.Errorf("%w: map %d", ErrNotFound, id)
	}
	if err != nil {
		return MapMeta{}, nil, fmt.Errorf("failed to load map: %w", err)
	}

	archive, err := importer.Decode([]byte(body))
	if err != nil {
		return MapMeta{}, nil, fmt.Errorf("archived map %d is corrupt: %w", id, err)
	}
	return meta, archive, nil
}

// StartingPositions returns the spawn rows for a map.
func (s *Store) StartingPositions(mapID int64) ([]symmetry.StartingPosition, error) {
	query := s.dialect.Rebind(`SELECT player, x, y, team FROM starting_positions WHERE map_id = ? ORDER BY player`)
	rows, err := s.db.Query(query, mapID)
	if err != nil {
		return nil, fmt.Errorf("failed to load starting positions: %w", err)
	}
	defer rows.Close()

	var out []symmetry.StartingPosition
	for rows.Next() {
		var p symmetry.StartingPosition
		if err := rows.Scan(&p.PlayerID, &p.X, &p.Y, &p.Team); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MapInfo is one row of the map listing.
type MapInfo struct {
	ID        int64
	Meta      MapMeta
	CreatedAt time.Time
}

// ListMaps returns archived maps, newest first, capped at limit.
func (s *Store) ListMaps(limit int) ([]MapInfo, error) {
	if limit < 1 {
		limit = 50
	}
	query := s.dialect.Rebind(`SELECT id, name, seed, width, height, symmetry, players, score, created_at FROM maps ORDER BY created_at DESC, id DESC LIMIT ?`)
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}
	defer rows.Close()

	var out []MapInfo
	for rows.Next() {
		var info MapInfo
		if err := rows.Scan(&info.ID, &info.Meta.Name, &info.Meta.Seed, &info.Meta.Width, &info.Meta.Height, &info.Meta.Symmetry, &info.Meta.Players, &info.Meta.Score, &info.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}
