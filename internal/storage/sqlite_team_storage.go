package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmurley/afl-trade-bot/internal/models"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const teamDBFileName = "team.db"

const teamSchema = `
CREATE TABLE IF NOT EXISTS team_players (
	ordinal     INTEGER NOT NULL,
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	team        TEXT NOT NULL DEFAULT '',
	position    TEXT NOT NULL,
	price       INTEGER NOT NULL,
	projected   REAL NOT NULL,
	average     REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS team_meta (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	saved_at TEXT NOT NULL
);
`

// SQLiteTeamStore keeps the team in a SQLite database
type SQLiteTeamStore struct {
	db *sql.DB
}

// NewSQLiteTeamStore opens (or creates) team.db under dataDir. A path
// starting with "file:" is passed to the driver as-is, which tests use for
// in-memory databases.
func NewSQLiteTeamStore(dataDir string) (*SQLiteTeamStore, error) {
	dsn := dataDir
	if !strings.HasPrefix(dataDir, "file:") {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, teamDBFileName) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open team database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps in-memory DBs alive.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(teamSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create team schema: %w", err)
	}
	return &SQLiteTeamStore{db: db}, nil
}

func (s *SQLiteTeamStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteTeamStore) Load(ctx context.Context) ([]models.Player, error) {
	var savedAt string
	err := s.db.QueryRowContext(ctx, `SELECT saved_at FROM team_meta WHERE id = 1`).Scan(&savedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read team metadata: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, team, position, price, projected, average
		FROM team_players
		ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("failed to query team: %w", err)
	}
	defer rows.Close()

	players := []models.Player{}
	for rows.Next() {
		var p models.Player
		var id, pos string
		if err := rows.Scan(&id, &p.Name, &p.Team, &pos, &p.Price, &p.ProjectedScore, &p.Average); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		p.ID = models.PlayerID(id)
		if p.Position, err = models.ParsePosition(pos); err != nil {
			return nil, fmt.Errorf("team row %s: %w", id, err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate team rows: %w", err)
	}
	if err := models.ValidateRoster(players); err != nil {
		return nil, fmt.Errorf("stored team is invalid: %w", err)
	}
	return players, nil
}

// Save replaces the stored team in one transaction.
func (s *SQLiteTeamStore) Save(ctx context.Context, players []models.Player) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM team_players`); err != nil {
		return fmt.Errorf("failed to clear team: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO team_players (ordinal, id, name, team, position, price, projected, average)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range players {
		if _, err := stmt.ExecContext(ctx, i, string(p.ID), p.Name, p.Team, string(p.Position), p.Price, p.ProjectedScore, p.Average); err != nil {
			return fmt.Errorf("failed to insert player %s: %w", p.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO team_meta (id, saved_at) VALUES (1, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at`); err != nil {
		return fmt.Errorf("failed to update team metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit team: %w", err)
	}
	return nil
}
