package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ch1nq/arcadio-go/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS matches (
	id TEXT PRIMARY KEY,
	host TEXT NOT NULL,
	strategy TEXT NOT NULL,
	player_id INTEGER NOT NULL,
	winner_id INTEGER,
	won INTEGER NOT NULL,
	timestep INTEGER NOT NULL,
	players INTEGER NOT NULL,
	started_at INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL
);
`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %v", err)
	}
	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveMatch(ctx context.Context, match *models.Match) error {
	q := `
	INSERT INTO matches (id, host, strategy, player_id, winner_id, won, timestep, players, started_at, duration_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, q, match.ID, match.Host, match.Strategy, match.PlayerID, match.WinnerID, match.Won, match.Timestep, match.Players, match.StartedAt, match.DurationMs)
	if err != nil {
		return fmt.Errorf("failed to insert match: %v", err)
	}
	return nil
}

func scanMatch(scan func(dest ...interface{}) error) (*models.Match, error) {
	match := &models.Match{}
	var winner sql.NullInt64
	if err := scan(&match.ID, &match.Host, &match.Strategy, &match.PlayerID, &winner, &match.Won, &match.Timestep, &match.Players, &match.StartedAt, &match.DurationMs); err != nil {
		return nil, err
	}
	if winner.Valid {
		match.WinnerID = &winner.Int64
	}
	return match, nil
}

func (r *SQLiteRepository) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	q := `
	SELECT id, host, strategy, player_id, winner_id, won, timestep, players, started_at, duration_ms
	FROM matches WHERE id = ?;
	`
	match, err := scanMatch(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan match: %v", err)
	}
	return match, nil
}

func (r *SQLiteRepository) ListMatches(ctx context.Context, limit int) ([]*models.Match, error) {
	q := `
	SELECT id, host, strategy, player_id, winner_id, won, timestep, players, started_at, duration_ms
	FROM matches ORDER BY started_at DESC LIMIT ?;
	`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %v", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, err := scanMatch(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %v", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %v", err)
	}
	return matches, nil
}

func (r *SQLiteRepository) GetStrategyStats(ctx context.Context) ([]*models.StrategyStats, error) {
	q := `
	SELECT strategy, COUNT(*), SUM(won)
	FROM matches GROUP BY strategy ORDER BY strategy;
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategy stats: %v", err)
	}
	defer rows.Close()

	stats := make([]*models.StrategyStats, 0)
	for rows.Next() {
		s := &models.StrategyStats{}
		if err := rows.Scan(&s.Strategy, &s.Matches, &s.Wins); err != nil {
			return nil, fmt.Errorf("failed to scan strategy stats: %v", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate strategy stats: %v", err)
	}
	return stats, nil
}
