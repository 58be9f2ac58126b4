package repositories

import (
	"context"
	"fmt"

	"github.com/ch1nq/arcadio-go/pkg/log"
	"github.com/ch1nq/arcadio-go/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS matches (
	id TEXT PRIMARY KEY,
	host TEXT NOT NULL,
	strategy TEXT NOT NULL,
	player_id BIGINT NOT NULL,
	winner_id BIGINT,
	won BOOLEAN NOT NULL,
	timestep BIGINT NOT NULL,
	players BIGINT NOT NULL,
	started_at BIGINT NOT NULL,
	duration_ms BIGINT NOT NULL
);
`

type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository creates a new PostgresRepository.
// It panics if it is unable to connect to the database.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) Repository {
	return &PostgresRepository{
		conn: connectDb(ctx, connStr),
	}
}

func connectDb(ctx context.Context, connStr string) *pgx.Conn {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		panic(fmt.Sprintf("Unable to connect to database: %v", err))
	}

	var username string
	var database string
	err = conn.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		panic(fmt.Sprintf("Unable to query database: %v", err))
	}
	log.Info("Connected to database %s as %s", database, username)

	if _, err := conn.Exec(ctx, postgresSchema); err != nil {
		panic(fmt.Sprintf("Unable to create schema: %v", err))
	}

	return conn
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) SaveMatch(ctx context.Context, match *models.Match) error {
	q := `
	INSERT INTO matches (id, host, strategy, player_id, winner_id, won, timestep, players, started_at, duration_ms)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.conn.Exec(ctx, q, match.ID, match.Host, match.Strategy, match.PlayerID, match.WinnerID, match.Won, match.Timestep, match.Players, match.StartedAt, match.DurationMs)
	if err != nil {
		return fmt.Errorf("failed to insert match: %v", err)
	}
	return nil
}

func (r *PostgresRepository) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	q := `
	SELECT id, host, strategy, player_id, winner_id, won, timestep, players, started_at, duration_ms
	FROM matches WHERE id = $1;
	`
	match := &models.Match{}
	err := r.conn.QueryRow(ctx, q, id).Scan(&match.ID, &match.Host, &match.Strategy, &match.PlayerID, &match.WinnerID, &match.Won, &match.Timestep, &match.Players, &match.StartedAt, &match.DurationMs)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan match: %v", err)
	}
	return match, nil
}

func (r *PostgresRepository) ListMatches(ctx context.Context, limit int) ([]*models.Match, error) {
	q := `
	SELECT id, host, strategy, player_id, winner_id, won, timestep, players, started_at, duration_ms
	FROM matches ORDER BY started_at DESC LIMIT $1;
	`
	rows, err := r.conn.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %v", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match := &models.Match{}
		if err := rows.Scan(&match.ID, &match.Host, &match.Strategy, &match.PlayerID, &match.WinnerID, &match.Won, &match.Timestep, &match.Players, &match.StartedAt, &match.DurationMs); err != nil {
			return nil, fmt.Errorf("failed to scan match: %v", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %v", err)
	}
	return matches, nil
}

func (r *PostgresRepository) GetStrategyStats(ctx context.Context) ([]*models.StrategyStats, error) {
	q := `
	SELECT strategy, COUNT(*), COUNT(*) FILTER (WHERE won)
	FROM matches GROUP BY strategy ORDER BY strategy;
	`
	rows, err := r.conn.Query(ctx, q)
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
