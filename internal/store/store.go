// Package store persists aggregation snapshots to Postgres so runs can
// be compared over time without replaying upstream history.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rift-insights/internal/analysis"
	"rift-insights/internal/logger"
)

type Store struct {
	pool *pgxpool.Pool
	log  *logger.Entry
}

// New creates a connection pool and verifies it with a ping.
func New(ctx context.Context, databaseURL string, log *logger.Entry) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// InitSchema creates the required tables if they don't exist.
func (s *Store) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id BIGSERIAL PRIMARY KEY,
			puuid TEXT NOT NULL,
			game_name TEXT NOT NULL,
			tag_line TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS snapshot_champions (
			snapshot_id BIGINT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			champion_id INTEGER NOT NULL,
			champion_name TEXT NOT NULL,
			games INTEGER NOT NULL,
			wins INTEGER NOT NULL,
			win_rate DOUBLE PRECISION NOT NULL,
			avg_kda DOUBLE PRECISION NOT NULL,
			avg_cs DOUBLE PRECISION NOT NULL,
			avg_vision DOUBLE PRECISION NOT NULL,
			grade TEXT NOT NULL,
			mastery_points INTEGER NOT NULL,
			PRIMARY KEY (snapshot_id, champion_id)
		)`,
		`CREATE TABLE IF NOT EXISTS snapshot_trends (
			snapshot_id BIGINT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			day DATE NOT NULL,
			games INTEGER NOT NULL,
			win_rate DOUBLE PRECISION NOT NULL,
			avg_kda DOUBLE PRECISION NOT NULL,
			performance DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (snapshot_id, day)
		)`,
		`CREATE TABLE IF NOT EXISTS tier_baselines (
			tier TEXT PRIMARY KEY,
			win_rate DOUBLE PRECISION NOT NULL,
			avg_kda DOUBLE PRECISION NOT NULL,
			avg_vision DOUBLE PRECISION NOT NULL,
			cs_per_minute DOUBLE PRECISION NOT NULL,
			kill_participation DOUBLE PRECISION NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_puuid ON snapshots(puuid, created_at DESC)`,
	}

	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	// Seed baselines from the compiled table; operator-tuned rows win.
	for _, tier := range analysis.TierNames() {
		b := analysis.TierBaseline(tier)
		_, err := s.pool.Exec(ctx, `
			INSERT INTO tier_baselines (tier, win_rate, avg_kda, avg_vision, cs_per_minute, kill_participation)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (tier) DO NOTHING
		`, tier, b.WinRate, b.AvgKDA, b.AvgVision, b.CSPerMinute, b.KillParticipation)
		if err != nil {
			return fmt.Errorf("failed to seed tier baselines: %w", err)
		}
	}
	return nil
}

// TierBaseline reads the benchmark for a tier, falling back to the
// compiled table when the row is missing.
func (s *Store) TierBaseline(ctx context.Context, tier string) (analysis.PlayerMetrics, error) {
	var m analysis.PlayerMetrics
	err := s.pool.QueryRow(ctx, `
		SELECT win_rate, avg_kda, avg_vision, cs_per_minute, kill_participation
		FROM tier_baselines WHERE tier = $1
	`, tier).Scan(&m.WinRate, &m.AvgKDA, &m.AvgVision, &m.CSPerMinute, &m.KillParticipation)
	if errors.Is(err, pgx.ErrNoRows) {
		return analysis.TierBaseline(tier), nil
	}
	if err != nil {
		return analysis.PlayerMetrics{}, err
	}
	return m, nil
}

// SaveSnapshot writes one run's derived output atomically and returns
// the snapshot id.
func (s *Store) SaveSnapshot(ctx context.Context, puuid, gameName, tagLine string, stats []analysis.ChampionStats, trends []analysis.TrendPoint) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var snapshotID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO snapshots (puuid, game_name, tag_line)
		VALUES ($1, $2, $3)
		RETURNING id
	`, puuid, gameName, tagLine).Scan(&snapshotID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	for _, c := range stats {
		_, err = tx.Exec(ctx, `
			INSERT INTO snapshot_champions (
				snapshot_id, champion_id, champion_name, games, wins,
				win_rate, avg_kda, avg_cs, avg_vision, grade, mastery_points
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, snapshotID, c.ChampionID, c.ChampionName, c.Games, c.Wins,
			c.WinRate, c.AvgKDA, c.AvgCS, c.AvgVision, c.Grade, c.MasteryPoints)
		if err != nil {
			return 0, fmt.Errorf("failed to insert champion row: %w", err)
		}
	}

	for _, p := range trends {
		_, err = tx.Exec(ctx, `
			INSERT INTO snapshot_trends (snapshot_id, day, games, win_rate, avg_kda, performance)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, snapshotID, p.Date, p.Games, p.WinRate, p.AvgKDA, p.Performance)
		if err != nil {
			return 0, fmt.Errorf("failed to insert trend row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	s.log.WithFields(logger.Fields{
		"snapshot":  snapshotID,
		"champions": len(stats),
		"trends":    len(trends),
	}).Info("snapshot saved")
	return snapshotID, nil
}

// SnapshotCount returns how many snapshots exist for a player.
func (s *Store) SnapshotCount(ctx context.Context, puuid string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM snapshots WHERE puuid = $1`, puuid).Scan(&count)
	return count, err
}

// RecentTrends returns trend points from the player's latest snapshot,
// oldest day first.
func (s *Store) RecentTrends(ctx context.Context, puuid string, limit int) ([]analysis.TrendPoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.day, t.games, t.win_rate, t.avg_kda, t.performance
		FROM snapshot_trends t
		JOIN snapshots sn ON sn.id = t.snapshot_id
		WHERE sn.puuid = $1
		  AND sn.id = (SELECT id FROM snapshots WHERE puuid = $1 ORDER BY created_at DESC LIMIT 1)
		ORDER BY t.day DESC
		LIMIT $2
	`, puuid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []analysis.TrendPoint
	for rows.Next() {
		var p analysis.TrendPoint
		var day time.Time
		if err := rows.Scan(&day, &p.Games, &p.WinRate, &p.AvgKDA, &p.Performance); err != nil {
			return nil, err
		}
		p.Date = day.UTC()
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to oldest-first for the trend consumers.
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}
