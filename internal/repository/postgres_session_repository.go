package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/smartride/ecodrive-service/internal/database"
	"github.com/smartride/ecodrive-service/internal/ecoscore"
	"github.com/smartride/ecodrive-service/internal/models"
)

// PostgresSessionRepository implements SessionRepository using PostgreSQL
type PostgresSessionRepository struct {
	db *database.DB
}

// NewPostgresSessionRepository creates a new PostgreSQL session repository
func NewPostgresSessionRepository(db *database.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

// Insert persists one finalized driving session
func (r *PostgresSessionRepository) Insert(ctx context.Context, session *models.DrivingSession) error {
	query := `
		INSERT INTO driving_sessions (
			id, session_date, start_time, end_time, duration_minutes,
			max_speed_kmh, avg_speed_kmh, aggressive_count, normal_count, eco_score
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.Date, session.StartTime, session.EndTime, session.DurationMinutes,
		session.MaxSpeedKmh, session.AvgSpeedKmh, session.AggressiveCount, session.NormalCount,
		session.EcoScore,
	)
	if err != nil {
		return fmt.Errorf("failed to insert driving session: %w", err)
	}

	return nil
}

// ListAll retrieves all driving sessions, newest first
func (r *PostgresSessionRepository) ListAll(ctx context.Context) ([]*models.DrivingSession, error) {
	query := `
		SELECT id, session_date, start_time, end_time, duration_minutes,
			max_speed_kmh, avg_speed_kmh, aggressive_count, normal_count, eco_score
		FROM driving_sessions
		ORDER BY start_time DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query driving sessions: %w", err)
	}
	defer rows.Close()

	return r.scanSessionRows(rows)
}

// MostRecent retrieves the most recent driving session
func (r *PostgresSessionRepository) MostRecent(ctx context.Context) (*models.DrivingSession, error) {
	query := `
		SELECT id, session_date, start_time, end_time, duration_minutes,
			max_speed_kmh, avg_speed_kmh, aggressive_count, normal_count, eco_score
		FROM driving_sessions
		ORDER BY start_time DESC
		LIMIT 1
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query most recent driving session: %w", err)
	}
	defer rows.Close()

	sessions, err := r.scanSessionRows(rows)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return sessions[0], nil
}

// ClearAll deletes all stored driving sessions
func (r *PostgresSessionRepository) ClearAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM driving_sessions`); err != nil {
		return fmt.Errorf("failed to clear driving sessions: %w", err)
	}
	return nil
}

// scanSessionRows scans database rows into DrivingSession structs. Legacy
// rows stored without an eco score are backfilled on read using the
// simplified calculator; the computed value is never written back.
func (r *PostgresSessionRepository) scanSessionRows(rows *sql.Rows) ([]*models.DrivingSession, error) {
	var results []*models.DrivingSession

	for rows.Next() {
		session := &models.DrivingSession{}
		var ecoScore sql.NullInt64

		err := rows.Scan(
			&session.ID, &session.Date, &session.StartTime, &session.EndTime,
			&session.DurationMinutes, &session.MaxSpeedKmh, &session.AvgSpeedKmh,
			&session.AggressiveCount, &session.NormalCount, &ecoScore,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan driving session row: %w", err)
		}

		if ecoScore.Valid {
			session.EcoScore = int(ecoScore.Int64)
		} else {
			session.EcoScore = ecoscore.ComputeSimplified(session.AggressiveCount, session.TotalPredictions())
		}

		results = append(results, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating driving session rows: %w", err)
	}

	return results, nil
}
