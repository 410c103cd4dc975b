// Package repositories contains the PostgreSQL persistence implementations.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cosmichub/synastry/internal/infrastructure/monitoring/logging"
	apperrors "github.com/cosmichub/synastry/pkg/errors"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// ChartRecord is the persisted form of a natal chart.  Planets and cusps are
// stored as JSONB so the schema does not hard-code the body set.
type ChartRecord struct {
	ID        uuid.UUID
	Name      string
	Planets   map[string]float64
	Cusps     []float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChartRepository is the PostgreSQL implementation of chart persistence.
type ChartRepository struct {
	db     *sql.DB
	logger logging.Logger
}

// NewChartRepository constructs a ready-to-use ChartRepository.
func NewChartRepository(db *sql.DB, logger logging.Logger) *ChartRepository {
	return &ChartRepository{db: db, logger: logger}
}

// Insert persists a new chart.  A duplicate ID maps to the chart-exists
// error.
func (r *ChartRepository) Insert(ctx context.Context, rec *ChartRecord) error {
	planetsJSON, err := json.Marshal(rec.Planets)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to marshal planets")
	}
	cuspsJSON, err := json.Marshal(rec.Cusps)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to marshal cusps")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO charts (id, name, planets, cusps, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.Name, planetsJSON, cuspsJSON, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.New(apperrors.ErrCodeChartExists, "chart already exists").
				WithDetail(rec.ID.String())
		}
		r.logger.Error("ChartRepository.Insert failed", logging.String("id", rec.ID.String()), logging.Err(err))
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to insert chart")
	}
	return nil
}

// GetByID fetches one chart by ID.
func (r *ChartRepository) GetByID(ctx context.Context, id uuid.UUID) (*ChartRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, planets, cusps, created_at, updated_at
		FROM charts WHERE id = $1`, id)

	rec, err := scanChart(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.New(apperrors.ErrCodeChartNotFound, "chart not found").
				WithDetail(id.String())
		}
		r.logger.Error("ChartRepository.GetByID failed", logging.String("id", id.String()), logging.Err(err))
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to query chart")
	}
	return rec, nil
}

// List returns charts ordered by creation time, newest first.
func (r *ChartRepository) List(ctx context.Context, limit, offset int) ([]*ChartRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, planets, cusps, created_at, updated_at
		FROM charts ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to list charts")
	}
	defer rows.Close()

	out := []*ChartRecord{}
	for rows.Next() {
		rec, err := scanChart(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to scan chart row")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to iterate chart rows")
	}
	return out, nil
}

// Update replaces the name, planets, and cusps of an existing chart.
func (r *ChartRepository) Update(ctx context.Context, rec *ChartRecord) error {
	planetsJSON, err := json.Marshal(rec.Planets)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to marshal planets")
	}
	cuspsJSON, err := json.Marshal(rec.Cusps)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to marshal cusps")
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE charts SET name = $2, planets = $3, cusps = $4, updated_at = $5
		WHERE id = $1`,
		rec.ID, rec.Name, planetsJSON, cuspsJSON, rec.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("ChartRepository.Update failed", logging.String("id", rec.ID.String()), logging.Err(err))
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to update chart")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.New(apperrors.ErrCodeChartNotFound, "chart not found").
			WithDetail(rec.ID.String())
	}
	return nil
}

// Delete removes a chart by ID.
func (r *ChartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM charts WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("ChartRepository.Delete failed", logging.String("id", id.String()), logging.Err(err))
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to delete chart")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.New(apperrors.ErrCodeChartNotFound, "chart not found").
			WithDetail(id.String())
	}
	return nil
}

// Count returns the total number of stored charts.
func (r *ChartRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM charts`).Scan(&n); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to count charts")
	}
	return n, nil
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanChart(s scanner) (*ChartRecord, error) {
	var (
		rec         ChartRecord
		planetsJSON []byte
		cuspsJSON   []byte
	)
	if err := s.Scan(&rec.ID, &rec.Name, &planetsJSON, &cuspsJSON, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(planetsJSON, &rec.Planets); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cuspsJSON, &rec.Cusps); err != nil {
		return nil, err
	}
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
