// Package chart provides the application-level service for stored natal
// charts: validation, persistence, and conversion between wire DTOs and
// domain charts.
package chart

import (
	"context"
	"time"

	"github.com/google/uuid"

	domainchart "github.com/cosmichub/synastry/internal/domain/chart"
	"github.com/cosmichub/synastry/internal/infrastructure/database/postgres/repositories"
	"github.com/cosmichub/synastry/internal/infrastructure/monitoring/logging"
	"github.com/cosmichub/synastry/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Repository is the persistence contract the service depends on.  The
// PostgreSQL implementation lives in infrastructure/database/postgres.
type Repository interface {
	Insert(ctx context.Context, rec *repositories.ChartRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*repositories.ChartRecord, error)
	List(ctx context.Context, limit, offset int) ([]*repositories.ChartRecord, error)
	Update(ctx context.Context, rec *repositories.ChartRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// Service defines the stored-chart operations.
type Service interface {
	Create(ctx context.Context, input *CreateInput) (*Chart, error)
	Get(ctx context.Context, id uuid.UUID) (*Chart, error)
	List(ctx context.Context, input *ListInput) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, input *UpdateInput) (*Chart, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// DomainChart loads a stored chart as a validated domain chart, for
	// synastry over stored IDs.
	DomainChart(ctx context.Context, id uuid.UUID) (*domainchart.Chart, error)
}

// CreateInput carries a new chart.
type CreateInput struct {
	Name    string             `json:"name"`
	Planets map[string]float64 `json:"planets"`
	Cusps   []float64          `json:"cusps"`
}

// UpdateInput carries a full replacement for an existing chart.
type UpdateInput struct {
	Name    string             `json:"name"`
	Planets map[string]float64 `json:"planets"`
	Cusps   []float64          `json:"cusps"`
}

// ListInput carries pagination.
type ListInput struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Chart is the wire form of a stored chart.
type Chart struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Planets   map[string]float64 `json:"planets"`
	Cusps     []float64          `json:"cusps"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// ListResult is one page of charts plus the total count.
type ListResult struct {
	Charts   []*Chart `json:"charts"`
	Total    int64    `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}

type service struct {
	repo   Repository
	logger logging.Logger
	now    func() time.Time
}

// NewService constructs the chart service.
func NewService(repo Repository, log logging.Logger) Service {
	return &service{repo: repo, logger: log, now: func() time.Time { return time.Now().UTC() }}
}

// Create validates the chart through the domain constructor before
// persisting, so the store never holds a chart the engine would reject.
func (s *service) Create(ctx context.Context, input *CreateInput) (*Chart, error) {
	if input == nil {
		return nil, errors.InvalidParam("request body is required")
	}
	if input.Name == "" {
		return nil, errors.InvalidParam("chart name is required")
	}
	if err := validatePayload(input.Planets, input.Cusps); err != nil {
		return nil, err
	}

	now := s.now()
	rec := &repositories.ChartRecord{
		ID:        uuid.New(),
		Name:      input.Name,
		Planets:   input.Planets,
		Cusps:     input.Cusps,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info("chart created",
		logging.String("id", rec.ID.String()),
		logging.String("name", rec.Name))
	return toDTO(rec), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Chart, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(rec), nil
}

func (s *service) List(ctx context.Context, input *ListInput) (*ListResult, error) {
	page, size := 1, defaultPageSize
	if input != nil {
		if input.Page > 0 {
			page = input.Page
		}
		if input.PageSize > 0 {
			size = input.PageSize
		}
		if size > maxPageSize {
			size = maxPageSize
		}
	}

	recs, err := s.repo.List(ctx, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	charts := make([]*Chart, 0, len(recs))
	for _, rec := range recs {
		charts = append(charts, toDTO(rec))
	}
	return &ListResult{Charts: charts, Total: total, Page: page, PageSize: size}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input *UpdateInput) (*Chart, error) {
	if input == nil {
		return nil, errors.InvalidParam("request body is required")
	}
	if input.Name == "" {
		return nil, errors.InvalidParam("chart name is required")
	}
	if err := validatePayload(input.Planets, input.Cusps); err != nil {
		return nil, err
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Name = input.Name
	rec.Planets = input.Planets
	rec.Cusps = input.Cusps
	rec.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return toDTO(rec), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("chart deleted", logging.String("id", id.String()))
	return nil
}

func (s *service) DomainChart(ctx context.Context, id uuid.UUID) (*domainchart.Chart, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDomain(rec.Planets, rec.Cusps)
}

// validatePayload runs the domain validation without keeping the result.
func validatePayload(planets map[string]float64, cusps []float64) error {
	_, err := toDomain(planets, cusps)
	return err
}

func toDomain(planets map[string]float64, cusps []float64) (*domainchart.Chart, error) {
	bodies := make(map[domainchart.Body]float64, len(planets))
	for name, lon := range planets {
		bodies[domainchart.Body(name)] = lon
	}
	return domainchart.New(bodies, cusps)
}

func toDTO(rec *repositories.ChartRecord) *Chart {
	return &Chart{
		ID:        rec.ID,
		Name:      rec.Name,
		Planets:   rec.Planets,
		Cusps:     rec.Cusps,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
