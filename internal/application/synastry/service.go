// Package synastry provides the application-level service for synastry
// readings.  It sits between the HTTP handlers and the domain engine:
// request DTOs in, fully-derived reading DTOs out.
package synastry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"github.com/cosmichub/synastry/internal/domain/aspect"
	"github.com/cosmichub/synastry/internal/domain/chart"
	"github.com/cosmichub/synastry/internal/domain/overlay"
	domainsyn "github.com/cosmichub/synastry/internal/domain/synastry"
	"github.com/cosmichub/synastry/internal/infrastructure/database/redis"
	"github.com/cosmichub/synastry/internal/infrastructure/monitoring/logging"
	"github.com/cosmichub/synastry/internal/infrastructure/monitoring/metrics"
	"github.com/cosmichub/synastry/pkg/errors"
)

// cacheKeyPrefix namespaces synastry reading keys in the shared cache.
const cacheKeyPrefix = "syn:"

// Service defines the synastry application operations.
type Service interface {
	Compute(ctx context.Context, input *ComputeInput) (*Reading, error)
	Aspects(ctx context.Context, input *ComputeInput) (*MatrixResult, error)
}

// ChartInput is the wire form of a natal chart.
type ChartInput struct {
	Name    string             `json:"name,omitempty"`
	Planets map[string]float64 `json:"planets"`
	Cusps   []float64          `json:"cusps"`
}

// ComputeInput carries the two charts and the builder selection.
type ComputeInput struct {
	ChartA  ChartInput `json:"chart_a"`
	ChartB  ChartInput `json:"chart_b"`
	Builder string     `json:"builder,omitempty"` // "scalar" | "vectorized" | ""
}

// Cell is one serialized matrix cell.
type Cell struct {
	Aspect string  `json:"aspect"`
	Orb    float64 `json:"orb"`
	Type   string  `json:"type"`
}

// MatrixResult is the aspects-only response: a full 10x10 nested map with
// null entries where no aspect forms.
type MatrixResult struct {
	Matrix      map[string]map[string]*Cell `json:"matrix"`
	AspectCount int                         `json:"aspect_count"`
	Builder     string                      `json:"builder"`
}

// Reading is the full synastry response.
type Reading struct {
	Matrix      map[string]map[string]*Cell `json:"matrix"`
	AspectCount int                         `json:"aspect_count"`
	Overlays    domainsyn.Overlays          `json:"overlays"`
	Score       domainsyn.Score             `json:"score"`
	KeyAspects  []domainsyn.KeyAspect       `json:"key_aspects"`
	Summary     domainsyn.Summary           `json:"summary"`
	Builder     string                      `json:"builder"`
	ComputedAt  time.Time                   `json:"computed_at"`
}

type service struct {
	rules    aspect.RuleSet
	scorer   *domainsyn.Scorer
	cache    redis.Cache
	cacheTTL time.Duration
	metrics  *metrics.AppMetrics
	logger   logging.Logger
	defBuild aspect.BuilderKind
}

// Option configures the service.
type Option func(*service)

// WithCache enables result caching with the given TTL.
func WithCache(c redis.Cache, ttl time.Duration) Option {
	return func(s *service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithMetrics enables engine metrics.
func WithMetrics(m *metrics.AppMetrics) Option {
	return func(s *service) { s.metrics = m }
}

// WithDefaultBuilder sets the builder used when a request does not select
// one.
func WithDefaultBuilder(kind aspect.BuilderKind) Option {
	return func(s *service) { s.defBuild = kind }
}

// NewService constructs the synastry service.  Cache and metrics are
// optional; the service works identically without them.
func NewService(rules aspect.RuleSet, log logging.Logger, opts ...Option) Service {
	s := &service{
		rules:    rules,
		scorer:   domainsyn.NewScorer(rules),
		cacheTTL: 15 * time.Minute,
		logger:   log,
		defBuild: aspect.BuilderVectorized,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compute derives a full reading for the two charts.  Results are cached
// under an order-independent pair key, so swapping chart A and B hits the
// same entry.
func (s *service) Compute(ctx context.Context, input *ComputeInput) (*Reading, error) {
	a, b, kind, err := s.resolve(input)
	if err != nil {
		return nil, err
	}

	if s.cache == nil {
		return s.compute(a, b, kind)
	}

	key := pairKey(a, b)
	var reading Reading
	loaded := false
	err = s.cache.GetOrSet(ctx, key, &reading, s.cacheTTL, func(context.Context) (interface{}, error) {
		loaded = true
		r, err := s.compute(a, b, kind)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			// Null-marker hit; recompute directly.
			return s.compute(a, b, kind)
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordCacheAccess("synastry", !loaded)
	}
	return &reading, nil
}

// Aspects builds the matrix-only response.  Not cached: matrix construction
// is microseconds and the full-reading cache already covers the hot path.
func (s *service) Aspects(ctx context.Context, input *ComputeInput) (*MatrixResult, error) {
	a, b, kind, err := s.resolve(input)
	if err != nil {
		return nil, err
	}

	m, err := s.build(a, b, kind)
	if err != nil {
		return nil, err
	}
	return &MatrixResult{
		Matrix:      serializeMatrix(m),
		AspectCount: m.Count(),
		Builder:     string(kind),
	}, nil
}

// resolve validates the input charts and the builder selection.
func (s *service) resolve(input *ComputeInput) (a, b *chart.Chart, kind aspect.BuilderKind, err error) {
	if input == nil {
		return nil, nil, "", errors.InvalidParam("request body is required")
	}
	a, err = toDomainChart(input.ChartA)
	if err != nil {
		return nil, nil, "", err
	}
	b, err = toDomainChart(input.ChartB)
	if err != nil {
		return nil, nil, "", err
	}
	if input.Builder == "" {
		return a, b, s.defBuild, nil
	}
	kind, err = aspect.ParseBuilderKind(input.Builder)
	if err != nil {
		return nil, nil, "", err
	}
	return a, b, kind, nil
}

func (s *service) build(a, b *chart.Chart, kind aspect.BuilderKind) (*aspect.Matrix, error) {
	builder, err := aspect.NewBuilder(kind, s.rules)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	m, err := builder.Build(a, b)
	if s.metrics != nil {
		aspects := 0
		if m != nil {
			aspects = m.Count()
		}
		s.metrics.RecordMatrixBuild(string(kind), aspects, time.Since(start), err)
	}
	if err != nil {
		s.logger.Error("matrix build failed", logging.String("builder", string(kind)), logging.Err(err))
		return nil, err
	}
	return m, nil
}

func (s *service) compute(a, b *chart.Chart, kind aspect.BuilderKind) (*Reading, error) {
	m, err := s.build(a, b, kind)
	if err != nil {
		return nil, err
	}

	aInB, err := overlay.Analyze(a, b)
	if err != nil {
		return nil, err
	}
	bInA, err := overlay.Analyze(b, a)
	if err != nil {
		return nil, err
	}
	overlays := domainsyn.Overlays{AInB: aInB, BInA: bInA}

	score := s.scorer.Compute(m, &overlays)
	if s.metrics != nil {
		s.metrics.RecordScore(score.Overall)
	}

	return &Reading{
		Matrix:      serializeMatrix(m),
		AspectCount: m.Count(),
		Overlays:    overlays,
		Score:       score,
		KeyAspects:  domainsyn.KeyAspects(m),
		Summary:     domainsyn.Summarize(m, &overlays),
		Builder:     string(kind),
		ComputedAt:  time.Now().UTC(),
	}, nil
}

// toDomainChart validates and converts a wire chart.
func toDomainChart(in ChartInput) (*chart.Chart, error) {
	planets := make(map[chart.Body]float64, len(in.Planets))
	for name, lon := range in.Planets {
		planets[chart.Body(name)] = lon
	}
	return chart.New(planets, in.Cusps)
}

// pairKey builds the order-independent cache key for a chart pair: the
// sha256 of the two chart digests in sorted order.  Builder kind is
// deliberately excluded, both builders are contractually identical.
func pairKey(a, b *chart.Chart) string {
	da, db := a.Digest(), b.Digest()
	if da > db {
		da, db = db, da
	}
	sum := sha256.Sum256([]byte(da + ":" + db))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// serializeMatrix renders the matrix as a nested body-name map with explicit
// nulls for empty cells, so clients always see the full 10x10 grid.
func serializeMatrix(m *aspect.Matrix) map[string]map[string]*Cell {
	out := make(map[string]map[string]*Cell, chart.NumBodies)
	for _, ba := range chart.Bodies {
		row := make(map[string]*Cell, chart.NumBodies)
		for _, bb := range chart.Bodies {
			if cell := m.AtBodies(ba, bb); cell != nil {
				row[string(bb)] = &Cell{
					Aspect: string(cell.Aspect),
					Orb:    cell.Orb,
					Type:   string(cell.Kind),
				}
			} else {
				row[string(bb)] = nil
			}
		}
		out[string(ba)] = row
	}
	return out
}

// sortedBodyNames is used by tests to iterate the serialized matrix
// deterministically.
func sortedBodyNames(m map[string]map[string]*Cell) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
