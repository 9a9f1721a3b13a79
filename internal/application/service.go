// Package application ties the d2l scrapers, the caches and the override store together into
// the accessors the cli (or any other presentation layer) consumes.
package application

import (
	"context"
	"fmt"
	"slices"
	"time"

	"brightspace-helper/internal/cache"
	"brightspace-helper/internal/components/assert"
	"brightspace-helper/internal/components/chrono"
	"brightspace-helper/internal/components/telemetry"
	"brightspace-helper/internal/overrides"
	"brightspace-helper/internal/scrapers/d2l"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_service_grades_model = "service.grades-model"
	report_service_cache_write  = "service.cache-write"
	report_service_courses      = "service.courses"
)

var tracer = otel.Tracer("brightspace-helper/application")
var meter = otel.Meter("brightspace-helper/application")
var cacheLookups, _ = meter.Int64Counter(
	"cache_lookups",
	metric.WithDescription("cache lookups of the accessors, split by cache and hit"),
)

// Fetcher fetches and parses a page of the brightspace instance, *d2l.Client implements it.
//
// note: fault injection point
type Fetcher interface {
	FetchDocument(ctx context.Context, endpoint string) (*goquery.Selection, error)
}

type Options struct {
	GradeTTL    time.Duration
	UpcomingTTL time.Duration
	ModelTTL    time.Duration
	MaxUpcoming int
	// ResolveRetries and ResolveDelay control how long Courses waits for enrollment cards.
	ResolveRetries int
	ResolveDelay   time.Duration
}

// WithDefaults fills every zero field with its default: 30 minute grade cache, 10 minute
// upcoming and model caches, 12 course card retries 120ms apart.
func (o Options) WithDefaults() Options {
	if o.GradeTTL <= 0 {
		o.GradeTTL = 30 * time.Minute
	}
	if o.UpcomingTTL <= 0 {
		o.UpcomingTTL = 10 * time.Minute
	}
	if o.ModelTTL <= 0 {
		o.ModelTTL = 10 * time.Minute
	}
	if o.MaxUpcoming <= 0 {
		o.MaxUpcoming = d2l.DefaultMaxUpcoming
	}
	if o.ResolveRetries <= 0 {
		o.ResolveRetries = 12
	}
	if o.ResolveDelay <= 0 {
		o.ResolveDelay = 120 * time.Millisecond
	}
	return o
}

type Service struct {
	fetcher Fetcher
	store   overrides.Store
	time    chrono.TimeAPI
	tel     telemetry.API
	opts    Options

	grades   *cache.Cache[string]
	upcoming *cache.Cache[[]d2l.UpcomingItem]
	models   *cache.Cache[d2l.GradesModel]
}

func NewService(
	fetcher Fetcher,
	store overrides.Store,
	time chrono.TimeAPI,
	tel telemetry.API,
	opts Options,
) *Service {
	assert.NotNil(fetcher)
	assert.NotNil(store)
	assert.NotNil(time)
	assert.NotNil(tel)

	opts = opts.WithDefaults()
	return &Service{
		fetcher:  fetcher,
		store:    store,
		time:     time,
		tel:      telemetry.NewScopedAPI("application", tel),
		opts:     opts,
		grades:   cache.New[string](opts.GradeTTL, time),
		upcoming: cache.New[[]d2l.UpcomingItem](opts.UpcomingTTL, time),
		models:   cache.New[d2l.GradesModel](opts.ModelTTL, time),
	}
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// cached serves key out of c, building and storing the value on a miss. A build whose caller
// already gave up is returned but not stored, a newer call may be about to store its own.
func cached[V any](
	ctx context.Context,
	s *Service,
	name string,
	c *cache.Cache[V],
	key string,
	build func(ctx context.Context) (V, error),
) (V, error) {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attribute.String("course_id", key)))
	defer span.End()

	value, hit := c.Get(key)
	cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache", name),
		attribute.Bool("hit", hit),
	))
	span.SetAttributes(attribute.Bool("cache_hit", hit))
	if hit {
		return value, nil
	}

	value, err := build(ctx)
	if err != nil {
		failSpan(span, err)
		var zero V
		return zero, err
	}
	if ctx.Err() != nil {
		s.tel.ReportDebug(report_service_cache_write, "skipped, caller is gone", name, key)
		return value, nil
	}
	c.Set(key, value)
	return value, nil
}

func (s *Service) fetch(ctx context.Context, endpoint string) (*goquery.Selection, error) {
	doc, err := s.fetcher.FetchDocument(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	return doc, nil
}

// GetGrade returns the current grade of a course, ex. "87.5% (B+)", or d2l.NotPosted.
func (s *Service) GetGrade(ctx context.Context, courseId string) (string, error) {
	return cached(ctx, s, "GetGrade", s.grades, courseId, func(ctx context.Context) (string, error) {
		doc, err := s.fetch(ctx, d2l.GradesPath(courseId))
		if err != nil {
			return "", err
		}
		return d2l.ParseFinalGrade(doc), nil
	})
}

// GetUpcoming returns the next few calendar items of a course, possibly none. The slice is a
// copy, the cached one is never handed out.
func (s *Service) GetUpcoming(ctx context.Context, courseId string) ([]d2l.UpcomingItem, error) {
	items, err := cached(ctx, s, "GetUpcoming", s.upcoming, courseId, func(ctx context.Context) ([]d2l.UpcomingItem, error) {
		doc, err := s.fetch(ctx, d2l.CalendarPath(courseId))
		if err != nil {
			return nil, err
		}
		return d2l.ParseUpcoming(doc, s.time.Now(), s.opts.MaxUpcoming), nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

// GetGradesModel returns the grade items of a course, an empty model means nothing could be
// read off the page. Items is a copy of the cached model's.
func (s *Service) GetGradesModel(ctx context.Context, courseId string) (d2l.GradesModel, error) {
	model, err := cached(ctx, s, "GetGradesModel", s.models, courseId, func(ctx context.Context) (d2l.GradesModel, error) {
		doc, err := s.fetch(ctx, d2l.GradesPath(courseId))
		if err != nil {
			return d2l.GradesModel{}, err
		}
		model := d2l.BuildGradesModel(doc)
		if len(model.Items) == 0 {
			s.tel.ReportDebug(report_service_grades_model, "no grade items found", courseId)
		}
		return model, nil
	})
	if err != nil {
		return d2l.GradesModel{}, err
	}
	model.Items = slices.Clone(model.Items)
	return model, nil
}
