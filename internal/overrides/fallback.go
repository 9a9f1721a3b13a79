package overrides

import (
	"context"

	"brightspace-helper/internal/components/assert"
	"brightspace-helper/internal/components/telemetry"
	"brightspace-helper/internal/whatif"
)

const (
	report_fallback_load = "fallback.load"
	report_fallback_save = "fallback.save"
)

// FallbackStore degrades to a secondary store when the primary one fails. Saves go to both
// so that the fallback always has the latest overrides of this process.
type FallbackStore struct {
	primary  Store
	fallback Store
	tel      telemetry.API
}

func NewFallbackStore(primary, fallback Store, tel telemetry.API) FallbackStore {
	assert.NotNil(primary)
	assert.NotNil(fallback)
	assert.NotNil(tel)

	return FallbackStore{
		primary:  primary,
		fallback: fallback,
		tel:      telemetry.NewScopedAPI("overrides", tel),
	}
}

func (s FallbackStore) Load(ctx context.Context, courseId string) (whatif.Overrides, error) {
	out, err := s.primary.Load(ctx, courseId)
	if err == nil {
		return out, nil
	}
	s.tel.ReportWarning(report_fallback_load, err, courseId)
	return s.fallback.Load(ctx, courseId)
}

func (s FallbackStore) Save(ctx context.Context, courseId string, overrides whatif.Overrides) error {
	fallbackErr := s.fallback.Save(ctx, courseId, overrides)
	err := s.primary.Save(ctx, courseId, overrides)
	if err == nil {
		return nil
	}
	s.tel.ReportWarning(report_fallback_save, err, courseId)
	return fallbackErr
}
