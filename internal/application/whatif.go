package application

import (
	"context"
	"sync"

	"brightspace-helper/internal/scrapers/d2l"
	"brightspace-helper/internal/whatif"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func (s *Service) ComputeWhatIf(model d2l.GradesModel, overrides whatif.Overrides) whatif.Result {
	return whatif.Compute(model, overrides)
}

func (s *Service) LoadOverrides(ctx context.Context, courseId string) (whatif.Overrides, error) {
	return s.store.Load(ctx, courseId)
}

func (s *Service) SaveOverrides(ctx context.Context, courseId string, overrides whatif.Overrides) error {
	ctx, span := tracer.Start(ctx, "SaveOverrides", trace.WithAttributes(attribute.String("course_id", courseId)))
	defer span.End()

	err := s.store.Save(ctx, courseId, overrides)
	if err != nil {
		failSpan(span, err)
	}
	return err
}

// Session is everything a what-if calculator shows for one course.
type Session struct {
	Model     d2l.GradesModel
	Overrides whatif.Overrides
	Result    whatif.Result
}

// WhatIf loads the grades model and the stored overrides of a course at the same time and
// computes the projection once both are in.
func (s *Service) WhatIf(ctx context.Context, courseId string) (Session, error) {
	ctx, span := tracer.Start(ctx, "WhatIf", trace.WithAttributes(attribute.String("course_id", courseId)))
	defer span.End()

	var (
		wg        sync.WaitGroup
		model     d2l.GradesModel
		modelErr  error
		overrides whatif.Overrides
		loadErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		model, modelErr = s.GetGradesModel(ctx, courseId)
	}()
	go func() {
		defer wg.Done()
		overrides, loadErr = s.LoadOverrides(ctx, courseId)
	}()
	wg.Wait()

	if modelErr != nil {
		failSpan(span, modelErr)
		return Session{}, modelErr
	}
	if loadErr != nil {
		failSpan(span, loadErr)
		return Session{}, loadErr
	}

	return Session{
		Model:     model,
		Overrides: overrides,
		Result:    whatif.Compute(model, overrides),
	}, nil
}
