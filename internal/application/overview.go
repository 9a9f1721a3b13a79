package application

import (
	"context"
	"sync"

	"brightspace-helper/internal/components/poll"
	"brightspace-helper/internal/scrapers/d2l"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Overview is the grade and upcoming items of a course, each with its own error: one failing
// does not keep the other from being shown.
type Overview struct {
	Grade       string
	GradeErr    error
	Upcoming    []d2l.UpcomingItem
	UpcomingErr error
}

func (s *Service) Overview(ctx context.Context, courseId string) Overview {
	ctx, span := tracer.Start(ctx, "Overview", trace.WithAttributes(attribute.String("course_id", courseId)))
	defer span.End()

	var out Overview
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		out.Grade, out.GradeErr = s.GetGrade(ctx, courseId)
	}()
	go func() {
		defer wg.Done()
		out.Upcoming, out.UpcomingErr = s.GetUpcoming(ctx, courseId)
	}()
	wg.Wait()
	return out
}

// Courses lists the enrollment cards of the home page. Cards render late, so the page is
// fetched again a few times until one resolves. A page that never shows any gives an empty
// list, a failed fetch is returned as is.
func (s *Service) Courses(ctx context.Context) ([]d2l.Course, error) {
	ctx, span := tracer.Start(ctx, "Courses")
	defer span.End()

	attempts := 0
	courses, ok, err := poll.Poll(ctx, poll.Options{
		Retries: s.opts.ResolveRetries,
		Delay:   s.opts.ResolveDelay,
		Time:    s.time,
	}, func(ctx context.Context) ([]d2l.Course, bool, error) {
		attempts++
		doc, err := s.fetch(ctx, d2l.HomePath)
		if err != nil {
			return nil, false, err
		}
		courses := d2l.ResolveCourses(doc)
		return courses, len(courses) > 0, nil
	})
	span.SetAttributes(attribute.Int("attempts", attempts))
	if err != nil {
		failSpan(span, err)
		return nil, err
	}
	if !ok {
		s.tel.ReportWarning(report_service_courses, "no enrollment cards resolved", attempts)
		return []d2l.Course{}, nil
	}
	return courses, nil
}
