package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"brightspace-helper/internal/components/chrono"
	"brightspace-helper/internal/components/telemetry"
	"brightspace-helper/internal/overrides"
	"brightspace-helper/internal/scrapers/d2l"
	"brightspace-helper/internal/whatif"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	calls  map[string]int
	during func(endpoint string)
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: map[string]string{},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (f *fakeFetcher) set(endpoint, page string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[endpoint] = page
	delete(f.errs, endpoint)
}

func (f *fakeFetcher) fail(endpoint string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[endpoint] = err
}

func (f *fakeFetcher) count(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}

func (f *fakeFetcher) FetchDocument(ctx context.Context, endpoint string) (*goquery.Selection, error) {
	f.mu.Lock()
	f.calls[endpoint]++
	page, ok := f.pages[endpoint]
	err := f.errs[endpoint]
	during := f.during
	f.mu.Unlock()

	if during != nil {
		during(endpoint)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &d2l.HttpError{Status: 404, Url: endpoint}
	}
	return d2l.ParseDocument(page)
}

const course = "6606"

const gradesPage = `<html><body>
<h2>Final Calculated Grade</h2><div>85 % B</div>
<table>
	<thead><tr><th>Grade Item</th><th>Points</th></tr></thead>
	<tbody>
		<tr><td>Quiz 1</td><td>8 / 10</td></tr>
		<tr><td>Essay</td><td>- / 20</td></tr>
		<tr><td>Bonus Points</td><td>2 / 5</td></tr>
	</tbody>
</table>
</body></html>`

const calendarPage = `<html><body><ul class="d2l-datalist">
<li class="d2l-datalist-item"><a title="Quiz 2 - Due">Quiz 2 - Due</a><div>Oct 20, 2026 11:59 PM</div></li>
<li class="d2l-datalist-item"><a title="Lab - Available">Lab - Available</a><div>Oct 18, 2026 8:00 AM</div></li>
</ul></body></html>`

var start = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

type fixture struct {
	service *Service
	fetcher *fakeFetcher
	clock   *chrono.ManualTime
	store   *overrides.MemoryStore
	tel     *telemetry.Recorder
}

func setup(t testing.TB) fixture {
	fetcher := newFakeFetcher()
	fetcher.set(d2l.GradesPath(course), gradesPage)
	fetcher.set(d2l.CalendarPath(course), calendarPage)

	clock := chrono.NewManualTime(start)
	store := overrides.NewMemoryStore()
	tel := &telemetry.Recorder{}
	service := NewService(fetcher, store, clock, tel, Options{})

	return fixture{
		service: service,
		fetcher: fetcher,
		clock:   clock,
		store:   store,
		tel:     tel,
	}
}

func TestGetGradeCaching(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	grade, err := f.service.GetGrade(ctx, course)
	require.NoError(t, err)
	require.Equal(t, "85% (B)", grade)

	f.clock.Advance(29 * time.Minute)
	_, err = f.service.GetGrade(ctx, course)
	require.NoError(t, err)
	require.Equal(t, 1, f.fetcher.count(d2l.GradesPath(course)))

	f.clock.Advance(time.Minute)
	_, err = f.service.GetGrade(ctx, course)
	require.NoError(t, err)
	require.Equal(t, 2, f.fetcher.count(d2l.GradesPath(course)))
}

func TestGetUpcoming(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	items, err := f.service.GetUpcoming(ctx, course)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Lab", items[0].Title)
	require.Equal(t, d2l.STATUS_AVAILABLE, items[0].Status)
	require.Equal(t, "Quiz 2", items[1].Title)

	f.clock.Advance(10 * time.Minute)
	_, err = f.service.GetUpcoming(ctx, course)
	require.NoError(t, err)
	require.Equal(t, 2, f.fetcher.count(d2l.CalendarPath(course)))
}

func TestGetGradesModel(t *testing.T) {
	f := setup(t)

	model, err := f.service.GetGradesModel(context.Background(), course)
	require.NoError(t, err)
	require.Equal(t, d2l.SchemePoints, model.Scheme)
	require.Len(t, model.Items, 3)
	require.True(t, model.Items[2].IsBonus)
}

func TestEmptyGradesModel(t *testing.T) {
	f := setup(t)
	f.fetcher.set(d2l.GradesPath(course), `<html><body><p>Grades are hidden</p></body></html>`)

	model, err := f.service.GetGradesModel(context.Background(), course)
	require.NoError(t, err)
	require.Empty(t, model.Items)
	require.Len(t, f.tel.Reports("debug"), 1)

	grade, err := f.service.GetGrade(context.Background(), course)
	require.NoError(t, err)
	require.Equal(t, d2l.NotPosted, grade)
}

func TestTransportErrorIsNotCached(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.fetcher.fail(d2l.GradesPath(course), &d2l.HttpError{Status: 503, Url: d2l.GradesPath(course)})

	_, err := f.service.GetGrade(ctx, course)
	var httpErr *d2l.HttpError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, 503, httpErr.Status)

	f.fetcher.set(d2l.GradesPath(course), gradesPage)
	grade, err := f.service.GetGrade(ctx, course)
	require.NoError(t, err)
	require.Equal(t, "85% (B)", grade)
	require.Equal(t, 2, f.fetcher.count(d2l.GradesPath(course)))
}

func TestOverviewIsolatesFailures(t *testing.T) {
	f := setup(t)
	f.fetcher.fail(d2l.CalendarPath(course), &d2l.HttpError{Status: 404, Url: d2l.CalendarPath(course)})

	overview := f.service.Overview(context.Background(), course)
	require.NoError(t, overview.GradeErr)
	require.Equal(t, "85% (B)", overview.Grade)

	var httpErr *d2l.HttpError
	require.True(t, errors.As(overview.UpcomingErr, &httpErr))
	require.Equal(t, 404, httpErr.Status)
	require.Nil(t, overview.Upcoming)

	f.fetcher.set(d2l.CalendarPath(course), calendarPage)
	f.fetcher.fail(d2l.GradesPath(course), fmt.Errorf("connection reset"))
	f.clock.Advance(time.Hour)

	overview = f.service.Overview(context.Background(), course)
	require.Error(t, overview.GradeErr)
	require.NoError(t, overview.UpcomingErr)
	require.Len(t, overview.Upcoming, 2)
}

func TestCanceledCallerDoesNotWriteCache(t *testing.T) {
	f := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.fetcher.during = func(string) { cancel() }

	grade, err := f.service.GetGrade(ctx, course)
	require.NoError(t, err)
	require.Equal(t, "85% (B)", grade)

	f.fetcher.during = nil
	_, err = f.service.GetGrade(context.Background(), course)
	require.NoError(t, err)
	require.Equal(t, 2, f.fetcher.count(d2l.GradesPath(course)))
}

func ptr(v float64) *float64 {
	return &v
}

func TestWhatIf(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	session, err := f.service.WhatIf(ctx, course)
	require.NoError(t, err)
	require.InDelta(t, 100*8.0/30, session.Result.Percent, 1e-9)
	require.True(t, session.Overrides.IsEmpty())

	err = f.service.SaveOverrides(ctx, course, whatif.Overrides{
		Items:       map[string]whatif.ItemOverride{"essay": {Earned: ptr(17)}},
		BonusPoints: 3,
	})
	require.NoError(t, err)

	session, err = f.service.WhatIf(ctx, course)
	require.NoError(t, err)
	require.InDelta(t, 28.0, session.Result.Numerator, 1e-9)
	require.InDelta(t, 30.0, session.Result.Denominator, 1e-9)
	require.Equal(t, session.Result, f.service.ComputeWhatIf(session.Model, session.Overrides))

	// the model came from the cache the second time
	require.Equal(t, 1, f.fetcher.count(d2l.GradesPath(course)))
}

func TestWhatIfModelError(t *testing.T) {
	f := setup(t)
	f.fetcher.fail(d2l.GradesPath(course), fmt.Errorf("offline"))

	_, err := f.service.WhatIf(context.Background(), course)
	require.Error(t, err)
}

const homePage = `<html><body>
<d2l-my-courses>
	<template shadowrootmode="open">
		<d2l-enrollment-card name="Biology">
			<template shadowrootmode="open"><a href="/d2l/home/6606">Biology</a></template>
		</d2l-enrollment-card>
	</template>
</d2l-my-courses>
</body></html>`

func TestCoursesPolling(t *testing.T) {
	f := setup(t)
	f.fetcher.set(d2l.HomePath, `<html><body><d2l-my-courses></d2l-my-courses></body></html>`)
	f.fetcher.during = func(endpoint string) {
		if endpoint == d2l.HomePath && f.fetcher.count(d2l.HomePath) == 2 {
			f.fetcher.set(d2l.HomePath, homePage)
		}
	}

	courses, err := f.service.Courses(context.Background())
	require.NoError(t, err)
	require.Equal(t, []d2l.Course{{Id: "6606", Name: "Biology"}}, courses)
	require.Equal(t, 3, f.fetcher.count(d2l.HomePath))
	require.Equal(t, start.Add(2*120*time.Millisecond), f.clock.Now())
}

func TestCoursesNeverResolve(t *testing.T) {
	f := setup(t)
	f.fetcher.set(d2l.HomePath, `<html><body></body></html>`)

	courses, err := f.service.Courses(context.Background())
	require.NoError(t, err)
	require.Empty(t, courses)
	require.Equal(t, 13, f.fetcher.count(d2l.HomePath))
	require.Len(t, f.tel.Reports("warning"), 1)
}

func TestCoursesFetchError(t *testing.T) {
	f := setup(t)
	f.fetcher.fail(d2l.HomePath, &d2l.HttpError{Status: 401, Url: d2l.HomePath})

	_, err := f.service.Courses(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, f.fetcher.count(d2l.HomePath))
}

func TestAccessorsReturnCopies(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	items, err := f.service.GetUpcoming(ctx, course)
	require.NoError(t, err)
	items[0].Title = "changed"
	items = items[:1]
	require.Len(t, items, 1)

	again, err := f.service.GetUpcoming(ctx, course)
	require.NoError(t, err)
	require.Len(t, again, 2)
	require.Equal(t, "Lab", again[0].Title)

	model, err := f.service.GetGradesModel(ctx, course)
	require.NoError(t, err)
	model.Items[0].Earned = 0
	model.Items = model.Items[:0]

	model, err = f.service.GetGradesModel(ctx, course)
	require.NoError(t, err)
	require.Len(t, model.Items, 3)
	require.Equal(t, 8.0, model.Items[0].Earned)

	require.Equal(t, 1, f.fetcher.count(d2l.CalendarPath(course)))
	require.Equal(t, 1, f.fetcher.count(d2l.GradesPath(course)))
}
