// Package poll retries a resolver on a fixed delay, for pages that render their content late.
package poll

import (
	"context"
	"time"

	"brightspace-helper/internal/components/chrono"
)

type Options struct {
	// Retries is the number of extra attempts after the first one.
	Retries int
	Delay   time.Duration
	Time    chrono.TimeAPI
}

// Resolver returns ok = false when the value is not ready yet, a non-nil error aborts polling.
type Resolver[T any] func(ctx context.Context) (value T, ok bool, err error)

// Poll calls resolve once, then up to opts.Retries more times waiting opts.Delay in between,
// returning the first value that resolved. ok is false when every attempt came back empty.
func Poll[T any](ctx context.Context, opts Options, resolve Resolver[T]) (value T, ok bool, err error) {
	clock := opts.Time
	if clock == nil {
		clock = chrono.NewStandardTime(nil)
	}

	value, ok, err = resolve(ctx)
	for i := 0; !ok && err == nil && i < opts.Retries; i++ {
		err = clock.Sleep(ctx, opts.Delay)
		if err != nil {
			break
		}
		value, ok, err = resolve(ctx)
	}
	if err != nil {
		var zero T
		return zero, false, err
	}
	return value, ok, nil
}
