// Package overrides persists the what-if overrides of every course.
package overrides

import (
	"context"

	"brightspace-helper/internal/whatif"
)

// Store is a key -> overrides persistence layer, keyed by course id.
//
// note: fault injection point
type Store interface {
	// Load returns empty overrides for a course that has none.
	Load(ctx context.Context, courseId string) (whatif.Overrides, error)
	Save(ctx context.Context, courseId string, overrides whatif.Overrides) error
}
