package cache

import (
	"testing"
	"time"

	"brightspace-helper/internal/components/chrono"

	"github.com/stretchr/testify/require"
)

func TestCacheExpiry(t *testing.T) {
	clock := chrono.NewManualTime(time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC))
	grades := New[string](30*time.Minute, clock)

	_, hit := grades.Get("6606")
	require.False(t, hit)

	grades.Set("6606", "91.5% (A-)")
	value, hit := grades.Get("6606")
	require.True(t, hit)
	require.Equal(t, "91.5% (A-)", value)

	clock.Advance(29*time.Minute + 59*time.Second)
	_, hit = grades.Get("6606")
	require.True(t, hit)

	clock.Advance(time.Second)
	_, hit = grades.Get("6606")
	require.False(t, hit)
	require.Equal(t, 0, grades.Len())
}

func TestCacheFreshWriteResetsTimestamp(t *testing.T) {
	clock := chrono.NewManualTime(time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC))
	upcoming := New[[]string](10*time.Minute, clock)

	upcoming.Set("6606", []string{"Quiz 3"})
	clock.Advance(9 * time.Minute)
	upcoming.Set("6606", []string{"Quiz 3", "Exam 1"})
	clock.Advance(9 * time.Minute)

	value, hit := upcoming.Get("6606")
	require.True(t, hit)
	require.Equal(t, []string{"Quiz 3", "Exam 1"}, value)
}

func TestCacheKeysAreIndependent(t *testing.T) {
	clock := chrono.NewManualTime(time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC))
	models := New[int](10*time.Minute, clock)

	models.Set("1", 1)
	clock.Advance(5 * time.Minute)
	models.Set("2", 2)
	clock.Advance(5 * time.Minute)

	_, hit := models.Get("1")
	require.False(t, hit)
	value, hit := models.Get("2")
	require.True(t, hit)
	require.Equal(t, 2, value)
}
