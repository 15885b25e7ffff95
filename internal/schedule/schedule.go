// Package schedule allocates calendar dates for new games.
package schedule

import (
	"context"
	"fmt"
	"time"

	"dailytrivia/internal/core"
)

// MaxScanDays bounds the forward search for a free date.
const MaxScanDays = 365

// GameIndex reports whether a game already exists for a date.
type GameIndex interface {
	HasGame(ctx context.Context, date string) (bool, error)
}

// Allocator picks game dates.
type Allocator struct {
	index GameIndex
	now   func() time.Time
}

// NewAllocator creates an allocator. A nil clock uses time.Now.
func NewAllocator(index GameIndex, now func() time.Time) *Allocator {
	if now == nil {
		now = time.Now
	}
	return &Allocator{index: index, now: now}
}

// NextAvailable returns the date to generate for. A requested date is
// returned unchanged, with exists set when a game is already stored for it.
// Without a request the first free date from today is returned; when every
// day in the scan window is taken, today is returned and the caller
// overwrites it.
func (a *Allocator) NextAvailable(ctx context.Context, requested *time.Time) (string, bool, error) {
	if requested != nil {
		date := requested.Format(core.DateLayout)
		exists, err := a.index.HasGame(ctx, date)
		if err != nil {
			return "", false, fmt.Errorf("failed to check date %s: %w", date, err)
		}
		return date, exists, nil
	}

	today := a.now()
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	for i := 0; i < MaxScanDays; i++ {
		date := day.AddDate(0, 0, i).Format(core.DateLayout)
		exists, err := a.index.HasGame(ctx, date)
		if err != nil {
			return "", false, fmt.Errorf("failed to check date %s: %w", date, err)
		}
		if !exists {
			return date, false, nil
		}
	}
	return day.Format(core.DateLayout), false, nil
}

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(core.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}
