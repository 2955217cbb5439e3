package admission

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("loading location %s: %v", name, err)
	}
	return loc
}

func TestAdmitCountsBothWindows(t *testing.T) {
	c := New(2, 10, time.UTC)
	c.now = fixedClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))

	if err := c.Admit(); err != nil {
		t.Fatalf("first admit: %v", err)
	}
	if err := c.Admit(); err != nil {
		t.Fatalf("second admit: %v", err)
	}

	u := c.Usage()
	if u.Daily.Used != 2 || u.Monthly.Used != 2 {
		t.Fatalf("expected 2/2 used, got daily=%d monthly=%d", u.Daily.Used, u.Monthly.Used)
	}
}

func TestAdmitDeniesAtDailyLimit(t *testing.T) {
	loc := mustLocation(t, "Australia/Melbourne")
	c := New(1, 10, loc)
	c.now = fixedClock(time.Date(2025, 6, 15, 10, 0, 0, 0, loc))

	if err := c.Admit(); err != nil {
		t.Fatalf("admit under limit: %v", err)
	}

	err := c.Admit()
	var denied *DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected DeniedError, got %v", err)
	}
	if denied.Scope != ScopeDaily {
		t.Fatalf("expected daily scope, got %s", denied.Scope)
	}
	want := time.Date(2025, 6, 16, 0, 0, 0, 0, loc)
	if !denied.ResetsAt.Equal(want) {
		t.Fatalf("expected reset at %v, got %v", want, denied.ResetsAt)
	}
}

// The daily window is checked before the monthly one, so when both are
// exhausted the denial names the daily limit.
func TestDailyCheckedBeforeMonthly(t *testing.T) {
	c := New(1, 1, time.UTC)
	c.now = fixedClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))

	if err := c.Admit(); err != nil {
		t.Fatalf("admit under limit: %v", err)
	}

	var denied *DeniedError
	if !errors.As(c.Admit(), &denied) || denied.Scope != ScopeDaily {
		t.Fatalf("expected daily denial, got %v", denied)
	}
}

func TestMonthlyDenialSurvivesDayRollover(t *testing.T) {
	c := New(10, 1, time.UTC)
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	c.now = fixedClock(now)

	if err := c.Admit(); err != nil {
		t.Fatalf("admit under limit: %v", err)
	}

	// Next day, same month: daily resets, monthly does not.
	c.now = fixedClock(now.Add(24 * time.Hour))
	var denied *DeniedError
	if !errors.As(c.Admit(), &denied) || denied.Scope != ScopeMonthly {
		t.Fatalf("expected monthly denial, got %v", denied)
	}
	want := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	if !denied.ResetsAt.Equal(want) {
		t.Fatalf("expected reset at %v, got %v", want, denied.ResetsAt)
	}
}

func TestWindowsResetAcrossYearBoundary(t *testing.T) {
	c := New(1, 1, time.UTC)
	c.now = fixedClock(time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC))

	if err := c.Admit(); err != nil {
		t.Fatalf("admit under limit: %v", err)
	}

	c.now = fixedClock(time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC))
	if err := c.Admit(); err != nil {
		t.Fatalf("expected fresh windows in January, got %v", err)
	}
}

// An admit at the exact reset instant lands in the fresh window: it succeeds
// and counts as the window's first request, never a zeroth or skipped one.
func TestAdmitAtExactResetInstant(t *testing.T) {
	c := New(1, 10, time.UTC)
	c.now = fixedClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))

	if err := c.Admit(); err != nil {
		t.Fatalf("admit under limit: %v", err)
	}
	var denied *DeniedError
	if !errors.As(c.Admit(), &denied) {
		t.Fatalf("expected daily denial")
	}

	c.now = fixedClock(denied.ResetsAt)
	if err := c.Admit(); err != nil {
		t.Fatalf("admit at reset instant: %v", err)
	}
	if u := c.Usage(); u.Daily.Used != 1 {
		t.Fatalf("expected fresh daily counter at 1, got %d", u.Daily.Used)
	}
}

func TestAdmitAtExactMonthlyResetInstant(t *testing.T) {
	c := New(10, 1, time.UTC)
	c.now = fixedClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))

	if err := c.Admit(); err != nil {
		t.Fatalf("admit under limit: %v", err)
	}
	c.now = fixedClock(time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC))
	var denied *DeniedError
	if !errors.As(c.Admit(), &denied) || denied.Scope != ScopeMonthly {
		t.Fatalf("expected monthly denial, got %v", denied)
	}

	c.now = fixedClock(denied.ResetsAt)
	if err := c.Admit(); err != nil {
		t.Fatalf("admit at monthly reset instant: %v", err)
	}
	if u := c.Usage(); u.Monthly.Used != 1 {
		t.Fatalf("expected fresh monthly counter at 1, got %d", u.Monthly.Used)
	}
}

func TestDeniedAdmitDoesNotConsume(t *testing.T) {
	c := New(1, 10, time.UTC)
	c.now = fixedClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))

	_ = c.Admit()
	_ = c.Admit() // denied
	_ = c.Admit() // denied

	u := c.Usage()
	if u.Daily.Used != 1 {
		t.Fatalf("denied admits must not increment, got used=%d", u.Daily.Used)
	}
}

func TestConcurrentAdmitsNeverExceedLimit(t *testing.T) {
	const limit = 25
	c := New(limit, 1000, time.UTC)
	c.now = fixedClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Admit() == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != limit {
		t.Fatalf("expected exactly %d admissions, got %d", limit, admitted)
	}
}

func TestUsageReportsResetTimes(t *testing.T) {
	c := New(5, 50, time.UTC)
	c.now = fixedClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))

	u := c.Usage()
	if !u.Daily.ResetsAt.Equal(time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected daily reset: %v", u.Daily.ResetsAt)
	}
	if !u.Monthly.ResetsAt.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected monthly reset: %v", u.Monthly.ResetsAt)
	}
	if u.Daily.Limit != 5 || u.Monthly.Limit != 50 {
		t.Fatalf("unexpected limits: %+v", u)
	}
}
