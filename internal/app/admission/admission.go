// Package admission gates every turn against rolling daily and monthly usage
// limits before any model or tool work begins.
//
// Counters are in-memory only: a process restart resets usage. That is an
// accepted trade-off inherited from the deployment this service replaces, not
// a defect.
package admission

import (
	"fmt"
	"sync"
	"time"
)

// Scope identifies which window denied a turn. The values double as the wire
// `type` field on 429 responses.
type Scope string

const (
	ScopeDaily   Scope = "daily_limit"
	ScopeMonthly Scope = "monthly_limit"
)

// DeniedError reports an exhausted window. ResetsAt is computed at denial
// time, never stored.
type DeniedError struct {
	Scope    Scope
	Limit    int
	ResetsAt time.Time
}

func (e *DeniedError) Error() string {
	if e.Scope == ScopeMonthly {
		return fmt.Sprintf("Monthly limit of %d requests reached.", e.Limit)
	}
	return fmt.Sprintf("Daily limit of %d requests reached.", e.Limit)
}

// WindowUsage is one window's snapshot for the usage endpoint.
type WindowUsage struct {
	Used     int       `json:"used"`
	Limit    int       `json:"limit"`
	ResetsAt time.Time `json:"resets_at"`
}

type Usage struct {
	Daily   WindowUsage `json:"daily"`
	Monthly WindowUsage `json:"monthly"`
}

// window is a rolling counter anchored to the start of its period. Rolling is
// a transition in place, so concurrent readers never observe a torn or
// uninitialized count.
type window struct {
	anchor time.Time
	count  int
}

// Controller holds the two process-wide rate windows. All access goes through
// one mutex so increment-and-check is atomic across concurrent turns.
type Controller struct {
	mu           sync.Mutex
	daily        window
	monthly      window
	dailyLimit   int
	monthlyLimit int
	loc          *time.Location

	now func() time.Time // injectable for tests
}

func New(dailyLimit, monthlyLimit int, loc *time.Location) *Controller {
	if loc == nil {
		loc = time.UTC
	}
	return &Controller{
		dailyLimit:   dailyLimit,
		monthlyLimit: monthlyLimit,
		loc:          loc,
		now:          time.Now,
	}
}

// Admit checks both windows, daily first, and on success increments both
// counters before returning. Incrementing happens before any downstream work
// so a crash mid-turn can never under-count.
func (c *Controller) Admit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().In(c.loc)
	c.roll(now)

	if c.daily.count >= c.dailyLimit {
		return &DeniedError{Scope: ScopeDaily, Limit: c.dailyLimit, ResetsAt: nextMidnight(now)}
	}
	if c.monthly.count >= c.monthlyLimit {
		return &DeniedError{Scope: ScopeMonthly, Limit: c.monthlyLimit, ResetsAt: nextMonthStart(now)}
	}

	c.daily.count++
	c.monthly.count++
	return nil
}

// Usage returns the current counters without consuming an admission.
func (c *Controller) Usage() Usage {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().In(c.loc)
	c.roll(now)

	return Usage{
		Daily:   WindowUsage{Used: c.daily.count, Limit: c.dailyLimit, ResetsAt: nextMidnight(now)},
		Monthly: WindowUsage{Used: c.monthly.count, Limit: c.monthlyLimit, ResetsAt: nextMonthStart(now)},
	}
}

// Location returns the controller's reference timezone.
func (c *Controller) Location() *time.Location { return c.loc }

// roll resets any window whose period has passed. Caller holds c.mu.
func (c *Controller) roll(now time.Time) {
	day := startOfDay(now)
	if !c.daily.anchor.Equal(day) {
		c.daily = window{anchor: day}
	}
	month := startOfMonth(now)
	if !c.monthly.anchor.Equal(month) {
		c.monthly = window{anchor: month}
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func nextMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}

// nextMonthStart relies on time.Date normalizing month 13 to January of the
// next year.
func nextMonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}

// FormatReset renders a reset instant the way clients display it, e.g.
// "Monday 1 September 2025 at 12:00 AM AEST".
func FormatReset(t time.Time) string {
	return t.Format("Monday 2 January 2006 at 3:04 PM MST")
}
