package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// Day is the length of one countdown day.
	Day = 24 * time.Hour

	MinDays       = 0
	MaxDays       = 5000
	MaxNameLength = 100

	// TimestampLayout matches JavaScript's Date.toISOString.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

// State is the countdown state of a timer at a given instant.
type State string

const (
	StateRunning State = "running"
	StateExpired State = "expired"
)

// Timer is one named countdown. EndDate is always StartDate + Days*Day.
// UpdatedAt stays nil until the first reset.
type Timer struct {
	ID        string
	Name      string
	Days      int
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// NewTimer starts a countdown of days at now.
func NewTimer(id, name string, days int, now time.Time) Timer {
	now = Normalize(now)
	return Timer{
		ID:        id,
		Name:      name,
		Days:      days,
		StartDate: now,
		EndDate:   now.Add(time.Duration(days) * Day),
		CreatedAt: now,
	}
}

// Reset re-anchors the countdown at now, keeping Days and CreatedAt.
func (t Timer) Reset(now time.Time) Timer {
	now = Normalize(now)
	t.StartDate = now
	t.EndDate = now.Add(time.Duration(t.Days) * Day)
	t.UpdatedAt = &now
	return t
}

// Remaining is the time left until EndDate, never negative.
func (t Timer) Remaining(now time.Time) time.Duration {
	d := t.EndDate.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

func (t Timer) State(now time.Time) State {
	if now.Before(t.EndDate) {
		return StateRunning
	}
	return StateExpired
}

func (t Timer) Countdown(now time.Time) Countdown {
	return NewCountdown(t.Remaining(now))
}

// Normalize truncates to millisecond precision in UTC, the precision the
// timers document stores.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// Countdown is a remaining duration split into whole units.
type Countdown struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

func NewCountdown(d time.Duration) Countdown {
	if d <= 0 {
		return Countdown{}
	}
	total := int64(d / time.Second)
	return Countdown{
		Days:    int(total / 86400),
		Hours:   int(total % 86400 / 3600),
		Minutes: int(total % 3600 / 60),
		Seconds: int(total % 60),
	}
}

func (c Countdown) IsZero() bool {
	return c == Countdown{}
}

func (c Countdown) String() string {
	return fmt.Sprintf("%dd %02dh %02dm %02ds", c.Days, c.Hours, c.Minutes, c.Seconds)
}

type timerJSON struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Days      int     `json:"days"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt *string `json:"updatedAt,omitempty"`
}

func (t Timer) MarshalJSON() ([]byte, error) {
	v := timerJSON{
		ID:        t.ID,
		Name:      t.Name,
		Days:      t.Days,
		StartDate: formatTimestamp(t.StartDate),
		EndDate:   formatTimestamp(t.EndDate),
		CreatedAt: formatTimestamp(t.CreatedAt),
	}
	if t.UpdatedAt != nil {
		s := formatTimestamp(*t.UpdatedAt)
		v.UpdatedAt = &s
	}
	return json.Marshal(v)
}

func (t *Timer) UnmarshalJSON(b []byte) error {
	var v timerJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	var (
		parsed Timer
		err    error
	)
	parsed.ID = v.ID
	parsed.Name = v.Name
	parsed.Days = v.Days
	if parsed.StartDate, err = parseTimestamp("startDate", v.StartDate); err != nil {
		return err
	}
	if parsed.EndDate, err = parseTimestamp("endDate", v.EndDate); err != nil {
		return err
	}
	if parsed.CreatedAt, err = parseTimestamp("createdAt", v.CreatedAt); err != nil {
		return err
	}
	if v.UpdatedAt != nil {
		u, err := parseTimestamp("updatedAt", *v.UpdatedAt)
		if err != nil {
			return err
		}
		parsed.UpdatedAt = &u
	}

	*t = parsed
	return nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func parseTimestamp(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return t.UTC(), nil
}
