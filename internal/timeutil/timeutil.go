// Package timeutil maps epoch timestamps onto calendar days and
// named time-of-day sessions.
package timeutil

import (
	"fmt"
	"time"
)

// ReadableLayout is the DD-MM-YYYY HH:MM:SS layout used in reports.
const ReadableLayout = "02-01-2006 15:04:05"

// DateLayout is the calendar-day layout used in titles and file names.
const DateLayout = "2006-01-02"

// Session is a named time-of-day bucket.
type Session int

const (
	None Session = iota
	Morning
	Afternoon
	Evening
)

func (s Session) String() string {
	switch s {
	case Morning:
		return "morning session"
	case Afternoon:
		return "afternoon session"
	case Evening:
		return "evening session"
	default:
		return "no session"
	}
}

// Bounds selects how a window's end hours are compared.
type Bounds int

const (
	// BoundsClosed matches start <= hour <= end.
	BoundsClosed Bounds = iota
	// BoundsOpen matches start < hour < end.
	BoundsOpen
)

// ParseBounds accepts "closed" or "open".
func ParseBounds(s string) (Bounds, error) {
	switch s {
	case "closed", "":
		return BoundsClosed, nil
	case "open":
		return BoundsOpen, nil
	}
	return BoundsClosed, fmt.Errorf("unknown bounds mode %q", s)
}

func (b Bounds) String() string {
	if b == BoundsOpen {
		return "open"
	}
	return "closed"
}

// Window is an hour-of-day range assigned to a session.
type Window struct {
	Session Session
	Start   int
	End     int
	Bounds  Bounds
}

// Contains reports whether hour falls inside the window.
func (w Window) Contains(hour int) bool {
	if w.Bounds == BoundsOpen {
		return w.Start < hour && hour < w.End
	}
	return w.Start <= hour && hour <= w.End
}

// DefaultWindows returns the canonical 5-11 / 12-17 / 18-23 windows,
// all closed.
func DefaultWindows() []Window {
	return []Window{
		{Session: Morning, Start: 5, End: 11},
		{Session: Afternoon, Start: 12, End: 17},
		{Session: Evening, Start: 18, End: 23},
	}
}

// Classifier assigns sessions and renders times in one location.
type Classifier struct {
	Windows  []Window
	Location *time.Location
}

// NewClassifier returns a Classifier over windows in loc. A nil
// loc means time.Local.
func NewClassifier(windows []Window, loc *time.Location) Classifier {
	if loc == nil {
		loc = time.Local
	}
	return Classifier{Windows: windows, Location: loc}
}

func (c Classifier) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Time converts epoch seconds to a time in the classifier's location.
func (c Classifier) Time(sec int64) time.Time {
	return time.Unix(sec, 0).In(c.loc())
}

// Session returns the first window containing the hour of sec, or
// None. Only the hour is consulted.
func (c Classifier) Session(sec int64) Session {
	hour := c.Time(sec).Hour()
	for _, w := range c.Windows {
		if w.Contains(hour) {
			return w.Session
		}
	}
	return None
}

// Readable formats sec as DD-MM-YYYY HH:MM:SS.
func (c Classifier) Readable(sec int64) string {
	return c.Time(sec).Format(ReadableLayout)
}

// SameDay reports whether sec falls on the calendar date of ref,
// both taken in the classifier's location.
func (c Classifier) SameDay(ref time.Time, sec int64) bool {
	return SameDay(ref, sec, c.loc())
}

// SameDay compares calendar dates of ref and sec in loc.
func SameDay(ref time.Time, sec int64, loc *time.Location) bool {
	ry, rm, rd := ref.In(loc).Date()
	ty, tm, td := time.Unix(sec, 0).In(loc).Date()
	return ry == ty && rm == tm && rd == td
}

// FromMillis drops the millisecond remainder of an epoch-ms value.
func FromMillis(ms int64) int64 {
	return ms / 1000
}

// Diff returns ts1 - ts2 for epoch-second values.
func Diff(ts1, ts2 int64) time.Duration {
	return time.Duration(ts1-ts2) * time.Second
}

// AbsDiff returns |ts1 - ts2|.
func AbsDiff(ts1, ts2 int64) time.Duration {
	d := Diff(ts1, ts2)
	if d < 0 {
		return -d
	}
	return d
}

// FormatDuration renders d as "H:MM:SS", prefixed by "N day(s), "
// when at least a day away from zero. Negative values carry the sign
// on the day count and keep a positive clock, so -10s is
// "-1 day, 23:59:50". Sub-second precision is truncated toward
// negative infinity.
func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	if d < 0 && d%time.Second != 0 {
		secs--
	}
	days := secs / 86400
	rem := secs % 86400
	if rem < 0 {
		rem += 86400
		days--
	}
	clock := fmt.Sprintf("%d:%02d:%02d", rem/3600, rem%3600/60, rem%60)
	if days == 0 {
		return clock
	}
	unit := "days"
	if days == 1 || days == -1 {
		unit = "day"
	}
	return fmt.Sprintf("%d %s, %s", days, unit, clock)
}

// StartOfDayUTC truncates t to midnight UTC of its UTC date.
func StartOfDayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
