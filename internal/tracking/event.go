// Package tracking reduces one day of study events into per-session
// summaries.
package tracking

import (
	"errors"
	"fmt"
)

// Kind identifies one of the tracked activity types.
type Kind int

const (
	MoodReport Kind = iota
	SleepDiary
	VideoRecording
	GameTrial
)

// Kinds lists every kind in report order.
var Kinds = []Kind{MoodReport, SleepDiary, VideoRecording, GameTrial}

func (k Kind) String() string {
	switch k {
	case MoodReport:
		return "mood report"
	case SleepDiary:
		return "sleep diary"
	case VideoRecording:
		return "video recording"
	case GameTrial:
		return "game trial"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sleep diary actions.
const (
	FellAsleep = "fell asleep"
	WokeUp     = "woke up"
)

// Event is one row fetched from the event store. Timestamps are
// epoch milliseconds.
type Event struct {
	Kind      Kind
	Timestamp int64
	// Scheduled is the planned time of a game trial.
	Scheduled *int64
	// Label is the sleep action name.
	Label string
	// Display is the store-provided date string for sleep rows.
	Display string
	// Index is the questionnaire ordering number.
	Index int
	// Block is the schedule block of a game trial.
	Block *int64
}

var (
	errNoTimestamp = errors.New("missing timestamp")
	errNoLabel     = errors.New("missing sleep action")
	errNoScheduled = errors.New("missing scheduled time")
)

func (e Event) validate(r Rule) error {
	if e.Timestamp <= 0 {
		return errNoTimestamp
	}
	if r.KeyBy == KeyByLabel && e.Label == "" {
		return errNoLabel
	}
	if r.WithDelay && (e.Scheduled == nil || *e.Scheduled <= 0) {
		return errNoScheduled
	}
	return nil
}
