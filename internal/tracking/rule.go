package tracking

import (
	"slices"

	"github.com/alinaryabtsev/context-experiment-tools/internal/timeutil"
)

// KeyBy selects the bucket key of a rule.
type KeyBy int

const (
	// KeyByNone keeps no buckets; only presence is recorded.
	KeyByNone KeyBy = iota
	// KeyBySession buckets rows by classified session.
	KeyBySession
	// KeyByLabel buckets rows by their label.
	KeyByLabel
)

// Overflow decides what happens to a row whose bucket is full or
// whose session has no slot.
type Overflow int

const (
	// OverflowNone moves the row into the "no session" bucket.
	OverflowNone Overflow = iota
	// OverflowDrop discards the row.
	OverflowDrop
)

// Rule describes how rows of one kind reduce into a Summary.
type Rule struct {
	Kind  Kind
	KeyBy KeyBy
	// Slots are the sessions that receive rows under KeyBySession.
	Slots []timeutil.Session
	// Cap is the maximum number of entries per bucket.
	Cap      int
	Overflow Overflow
	// NoneLastWins keeps only the latest overflow row.
	NoneLastWins bool
	// WithDelay computes actual minus scheduled time per entry.
	WithDelay     bool
	CollectBlocks bool
}

var (
	MoodRule = Rule{
		Kind:         MoodReport,
		KeyBy:        KeyBySession,
		Slots:        []timeutil.Session{timeutil.Morning, timeutil.Afternoon, timeutil.Evening},
		Cap:          1,
		Overflow:     OverflowNone,
		NoneLastWins: true,
	}
	SleepRule = Rule{
		Kind:     SleepDiary,
		KeyBy:    KeyByLabel,
		Cap:      1,
		Overflow: OverflowDrop,
	}
	VideoRule = Rule{
		Kind:  VideoRecording,
		KeyBy: KeyByNone,
	}
	GamesRule = Rule{
		Kind:          GameTrial,
		KeyBy:         KeyBySession,
		Slots:         []timeutil.Session{timeutil.Morning, timeutil.Evening},
		Cap:           2,
		Overflow:      OverflowNone,
		WithDelay:     true,
		CollectBlocks: true,
	}
)

// RuleFor returns the built-in rule of k.
func RuleFor(k Kind) Rule {
	switch k {
	case SleepDiary:
		return SleepRule
	case VideoRecording:
		return VideoRule
	case GameTrial:
		return GamesRule
	}
	return MoodRule
}

func (r Rule) hasSlot(s timeutil.Session) bool {
	return slices.Contains(r.Slots, s)
}
