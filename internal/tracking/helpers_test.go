package tracking

import (
	"time"

	"github.com/alinaryabtsev/context-experiment-tools/internal/timeutil"
)

var testDay = time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

func testClassifier() timeutil.Classifier {
	return timeutil.NewClassifier(timeutil.DefaultWindows(), time.UTC)
}

// ms returns epoch milliseconds for hour:min on testDay.
func ms(hour, min int) int64 {
	return testDay.Add(
		time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute,
	).UnixMilli()
}

func mood(idx int, ts int64) Event {
	return Event{Kind: MoodReport, Timestamp: ts, Index: idx}
}

func sleep(label string, ts int64) Event {
	return Event{Kind: SleepDiary, Timestamp: ts, Label: label}
}

func game(block int64, actual, scheduled int64) Event {
	return Event{
		Kind:      GameTrial,
		Timestamp: actual,
		Scheduled: Ptr(scheduled),
		Block:     Ptr(block),
	}
}
