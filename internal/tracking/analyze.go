package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/alinaryabtsev/context-experiment-tools/internal/timeutil"
)

// Analysis holds the four per-kind summaries of one day.
type Analysis struct {
	Date  time.Time
	Mood  Summary
	Sleep Summary
	Video Summary
	Games Summary
}

// Analyze fetches and reduces every kind for day. Only source
// errors are returned; missing or malformed rows leave empty
// buckets.
func Analyze(
	ctx context.Context, src Source, day time.Time,
	c timeutil.Classifier,
) (Analysis, error) {
	a := Analysis{Date: timeutil.StartOfDayUTC(day)}
	for _, kind := range Kinds {
		events, err := src.Events(ctx, kind, a.Date)
		if err != nil {
			return Analysis{}, fmt.Errorf(
				"fetching %s rows: %w", kind, err,
			)
		}
		s := Aggregate(RuleFor(kind), events, c)
		switch kind {
		case MoodReport:
			a.Mood = s
		case SleepDiary:
			a.Sleep = s
		case VideoRecording:
			a.Video = s
		case GameTrial:
			a.Games = s
		}
	}
	return a, nil
}
