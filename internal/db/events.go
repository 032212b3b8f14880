package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/alinaryabtsev/context-experiment-tools/internal/timeutil"
	"github.com/alinaryabtsev/context-experiment-tools/internal/tracking"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// Questionnaire and trial codes used by the study app.
const (
	moodQuestionnaireType  = 0
	moodQuestion           = 2
	videoQuestionnaireType = 21
	choiceTrial            = 71
)

// kindQuery is the SQL and row decoder for one event kind. Every
// query takes the UTC day (YYYY-MM-DD) as its last argument.
type kindQuery struct {
	query string
	args  []any
	scan  func(rowScanner) (tracking.Event, error)
}

const utcDayOf = "strftime('%%Y-%%m-%%d', datetime(%s/1000, 'unixepoch')) = ?"

var kindQueries = map[tracking.Kind]kindQuery{
	tracking.MoodReport: {
		query: `SELECT answer_time, questionnaire_number
			FROM answers
			WHERE questionnaire_type = ? AND question = ?
			AND ` + fmt.Sprintf(utcDayOf, "answer_time") + `
			ORDER BY questionnaire_number ASC`,
		args: []any{moodQuestionnaireType, moodQuestion},
		scan: scanAnswer(tracking.MoodReport),
	},
	tracking.SleepDiary: {
		query: `SELECT event, time, date
			FROM sleep
			WHERE ` + fmt.Sprintf(utcDayOf, "time") + `
			ORDER BY time DESC`,
		scan: scanSleep,
	},
	tracking.VideoRecording: {
		query: `SELECT answer_time, questionnaire_number
			FROM answers
			WHERE questionnaire_type = ?
			AND ` + fmt.Sprintf(utcDayOf, "answer_time") + `
			ORDER BY questionnaire_number DESC
			LIMIT 1`,
		args: []any{videoQuestionnaireType},
		scan: scanAnswer(tracking.VideoRecording),
	},
	tracking.GameTrial: {
		query: `SELECT choice_time, scheduled_time, block
			FROM trials
			WHERE trial = ?
			AND ` + fmt.Sprintf(utcDayOf, "choice_time") + `
			ORDER BY block DESC`,
		args: []any{choiceTrial},
		scan: scanTrial,
	},
}

func scanAnswer(
	kind tracking.Kind,
) func(rowScanner) (tracking.Event, error) {
	return func(rs rowScanner) (tracking.Event, error) {
		var ts sql.NullInt64
		var idx sql.NullInt64
		if err := rs.Scan(&ts, &idx); err != nil {
			return tracking.Event{}, err
		}
		return tracking.Event{
			Kind:      kind,
			Timestamp: ts.Int64,
			Index:     int(idx.Int64),
		}, nil
	}
}

func scanSleep(rs rowScanner) (tracking.Event, error) {
	var label, date sql.NullString
	var ts sql.NullInt64
	if err := rs.Scan(&label, &ts, &date); err != nil {
		return tracking.Event{}, err
	}
	return tracking.Event{
		Kind:      tracking.SleepDiary,
		Timestamp: ts.Int64,
		Label:     label.String,
		Display:   date.String,
	}, nil
}

func scanTrial(rs rowScanner) (tracking.Event, error) {
	var choice, scheduled, block sql.NullInt64
	if err := rs.Scan(&choice, &scheduled, &block); err != nil {
		return tracking.Event{}, err
	}
	ev := tracking.Event{
		Kind:      tracking.GameTrial,
		Timestamp: choice.Int64,
	}
	if scheduled.Valid {
		ev.Scheduled = &scheduled.Int64
	}
	if block.Valid {
		ev.Block = &block.Int64
	}
	return ev, nil
}

// Events returns the rows of kind whose primary timestamp falls on
// the UTC calendar day of day, in the study app's ordering. Rows
// that fail to scan are logged and skipped.
func (db *DB) Events(
	ctx context.Context, kind tracking.Kind, day time.Time,
) ([]tracking.Event, error) {
	q, ok := kindQueries[kind]
	if !ok {
		return nil, fmt.Errorf("no query for %s", kind)
	}
	args := append(append([]any(nil), q.args...),
		day.UTC().Format(timeutil.DateLayout))

	rows, err := db.reader.QueryContext(ctx, q.query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s rows: %w", kind, err)
	}
	defer rows.Close()

	var events []tracking.Event
	for rows.Next() {
		ev, err := q.scan(rows)
		if err != nil {
			log.Printf("skipping %s row: %v", kind, err)
			continue
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
