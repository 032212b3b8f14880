// Package report renders a day's analysis as the coordinator-facing
// text report.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alinaryabtsev/context-experiment-tools/internal/timeutil"
	"github.com/alinaryabtsev/context-experiment-tools/internal/tracking"
)

var (
	moodSessions = []timeutil.Session{
		timeutil.Morning, timeutil.Afternoon, timeutil.Evening,
	}
	gameSessions = []timeutil.Session{timeutil.Morning, timeutil.Evening}
)

// Compose renders the report for date. The output depends only on
// its arguments.
func Compose(date time.Time, a tracking.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "DAILY TRACKING ANALYSIS - %s\n\n",
		date.Format(timeutil.DateLayout))

	writeMood(&b, a.Mood)
	b.WriteString("\n")
	writeSleep(&b, a.Sleep)
	b.WriteString("\n")
	writeVideo(&b, a.Video)
	b.WriteString("\n")
	writeGames(&b, a.Games)
	return b.String()
}

func writeMood(b *strings.Builder, s tracking.Summary) {
	for _, sess := range moodSessions {
		if e := s.SessionEntries(sess); len(e) > 0 {
			fmt.Fprintf(b, "Completed %s mood report at %s.\n", sess, e[0].At)
		} else {
			fmt.Fprintf(b, "Has not completed %s mood report.\n", sess)
		}
	}
	if e := s.SessionEntries(timeutil.None); len(e) > 0 {
		fmt.Fprintf(b,
			"Some session completed at %s, but not in scheduled time.\n",
			e[len(e)-1].At)
	}
}

func writeSleep(b *strings.Builder, s tracking.Summary) {
	if s.Len() == 0 {
		b.WriteString("No sleeping data added.\n")
		return
	}
	for _, label := range s.Keys() {
		for _, e := range s.Entries(label) {
			fmt.Fprintf(b, "%s at %s.\n", label, e.At)
		}
	}
}

func writeVideo(b *strings.Builder, s tracking.Summary) {
	if s.Present {
		b.WriteString("Has completed a video recording.\n")
		return
	}
	b.WriteString("Has not completed a video recording.\n")
}

func writeGames(b *strings.Builder, s tracking.Summary) {
	if len(s.Blocks) > 0 {
		ids := make([]string, len(s.Blocks))
		for i, id := range s.Blocks {
			ids[i] = strconv.FormatInt(id, 10)
		}
		fmt.Fprintf(b, "Blocks played: %s.\n", strings.Join(ids, ", "))
	}
	for _, sess := range gameSessions {
		games := s.SessionEntries(sess)
		switch len(games) {
		case 0:
			fmt.Fprintf(b,
				"No games of the %s have been completed.\n", sess)
		case 1:
			fmt.Fprintf(b,
				"Has completed %s game at %s with delay of %s.\n",
				sess, games[0].At, delay(games[0]))
			fmt.Fprintf(b,
				"Has not completed the second game of the %s.\n", sess)
		default:
			fmt.Fprintf(b,
				"Has completed %s game at %s with delay of %s.\n",
				sess, games[0].At, delay(games[0]))
			fmt.Fprintf(b,
				"Has completed another %s game at %s with delay of %s.\n",
				sess, games[1].At, delay(games[1]))
			gap := timeutil.AbsDiff(games[0].Timestamp, games[1].Timestamp)
			fmt.Fprintf(b,
				"Time between the two %s games: %s.\n",
				sess, timeutil.FormatDuration(gap))
		}
	}
	for _, g := range s.SessionEntries(timeutil.None) {
		fmt.Fprintf(b,
			"Has completed a game but not in time, at %s with delay of %s.\n",
			g.At, delay(g))
	}
}

func delay(e tracking.Entry) string {
	if e.Delay == nil {
		return timeutil.FormatDuration(0)
	}
	return timeutil.FormatDuration(*e.Delay)
}

// FileName returns "<identifier>_analysis_<YYYY-MM-DD>.txt".
func FileName(identifier string, date time.Time) string {
	return fmt.Sprintf("%s_analysis_%s.txt",
		identifier, date.Format(timeutil.DateLayout))
}

// Write stores text under dir using FileName and returns the path.
func Write(
	dir, identifier string, date time.Time, text string,
) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	path := filepath.Join(dir, FileName(identifier, date))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
