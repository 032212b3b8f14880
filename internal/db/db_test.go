package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alinaryabtsev/context-experiment-tools/internal/timeutil"
	"github.com/alinaryabtsev/context-experiment-tools/internal/tracking"
)

var testDay = time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

// ms returns epoch milliseconds for hour:min on testDay.
func ms(hour, min int) int64 {
	return testDay.Add(
		time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute,
	).UnixMilli()
}

// testFixture creates an empty participant database and returns
// its path with an open writer.
func testFixture(t *testing.T) (string, *Fixture) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "1005_schedule.db")
	f, err := CreateFixture(path)
	if err != nil {
		t.Fatalf("creating fixture: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return path, f
}

func testDB(t *testing.T, path string) *DB {
	t.Helper()
	d, err := Open(path)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func mustExec(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
}

func TestOpen_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.db")
	_, err := Open(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingStore))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "Open must not create the file")
}

func TestOpen_Directory(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingStore)
}

func TestOpen_ReadOnly(t *testing.T) {
	path, _ := testFixture(t)
	d := testDB(t, path)

	assert.Equal(t, "1005_schedule.db", d.Identifier())
	_, err := d.Reader().Exec(
		"INSERT INTO sleep (event, time, date) VALUES ('x', 1, '')",
	)
	assert.Error(t, err)
}

func TestEvents_Mood(t *testing.T) {
	path, f := testFixture(t)
	mustExec(t, f.InsertMood(3, ms(20, 0)))
	mustExec(t, f.InsertMood(1, ms(7, 0)))
	mustExec(t, f.InsertMood(2, ms(14, 0)))
	// Other day and other question are excluded.
	mustExec(t, f.InsertMood(4, testDay.Add(-time.Hour).UnixMilli()))
	mustExec(t, f.Exec(`INSERT INTO answers
		(questionnaire_type, questionnaire_number, question, answer_time)
		VALUES (0, 5, 1, ?)`, ms(9, 0)))

	d := testDB(t, path)
	got, err := d.Events(context.Background(), tracking.MoodReport, testDay)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, ev := range got {
		assert.Equal(t, i+1, ev.Index)
		assert.Equal(t, tracking.MoodReport, ev.Kind)
	}
	assert.Equal(t, ms(7, 0), got[0].Timestamp)
}

func TestEvents_SleepNewestFirst(t *testing.T) {
	path, f := testFixture(t)
	mustExec(t, f.InsertSleep(tracking.FellAsleep, ms(0, 30), "05/06/2024 00:30"))
	mustExec(t, f.InsertSleep(tracking.WokeUp, ms(7, 15), "05/06/2024 07:15"))

	d := testDB(t, path)
	got, err := d.Events(context.Background(), tracking.SleepDiary, testDay)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, tracking.WokeUp, got[0].Label)
	assert.Equal(t, "05/06/2024 07:15", got[0].Display)
	assert.Equal(t, tracking.FellAsleep, got[1].Label)
}

func TestEvents_Video(t *testing.T) {
	path, f := testFixture(t)
	d := testDB(t, path)

	got, err := d.Events(context.Background(), tracking.VideoRecording, testDay)
	require.NoError(t, err)
	assert.Empty(t, got)

	mustExec(t, f.InsertVideo(1, ms(18, 0)))
	mustExec(t, f.InsertVideo(2, ms(19, 0)))
	got, err = d.Events(context.Background(), tracking.VideoRecording, testDay)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Index)
}

func TestEvents_GamesByBlockDesc(t *testing.T) {
	path, f := testFixture(t)
	for _, b := range []int64{3, 1, 4, 2} {
		mustExec(t, f.InsertTrial(b, ms(6+int(b)*3, 0), ms(6+int(b)*3, 0)))
	}
	// Non-choice trials are not games.
	mustExec(t, f.Exec(
		"INSERT INTO trials (block, trial, choice_time, scheduled_time) VALUES (9, 70, ?, ?)",
		ms(8, 0), ms(8, 0),
	))

	d := testDB(t, path)
	got, err := d.Events(context.Background(), tracking.GameTrial, testDay)
	require.NoError(t, err)
	require.Len(t, got, 4)
	var blocks []int64
	for _, ev := range got {
		require.NotNil(t, ev.Block)
		require.NotNil(t, ev.Scheduled)
		blocks = append(blocks, *ev.Block)
	}
	assert.Equal(t, []int64{4, 3, 2, 1}, blocks)
}

func TestEvents_MalformedRows(t *testing.T) {
	path, f := testFixture(t)
	mustExec(t, f.InsertTrial(1, ms(8, 0), ms(8, 0)))
	mustExec(t, f.Exec(
		"INSERT INTO trials (block, trial, choice_time, scheduled_time) VALUES (2, 71, ?, NULL)",
		ms(9, 0),
	))
	mustExec(t, f.Exec(
		"INSERT INTO trials (block, trial, choice_time, scheduled_time) VALUES ('late', 71, ?, ?)",
		ms(10, 0), ms(10, 0),
	))

	d := testDB(t, path)
	got, err := d.Events(context.Background(), tracking.GameTrial, testDay)
	require.NoError(t, err)
	// The text block fails to scan; the NULL schedule survives
	// scanning and is rejected during aggregation.
	require.Len(t, got, 2)

	c := timeutil.NewClassifier(timeutil.DefaultWindows(), time.UTC)
	s := tracking.Aggregate(tracking.GamesRule, got, c)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, []int64{1}, s.Blocks)
}

func TestEvents_MissingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	d := testDB(t, path)
	_, err := d.Events(context.Background(), tracking.MoodReport, testDay)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying mood report rows")
}

func TestAnalyze_FromDatabase(t *testing.T) {
	path, f := testFixture(t)
	mustExec(t, f.InsertMood(1, ms(7, 0)))
	mustExec(t, f.InsertMood(2, ms(7, 30)))
	mustExec(t, f.InsertTrial(1, ms(9, 0), ms(9, 0)))

	d := testDB(t, path)
	c := timeutil.NewClassifier(timeutil.DefaultWindows(), time.UTC)
	a, err := tracking.Analyze(context.Background(), d, testDay, c)
	require.NoError(t, err)

	assert.Len(t, a.Mood.SessionEntries(timeutil.Morning), 1)
	assert.Len(t, a.Mood.SessionEntries(timeutil.None), 1)
	assert.False(t, a.Sleep.Present)
	assert.False(t, a.Video.Present)
	assert.Len(t, a.Games.SessionEntries(timeutil.Morning), 1)
}
