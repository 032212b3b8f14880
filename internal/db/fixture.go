package db

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

//go:embed schema.sql
var schemaSQL string

// Fixture writes synthetic participant data in the study app's
// table layout. It backs tests and the testfixture command.
type Fixture struct {
	writer *sql.DB
	mu     sync.Mutex // serializes writes
}

// CreateFixture creates (or reuses) a database at path and applies
// the participant schema.
func CreateFixture(path string) (*Fixture, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}
	writer, err := sql.Open("sqlite3", makeDSN(path, false))
	if err != nil {
		return nil, fmt.Errorf("opening writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	if _, err := writer.Exec(schemaSQL); err != nil {
		writer.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &Fixture{writer: writer}, nil
}

// Close closes the writer.
func (f *Fixture) Close() error {
	return f.writer.Close()
}

// Update executes fn within a write lock and transaction.
func (f *Fixture) Update(fn func(tx *sql.Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tx, err := f.writer.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// InsertMood adds the mood question answer of questionnaire n.
func (f *Fixture) InsertMood(n int, answeredAt int64) error {
	return f.insertAnswer(moodQuestionnaireType, n, moodQuestion, answeredAt)
}

// InsertVideo adds a video recording confirmation.
func (f *Fixture) InsertVideo(n int, answeredAt int64) error {
	return f.insertAnswer(videoQuestionnaireType, n, 0, answeredAt)
}

func (f *Fixture) insertAnswer(
	qType, n, question int, answeredAt int64,
) error {
	return f.Update(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO answers (
				questionnaire_type, questionnaire_number,
				question, answer, answer_time
			) VALUES (?, ?, ?, ?, ?)`,
			qType, n, question, "", answeredAt,
		)
		if err != nil {
			return fmt.Errorf("inserting answer: %w", err)
		}
		return nil
	})
}

// InsertSleep adds a sleep diary action.
func (f *Fixture) InsertSleep(
	event string, at int64, date string,
) error {
	return f.Update(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			"INSERT INTO sleep (event, time, date) VALUES (?, ?, ?)",
			event, at, date,
		)
		if err != nil {
			return fmt.Errorf("inserting sleep: %w", err)
		}
		return nil
	})
}

// InsertTrial adds the choice trial of a game block.
func (f *Fixture) InsertTrial(
	block int64, choiceAt, scheduledAt int64,
) error {
	return f.Update(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO trials (
				block, trial, choice_time, scheduled_time
			) VALUES (?, ?, ?, ?)`,
			block, choiceTrial, choiceAt, scheduledAt,
		)
		if err != nil {
			return fmt.Errorf("inserting trial: %w", err)
		}
		return nil
	})
}

// Exec runs a raw statement, for rows the typed helpers cannot
// express.
func (f *Fixture) Exec(query string, args ...any) error {
	return f.Update(func(tx *sql.Tx) error {
		_, err := tx.Exec(query, args...)
		return err
	})
}

// RemoveIfExists deletes path, ignoring a missing file.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil &&
		!errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
