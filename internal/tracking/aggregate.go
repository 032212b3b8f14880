package tracking

import (
	"log"
	"slices"
	"time"

	"github.com/alinaryabtsev/context-experiment-tools/internal/timeutil"
)

// Entry is one retained row of a bucket.
type Entry struct {
	// Timestamp is in epoch seconds.
	Timestamp int64
	// At is the rendered time shown in reports.
	At string
	// Delay is actual minus scheduled time; nil unless the rule
	// computes delays.
	Delay *time.Duration
}

// Bucket holds the entries kept under one key.
type Bucket struct {
	Key     string
	Entries []Entry
}

// Summary is the reduction of one kind's rows for a single day.
// Buckets appear in first-seen order.
type Summary struct {
	Kind    Kind
	Present bool
	Buckets []Bucket
	// Blocks holds game schedule blocks, ascending.
	Blocks  []int64
	Skipped int
}

// Entries returns the entries stored under key.
func (s Summary) Entries(key string) []Entry {
	for _, b := range s.Buckets {
		if b.Key == key {
			return b.Entries
		}
	}
	return nil
}

// SessionEntries returns the entries of a session bucket.
func (s Summary) SessionEntries(sess timeutil.Session) []Entry {
	return s.Entries(sess.String())
}

// Keys returns the bucket keys in first-seen order.
func (s Summary) Keys() []string {
	keys := make([]string, len(s.Buckets))
	for i, b := range s.Buckets {
		keys[i] = b.Key
	}
	return keys
}

// Len returns the number of entries across all buckets.
func (s Summary) Len() int {
	n := 0
	for _, b := range s.Buckets {
		n += len(b.Entries)
	}
	return n
}

func (s *Summary) bucket(key string) *Bucket {
	for i := range s.Buckets {
		if s.Buckets[i].Key == key {
			return &s.Buckets[i]
		}
	}
	s.Buckets = append(s.Buckets, Bucket{Key: key})
	return &s.Buckets[len(s.Buckets)-1]
}

// add appends e under key unless the bucket already holds limit
// entries. A limit of 0 means unbounded.
func (s *Summary) add(key string, e Entry, limit int) bool {
	if limit > 0 && len(s.Entries(key)) >= limit {
		return false
	}
	b := s.bucket(key)
	b.Entries = append(b.Entries, e)
	return true
}

func (s *Summary) overflow(r Rule, e Entry) {
	if r.Overflow == OverflowDrop {
		return
	}
	b := s.bucket(timeutil.None.String())
	if r.NoneLastWins {
		b.Entries = []Entry{e}
		return
	}
	b.Entries = append(b.Entries, e)
}

// Aggregate reduces events of one day under rule r. Events must
// already be in the store's ordering for the kind. Malformed rows
// are logged and skipped.
func Aggregate(
	r Rule, events []Event, c timeutil.Classifier,
) Summary {
	s := Summary{Kind: r.Kind}
	for _, ev := range events {
		if err := ev.validate(r); err != nil {
			log.Printf("skipping %s row: %v", r.Kind, err)
			s.Skipped++
			continue
		}
		s.Present = true

		if r.CollectBlocks && ev.Block != nil {
			s.Blocks = append(s.Blocks, *ev.Block)
		}
		if r.KeyBy == KeyByNone {
			continue
		}

		sec := timeutil.FromMillis(ev.Timestamp)
		e := Entry{Timestamp: sec, At: c.Readable(sec)}
		if r.WithDelay {
			d := timeutil.Diff(sec, timeutil.FromMillis(*ev.Scheduled))
			e.Delay = &d
		}

		switch r.KeyBy {
		case KeyBySession:
			sess := c.Session(sec)
			if r.hasSlot(sess) && s.add(sess.String(), e, r.Cap) {
				continue
			}
		case KeyByLabel:
			if ev.Display != "" {
				e.At = ev.Display
			}
			if s.add(ev.Label, e, r.Cap) {
				continue
			}
		}
		s.overflow(r, e)
	}
	slices.Sort(s.Blocks)
	return s
}
