package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/alinaryabtsev/context-experiment-tools/internal/db"
	"github.com/alinaryabtsev/context-experiment-tools/internal/tracking"
)

// daySpec describes one synthetic study day.
type daySpec struct {
	label  string
	moods  []int // hours of mood reports, in questionnaire order
	video  bool
	games  []gameSpec
	asleep int // hour of "fell asleep"; -1 for none
	awake  int // hour of "woke up"; -1 for none
}

type gameSpec struct {
	hour      int
	delayMins int
}

var specs = []daySpec{
	{
		label: "complete", moods: []int{7, 14, 20}, video: true,
		games:  []gameSpec{{8, 0}, {10, 25}, {18, 5}, {21, 0}},
		asleep: 0, awake: 7,
	},
	{
		label: "missed-afternoon", moods: []int{7, 7},
		games:  []gameSpec{{9, 40}},
		asleep: 1, awake: -1,
	},
	{
		label: "off-schedule", moods: []int{3},
		games:  []gameSpec{{12, 60}, {19, 0}},
		asleep: -1, awake: -1,
	},
}

func main() {
	out := flag.String("out", "", "output database path")
	end := flag.String(
		"end", time.Now().UTC().Format("2006-01-02"),
		"last fixture day (YYYY-MM-DD, UTC)",
	)
	flag.Parse()
	if *out == "" {
		fmt.Fprintln(os.Stderr, "usage: testfixture -out <path> [-end YYYY-MM-DD]")
		os.Exit(1)
	}
	last, err := time.Parse("2006-01-02", *end)
	if err != nil {
		log.Fatalf("parsing -end: %v", err)
	}

	if err := db.RemoveIfExists(*out); err != nil {
		log.Fatalf("removing existing db: %v", err)
	}

	fixture, err := db.CreateFixture(*out)
	if err != nil {
		log.Fatalf("opening db: %v", err)
	}
	defer fixture.Close()

	first := last.AddDate(0, 0, -(len(specs) - 1))
	block := int64(1)
	for i, spec := range specs {
		day := first.AddDate(0, 0, i)
		n, err := createDayFixture(fixture, spec, day, i*10, block)
		if err != nil {
			log.Fatalf("creating fixture %s: %v", spec.label, err)
		}
		block += n
		fmt.Printf("  %s: %s\n", day.Format("2006-01-02"), spec.label)
	}

	fmt.Printf("Fixture DB written to %s\n", *out)
}

func at(day time.Time, hour, min int) int64 {
	return day.Add(
		time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute,
	).UnixMilli()
}

// createDayFixture writes one day's rows and returns the number of
// game blocks used.
func createDayFixture(
	f *db.Fixture, spec daySpec, day time.Time,
	questionnaire int, block int64,
) (int64, error) {
	for i, h := range spec.moods {
		if err := f.InsertMood(questionnaire+i, at(day, h, 12)); err != nil {
			return 0, err
		}
	}
	if spec.video {
		if err := f.InsertVideo(questionnaire, at(day, 19, 30)); err != nil {
			return 0, err
		}
	}
	sleeps := []struct {
		label string
		hour  int
	}{
		{tracking.FellAsleep, spec.asleep},
		{tracking.WokeUp, spec.awake},
	}
	for _, s := range sleeps {
		if s.hour < 0 {
			continue
		}
		ts := at(day, s.hour, 0)
		display := time.UnixMilli(ts).UTC().Format("02/01/2006 15:04")
		if err := f.InsertSleep(s.label, ts, display); err != nil {
			return 0, err
		}
	}
	for i, g := range spec.games {
		scheduled := at(day, g.hour, 0)
		actual := scheduled + int64(g.delayMins)*int64(time.Minute/time.Millisecond)
		if err := f.InsertTrial(block+int64(i), actual, scheduled); err != nil {
			return 0, err
		}
	}
	return int64(len(spec.games)), nil
}
