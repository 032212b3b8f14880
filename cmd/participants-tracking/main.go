package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/alinaryabtsev/context-experiment-tools/internal/config"
	"github.com/alinaryabtsev/context-experiment-tools/internal/db"
	"github.com/alinaryabtsev/context-experiment-tools/internal/report"
	"github.com/alinaryabtsev/context-experiment-tools/internal/tracking"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = ""
)

func main() {
	log.SetFlags(0)
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "run":
			runReport(os.Args[2:])
			return
		case "version", "--version", "-v":
			fmt.Printf("participants-tracking %s (commit %s, built %s)\n",
				version, commit, buildDate)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	runReport(os.Args[1:])
}

func printUsage() {
	fmt.Printf(`participants-tracking %s - daily compliance report for one participant

Reads a participant's exported study database and writes a text
report of mood reports, sleep diary, video recording and games for
one day.

Usage:
  participants-tracking [flags]        Write the report (default command)
  participants-tracking run [flags]    Write the report (explicit)
  participants-tracking version        Show version information
  participants-tracking help           Show this help

Flags:
  -db string              Participant database file (default "1005_schedule.db")
  -today                  Analyze today instead of a past day
  -offset int             Days back to analyze (default 1)
  -out string             Directory to write the report into
  -tz string              Timezone for session hours (default local)
  -morning-bounds string  Morning window comparison: closed or open
  -config string          JSON config file (default "tracking.json")

Environment variables:
  TRACKING_DB             Participant database file
  TRACKING_FROM_TODAY     Analyze today (true/false)
  TRACKING_DAY_OFFSET     Days back to analyze
  TRACKING_OUTPUT_DIR     Report directory
  TRACKING_TZ             Timezone for session hours
  TRACKING_CONFIG         JSON config file

The report is named <db file>_analysis_<YYYY-MM-DD>.txt.
`, version)
}

func runReport(args []string) {
	cfg := mustLoadConfig(args)
	database := mustOpenDB(cfg)

	path, err := generateReport(
		context.Background(), cfg, database,
		database.Identifier(), time.Now(),
	)
	database.Close()
	if err != nil {
		log.Fatalf("generating report: %v", err)
	}
	fmt.Printf("Report written to %s\n", path)
}

func mustLoadConfig(args []string) config.Config {
	fs := flag.NewFlagSet("participants-tracking", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			"Usage: participants-tracking [run] [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	return cfg
}

func mustOpenDB(cfg config.Config) *db.DB {
	database, err := db.Open(cfg.DBPath)
	if errors.Is(err, db.ErrMissingStore) {
		log.Fatalf(
			"No database file found at %s. Make sure the file exists "+
				"or pass its location with -db.", cfg.DBPath,
		)
	}
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	return database
}

// generateReport analyzes the configured day from src and writes
// the report. Nothing is written unless every kind was fetched.
func generateReport(
	ctx context.Context, cfg config.Config, src tracking.Source,
	identifier string, now time.Time,
) (string, error) {
	classifier, err := cfg.Classifier()
	if err != nil {
		return "", err
	}
	day := cfg.TargetDate(now)

	analysis, err := tracking.Analyze(ctx, src, day, classifier)
	if err != nil {
		return "", err
	}
	for _, s := range []tracking.Summary{
		analysis.Mood, analysis.Sleep, analysis.Video, analysis.Games,
	} {
		if s.Skipped > 0 {
			log.Printf("warning: %d malformed %s rows skipped",
				s.Skipped, s.Kind)
		}
	}

	text := report.Compose(day, analysis)
	return report.Write(cfg.OutputDir, identifier, day, text)
}
