package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/alinaryabtsev/context-experiment-tools/internal/timeutil"
)

// DefaultMaxStudyDays bounds how far back a report may look.
const DefaultMaxStudyDays = 30

// Config holds all run configuration.
type Config struct {
	DBPath       string
	FromToday    bool
	DayOffset    int
	MaxStudyDays int
	OutputDir    string
	Timezone     string
	ConfigFile   string

	// Session windows; MorningBounds overrides the bounds of the
	// morning window.
	Windows       []timeutil.Window
	MorningBounds timeutil.Bounds
}

// Default returns a Config with default values: yesterday's data
// from 1005_schedule.db in the working directory.
func Default() Config {
	return Config{
		DBPath:       "1005_schedule.db",
		DayOffset:    1,
		MaxStudyDays: DefaultMaxStudyDays,
		ConfigFile:   "tracking.json",
		Windows:      timeutil.DefaultWindows(),
	}
}

// Load builds a Config by layering: defaults < config file < env < flags.
// The provided FlagSet must already be parsed by the caller.
// Only flags that were explicitly set override the lower layers.
func Load(fs *flag.FlagSet) (Config, error) {
	cfg := Default()
	if v := os.Getenv("TRACKING_CONFIG"); v != "" {
		cfg.ConfigFile = v
	}
	if fs != nil {
		if f := fs.Lookup("config"); f != nil && isSet(fs, "config") {
			cfg.ConfigFile = f.Value.String()
		}
	}

	if err := cfg.loadFile(); err != nil {
		return cfg, fmt.Errorf("loading config file: %w", err)
	}
	if err := cfg.loadEnv(); err != nil {
		return cfg, err
	}
	if err := applyFlags(&cfg, fs); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func (c *Config) loadFile() error {
	if c.ConfigFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.ConfigFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("parsing config: invalid JSON in %s", c.ConfigFile)
	}

	doc := gjson.ParseBytes(data)
	if v := doc.Get("db"); v.Exists() {
		c.DBPath = v.String()
	}
	if v := doc.Get("from_today"); v.Exists() {
		c.FromToday = v.Bool()
	}
	if v := doc.Get("day_offset"); v.Exists() {
		c.DayOffset = int(v.Int())
	}
	if v := doc.Get("max_study_days"); v.Exists() {
		c.MaxStudyDays = int(v.Int())
	}
	if v := doc.Get("output_dir"); v.Exists() {
		c.OutputDir = v.String()
	}
	if v := doc.Get("timezone"); v.Exists() {
		c.Timezone = v.String()
	}
	if v := doc.Get("morning_bounds"); v.Exists() {
		b, err := timeutil.ParseBounds(v.String())
		if err != nil {
			return fmt.Errorf("morning_bounds: %w", err)
		}
		c.MorningBounds = b
	}

	names := map[string]timeutil.Session{
		"morning":   timeutil.Morning,
		"afternoon": timeutil.Afternoon,
		"evening":   timeutil.Evening,
	}
	var sessErr error
	doc.Get("sessions").ForEach(func(key, value gjson.Result) bool {
		sess, ok := names[key.String()]
		if !ok {
			sessErr = fmt.Errorf("unknown session %q", key.String())
			return false
		}
		hours := value.Array()
		if len(hours) != 2 {
			sessErr = fmt.Errorf(
				"session %s: want [start, end], got %s",
				key.String(), value.Raw,
			)
			return false
		}
		for i := range c.Windows {
			if c.Windows[i].Session == sess {
				c.Windows[i].Start = int(hours[0].Int())
				c.Windows[i].End = int(hours[1].Int())
			}
		}
		return true
	})
	return sessErr
}

func (c *Config) loadEnv() error {
	if v := os.Getenv("TRACKING_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("TRACKING_FROM_TODAY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRACKING_FROM_TODAY: %w", err)
		}
		c.FromToday = b
	}
	if v := os.Getenv("TRACKING_DAY_OFFSET"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRACKING_DAY_OFFSET: %w", err)
		}
		c.DayOffset = n
	}
	if v := os.Getenv("TRACKING_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("TRACKING_TZ"); v != "" {
		c.Timezone = v
	}
	return nil
}

// RegisterFlags registers run flags on fs.
// The caller must call fs.Parse before passing fs to Load.
func RegisterFlags(fs *flag.FlagSet) {
	fs.String("db", "1005_schedule.db", "Participant database file")
	fs.Bool("today", false, "Analyze today instead of a past day")
	fs.Int("offset", 1, "Days back to analyze (ignored with -today)")
	fs.String("out", "", "Directory to write the report into")
	fs.String("tz", "", "Timezone for session hours (default local)")
	fs.String(
		"morning-bounds", "closed",
		"Morning window comparison: closed or open",
	)
	fs.String("config", "tracking.json", "JSON config file")
}

// applyFlags copies explicitly-set flags from fs into cfg.
func applyFlags(cfg *Config, fs *flag.FlagSet) error {
	if fs == nil {
		return nil
	}
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			cfg.DBPath = f.Value.String()
		case "today":
			cfg.FromToday = f.Value.String() == "true"
		case "offset":
			// flag already validated the int; ignore parse error
			cfg.DayOffset, _ = strconv.Atoi(f.Value.String())
		case "out":
			cfg.OutputDir = f.Value.String()
		case "tz":
			cfg.Timezone = f.Value.String()
		case "morning-bounds":
			b, perr := timeutil.ParseBounds(f.Value.String())
			if perr != nil {
				err = fmt.Errorf("-morning-bounds: %w", perr)
				return
			}
			cfg.MorningBounds = b
		}
	})
	return err
}

// Validate rejects configurations that cannot produce a report.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("database path is required")
	}
	if c.MaxStudyDays < 0 {
		return fmt.Errorf("max study days must be >= 0")
	}
	if !c.FromToday && (c.DayOffset < 0 || c.DayOffset > c.MaxStudyDays) {
		return fmt.Errorf(
			"day offset %d out of range [0, %d]",
			c.DayOffset, c.MaxStudyDays,
		)
	}
	for _, w := range c.Windows {
		if w.Start < 0 || w.End > 23 || w.Start > w.End {
			return fmt.Errorf(
				"invalid %s hours %d-%d", w.Session, w.Start, w.End,
			)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Offset returns the effective number of days back.
func (c Config) Offset() int {
	if c.FromToday {
		return 0
	}
	return c.DayOffset
}

// TargetDate returns midnight UTC of the analyzed day relative to now.
func (c Config) TargetDate(now time.Time) time.Time {
	return timeutil.StartOfDayUTC(now).AddDate(0, 0, -c.Offset())
}

// Location resolves Timezone; empty means the local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}
	return loc, nil
}

// Classifier builds the session classifier for this configuration.
func (c Config) Classifier() (timeutil.Classifier, error) {
	loc, err := c.Location()
	if err != nil {
		return timeutil.Classifier{}, err
	}
	windows := append([]timeutil.Window(nil), c.Windows...)
	for i := range windows {
		if windows[i].Session == timeutil.Morning {
			windows[i].Bounds = c.MorningBounds
		}
	}
	return timeutil.NewClassifier(windows, loc), nil
}
