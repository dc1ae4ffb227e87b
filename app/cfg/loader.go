package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const (
	SourceMemory = "memory"
	SourceSQLite = "sqlite"
	SourceRemote = "remote"
)

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Data source configuration
	Source      string `long:"source" env:"SOURCE" default:"memory" choice:"memory" choice:"sqlite" choice:"remote" description:"Where pages are read from"`
	CatalogFile string `long:"catalog" env:"CATALOG_FILE" description:"Catalog file to seed records from (.yml, .yaml, .xml or .rss)"`
	MockRecords int    `long:"mock-records" env:"MOCK_RECORDS" default:"50" description:"Number of generated records when no catalog file is given"`
	DBPath      string `long:"db-path" env:"DB_PATH" default:"./data/scroll-feed.db" description:"SQLite database path (sqlite source)"`
	RemoteURL   string `long:"remote-url" env:"REMOTE_URL" description:"Base URL of another instance to page from (remote source)"`

	// Feed configuration
	PageSize            int           `long:"page-size" env:"PAGE_SIZE" default:"10" description:"Records per page"`
	FetchDelay          time.Duration `long:"fetch-delay" env:"FETCH_DELAY" default:"1s" description:"Simulated latency added to every page fetch"`
	NearBottomThreshold int           `long:"near-bottom" env:"NEAR_BOTTOM_THRESHOLD" default:"50" description:"Distance in pixels from the content bottom that triggers the next page"`
	SessionTTL          time.Duration `long:"session-ttl" env:"SESSION_TTL" default:"30m" description:"Idle time after which a mounted feed is unmounted"`
	Title               string        `long:"title" env:"FEED_TITLE" default:"Infinite Scroll Example" description:"Heading shown above the feed"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for page fetches"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Scroll Feed/1.0" description:"User agent string for remote page requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments instead of os.Args when args is non-nil.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Source:              raw.Source,
		CatalogFile:         raw.CatalogFile,
		MockRecords:         raw.MockRecords,
		DBPath:              raw.DBPath,
		RemoteURL:           raw.RemoteURL,
		PageSize:            raw.PageSize,
		FetchDelay:          raw.FetchDelay,
		NearBottomThreshold: raw.NearBottomThreshold,
		SessionTTL:          raw.SessionTTL,
		Title:               raw.Title,
		Port:                raw.Port,
		WorkerCount:         raw.WorkerCount,
		SchedulerInterval:   raw.SchedulerInterval,
		APIAccessKey:        raw.APIAccessKey,
		UserAgent:           raw.UserAgent,
		Timezone:            raw.Timezone,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	positiveFields := map[string]int{
		"page size":          cfg.PageSize,
		"worker count":       cfg.WorkerCount,
		"scheduler interval": cfg.SchedulerInterval,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	if cfg.NearBottomThreshold < 0 {
		return fmt.Errorf("near-bottom threshold must be non-negative")
	}
	if cfg.FetchDelay < 0 {
		return fmt.Errorf("fetch delay must be non-negative")
	}
	if cfg.Source == SourceRemote && cfg.RemoteURL == "" {
		return fmt.Errorf("remote source requires --remote-url")
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
