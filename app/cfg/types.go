package cfg

import "time"

type Cfg struct {
	// Data source configuration
	Source      string
	CatalogFile string
	MockRecords int
	DBPath      string
	RemoteURL   string

	// Feed configuration
	PageSize            int
	FetchDelay          time.Duration
	NearBottomThreshold int
	SessionTTL          time.Duration
	Title               string

	// Application configuration
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
