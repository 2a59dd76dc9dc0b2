package config

// Constants defining default values for application configuration
const (
	DefaultContentOrigin = "./content" // Directory or http(s) base URL holding news.json, programs.json, ...
	DefaultDBPath        = "./portal.db"
	DefaultNewsPath      = "./content/news.json"
	DefaultIndexPath     = "./content/index.json"

	DefaultServerPort = 8080
	DefaultServerHost = "" // Empty string means all interfaces

	DefaultPageSize        = 12
	DefaultRefreshInterval = 30  // Seconds between content refreshes, 0 disables
	DefaultSearchDebounce  = 300 // Milliseconds of quiet before a search runs
	DefaultRequestTimeout  = 10  // Seconds per collection fetch

	DefaultContactRatePerMinute = 6

	DefaultLogLevel = "debug"

	envPrefix = "PORTAL_"
)
