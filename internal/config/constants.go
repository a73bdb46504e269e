package config

// Application constants
const (
	AppName    = "KLOTH Collection Dashboard"
	AppVersion = "1.0.0"

	// Server
	DefaultPort = 8080

	// Rate limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Sources
	DefaultDataDir      = "data"
	DefaultSnapshotFile = "aggregated_kloth_data.xlsx"
	DefaultFactFile     = "kloth_daily_facts.xlsx"
	DefaultFactSheet    = "Fact"

	// Dashboard controls
	DefaultTopN    = 10
	MinTopN        = 3
	MaxTopN        = 50
	DefaultMaxRows = 5000

	// Logging
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogFile   = "logs/app.log"
)
