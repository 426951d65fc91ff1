package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./editions.db"

	// DefaultMediaDir is where published images are written
	DefaultMediaDir = "./media"

	// DefaultInboxSchedule scans the inbox every 15 minutes
	DefaultInboxSchedule = "*/15 * * * *"
)
