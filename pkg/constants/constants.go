// Package constants provides shared constants used throughout the curator.
// This includes file permissions, cache settings, document keys and the
// values the emulator reports for driver and emulation status.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants
const (
	// DefaultWorkers is the default number of concurrent workers
	DefaultWorkers = 1

	// MaxWorkers caps the worker pool regardless of configuration
	MaxWorkers = 32

	// EventBufferSize is the buffer size of progress event channels
	EventBufferSize = 256
)

// Cache constants
const (
	// CacheTTL is the lifetime of a memoized emulator document
	CacheTTL = 30 * time.Minute

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 10 * time.Minute
)

// Default paths, relative to the configuration directory
const (
	// DefaultConfigName is the base name of the configuration file
	DefaultConfigName = ".messcurator"

	// DefaultMachineXML is the cached machine-list document
	DefaultMachineXML = "mame.xml"

	// DefaultDocument is the curated platform document
	DefaultDocument = "platforms.yaml"

	// DefaultROMOutput is the root of the reconciled ROM tree
	DefaultROMOutput = "roms"

	// EnvPrefix is the environment variable prefix for configuration
	EnvPrefix = "MESSCURATOR"
)

// Unknown is the value recorded for a machine field the emulator did not report.
const Unknown = "N/A"

// Status values reported by the emulator for driver and emulation state.
const (
	StatusGood        = "good"
	StatusImperfect   = "imperfect"
	StatusPreliminary = "preliminary"
	StatusUnsupported = "unsupported"
)

// Statuses lists the accepted status filter values.
var Statuses = []string{StatusGood, StatusImperfect, StatusPreliminary, StatusUnsupported}

// Format constants
const (
	// TimeFormatFilename is the format used in generated filenames
	TimeFormatFilename = "20060102-150405"
)
