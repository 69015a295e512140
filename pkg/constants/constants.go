// Package constants provides shared constants used throughout the scoremerge codebase.
// This includes file permissions, default naming rules for category files and
// exports, and the limits applied by the pipeline and the HTTP server.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Naming constants for inputs and outputs
const (
	// DefaultCategoryPrefix is the token removed from a file's base name to
	// obtain its category label ("score_quality.csv" -> "quality").
	DefaultCategoryPrefix = "score_"

	// ScoreColumnPrefix prefixes every per-category column of a unified table.
	ScoreColumnPrefix = "Score_"

	// TotalColumn is the header of the derived total column.
	TotalColumn = "Score Total"

	// RegistrationColumn is the header of the optional registration date column.
	RegistrationColumn = "Data Cadastro"

	// DefaultIDColumn is the output header of the entity identifier.
	DefaultIDColumn = "Id Igreja"

	// DefaultNameColumn is the output header of the entity name.
	DefaultNameColumn = "Nome Igreja"

	// MonthPlaceholder is replaced by the month folder name in export templates.
	MonthPlaceholder = "{month}"

	// DefaultExportTemplate names the CSV written for each month.
	DefaultExportTemplate = "planilha_unificada_{month}.csv"

	// SentinelID is the join key given to identifiers without any digit.
	SentinelID = "0"

	// RegistrationDateLayout is the layout used when rendering registration dates.
	RegistrationDateLayout = "2006-01-02"
)

// Limit constants define various limits and capacities
const (
	// DefaultTop is the number of rows shown by the top-N view.
	DefaultTop = 10

	// DefaultWorkers is the number of month folders processed concurrently.
	DefaultWorkers = 4

	// MaxWorkers caps the configured worker count.
	MaxWorkers = 32

	// MaxUploadSize is the largest archive accepted by the HTTP API (64 MB).
	MaxUploadSize = 64 << 20

	// MaxArchiveEntrySize is the largest single file extracted from an archive (256 MB).
	MaxArchiveEntrySize = 256 << 20

)

// Timeout constants
const (
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout = 5 * time.Second

	// ReadHeaderTimeout protects the HTTP server from slow clients.
	ReadHeaderTimeout = 10 * time.Second

	// RequestTimeout bounds a single merge request served over HTTP.
	RequestTimeout = 2 * time.Minute
)

// Server defaults
const (
	// DefaultPort is the default HTTP port for `scoremerge serve`.
	DefaultPort = 8080

	// DefaultPathPrefix is the API route prefix.
	DefaultPathPrefix = "/api/v1"

	// DefaultCacheTTL is how long the server reuses a merged month.
	DefaultCacheTTL = 30 * time.Second

	// DefaultRateLimit is the number of archive uploads accepted per
	// minute and client address.
	DefaultRateLimit = 30
)
