package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Retries are off unless a caller opts in.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Cursor defaults.
const (
	// DefaultQueryLimit is the ceiling on records a cursor yields over its lifetime.
	DefaultQueryLimit = 10000

	// DefaultBatchSize is the number of records requested per round-trip.
	DefaultBatchSize = 10000

	// MinPageSize is the smallest accepted limit or batch size.
	MinPageSize = 1
)

// Environment variables read by the default config provider.
const (
	EnvAPIToken    = "SNOW_API_TOKEN"
	EnvAPIUser     = "SNOW_API_USER"
	EnvAPIPassword = "SNOW_API_PASSWD"
	EnvAPIInstance = "SNOW_API_INSTANCE"
)

// Config keys shared by the providers and the CLI.
const (
	ConfigKeyToken    = "token"
	ConfigKeyUser     = "user"
	ConfigKeyPassword = "password"
	ConfigKeyInstance = "instance"
)

// API path constants.
const (
	// APIPathTable is the Table API root; the table name follows.
	APIPathTable = "/api/now/table/"
)

// Query parameter names.
const (
	ParamQuery  = "sysparm_query"
	ParamLimit  = "sysparm_limit"
	ParamOffset = "sysparm_offset"
)

// Header names and values.
const (
	HeaderTotalCount    = "X-Total-Count"
	HeaderAccept        = "Accept"
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderUserAgent     = "User-Agent"
	MediaTypeJSON       = "application/json"
	DefaultUserAgent    = "glide-client/1.0"
)

// Encoded query separators.
const (
	QuerySeparator   = "^"
	QueryOrSeparator = "^OR"
)

// HTTP status codes commonly used.
const (
	// HTTPStatusBadRequest is the first status treated as an error.
	HTTPStatusBadRequest = 400
)

// Format constants.
const (
	// FormatJSON represents JSON output format.
	FormatJSON = "json"

	// FormatYAML represents YAML output format.
	FormatYAML = "yaml"

	// FormatTable represents table output format.
	FormatTable = "table"
)

// UI and display constants.
const (
	// NotAvailable represents unavailable data.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive values.
	MaskedSecret = "***"
)

// CLI constants.
const (
	// ConfigDirName is the directory under $HOME holding the CLI config.
	ConfigDirName = ".glide"

	// ConfigFileName is the CLI config file name without extension.
	ConfigFileName = "config"

	// ConfigFileType is the CLI config file format.
	ConfigFileType = "yml"

	// DefaultSubjectPrefix prefixes the default export subject.
	DefaultSubjectPrefix = "glide"

	// DefaultNATSTimeout bounds the NATS connection attempt.
	DefaultNATSTimeout = 5 * time.Second

	// MaxTableColumns caps the columns shown in table output when no fields are selected.
	MaxTableColumns = 6
)
