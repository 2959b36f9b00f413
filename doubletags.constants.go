package doubletags

import (
	"time"

	"github.com/itsatony/go-doubletags/internal"
)

// Default delimiters
const (
	DefaultOpenDelim  = internal.StrOpenDelim
	DefaultCloseDelim = internal.StrCloseDelim
)

// DefaultMaxDepth is the default section/partial nesting limit
const DefaultMaxDepth = internal.DefaultMaxDepth

// Built-in pipeline function names
const (
	FuncNameUpper      = internal.FuncNameUpper
	FuncNameLower      = internal.FuncNameLower
	FuncNameCapitalize = internal.FuncNameCapitalize
	FuncNameEscape     = internal.FuncNameEscape
)

// Path separator for dot-notation section paths
const PathSeparator = internal.PathSeparator

// Log message constants
const (
	LogMsgEngineCreated     = "engine created"
	LogMsgRenderFailed      = "render failed"
	LogMsgTagsChanged       = "delimiters changed"
	LogMsgPartialCreated    = "partial registered"
	LogMsgPartialDeleted    = "partial removed"
	LogMsgFunctionCreated   = "function registered"
	LogMsgEscapeEnabled     = "escape by default enabled"
	LogMsgPartialsLoaded    = "partials loaded from store"
	LogMsgPartialsSaved     = "partials saved to store"
	LogMsgWatchStarted      = "watching partial directory"
	LogMsgWatchStopped      = "stopped watching partial directory"
	LogMsgWatchReloaded     = "partial reloaded from disk"
	LogMsgWatchReloadFailed = "failed to reload partial"
	LogMsgWatchError        = "partial watcher error"
	LogMsgConfigLoaded      = "config loaded"
	LogMsgValidated         = "template validated"
)

// Log field names
const (
	LogFieldOpen    = "open"
	LogFieldClose   = "close"
	LogFieldPartial = "partial"
	LogFieldFunc    = "func"
	LogFieldCount   = "count"
	LogFieldDir     = "dir"
	LogFieldPath    = "path"
	LogFieldEvent   = "event"
	LogFieldSource  = "source_length"
)

// Error code constants for categorization
const (
	ErrCodeRender   = "DOUBLETAGS_RENDER"
	ErrCodeConfig   = "DOUBLETAGS_CONFIG"
	ErrCodeRegistry = "DOUBLETAGS_REGISTRY"
	ErrCodeStorage  = "DOUBLETAGS_STORAGE"
)

// Metadata keys for cuserr.WithMetadata
const (
	MetaKeyLine         = "line"
	MetaKeyColumn       = "column"
	MetaKeyTag          = "tag"
	MetaKeyPartial      = "partial"
	MetaKeyPartialChain = "partial_chain"
	MetaKeyFuncName     = "func_name"
	MetaKeyOpenDelim    = "open_delim"
	MetaKeyCloseDelim   = "close_delim"
	MetaKeyPath         = "path"
	MetaKeyFormat       = "format"
	MetaKeyDriverName   = "driver"
	MetaKeyMaxDepth     = "max_depth"
	MetaKeyReason       = "reason"
	MetaKeyVersion      = "version"
)

// Config file formats
const (
	ConfigFormatYAML = "yaml"
	ConfigFormatTOML = "toml"
	ConfigFormatJSON = "json"
)

// Config file extensions
const (
	ConfigExtYAML = ".yaml"
	ConfigExtYML  = ".yml"
	ConfigExtTOML = ".toml"
	ConfigExtJSON = ".json"
)

// Partial store driver names
const (
	StoreDriverMemory     = "memory"
	StoreDriverFilesystem = "filesystem"
	StoreDriverPostgres   = "postgres"
	StoreDriverSQLite     = "sqlite"
)

// Filesystem store constants
const (
	FilesystemPartialExt      = ".tmpl"
	FilesystemDirPermissions  = 0o755
	FilesystemFilePermissions = 0o644
)

// Partial cache defaults
const (
	CacheDefaultTTL         = 5 * time.Minute
	CacheDefaultMaxEntries  = 1000
	CacheDefaultNegativeTTL = 30 * time.Second
)

// SQL store constants
const (
	SQLDefaultTable           = "doubletags_partials"
	SQLMigrationsSuffix       = "_migrations"
	SQLDefaultMaxOpenConns    = 25
	SQLDefaultMaxIdleConns    = 5
	SQLDefaultConnMaxLifetime = 5 * time.Minute
	SQLDefaultQueryTimeout    = 30 * time.Second
	SQLiteMaxOpenConns        = 1
	SQLPlaceholderQuestion    = "?"
)
