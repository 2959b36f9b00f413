package doubletags

import (
	"errors"
	"strconv"
	"strings"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-doubletags/internal"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	// Render errors
	ErrMsgRenderFailed     = "template render failed"
	ErrMsgPartialCycle     = "partial includes itself"
	ErrMsgMaxDepthExceeded = "maximum nesting depth exceeded"
	ErrMsgFunctionFailed   = "pipeline function failed"
	ErrMsgRenderPanic      = "panic during render"

	// Registry errors
	ErrMsgInvalidTags       = "delimiters cannot be empty"
	ErrMsgEmptyPartialName  = "partial name cannot be empty"
	ErrMsgEmptyFunctionName = "function name cannot be empty"
	ErrMsgNilFunction       = "function cannot be nil"

	// Config errors
	ErrMsgConfigRead      = "failed to read config file"
	ErrMsgConfigParse     = "failed to parse config"
	ErrMsgConfigFormat    = "unsupported config format"
	ErrMsgConfigSchema    = "failed to generate config schema"
	ErrMsgInvalidMaxDepth = "max depth cannot be negative"

	// Storage errors
	ErrMsgPartialNotFound       = "partial not found"
	ErrMsgStoreClosed           = "partial store is closed"
	ErrMsgStoreDriverNotFound   = "partial store driver not found"
	ErrMsgStoreDriverExists     = "partial store driver already registered"
	ErrMsgNilStoreDriver        = "partial store driver is nil"
	ErrMsgInvalidPartialName    = "invalid partial name"
	ErrMsgPathTraversalDetected = "path traversal detected in partial name"
	ErrMsgStoreOperation        = "partial store operation failed"
	ErrMsgWatchFailed           = "failed to watch partial directory"
	ErrMsgInvalidStoreDir       = "partial store directory cannot be empty"
	ErrMsgEmptyConnString       = "connection string cannot be empty"
	ErrMsgInvalidTableName      = "table name must contain only letters, digits and underscores"
	ErrMsgMigrationFailed       = "partial store migration failed"
)

// NewRenderError wraps an error raised while rendering, attaching what the
// engine knows about it as metadata.
func NewRenderError(cause error) error {
	msg := ErrMsgRenderFailed

	var (
		cycleErr *internal.PartialCycleError
		funcErr  *internal.FuncExecError
		execErr  *internal.ExecutorError
	)
	switch {
	case errors.As(cause, &cycleErr):
		msg = ErrMsgPartialCycle
	case errors.As(cause, &funcErr):
		msg = ErrMsgFunctionFailed
	case errors.As(cause, &execErr) && execErr.Message == internal.ErrMsgMaxDepthExceeded:
		msg = ErrMsgMaxDepthExceeded
	case errors.As(cause, &execErr) && execErr.Message == internal.ErrMsgRenderPanic:
		msg = ErrMsgRenderPanic
	}

	err := cuserr.WrapStdError(cause, ErrCodeRender, msg)
	if cycleErr != nil {
		err = err.
			WithMetadata(MetaKeyPartial, cycleErr.Chain[len(cycleErr.Chain)-1]).
			WithMetadata(MetaKeyPartialChain, strings.Join(cycleErr.Chain, internal.ChainSeparator))
	}
	if funcErr != nil {
		err = err.WithMetadata(MetaKeyFuncName, funcErr.FuncName)
	}
	if execErr != nil && execErr.TagName != "" {
		err = err.
			WithMetadata(MetaKeyTag, execErr.TagName).
			WithMetadata(MetaKeyLine, strconv.Itoa(execErr.Position.Line)).
			WithMetadata(MetaKeyColumn, strconv.Itoa(execErr.Position.Column))
	}
	return err
}

// NewInvalidTagsError creates an error for unusable delimiters
func NewInvalidTagsError(open, close string) error {
	return cuserr.NewValidationError(ErrCodeRegistry, ErrMsgInvalidTags).
		WithMetadata(MetaKeyOpenDelim, open).
		WithMetadata(MetaKeyCloseDelim, close)
}

// NewEmptyPartialNameError creates an error for partial registration without a name
func NewEmptyPartialNameError() error {
	return cuserr.NewValidationError(ErrCodeRegistry, ErrMsgEmptyPartialName)
}

// NewInvalidFunctionError creates an error for a function that cannot be registered
func NewInvalidFunctionError(name, reason string) error {
	return cuserr.NewValidationError(ErrCodeRegistry, reason).
		WithMetadata(MetaKeyFuncName, name)
}

// NewConfigError creates an error for config files that cannot be loaded
func NewConfigError(msg, path string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeConfig, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeConfig, msg)
	}
	return err.WithMetadata(MetaKeyPath, path)
}

// NewInvalidMaxDepthError creates an error for a negative depth limit
func NewInvalidMaxDepthError(depth int) error {
	return cuserr.NewValidationError(ErrCodeConfig, ErrMsgInvalidMaxDepth).
		WithMetadata(MetaKeyMaxDepth, strconv.Itoa(depth))
}

// NewUnsupportedConfigFormatError creates an error for unknown config formats
func NewUnsupportedConfigFormatError(format string) error {
	return cuserr.NewValidationError(ErrCodeConfig, ErrMsgConfigFormat).
		WithMetadata(MetaKeyFormat, format)
}

// Sentinel errors for partial stores. Store errors wrap these, so callers
// can test them with errors.Is.
var (
	ErrPartialNotFound = errors.New(ErrMsgPartialNotFound)
	ErrStoreClosed     = errors.New(ErrMsgStoreClosed)
)

// NewPartialNotFoundError creates an error for a partial missing from a store
func NewPartialNotFoundError(name string) error {
	return cuserr.WrapStdError(ErrPartialNotFound, ErrCodeStorage, ErrMsgPartialNotFound).
		WithMetadata(MetaKeyPartial, name)
}

// NewStoreClosedError creates an error for operations on a closed store
func NewStoreClosedError() error {
	return cuserr.WrapStdError(ErrStoreClosed, ErrCodeStorage, ErrMsgStoreClosed)
}

// NewStoreDriverNotFoundError creates an error for an unknown store driver
func NewStoreDriverNotFoundError(name string) error {
	return cuserr.NewNotFoundError(MetaKeyDriverName, ErrMsgStoreDriverNotFound).
		WithMetadata(MetaKeyDriverName, name)
}

// NewInvalidPartialNameError creates an error for names a store cannot hold
func NewInvalidPartialNameError(name, reason string) error {
	return cuserr.NewValidationError(ErrCodeStorage, ErrMsgInvalidPartialName).
		WithMetadata(MetaKeyPartial, name).
		WithMetadata(MetaKeyReason, reason)
}

// NewStoreConfigError creates an error for a store that cannot be opened as configured
func NewStoreConfigError(msg string) error {
	return cuserr.NewValidationError(ErrCodeStorage, msg)
}

// NewStoreError wraps a backend failure
func NewStoreError(cause error, name string) error {
	return cuserr.WrapStdError(cause, ErrCodeStorage, ErrMsgStoreOperation).
		WithMetadata(MetaKeyPartial, name)
}

// NewMigrationError wraps a failed schema migration
func NewMigrationError(cause error, version int) error {
	return cuserr.WrapStdError(cause, ErrCodeStorage, ErrMsgMigrationFailed).
		WithMetadata(MetaKeyVersion, strconv.Itoa(version))
}

// NewWatchError wraps a failure to set up directory watching
func NewWatchError(cause error, dir string) error {
	return cuserr.WrapStdError(cause, ErrCodeStorage, ErrMsgWatchFailed).
		WithMetadata(MetaKeyPath, dir)
}
