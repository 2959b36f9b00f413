package doubletags

import (
	"maps"

	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the construction-time configuration for an Engine.
type engineConfig struct {
	openDelim       string
	closeDelim      string
	escapeByDefault bool
	maxDepth        int
	logger          *zap.Logger
	partials        map[string]string
	funcs           map[string]Func
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		openDelim:  DefaultOpenDelim,
		closeDelim: DefaultCloseDelim,
		maxDepth:   DefaultMaxDepth,
		partials:   make(map[string]string),
		funcs:      make(map[string]Func),
	}
}

// WithTags sets the tag delimiters.
// Default: "{{" and "}}". New fails if either is empty.
func WithTags(open, close string) Option {
	return func(c *engineConfig) {
		c.openDelim = open
		c.closeDelim = close
	}
}

// WithEscapeByDefault escapes every interpolated value.
// Default: false
func WithEscapeByDefault(enabled bool) Option {
	return func(c *engineConfig) {
		c.escapeByDefault = enabled
	}
}

// WithMaxDepth sets the maximum section/partial nesting depth.
// Use 0 for unlimited depth.
// Default: 1000
func WithMaxDepth(depth int) Option {
	return func(c *engineConfig) {
		c.maxDepth = depth
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithPartials registers partials at construction time.
func WithPartials(partials map[string]string) Option {
	return func(c *engineConfig) {
		maps.Copy(c.partials, partials)
	}
}

// WithFunction registers a pipeline function at construction time,
// replacing a built-in of the same name.
func WithFunction(name string, fn Func) Option {
	return func(c *engineConfig) {
		c.funcs[name] = fn
	}
}
