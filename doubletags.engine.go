package doubletags

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/itsatony/go-doubletags/internal"
	"go.uber.org/zap"
)

// Func is a pipeline function. It receives the running value and the
// whitespace-separated arguments written after its name, e.g. the "x" and
// "y" in {{v | pad x y}}. A returned error aborts the render.
type Func = internal.Func

// Lambda is a view value computed at lookup time. It receives the context
// the lookup ran against, i.e. the current section's context.
type Lambda = internal.Lambda

// Escape replaces & < > " ' with HTML entities. Values containing none of
// them are returned unchanged.
func Escape(value any) any {
	return internal.Escape(value)
}

// Engine renders templates. It holds the delimiters, partials and functions
// templates are rendered with. An Engine is safe for concurrent use;
// configuration changed while a render is running applies to later renders.
type Engine struct {
	mu              sync.RWMutex
	openDelim       string
	closeDelim      string
	partials        map[string]string
	funcs           *internal.FuncRegistry
	escapeByDefault bool
	maxDepth        int
	logger          *zap.Logger
}

// New creates a new Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if config.openDelim == "" || config.closeDelim == "" {
		return nil, NewInvalidTagsError(config.openDelim, config.closeDelim)
	}

	funcs := internal.NewFuncRegistry()
	internal.RegisterBuiltinFuncs(funcs)
	for name, fn := range config.funcs {
		if err := funcs.Set(name, fn); err != nil {
			return nil, newFuncRegistryError(name)
		}
	}

	partials := make(map[string]string, len(config.partials))
	for name, source := range config.partials {
		if name == "" {
			return nil, NewEmptyPartialNameError()
		}
		partials[name] = source
	}

	logger.Debug(LogMsgEngineCreated,
		zap.String(LogFieldOpen, config.openDelim),
		zap.String(LogFieldClose, config.closeDelim))

	return &Engine{
		openDelim:       config.openDelim,
		closeDelim:      config.closeDelim,
		partials:        partials,
		funcs:           funcs,
		escapeByDefault: config.escapeByDefault,
		maxDepth:        config.maxDepth,
		logger:          logger,
	}, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Render renders source against view. Extra partials are registered on the
// engine before rendering and stay registered afterwards.
//
// Render never fails: on any error it logs and returns "". Use RenderContext
// to get the error.
func (e *Engine) Render(source string, view any, partials ...map[string]string) string {
	var merged map[string]string
	if len(partials) > 0 {
		merged = make(map[string]string)
		for _, p := range partials {
			maps.Copy(merged, p)
		}
	}

	out, err := e.RenderContext(context.Background(), source, view, merged)
	if err != nil {
		e.logger.Error(LogMsgRenderFailed, zap.Error(err), zap.Int(LogFieldSource, len(source)))
		return ""
	}
	return out
}

// RenderContext renders source against view and reports failures: a
// function error or panic, a partial including itself, nesting deeper than
// the configured maximum, or ctx being done.
//
// A view that is not a mapping is bound to "." so {{.}} and {{#.}} reach it.
func (e *Engine) RenderContext(ctx context.Context, source string, view any, partials map[string]string) (string, error) {
	for name, src := range partials {
		if err := e.CreatePartial(name, src); err != nil {
			return "", err
		}
	}

	executor := internal.NewExecutor(e.snapshot(), e.logger)
	out, err := executor.Render(ctx, source, view)
	if err != nil {
		return "", NewRenderError(err)
	}
	return out, nil
}

// snapshot copies the current configuration for one render.
func (e *Engine) snapshot() internal.RenderConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return internal.RenderConfig{
		Lexer: internal.LexerConfig{
			OpenDelim:  e.openDelim,
			CloseDelim: e.closeDelim,
		},
		Partials:        maps.Clone(e.partials),
		Funcs:           e.funcs.Clone(),
		EscapeByDefault: e.escapeByDefault,
		MaxDepth:        e.maxDepth,
	}
}

// SetTags replaces the tag delimiters. Any strings are accepted, including
// ones containing regular expression metacharacters, but neither may be empty.
func (e *Engine) SetTags(open, close string) error {
	if open == "" || close == "" {
		return NewInvalidTagsError(open, close)
	}

	e.mu.Lock()
	e.openDelim = open
	e.closeDelim = close
	e.mu.Unlock()

	e.logger.Debug(LogMsgTagsChanged, zap.String(LogFieldOpen, open), zap.String(LogFieldClose, close))
	return nil
}

// Tags returns the current open and close delimiters.
func (e *Engine) Tags() (string, string) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.openDelim, e.closeDelim
}

// CreatePartial registers or replaces a partial.
func (e *Engine) CreatePartial(name, source string) error {
	if name == "" {
		return NewEmptyPartialNameError()
	}

	e.mu.Lock()
	e.partials[name] = source
	e.mu.Unlock()

	e.logger.Debug(LogMsgPartialCreated, zap.String(LogFieldPartial, name))
	return nil
}

// Partial returns the source of a registered partial.
func (e *Engine) Partial(name string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	source, ok := e.partials[name]
	return source, ok
}

// Partials returns a copy of all registered partials.
func (e *Engine) Partials() map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return maps.Clone(e.partials)
}

// PartialNames returns the registered partial names in sorted order.
func (e *Engine) PartialNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := slices.Collect(maps.Keys(e.partials))
	sort.Strings(names)
	return names
}

// DeletePartial removes a partial.
// Returns true if the partial existed and was removed, false otherwise.
func (e *Engine) DeletePartial(name string) bool {
	e.mu.Lock()
	_, ok := e.partials[name]
	delete(e.partials, name)
	e.mu.Unlock()

	if ok {
		e.logger.Debug(LogMsgPartialDeleted, zap.String(LogFieldPartial, name))
	}
	return ok
}

// CreateFunction registers a pipeline function, replacing any function of
// the same name, built-ins included.
func (e *Engine) CreateFunction(name string, fn Func) error {
	if err := e.funcs.Set(name, fn); err != nil {
		return newFuncRegistryError(name)
	}
	e.logger.Debug(LogMsgFunctionCreated, zap.String(LogFieldFunc, name))
	return nil
}

// Functions returns the registered function names in sorted order.
func (e *Engine) Functions() []string {
	return e.funcs.List()
}

// EscapeByDefault turns on escaping of every interpolated value. It cannot
// be turned off again.
func (e *Engine) EscapeByDefault() {
	e.mu.Lock()
	e.escapeByDefault = true
	e.mu.Unlock()

	e.logger.Debug(LogMsgEscapeEnabled)
}

// EscapesByDefault reports whether interpolated values are escaped.
func (e *Engine) EscapesByDefault() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.escapeByDefault
}

// ExtractSection returns the raw, unrendered body of a section, trimmed of
// surrounding whitespace. path is a dot-separated list of section names:
// "a.b" finds the first top-level section "a" and then the first section
// "b" directly inside its body.
func (e *Engine) ExtractSection(source, path string) (string, bool) {
	return e.ExtractSectionPath(source, strings.Split(path, PathSeparator))
}

// ExtractSectionPath is ExtractSection with the path already split.
func (e *Engine) ExtractSectionPath(source string, names []string) (string, bool) {
	e.mu.RLock()
	config := internal.LexerConfig{OpenDelim: e.openDelim, CloseDelim: e.closeDelim}
	e.mu.RUnlock()

	body, ok, err := internal.ExtractSection(source, names, config, e.logger)
	if err != nil {
		e.logger.Error(LogMsgRenderFailed, zap.Error(err))
		return "", false
	}
	return body, ok
}

// newFuncRegistryError converts a registry rejection to a validation error.
func newFuncRegistryError(name string) error {
	reason := ErrMsgEmptyFunctionName
	if name != "" {
		reason = ErrMsgNilFunction
	}
	return NewInvalidFunctionError(name, reason)
}
