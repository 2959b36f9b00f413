package internal

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// RenderConfig is the immutable configuration a single render runs with.
type RenderConfig struct {
	Lexer           LexerConfig
	Partials        map[string]string
	Funcs           *FuncRegistry
	EscapeByDefault bool
	MaxDepth        int // Maximum section/partial nesting depth (0 = unlimited)
}

// DefaultRenderConfig returns a configuration with default delimiters and built-in functions.
func DefaultRenderConfig() RenderConfig {
	funcs := NewFuncRegistry()
	RegisterBuiltinFuncs(funcs)
	return RenderConfig{
		Lexer:    DefaultLexerConfig(),
		Partials: make(map[string]string),
		Funcs:    funcs,
		MaxDepth: DefaultMaxDepth,
	}
}

// Executor renders templates for exactly one render call.
// It owns the call's cache of parsed templates, keyed on template text; the
// cache holds node trees, never rendered output, so it is independent of the
// context a template is rendered against.
type Executor struct {
	config RenderConfig
	logger *zap.Logger
	cache  map[string]*RootNode
}

// renderState tracks nesting for one branch of the recursive render
type renderState struct {
	depth int
	chain []string // Active partial names, outermost first
	guard int      // Chain index of the first partial entered since the last section frame
}

// NewExecutor creates an executor for a single render call.
func NewExecutor(config RenderConfig, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Funcs == nil {
		config.Funcs = NewFuncRegistry()
	}
	logger.Debug(LogMsgExecutorCreated)

	return &Executor{
		config: config,
		logger: logger,
		cache:  make(map[string]*RootNode),
	}
}

// Render renders source against view. Panics raised by user functions or
// lambdas are recovered and returned as errors.
func (e *Executor) Render(ctx context.Context, source string, view any) (result string, err error) {
	e.logger.Debug(LogMsgExecutorStart, zap.Int(LogFieldSource, len(source)))

	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug(LogMsgRecoveredPanic, zap.Any(LogFieldPanic, r))
			result = ""
			err = NewExecutorErrorWithCause(ErrMsgRenderPanic, "", Position{}, fmt.Errorf("%v", r))
		}
	}()

	result, err = e.renderSource(ctx, source, ViewContext(view), renderState{})
	if err != nil {
		return "", err
	}

	e.logger.Debug(LogMsgExecutorEnd)
	return result, nil
}

// ViewContext turns a top-level view into a context mapping.
// nil becomes an empty mapping and non-mapping values are bound to ".".
func ViewContext(view any) map[string]any {
	if KindOf(view) == KindNull {
		return make(map[string]any)
	}
	if m, ok := AsMapping(view); ok {
		if m == nil {
			return make(map[string]any)
		}
		return m
	}
	return map[string]any{PathSelf: view}
}

// Parse returns the node tree for source, parsing it at most once per executor.
func (e *Executor) Parse(source string) (*RootNode, error) {
	if root, ok := e.cache[source]; ok {
		e.logger.Debug(LogMsgCacheHit, zap.Int(LogFieldSource, len(source)))
		return root, nil
	}
	root, err := Parse(source, e.config.Lexer, e.logger)
	if err != nil {
		return nil, err
	}
	e.cache[source] = root
	return root, nil
}

func (e *Executor) renderSource(ctx context.Context, source string, data map[string]any, state renderState) (string, error) {
	root, err := e.Parse(source)
	if err != nil {
		return "", err
	}
	return e.executeNodes(ctx, root.Children, data, state)
}

// executeNodes processes a slice of nodes and concatenates their output.
func (e *Executor) executeNodes(ctx context.Context, nodes []Node, data map[string]any, state renderState) (string, error) {
	if e.config.MaxDepth > 0 && state.depth > e.config.MaxDepth {
		return "", NewExecutorError(ErrMsgMaxDepthExceeded, "", Position{})
	}

	var sb strings.Builder
	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		output, err := e.executeNode(ctx, node, data, state)
		if err != nil {
			return "", err
		}
		sb.WriteString(output)
	}
	return sb.String(), nil
}

// executeNode processes a single node and returns its output.
func (e *Executor) executeNode(ctx context.Context, node Node, data map[string]any, state renderState) (string, error) {
	switch n := node.(type) {
	case *TextNode:
		return n.Content, nil
	case *VariableNode:
		return e.executeVariable(n, data)
	case *PartialNode:
		return e.executePartial(ctx, n, data, state)
	case *SectionNode:
		return e.executeSection(ctx, n, data, state)
	default:
		return "", NewExecutorError(ErrMsgUnknownNodeType, "", node.Pos())
	}
}

// executeSection renders a section's main branch once per sequence item, once
// for a truthy value, or its else branch for a falsy value.
func (e *Executor) executeSection(ctx context.Context, n *SectionNode, data map[string]any, state renderState) (string, error) {
	value := resolve(data, n.Name)
	kind := KindOf(value)
	e.logger.Debug(LogMsgSectionEval, zap.String(LogFieldSection, n.Name), zap.Stringer(LogFieldKind, kind))

	// Recursion below a section is driven by data and bounded by MaxDepth.
	child := renderState{depth: state.depth + 1, chain: state.chain, guard: len(state.chain)}

	if kind == KindSequence {
		items := Items(value)
		var sb strings.Builder
		for _, item := range items {
			overlay, _ := AsMapping(item)
			itemCtx := MergeContext(data, overlay)
			itemCtx[PathSelf] = item
			out, err := e.executeNodes(ctx, n.Main, itemCtx, child)
			if err != nil {
				return "", err
			}
			sb.WriteString(out)
		}
		return sb.String(), nil
	}

	if IsTruthy(value) {
		overlay, ok := AsMapping(value)
		if !ok {
			overlay = map[string]any{n.Name: value}
		}
		valueCtx := MergeContext(data, overlay)
		valueCtx[PathSelf] = value
		return e.executeNodes(ctx, n.Main, valueCtx, child)
	}

	if n.HasElse {
		return e.executeNodes(ctx, n.Else, data, child)
	}
	return "", nil
}

// executeVariable resolves the path, applies the pipeline and stringifies the result.
func (e *Executor) executeVariable(n *VariableNode, data map[string]any) (string, error) {
	value := resolve(data, n.Path)

	for _, stage := range n.Stages {
		fn, ok := e.config.Funcs.Get(stage.Name)
		if !ok {
			e.logger.Warn(LogMsgFuncNotFound, zap.String(LogFieldFunc, stage.Name), zap.String(LogFieldTag, n.Raw))
			continue
		}
		out, err := fn(value, stage.Args...)
		if err != nil {
			return "", NewFuncExecError(stage.Name, err)
		}
		value = out
	}

	if e.config.EscapeByDefault {
		value = Escape(value)
	}
	return Stringify(value), nil
}

// resolve looks up path in data. A bare "." yields the value a section bound
// to "." when there is one, and the context itself otherwise.
func resolve(data map[string]any, path string) any {
	if path == PathSelf {
		if bound, ok := data[PathSelf]; ok {
			return bound
		}
	}
	return Lookup(data, path)
}

// executePartial renders a registered partial against the current context.
// Unknown partials keep their tag text.
func (e *Executor) executePartial(ctx context.Context, n *PartialNode, data map[string]any, state renderState) (string, error) {
	source, ok := e.config.Partials[n.Name]
	if !ok {
		e.logger.Debug(LogMsgPartialNotFound, zap.String(LogFieldPartial, n.Name))
		return n.Raw, nil
	}

	if slices.Contains(state.chain[state.guard:], n.Name) {
		return "", NewPartialCycleError(append(slices.Clone(state.chain), n.Name))
	}

	e.logger.Debug(LogMsgPartialExpand, zap.String(LogFieldPartial, n.Name), zap.Int(LogFieldDepth, state.depth))
	child := renderState{
		depth: state.depth + 1,
		chain: append(slices.Clone(state.chain), n.Name),
		guard: state.guard,
	}
	return e.renderSource(ctx, source, data, child)
}

// ExecutorError represents an executor error with context.
type ExecutorError struct {
	Message  string
	TagName  string
	Position Position
	Cause    error
}

// NewExecutorError creates a new executor error.
func NewExecutorError(message, tagName string, pos Position) *ExecutorError {
	return &ExecutorError{
		Message:  message,
		TagName:  tagName,
		Position: pos,
	}
}

// NewExecutorErrorWithCause creates a new executor error with a cause.
func NewExecutorErrorWithCause(message, tagName string, pos Position, cause error) *ExecutorError {
	return &ExecutorError{
		Message:  message,
		TagName:  tagName,
		Position: pos,
		Cause:    cause,
	}
}

// Error implements the error interface.
func (e *ExecutorError) Error() string {
	var result string
	if e.TagName != StringValueEmpty {
		result = fmt.Sprintf(ErrFmtWithTagAndPosition, e.Message, e.TagName, e.Position.String())
	} else {
		result = fmt.Sprintf(ErrFmtWithPosition, e.Message, e.Position.String())
	}
	if e.Cause != nil {
		result = fmt.Sprintf(ErrFmtWithCause, result, e.Cause)
	}
	return result
}

// Unwrap returns the underlying cause error.
func (e *ExecutorError) Unwrap() error {
	return e.Cause
}

// PartialCycleError reports a partial that includes itself, directly or transitively.
type PartialCycleError struct {
	Chain []string
}

// NewPartialCycleError creates a cycle error for the given partial chain.
func NewPartialCycleError(chain []string) *PartialCycleError {
	return &PartialCycleError{Chain: chain}
}

// Error implements the error interface.
func (e *PartialCycleError) Error() string {
	return ErrMsgPartialCycle + ": " + strings.Join(e.Chain, ChainSeparator)
}

// Executor error message constants
const (
	ErrMsgMaxDepthExceeded = "maximum nesting depth exceeded"
	ErrMsgUnknownNodeType  = "unknown node type"
	ErrMsgRenderPanic      = "panic during render"
	ErrMsgPartialCycle     = "partial cycle detected"
)

// ChainSeparator joins partial names in cycle errors
const ChainSeparator = " -> "
