package internal

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Func is a pipeline transform. It receives the running value and the literal
// arguments written after its name in the tag.
type Func func(value any, args ...string) (any, error)

// FuncRegistry manages registered pipeline functions
type FuncRegistry struct {
	funcs map[string]Func
	mu    sync.RWMutex
}

// NewFuncRegistry creates a new, empty function registry
func NewFuncRegistry() *FuncRegistry {
	return &FuncRegistry{
		funcs: make(map[string]Func),
	}
}

// Set adds or replaces a function
func (r *FuncRegistry) Set(name string, fn Func) error {
	if name == "" {
		return NewFuncRegistryError(ErrMsgFuncEmptyName, "")
	}
	if fn == nil {
		return NewFuncRegistryError(ErrMsgFuncNilFunc, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.funcs[name] = fn
	return nil
}

// MustSet adds a function and panics on error
func (r *FuncRegistry) MustSet(name string, fn Func) {
	if err := r.Set(name, fn); err != nil {
		panic(err)
	}
}

// Get retrieves a function by name
func (r *FuncRegistry) Get(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[name]
	return fn, ok
}

// Has checks if a function is registered
func (r *FuncRegistry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns all registered function names in sorted order
func (r *FuncRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the registry
func (r *FuncRegistry) Clone() *FuncRegistry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clone := &FuncRegistry{funcs: make(map[string]Func, len(r.funcs))}
	for name, fn := range r.funcs {
		clone.funcs[name] = fn
	}
	return clone
}

// FuncRegistryError represents a function registry error
type FuncRegistryError struct {
	Message  string
	FuncName string
}

// NewFuncRegistryError creates a new function registry error
func NewFuncRegistryError(message, funcName string) *FuncRegistryError {
	return &FuncRegistryError{
		Message:  message,
		FuncName: funcName,
	}
}

// Error implements the error interface
func (e *FuncRegistryError) Error() string {
	if e.FuncName != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.FuncName)
	}
	return e.Message
}

// FuncExecError represents a function execution error
type FuncExecError struct {
	FuncName string
	Cause    error
}

// NewFuncExecError creates a new function execution error
func NewFuncExecError(funcName string, cause error) *FuncExecError {
	return &FuncExecError{
		FuncName: funcName,
		Cause:    cause,
	}
}

// Error implements the error interface
func (e *FuncExecError) Error() string {
	return fmt.Sprintf("function %s failed: %v", e.FuncName, e.Cause)
}

// Unwrap returns the underlying error
func (e *FuncExecError) Unwrap() error {
	return e.Cause
}

// Function error messages
const (
	ErrMsgFuncNilFunc   = "function cannot be nil"
	ErrMsgFuncEmptyName = "function name cannot be empty"
)

// Built-in function names
const (
	FuncNameUpper      = "upper"
	FuncNameLower      = "lower"
	FuncNameCapitalize = "capitalize"
	FuncNameEscape     = "escape"
)

// escapeChars lists the characters Escape replaces
const escapeChars = "&<>\"'"

var escapeReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&#039;",
)

// Escape replaces HTML-significant characters with named entities.
// A value with none of them is returned as-is, without conversion to string.
func Escape(value any) any {
	s := Stringify(value)
	if !strings.ContainsAny(s, escapeChars) {
		return value
	}
	return escapeReplacer.Replace(s)
}

// Capitalize upper-cases the first character and lower-cases the rest
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

// RegisterBuiltinFuncs registers upper, lower, capitalize and escape
func RegisterBuiltinFuncs(r *FuncRegistry) {
	r.MustSet(FuncNameUpper, func(value any, _ ...string) (any, error) {
		return strings.ToUpper(Stringify(value)), nil
	})
	r.MustSet(FuncNameLower, func(value any, _ ...string) (any, error) {
		return strings.ToLower(Stringify(value)), nil
	})
	r.MustSet(FuncNameCapitalize, func(value any, _ ...string) (any, error) {
		return Capitalize(Stringify(value)), nil
	})
	r.MustSet(FuncNameEscape, func(value any, _ ...string) (any, error) {
		return Escape(value), nil
	})
}
