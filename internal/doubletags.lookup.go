package internal

import (
	"strconv"
	"strings"
)

// Lookup resolves a dotted path against a context value.
//
// "." returns the context itself. Empty segments are skipped, numeric segments
// index into sequences, and any miss resolves to the empty string. A callable
// found at the end of the path is invoked with the context as its receiver.
func Lookup(context any, path string) any {
	if path == PathSelf {
		return context
	}

	value := context
	for _, segment := range strings.Split(path, PathSeparator) {
		if segment == "" {
			continue
		}

		kind := KindOf(value)
		if kind == KindNull {
			return StringValueEmpty
		}

		if kind == KindSequence {
			if idx, err := strconv.Atoi(segment); err == nil && idx >= 0 {
				value = Index(value, idx)
				continue
			}
		}

		if kind == KindMapping {
			if next, ok := MapGet(value, segment); ok {
				value = next
				continue
			}
		}

		return StringValueEmpty
	}

	if KindOf(value) == KindCallable {
		receiver, _ := AsMapping(context)
		value = Call(value, receiver)
	}

	if KindOf(value) == KindNull {
		return StringValueEmpty
	}
	return value
}

// MergeContext returns a new context holding parent's keys shadowed by overlay's keys
func MergeContext(parent, overlay map[string]any) map[string]any {
	merged := make(map[string]any, len(parent)+len(overlay)+1)
	for k, v := range parent {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}
