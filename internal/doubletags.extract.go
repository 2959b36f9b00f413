package internal

import (
	"strings"

	"go.uber.org/zap"
)

// ExtractSection returns the raw body of the section reached by following names
// through top-level sections, trimmed of surrounding whitespace. The body is
// not evaluated. ok is false when any name cannot be found.
func ExtractSection(source string, names []string, config LexerConfig, logger *zap.Logger) (string, bool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(names) == 0 {
		return "", false, nil
	}
	logger.Debug(LogMsgExtractStart, zap.Strings(LogFieldPath, names))

	root, err := Parse(source, config, logger)
	if err != nil {
		return "", false, err
	}

	for _, node := range root.Children {
		section, ok := node.(*SectionNode)
		if !ok || section.Name != names[0] {
			continue
		}
		body := section.Body(source)
		if len(names) == 1 {
			return strings.TrimSpace(body), true, nil
		}
		return ExtractSection(body, names[1:], config, logger)
	}

	logger.Debug(LogMsgExtractNotFound, zap.String(LogFieldSection, names[0]))
	return "", false, nil
}
