package doubletags

import (
	"github.com/itsatony/go-doubletags/internal"
	"go.uber.org/zap"
)

// ValidationSeverity indicates the severity of a validation issue.
type ValidationSeverity int

const (
	// SeverityError marks a tag kept as literal text: a stray close or else,
	// or a section that is never closed.
	SeverityError ValidationSeverity = iota
	// SeverityWarning marks a reference the engine cannot resolve yet: an
	// unknown partial or pipeline function, or an empty path or stage.
	SeverityWarning
)

// Severity names
const (
	SeverityNameError   = "error"
	SeverityNameWarning = "warning"
)

// String returns the severity name.
func (s ValidationSeverity) String() string {
	if s == SeverityError {
		return SeverityNameError
	}
	return SeverityNameWarning
}

// Position is a location in template source. Line and Column are 1-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Message  string
	Tag      string
	Position Position
}

// ValidationResult contains the results of template validation.
type ValidationResult struct {
	issues []ValidationIssue
}

// Issues returns all issues in source order.
func (r *ValidationResult) Issues() []ValidationIssue {
	return r.issues
}

// Errors returns only issues with error severity.
func (r *ValidationResult) Errors() []ValidationIssue {
	return r.filter(SeverityError)
}

// Warnings returns only issues with warning severity.
func (r *ValidationResult) Warnings() []ValidationIssue {
	return r.filter(SeverityWarning)
}

// HasWarnings returns true if there are any warning-severity issues.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings()) > 0
}

// IsValid returns true if there are no error-severity issues.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors()) == 0
}

func (r *ValidationResult) filter(severity ValidationSeverity) []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range r.issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

// Validate parses source with the current delimiters and reports what would
// not render as written. Rendering never fails on these issues; Validate
// exists to surface them. Partials and functions are checked against what
// is registered now.
func (e *Engine) Validate(source string) (*ValidationResult, error) {
	config := e.snapshot()

	root, err := internal.Parse(source, config.Lexer, e.logger)
	if err != nil {
		return nil, NewRenderError(err)
	}

	issues := internal.Validate(root, config.Partials, config.Funcs)
	result := &ValidationResult{issues: make([]ValidationIssue, 0, len(issues))}
	for _, issue := range issues {
		result.issues = append(result.issues, ValidationIssue{
			Severity: ValidationSeverity(issue.Severity),
			Message:  issue.Message,
			Tag:      issue.Tag,
			Position: Position{
				Offset: issue.Position.Offset,
				Line:   issue.Position.Line,
				Column: issue.Position.Column,
			},
		})
	}

	e.logger.Debug(LogMsgValidated, zap.Int(LogFieldCount, len(result.issues)))
	return result, nil
}
