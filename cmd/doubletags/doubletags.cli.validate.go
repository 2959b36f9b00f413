package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/itsatony/go-doubletags"
)

// validateConfig holds parsed validate command configuration
type validateConfig struct {
	templatePath string
	partialsDir  string
	format       string
	strict       bool
}

// validationReport is what validate prints, as text or JSON.
type validationReport struct {
	Template string          `json:"template"`
	Valid    bool            `json:"valid"`
	Strict   bool            `json:"strict,omitempty"`
	Errors   int             `json:"errors"`
	Warnings int             `json:"warnings"`
	Issues   []reportedIssue `json:"issues,omitempty"`
}

type reportedIssue struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Tag      string `json:"tag"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

func runValidate(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseValidateFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	templateSource, err := readInput(cfg.templatePath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	engine, err := newRenderEngine(context.Background(), &renderConfig{partialsDir: cfg.partialsDir}, stderr)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgEngineFailed, err)
		return ExitCodeError
	}

	result, err := engine.Validate(string(templateSource))
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgValidateFailed, err)
		return ExitCodeError
	}

	report := newValidationReport(cfg.templatePath, result, cfg.strict)
	if cfg.format == OutputFormatJSON {
		jsonBytes, _ := json.MarshalIndent(report, "", "  ")
		fmt.Fprintln(stdout, string(jsonBytes))
	} else {
		report.writeText(stdout)
	}

	if !report.Valid {
		return ExitCodeValidationError
	}
	return ExitCodeSuccess
}

func parseValidateFlags(args []string) (*validateConfig, error) {
	fs := flag.NewFlagSet(CmdNameValidate, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &validateConfig{}

	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.partialsDir, FlagPartialsDir, "", "")
	fs.StringVar(&cfg.partialsDir, FlagPartialsDirShort, "", "")
	fs.StringVar(&cfg.format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&cfg.format, FlagFormatShort, FlagDefaultFormat, "")
	fs.BoolVar(&cfg.strict, FlagStrictMode, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.templatePath == "" {
		return nil, errors.New(ErrMsgMissingTemplate)
	}
	if cfg.format != OutputFormatText && cfg.format != OutputFormatJSON {
		return nil, errors.New(ErrMsgInvalidFormat)
	}

	return cfg, nil
}

// newValidationReport flattens a result. Under strict, warnings make the
// template invalid.
func newValidationReport(templatePath string, result *doubletags.ValidationResult, strict bool) *validationReport {
	name := templatePath
	if name == InputSourceStdin {
		name = ValidationStdinName
	}

	report := &validationReport{
		Template: name,
		Strict:   strict,
		Errors:   len(result.Errors()),
		Warnings: len(result.Warnings()),
	}
	report.Valid = report.Errors == 0 && (!strict || report.Warnings == 0)

	for _, issue := range result.Issues() {
		report.Issues = append(report.Issues, reportedIssue{
			Severity: issue.Severity.String(),
			Message:  issue.Message,
			Tag:      issue.Tag,
			Line:     issue.Position.Line,
			Column:   issue.Position.Column,
		})
	}
	return report
}

func (r *validationReport) writeText(w io.Writer) {
	if len(r.Issues) == 0 {
		fmt.Fprintf(w, ValidationTextClean+FmtNewline, r.Template)
		return
	}

	for _, issue := range r.Issues {
		fmt.Fprintf(w, ValidationTextIssueFormat+FmtNewline,
			r.Template, issue.Line, issue.Column, issue.Severity, issue.Message, issue.Tag)
	}
	fmt.Fprintf(w, ValidationTextSummary+FmtNewline, r.Template, r.Errors, r.Warnings)
	if r.Strict && r.Errors == 0 && !r.Valid {
		fmt.Fprintln(w, ValidationTextStrict)
	}
}
