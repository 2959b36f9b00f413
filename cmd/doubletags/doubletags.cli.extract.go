package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/itsatony/go-doubletags"
)

// extractConfig holds parsed extract command configuration
type extractConfig struct {
	templatePath string
	section      string
	openTag      string
	closeTag     string
	outputPath   string
}

func runExtract(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseExtractFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	templateSource, err := readInput(cfg.templatePath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	var opts []doubletags.Option
	if cfg.openTag != "" {
		opts = append(opts, doubletags.WithTags(cfg.openTag, cfg.closeTag))
	}
	engine, err := doubletags.New(opts...)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgEngineFailed, err)
		return ExitCodeError
	}

	body, ok := engine.ExtractSection(string(templateSource), cfg.section)
	if !ok {
		fmt.Fprintf(stderr, FmtErrorWithDetail, ErrMsgSectionNotFound, cfg.section)
		return ExitCodeNotFound
	}

	if err := writeOutput(cfg.outputPath, []byte(body), stdout); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
		return ExitCodeError
	}

	return ExitCodeSuccess
}

func parseExtractFlags(args []string) (*extractConfig, error) {
	fs := flag.NewFlagSet(CmdNameExtract, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &extractConfig{}

	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.section, FlagSection, "", "")
	fs.StringVar(&cfg.section, FlagSectionShort, "", "")
	fs.StringVar(&cfg.openTag, FlagOpenTag, "", "")
	fs.StringVar(&cfg.closeTag, FlagCloseTag, "", "")
	fs.StringVar(&cfg.outputPath, FlagOutput, FlagDefaultOutput, "")
	fs.StringVar(&cfg.outputPath, FlagOutputShort, FlagDefaultOutput, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.templatePath == "" {
		return nil, errors.New(ErrMsgMissingTemplate)
	}
	if cfg.section == "" {
		return nil, errors.New(ErrMsgMissingSection)
	}
	if (cfg.openTag == "") != (cfg.closeTag == "") {
		return nil, errors.New(ErrMsgIncompleteTagPair)
	}

	return cfg, nil
}
