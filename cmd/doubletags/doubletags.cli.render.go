package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/itsatony/go-doubletags"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// renderConfig holds parsed render command configuration
type renderConfig struct {
	templatePath string
	dataJSON     string
	dataFilePath string
	partialsDir  string
	configPath   string
	openTag      string
	closeTag     string
	outputPath   string
	escape       bool
	verbose      bool
}

func runRender(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseRenderFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	// Read template
	templateSource, err := readInput(cfg.templatePath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	// Parse data
	data, err := loadData(cfg.dataJSON, cfg.dataFilePath)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidData, err)
		return ExitCodeInputError
	}

	ctx := context.Background()
	engine, err := newRenderEngine(ctx, cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgEngineFailed, err)
		return ExitCodeError
	}

	result, err := engine.RenderContext(ctx, string(templateSource), data, nil)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgRenderFailed, err)
		return ExitCodeError
	}

	// Write output
	if err := writeOutput(cfg.outputPath, []byte(result), stdout); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
		return ExitCodeError
	}

	return ExitCodeSuccess
}

func parseRenderFlags(args []string) (*renderConfig, error) {
	fs := flag.NewFlagSet(CmdNameRender, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // Suppress default error messages

	cfg := &renderConfig{}

	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.dataJSON, FlagData, "", "")
	fs.StringVar(&cfg.dataJSON, FlagDataShort, "", "")
	fs.StringVar(&cfg.dataFilePath, FlagDataFile, "", "")
	fs.StringVar(&cfg.dataFilePath, FlagDataFileShort, "", "")
	fs.StringVar(&cfg.partialsDir, FlagPartialsDir, "", "")
	fs.StringVar(&cfg.partialsDir, FlagPartialsDirShort, "", "")
	fs.StringVar(&cfg.configPath, FlagConfig, "", "")
	fs.StringVar(&cfg.configPath, FlagConfigShort, "", "")
	fs.BoolVar(&cfg.escape, FlagEscape, false, "")
	fs.BoolVar(&cfg.escape, FlagEscapeShort, false, "")
	fs.StringVar(&cfg.openTag, FlagOpenTag, "", "")
	fs.StringVar(&cfg.closeTag, FlagCloseTag, "", "")
	fs.StringVar(&cfg.outputPath, FlagOutput, FlagDefaultOutput, "")
	fs.StringVar(&cfg.outputPath, FlagOutputShort, FlagDefaultOutput, "")
	fs.BoolVar(&cfg.verbose, FlagVerbose, false, "")
	fs.BoolVar(&cfg.verbose, FlagVerboseShort, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Validation
	if cfg.templatePath == "" {
		return nil, errors.New(ErrMsgMissingTemplate)
	}
	if (cfg.openTag == "") != (cfg.closeTag == "") {
		return nil, errors.New(ErrMsgIncompleteTagPair)
	}

	return cfg, nil
}

// newRenderEngine builds the engine from the config file (if any) with the
// command-line flags applied on top, then loads the partials directory.
func newRenderEngine(ctx context.Context, cfg *renderConfig, stderr io.Writer) (*doubletags.Engine, error) {
	opts := []doubletags.Option{doubletags.WithLogger(newLogger(cfg.verbose, stderr))}
	if cfg.escape {
		opts = append(opts, doubletags.WithEscapeByDefault(true))
	}
	if cfg.openTag != "" {
		opts = append(opts, doubletags.WithTags(cfg.openTag, cfg.closeTag))
	}

	var (
		engine *doubletags.Engine
		err    error
	)
	if cfg.configPath != "" {
		engine, err = doubletags.NewFromConfig(ctx, cfg.configPath, opts...)
	} else {
		engine, err = doubletags.New(opts...)
	}
	if err != nil {
		return nil, err
	}

	if cfg.partialsDir != "" {
		store, err := doubletags.NewFilesystemPartialStore(cfg.partialsDir)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		if _, err := engine.LoadPartials(ctx, store); err != nil {
			return nil, err
		}
	}

	return engine, nil
}

// newLogger returns a console logger on stderr when verbose, else a no-op.
func newLogger(verbose bool, stderr io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(stderr),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}
