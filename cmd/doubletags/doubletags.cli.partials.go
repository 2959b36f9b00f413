package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/itsatony/go-doubletags"
)

// partialsConfig holds parsed partials command configuration
type partialsConfig struct {
	driver    string
	dsn       string
	importDir string
	format    string
}

// partialsOutput represents JSON output for partials
type partialsOutput struct {
	Driver   string   `json:"driver"`
	Imported int      `json:"imported"`
	Partials []string `json:"partials"`
}

func runPartials(args []string, stdout, stderr io.Writer) int {
	cfg, err := parsePartialsFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	ctx := context.Background()

	store, err := doubletags.OpenPartialStore(cfg.driver, cfg.dsn)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgStoreFailed, err)
		return ExitCodeError
	}
	defer store.Close()

	imported := 0
	if cfg.importDir != "" {
		imported, err = importPartials(ctx, cfg.importDir, store)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgStoreFailed, err)
			return ExitCodeError
		}
	}

	names, err := store.List(ctx)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgStoreFailed, err)
		return ExitCodeError
	}

	if cfg.format == OutputFormatJSON {
		output := partialsOutput{Driver: cfg.driver, Imported: imported, Partials: names}
		jsonBytes, _ := json.MarshalIndent(output, "", "  ")
		fmt.Fprintln(stdout, string(jsonBytes))
		return ExitCodeSuccess
	}

	if cfg.importDir != "" {
		fmt.Fprintf(stdout, PartialsTextImported+FmtNewline, imported)
	}
	if len(names) == 0 {
		fmt.Fprintln(stdout, PartialsTextEmpty)
		return ExitCodeSuccess
	}
	fmt.Fprintln(stdout, strings.Join(names, FmtNewline))
	return ExitCodeSuccess
}

// importPartials copies every partial in dir into store by way of an engine.
func importPartials(ctx context.Context, dir string, store doubletags.PartialStore) (int, error) {
	source, err := doubletags.NewFilesystemPartialStore(dir)
	if err != nil {
		return 0, err
	}
	defer source.Close()

	engine, err := doubletags.New()
	if err != nil {
		return 0, err
	}

	count, err := engine.LoadPartials(ctx, source)
	if err != nil {
		return 0, err
	}
	if err := engine.SavePartials(ctx, store); err != nil {
		return 0, err
	}
	return count, nil
}

func parsePartialsFlags(args []string) (*partialsConfig, error) {
	fs := flag.NewFlagSet(CmdNamePartials, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &partialsConfig{}

	fs.StringVar(&cfg.driver, FlagDriver, "", "")
	fs.StringVar(&cfg.dsn, FlagDSN, "", "")
	fs.StringVar(&cfg.importDir, FlagImport, "", "")
	fs.StringVar(&cfg.format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&cfg.format, FlagFormatShort, FlagDefaultFormat, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.driver == "" {
		return nil, errors.New(ErrMsgMissingDriver)
	}
	if cfg.format != OutputFormatText && cfg.format != OutputFormatJSON {
		return nil, errors.New(ErrMsgInvalidFormat)
	}

	return cfg, nil
}
