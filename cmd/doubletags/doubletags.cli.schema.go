package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/itsatony/go-doubletags"
)

func runSchema(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(CmdNameSchema, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var outputPath string
	fs.StringVar(&outputPath, FlagOutput, FlagDefaultOutput, "")
	fs.StringVar(&outputPath, FlagOutputShort, FlagDefaultOutput, "")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	schema, err := doubletags.ConfigSchema()
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgSchemaFailed, err)
		return ExitCodeError
	}

	if err := writeOutput(outputPath, append(schema, FmtNewline...), stdout); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
		return ExitCodeError
	}

	return ExitCodeSuccess
}
