package main

// Command names
const (
	CmdNameRender   = "render"
	CmdNameValidate = "validate"
	CmdNameExtract  = "extract"
	CmdNamePartials = "partials"
	CmdNameSchema   = "schema"
	CmdNameVersion  = "version"
	CmdNameHelp     = "help"
)

// Flag names - long form
const (
	FlagTemplate    = "template"
	FlagData        = "data"
	FlagDataFile    = "data-file"
	FlagPartialsDir = "partials"
	FlagConfig      = "config"
	FlagEscape      = "escape"
	FlagOpenTag     = "open"
	FlagCloseTag    = "close"
	FlagOutput      = "output"
	FlagSection     = "section"
	FlagDriver      = "driver"
	FlagDSN         = "dsn"
	FlagImport      = "import"
	FlagFormat      = "format"
	FlagVerbose     = "verbose"
	FlagStrictMode  = "strict"
)

// Flag names - short form
const (
	FlagTemplateShort    = "t"
	FlagDataShort        = "d"
	FlagDataFileShort    = "f"
	FlagPartialsDirShort = "p"
	FlagConfigShort      = "c"
	FlagEscapeShort      = "e"
	FlagOutputShort      = "o"
	FlagSectionShort     = "s"
	FlagFormatShort      = "F"
	FlagVerboseShort     = "v"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
	ExitCodeNotFound        = 5
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Data file extensions
const (
	DataExtYAML = ".yaml"
	DataExtYML  = ".yml"
)

// Error messages - ALL must be constants
const (
	ErrMsgUnknownCommand    = "unknown command"
	ErrMsgMissingTemplate   = "template source required"
	ErrMsgMissingSection    = "section path required"
	ErrMsgMissingDriver     = "store driver required"
	ErrMsgInvalidFlags      = "invalid flags"
	ErrMsgInvalidData       = "invalid data"
	ErrMsgReadFileFailed    = "failed to read file"
	ErrMsgWriteOutputFailed = "failed to write output"
	ErrMsgEngineFailed      = "failed to configure engine"
	ErrMsgRenderFailed      = "template render failed"
	ErrMsgValidateFailed    = "template validation failed"
	ErrMsgSectionNotFound   = "section not found"
	ErrMsgStoreFailed       = "partial store failed"
	ErrMsgSchemaFailed      = "failed to generate schema"
	ErrMsgInvalidFormat     = "invalid output format"
	ErrMsgIncompleteTagPair = "--open and --close must be given together"
	ErrMsgDataNotMapping    = "data must be a JSON or YAML object"
)

// Help text templates
const (
	HelpMainUsage = `doubletags - logic-lite text templating CLI

Usage:
    doubletags <command> [options]

Commands:
    render      Render a template with data
    validate    Report tags that would not render as written
    extract     Print the raw body of a section
    partials    List or import partials in a store
    schema      Print the JSON schema of the config file
    version     Show version information
    help        Show help for a command

Use "doubletags help <command>" for more information about a command.`

	HelpRenderUsage = `Render a template with data

Usage:
    doubletags render [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -d, --data <json>       JSON data string
    -f, --data-file <file>  JSON or YAML data file
    -p, --partials <dir>    Directory of <name>.tmpl partials
    -c, --config <file>     Engine config file (.yaml, .toml, .json)
    -e, --escape            Escape every interpolated value
        --open <tag>        Open delimiter (with --close)
        --close <tag>       Close delimiter (with --open)
    -o, --output <file>     Output file (default: stdout)
    -v, --verbose           Log engine events to stderr

Examples:
    doubletags render -t page.tmpl -d '{"name": "Alice"}'
    doubletags render -t page.tmpl -f data.yaml -p partials/
    cat page.tmpl | doubletags render -t - -d '{"name": "Bob"}'
    doubletags render -t page.tmpl --open '<%' --close '%>' -o page.html`

	HelpValidateUsage = `Report tags that would not render as written

Usage:
    doubletags validate [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -p, --partials <dir>    Directory of <name>.tmpl partials to check against
    -F, --format <format>   Output format: text, json (default: text)
        --strict            Treat warnings as errors

Errors are tags kept as literal text: stray closes or elses and sections
that are never closed. Warnings are unknown partials and pipeline functions.
Text output has one file:line:column line per issue and a summary line.
Exits with status 3 when the template has errors.

Examples:
    doubletags validate -t page.tmpl
    doubletags validate -t page.tmpl -p partials/ --strict -F json`

	HelpExtractUsage = `Print the raw, unrendered body of a section

Usage:
    doubletags extract [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -s, --section <path>    Dot-separated section path, e.g. "page.header"
    -o, --output <file>     Output file (default: stdout)

Exits with status 5 when the section does not exist.

Examples:
    doubletags extract -t page.tmpl -s page.header`

	HelpPartialsUsage = `List or import partials in a store

Usage:
    doubletags partials [options]

Options:
        --driver <name>     Store driver: memory, filesystem, postgres, sqlite
        --dsn <string>      Driver connection string or directory
        --import <dir>      Copy <name>.tmpl partials from dir into the store first
    -F, --format <format>   Output format: text, json (default: text)

Examples:
    doubletags partials --driver filesystem --dsn partials/
    doubletags partials --driver sqlite --dsn partials.db --import partials/`

	HelpSchemaUsage = `Print the JSON schema of the engine config file

Usage:
    doubletags schema [options]

Options:
    -o, --output <file>     Output file (default: stdout)`

	HelpVersionUsage = `Show version information

Usage:
    doubletags version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    doubletags help [command]

Commands:
    render      Show help for render command
    validate    Show help for validate command
    extract     Show help for extract command
    partials    Show help for partials command
    schema      Show help for schema command
    version     Show help for version command`
)

// Version output format templates
const (
	VersionTextTemplate = "go-doubletags version %s\nCommit: %s\nBranch: %s\nBuilt: %s\nGo: %s"
	VersionUnknown      = "unknown"
	VersionsFileName    = "versions.yaml"
)

// Validation report templates. Issues print as file:line:column so editors
// can jump to the tag.
const (
	ValidationStdinName       = "<stdin>"
	ValidationTextIssueFormat = "%s:%d:%d: %s: %s: %s"
	ValidationTextClean       = "%s: no issues"
	ValidationTextSummary     = "%s: %d error(s), %d warning(s)"
	ValidationTextStrict      = "warnings fail under --strict"
)

// Partials output format templates
const (
	PartialsTextImported = "imported %d partial(s)"
	PartialsTextEmpty    = "no partials"
)

// CLI metadata
const (
	CLIName        = "doubletags"
	CLIDescription = "logic-lite text templating CLI"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtNewline         = "\n"
)
