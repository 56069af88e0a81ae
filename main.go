package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/mcncl/treekit/internal/config"
	"github.com/mcncl/treekit/internal/errors"
	"github.com/mcncl/treekit/internal/formatter"
	"github.com/mcncl/treekit/internal/models"
	"github.com/mcncl/treekit/internal/parser"
	"github.com/mcncl/treekit/internal/repair"
)

// Version information
const (
	Version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Config  string `help:"Path to a config file. Defaults to .treekit.yml in this or a parent directory." short:"c" type:"path"`
	Output  string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	To      string `help:"Output format (json or yaml)."`
	From    string `help:"Input format (json or yaml). Files ending in .yml or .yaml are read as YAML."`
	Indent  string `help:"Indentation for JSON output."`
	Compact bool   `help:"Write JSON on a single line."`
	Lenient bool   `help:"Repair malformed JSON input before parsing." short:"l"`
	Debug   bool   `help:"Enable debug logging." short:"d"`
	Version bool   `help:"Show version information."`

	Format     FormatCmd     `cmd:"" help:"Parse a document and write it back out."`
	Repair     RepairCmd     `cmd:"" help:"Repair malformed JSON and report each fix."`
	Query      QueryCmd      `cmd:"" help:"List every value matching a path expression."`
	Flatten    FlattenCmd    `cmd:"" help:"Collapse a document into one object keyed by leaf paths."`
	Unflatten  UnflattenCmd  `cmd:"" help:"Rebuild a nested document from flattened keys."`
	SortKeys   SortKeysCmd   `cmd:"" name:"sort-keys" help:"Sort object keys."`
	RemoveKeys RemoveKeysCmd `cmd:"" name:"remove-keys" help:"Drop object members by key."`
	RenameKeys RenameKeysCmd `cmd:"" name:"rename-keys" help:"Rewrite object keys into another case style."`
	Dedupe     DedupeCmd     `cmd:"" help:"Drop duplicate array elements."`
	Project    ProjectCmd    `cmd:"" help:"Build new objects from path expressions."`
	Array      ArrayCmd      `cmd:"" help:"Apply an array operation: concat, slice, reverse, shuffle or unique."`
	Validate   ValidateCmd   `cmd:"" help:"Check a document against a schema."`
	Infer      InferCmd      `cmd:"" help:"Infer a schema from a sample document."`
	Stats      StatsCmd      `cmd:"" help:"Report structural statistics."`
}

// App holds what every command needs at run time
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Output string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run parses args, executes the selected command and returns the exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	// --version is honoured without a command
	if slices.Contains(args, "--version") {
		fmt.Fprintf(stdout, "treekit version %s\n", Version)
		return 0
	}

	var cli CLI
	exitCode := -1
	k, err := kong.New(&cli,
		kong.Name("treekit"),
		kong.Description("Query, transform, validate and repair JSON and YAML documents"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	ctx, err := k.Parse(args)
	if exitCode >= 0 {
		// --help already printed
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(stderr, "treekit: %v\n", err)
		return 1
	}

	cfg, err := config.LoadConfigWithCLI(cli.Config, cli.overrides())
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(errors.NewConfigError(fmt.Sprintf("failed to load configuration: %v", err), err)))
		return 1
	}

	app := &App{
		Config: cfg,
		Logger: newLogger(stderr, cfg.Dev.Debug),
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Output: cli.Output,
	}
	app.Logger.Debug("configuration loaded",
		"input_format", cfg.Input.Format,
		"output_format", cfg.Output.Format,
		"lenient", cfg.Input.Lenient)

	if err := ctx.Run(app); err != nil {
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		return 1
	}
	return 0
}

// overrides turns the flags the user actually set into config overrides
func (c *CLI) overrides() config.Overrides {
	var o config.Overrides
	if c.From != "" {
		o.InputFormat = &c.From
	}
	if c.To != "" {
		o.OutputFormat = &c.To
	}
	if c.Indent != "" {
		o.Indent = &c.Indent
	}
	if c.Compact {
		o.Compact = &c.Compact
	}
	if c.Lenient {
		o.Lenient = &c.Lenient
	}
	if c.Debug {
		o.Debug = &c.Debug
	}
	return o
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// readRaw reads the named file, or stdin when name is empty
func (a *App) readRaw(name string) ([]byte, error) {
	if name != "" {
		return parser.ReadFile(name)
	}

	if f, ok := a.Stdin.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return nil, errors.NewInputError("failed to access stdin", err)
		}
		if info.Mode()&os.ModeCharDevice != 0 {
			return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	data, err := io.ReadAll(a.Stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return data, nil
}

// readDocument reads and parses the named file or stdin, honouring the
// input format and lenient mode
func (a *App) readDocument(name string) (models.Value, error) {
	data, err := a.readRaw(name)
	if err != nil {
		return models.Value{}, err
	}

	p := parser.NewParserWithConfig(a.Config)
	if a.isYAML(name) {
		return p.ParseYAML(data)
	}
	if !a.Config.Input.Lenient {
		return p.ParseBytes(data)
	}

	report := repair.NewPipelineWithConfig(a.Config, a.Logger).Repair(string(data))
	for _, fix := range report.Fixes {
		a.Logger.Info("repaired input", "fix", fix)
	}
	if !report.OK() {
		return models.Value{}, report.Err
	}
	return report.Value, nil
}

func (a *App) isYAML(name string) bool {
	if a.Config.Input.Format == config.FormatYAML {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yml" || ext == ".yaml"
}

// writeDocument serializes v in the configured output format
func (a *App) writeDocument(v models.Value) error {
	text, err := formatter.NewFormatterWithConfig(a.Config).Format(v)
	if err != nil {
		return errors.NewOutputError("failed to serialize document", err)
	}
	return a.writeText(text)
}

// writeText writes text to the output file or stdout
func (a *App) writeText(text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if a.Output != "" {
		if err := os.WriteFile(a.Output, []byte(text), 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", a.Output), err)
		}
		a.Logger.Debug("output written", "path", a.Output)
		return nil
	}
	if _, err := io.WriteString(a.Stdout, text); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
