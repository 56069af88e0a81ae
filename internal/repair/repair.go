// Package repair turns malformed JSON-like text into parseable JSON with a
// fixed sequence of textual passes, reporting each pass that changed
// anything. Pass order is significant: each pass sees the output of the
// previous one.
package repair

import (
	"log/slog"

	"github.com/mcncl/treekit/internal/config"
	"github.com/mcncl/treekit/internal/errors"
	"github.com/mcncl/treekit/internal/models"
	"github.com/mcncl/treekit/internal/parser"
)

// Pass is one textual correction step.
type Pass struct {
	// Name matches the key under repair.passes in the config file.
	Name string
	// Fix is the report entry added when the pass changes the text.
	Fix   string
	Apply func(string) string
}

// Passes returns every pass in pipeline order.
func Passes() []Pass {
	return []Pass{
		{Name: "strip_bom", Fix: "removed byte order mark", Apply: stripBOM},
		{Name: "trailing_commas", Fix: "removed trailing commas", Apply: removeTrailingCommas},
		{Name: "single_quotes", Fix: "converted single-quoted strings to double quotes", Apply: convertSingleQuotes},
		{Name: "unquoted_keys", Fix: "quoted unquoted object keys", Apply: quoteBareKeys},
		{Name: "missing_commas", Fix: "inserted missing commas between elements", Apply: insertMissingCommas},
		{Name: "comments", Fix: "removed comments", Apply: stripComments},
		{Name: "literals", Fix: "replaced undefined, NaN and Infinity with null", Apply: replaceLiterals},
	}
}

// Report is the outcome of one Repair call. On success Value holds the
// parsed document and Err is nil. On failure Text still holds the partially
// repaired input.
type Report struct {
	Fixes []string
	Text  string
	Value models.Value
	Err   error
}

// OK reports whether the repaired text parsed.
func (r Report) OK() bool {
	return r.Err == nil
}

// Pipeline runs the enabled passes and then parses the result.
type Pipeline struct {
	passes []Pass
	parser *parser.Parser
	logger *slog.Logger
}

// NewPipeline creates a pipeline with every pass enabled.
func NewPipeline(logger *slog.Logger) *Pipeline {
	return NewPipelineWithConfig(config.NewConfig(), logger)
}

// NewPipelineWithConfig creates a pipeline honouring cfg.Repair.Passes and
// the parser limits in cfg.Input.
func NewPipelineWithConfig(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	enabled := map[string]bool{
		"strip_bom":       cfg.Repair.Passes.StripBOM,
		"trailing_commas": cfg.Repair.Passes.TrailingCommas,
		"single_quotes":   cfg.Repair.Passes.SingleQuotes,
		"unquoted_keys":   cfg.Repair.Passes.UnquotedKeys,
		"missing_commas":  cfg.Repair.Passes.MissingCommas,
		"comments":        cfg.Repair.Passes.Comments,
		"literals":        cfg.Repair.Passes.Literals,
	}

	var passes []Pass
	for _, p := range Passes() {
		if enabled[p.Name] {
			passes = append(passes, p)
		}
	}
	return &Pipeline{
		passes: passes,
		parser: parser.NewParserWithConfig(cfg),
		logger: logger,
	}
}

// Repair runs the pipeline over text. Malformed input never yields a Go
// error from this call; a failed final parse is carried in the Report.
func (p *Pipeline) Repair(text string) Report {
	report := Report{Text: text}
	for _, pass := range p.passes {
		next := pass.Apply(report.Text)
		if next == report.Text {
			continue
		}
		p.logger.Debug("repair pass applied", "pass", pass.Name)
		report.Fixes = append(report.Fixes, pass.Fix)
		report.Text = next
	}

	v, err := p.parser.ParseString(report.Text)
	if err != nil {
		p.logger.Warn("repaired text still does not parse",
			"fixes", len(report.Fixes),
			"error", err)
		report.Err = errors.NewRepairError(err.Error(), errors.ErrRepairFailed)
		return report
	}
	report.Value = v
	return report
}

// Repair runs the default pipeline over text.
func Repair(text string) Report {
	return NewPipeline(nil).Repair(text)
}
