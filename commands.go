package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/mcncl/treekit/internal/analyzer"
	"github.com/mcncl/treekit/internal/errors"
	"github.com/mcncl/treekit/internal/models"
	"github.com/mcncl/treekit/internal/parser"
	"github.com/mcncl/treekit/internal/path"
	"github.com/mcncl/treekit/internal/repair"
	"github.com/mcncl/treekit/internal/schema"
	"github.com/mcncl/treekit/internal/transform"
)

// InputArg is the optional document argument shared by most commands
type InputArg struct {
	File string `arg:"" optional:"" help:"Input file. Reads stdin when omitted." type:"path"`
}

// FormatCmd re-serializes a document
type FormatCmd struct {
	InputArg
}

func (c *FormatCmd) Run(app *App) error {
	v, err := app.readDocument(c.File)
	if err != nil {
		return err
	}
	return app.writeDocument(v)
}

// RepairCmd runs the repair pipeline and reports what it changed
type RepairCmd struct {
	InputArg
}

func (c *RepairCmd) Run(app *App) error {
	data, err := app.readRaw(c.File)
	if err != nil {
		return err
	}

	report := repair.NewPipelineWithConfig(app.Config, app.Logger).Repair(string(data))
	for _, fix := range report.Fixes {
		fmt.Fprintf(app.Stderr, "fixed: %s\n", fix)
	}
	if !report.OK() {
		if err := app.writeText(report.Text); err != nil {
			return err
		}
		return report.Err
	}
	if len(report.Fixes) == 0 {
		fmt.Fprintln(app.Stderr, "no repairs needed")
	}
	return app.writeDocument(report.Value)
}

// QueryCmd lists the matches of a path expression
type QueryCmd struct {
	Path      string `arg:"" help:"Path expression, e.g. users.*.name or items[0].id."`
	File      string `arg:"" optional:"" help:"Input file. Reads stdin when omitted." type:"path"`
	Locations bool   `help:"Key each match by its location instead of listing values." short:"L"`
	First     bool   `help:"Print only the first match, or null."`
}

func (c *QueryCmd) Run(app *App) error {
	expr, err := path.Parse(c.Path)
	if err != nil {
		return err
	}
	v, err := app.readDocument(c.File)
	if err != nil {
		return err
	}

	if c.First {
		match, _ := expr.First(v)
		return app.writeDocument(match)
	}
	if c.Locations {
		out := models.NewObject()
		for _, m := range expr.ResolveLocations(v) {
			out.Set(m.Location, m.Value)
		}
		return app.writeDocument(models.FromObject(out))
	}

	matches := expr.Resolve(v)
	app.Logger.Debug("query resolved", "path", expr.String(), "matches", len(matches))
	return app.writeDocument(models.Array(matches...))
}

// FlattenCmd collapses a document into leaf paths
type FlattenCmd struct {
	InputArg
	Separator string `help:"Separator between object keys. Defaults to flatten.separator from config." short:"s"`
}

func (c *FlattenCmd) Run(app *App) error {
	v, err := app.readDocument(c.File)
	if err != nil {
		return err
	}
	return app.writeDocument(transform.Flatten(v, separator(app, c.Separator)))
}

// UnflattenCmd reverses flatten
type UnflattenCmd struct {
	InputArg
	Separator string `help:"Separator between object keys. Defaults to flatten.separator from config." short:"s"`
}

func (c *UnflattenCmd) Run(app *App) error {
	v, err := app.readDocument(c.File)
	if err != nil {
		return err
	}
	return app.writeDocument(transform.Unflatten(v, separator(app, c.Separator)))
}

func separator(app *App, flag string) string {
	if flag != "" {
		return flag
	}
	return app.Config.Flatten.Separator
}

// Recursion is embedded by commands that can stop at the root
type Recursion struct {
	Shallow bool `help:"Only rewrite the root object."`
}

func (r Recursion) recursive(app *App) bool {
	return app.Config.Transform.Recursive && !r.Shallow
}

// SortKeysCmd sorts object keys
type SortKeysCmd struct {
	InputArg
	Recursion
}

func (c *SortKeysCmd) Run(app *App) error {
	v, err := app.readDocument(c.File)
	if err != nil {
		return err
	}
	return app.writeDocument(transform.SortKeys(v, c.recursive(app)))
}

// RemoveKeysCmd drops members by key
type RemoveKeysCmd struct {
	InputArg
	Recursion
	Keys []string `help:"Key to remove. Repeat or separate with commas." short:"k" name:"key" required:""`
}

func (c *RemoveKeysCmd) Run(app *App) error {
	v, err := app.readDocument(c.File)
	if err != nil {
		return err
	}
	out, removed := transform.RemoveKeys(v, c.Keys, c.recursive(app))
	app.Logger.Info("removed keys", "count", removed)
	return app.writeDocument(out)
}

// RenameKeysCmd rewrites keys into a case style
type RenameKeysCmd struct {
	InputArg
	Recursion
	Case string `help:"Target style: camel, lower_camel, snake, kebab or screaming_snake." required:""`
}

func (c *RenameKeysCmd) Run(app *App) error {
	style, err := transform.ParseCaseStyle(c.Case)
	if err != nil {
		return err
	}
	v, err := app.readDocument(c.File)
	if err != nil {
		return err
	}
	out, err := transform.RenameKeys(v, style, c.recursive(app))
	if err != nil {
		return err
	}
	return app.writeDocument(out)
}

// DedupeCmd drops duplicate array elements
type DedupeCmd struct {
	InputArg
	Key string `help:"Identify object elements by this field instead of their whole value." short:"k"`
}

func (c *DedupeCmd) Run(app *App) error {
	v, err := app.readDocument(c.File)
	if err != nil {
		return err
	}
	out, removed := transform.Deduplicate(v, c.Key)
	app.Logger.Info("removed duplicates", "count", removed)
	return app.writeDocument(out)
}

// ProjectCmd builds objects from path expressions
type ProjectCmd struct {
	InputArg
	Map     []string `help:"Output key and path as key=path. Repeatable." short:"m"`
	Mapping string   `help:"JSON or YAML file holding an object of key to path." type:"existingfile"`
}

func (c *ProjectCmd) Run(app *App) error {
	mappings, err := transform.ParseMappings(c.Map)
	if err != nil {
		return err
	}
	if c.Mapping != "" {
		doc, err := app.readDocument(c.Mapping)
		if err != nil {
			return err
		}
		fromFile, err := transform.MappingsFromValue(doc)
		if err != nil {
			return err
		}
		mappings = append(fromFile, mappings...)
	}
	if len(mappings) == 0 {
		return errors.NewTransformError("project needs at least one --map or --mapping", errors.ErrInvalidPath)
	}

	v, err := app.readDocument(c.File)
	if err != nil {
		return err
	}
	return app.writeDocument(transform.Project(v, mappings))
}

// ArrayCmd applies one array operation
type ArrayCmd struct {
	Op    string `arg:"" help:"Operation: concat, slice, reverse, shuffle or unique."`
	File  string `arg:"" optional:"" help:"Input file. Reads stdin when omitted." type:"path"`
	With  string `help:"Document appended by concat." type:"existingfile"`
	Start int    `help:"First index kept by slice. Negative counts from the end."`
	End   *int   `help:"Index slice stops before. Defaults to the array length."`
	Seed  uint64 `help:"Seed for shuffle. Zero picks a random order each run."`
}

func (c *ArrayCmd) Run(app *App) error {
	op, err := transform.ParseArrayOperation(c.Op)
	if err != nil {
		return err
	}
	v, err := app.readDocument(c.File)
	if err != nil {
		return err
	}

	params := transform.ArrayParams{Start: c.Start, End: c.End}
	if op == transform.OpConcat {
		if c.With == "" {
			return errors.NewTransformError("concat needs --with", errors.ErrNoInput)
		}
		other, err := app.readDocument(c.With)
		if err != nil {
			return err
		}
		params.Other = &other
	}
	if c.Seed != 0 {
		params.Rand = rand.New(rand.NewPCG(c.Seed, c.Seed))
	}

	out, err := transform.ArrayOp(v, op, params)
	if err != nil {
		return err
	}
	return app.writeDocument(out)
}

// ValidateCmd checks a document against a schema
type ValidateCmd struct {
	InputArg
	Schema string `help:"Schema file (JSON or YAML)." short:"s" required:"" type:"existingfile"`
}

func (c *ValidateCmd) Run(app *App) error {
	s, err := parser.NewParserWithConfig(app.Config).ParseFile(c.Schema)
	if err != nil {
		return err
	}
	v, err := app.readDocument(c.File)
	if err != nil {
		return err
	}

	errs := schema.Validate(v, s)
	for _, e := range errs {
		location := e.Path
		if location == "" {
			location = "(root)"
		}
		fmt.Fprintf(app.Stdout, "%s: %s\n", location, e.Message)
	}
	if len(errs) == 0 {
		fmt.Fprintln(app.Stdout, "valid")
	}
	return schema.AsError(errs)
}

// InferCmd derives a schema from a sample
type InferCmd struct {
	InputArg
	Title string `help:"Title for the root object schema." default:"Root"`
}

func (c *InferCmd) Run(app *App) error {
	v, err := app.readDocument(c.File)
	if err != nil {
		return err
	}
	return app.writeDocument(analyzer.NewAnalyzer().InferSchema(v, c.Title))
}

// StatsCmd reports structural statistics
type StatsCmd struct {
	InputArg
}

func (c *StatsCmd) Run(app *App) error {
	v, err := app.readDocument(c.File)
	if err != nil {
		return err
	}
	return app.writeDocument(analyzer.Analyze(v).Value())
}
