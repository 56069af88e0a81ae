package formatter

import (
	"math"
	"sort"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/mcncl/treekit/internal/config"
	"github.com/mcncl/treekit/internal/models"
)

// Formatter renders a Value as JSON or YAML text
type Formatter struct {
	format string
	indent string
}

// NewFormatter creates a Formatter that writes indented JSON
func NewFormatter() *Formatter {
	return &Formatter{format: config.FormatJSON, indent: "  "}
}

// NewFormatterWithConfig creates a Formatter from the output section of cfg
func NewFormatterWithConfig(cfg *config.Config) *Formatter {
	f := NewFormatter()
	if cfg == nil {
		return f
	}
	f.format = cfg.Output.Format
	f.indent = cfg.Output.Indent
	if cfg.Output.Compact {
		f.indent = ""
	}
	return f
}

// Format renders v according to the configured format
func (f *Formatter) Format(v models.Value) (string, error) {
	if f.format == config.FormatYAML {
		return YAML(v)
	}
	if f.indent == "" {
		return Compact(v), nil
	}
	return Indent(v, f.indent), nil
}

// Compact renders v as JSON without insignificant whitespace, keeping member order
func Compact(v models.Value) string {
	var sb strings.Builder
	w := writer{sb: &sb}
	w.value(v, 0)
	return sb.String()
}

// Indent renders v as JSON with one indent unit per nesting level
func Indent(v models.Value, indent string) string {
	var sb strings.Builder
	w := writer{sb: &sb, indent: indent}
	w.value(v, 0)
	return sb.String()
}

// Canonical renders v compactly with object keys sorted at every level.
// Two values with the same members in different order share one canonical form.
func Canonical(v models.Value) string {
	var sb strings.Builder
	w := writer{sb: &sb, sorted: true}
	w.value(v, 0)
	return sb.String()
}

type writer struct {
	sb     *strings.Builder
	indent string
	sorted bool
}

func (w writer) newline(level int) {
	if w.indent == "" {
		return
	}
	w.sb.WriteByte('\n')
	for i := 0; i < level; i++ {
		w.sb.WriteString(w.indent)
	}
}

func (w writer) value(v models.Value, level int) {
	switch v.Kind() {
	case models.KindNull:
		w.sb.WriteString("null")
	case models.KindBool:
		w.sb.WriteString(strconv.FormatBool(v.AsBool()))
	case models.KindNumber:
		w.sb.WriteString(FormatNumber(v.AsNumber()))
	case models.KindString:
		w.sb.WriteString(Quote(v.AsString()))
	case models.KindArray:
		items := v.AsArray()
		if len(items) == 0 {
			w.sb.WriteString("[]")
			return
		}
		w.sb.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				w.sb.WriteByte(',')
			}
			w.newline(level + 1)
			w.value(item, level+1)
		}
		w.newline(level)
		w.sb.WriteByte(']')
	case models.KindObject:
		members := v.AsObject().Members()
		if len(members) == 0 {
			w.sb.WriteString("{}")
			return
		}
		if w.sorted {
			sort.SliceStable(members, func(i, j int) bool { return members[i].Key < members[j].Key })
		}
		w.sb.WriteByte('{')
		for i, m := range members {
			if i > 0 {
				w.sb.WriteByte(',')
			}
			w.newline(level + 1)
			w.sb.WriteString(Quote(m.Key))
			w.sb.WriteByte(':')
			if w.indent != "" {
				w.sb.WriteByte(' ')
			}
			w.value(m.Value, level+1)
		}
		w.newline(level)
		w.sb.WriteByte('}')
	}
}

// Quote renders s as a JSON string literal
func Quote(s string) string {
	b, err := gojson.MarshalNoEscape(s)
	if err != nil {
		// Strings always marshal; keep a valid literal regardless
		return strconv.Quote(s)
	}
	return string(b)
}

// FormatNumber renders f the way encoding/json does. NaN and infinities have
// no JSON form and render as null.
func FormatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}
	abs := math.Abs(f)
	fmtByte := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		fmtByte = 'e'
	}
	b := strconv.AppendFloat(nil, f, fmtByte, -1, 64)
	if fmtByte == 'e' {
		// clean up e-09 to e-9
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	return string(b)
}
