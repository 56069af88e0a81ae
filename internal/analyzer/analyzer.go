// Package analyzer reports structural statistics for a Value and infers a
// schema that the schema package accepts for it.
package analyzer

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/treekit/internal/formatter"
	"github.com/mcncl/treekit/internal/models"
)

// DefaultRootName is the title given to the root object schema if not specified.
const DefaultRootName = "Root"

// Regex patterns for string and number formats
var (
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

	// Time format patterns (ordered by specificity - most specific first)
	rfc3339Regex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`) // 2006-01-02T15:04:05Z
	iso8601Regex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?([+-]\d{2}:\d{2}|Z|[+-]\d{4})?$`)
	dateOnlyRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)                           // 2006-01-02
	dateTimeRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`) // 2006-01-02 15:04:05
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	unixTimestampRegex = regexp.MustCompile(`^1[0-9]{9}$`)  // Unix timestamp (seconds since 1970)
	unixMilliRegex     = regexp.MustCompile(`^1[0-9]{12}$`) // Unix timestamp in milliseconds
)

// Analyzer infers schemas. It tracks the titles it has handed out so nested
// objects get distinct names.
type Analyzer struct {
	titles map[string]int
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{titles: make(map[string]int)}
}

// InferSchema derives a schema from a sample document with a fresh Analyzer.
func InferSchema(v models.Value) models.Value {
	return NewAnalyzer().InferSchema(v, DefaultRootName)
}

// InferSchema derives a schema describing v. Objects get "properties" and a
// PascalCase "title", arrays get "items" merged across their elements,
// whole numbers are "integer", and recognisable strings carry a "format".
// Validating v against the result never reports an error.
func (a *Analyzer) InferSchema(v models.Value, rootName string) models.Value {
	if rootName == "" {
		rootName = DefaultRootName
	}
	return a.render(infer(v), jsonKeyToPascalCase(rootName))
}

// shape is the merged description of one or more values at the same position.
type shape struct {
	types  []string
	format string
	keys   []string
	props  map[string]*shape
	items  *shape
}

func infer(v models.Value) *shape {
	switch v.Kind() {
	case models.KindObject:
		s := &shape{types: []string{"object"}, props: make(map[string]*shape)}
		v.AsObject().Range(func(key string, child models.Value) bool {
			s.keys = append(s.keys, key)
			s.props[key] = infer(child)
			return true
		})
		return s
	case models.KindArray:
		s := &shape{types: []string{"array"}}
		for _, item := range v.AsArray() {
			s.items = merge(s.items, infer(item))
		}
		return s
	case models.KindString:
		return &shape{types: []string{"string"}, format: stringFormat(v.AsString())}
	case models.KindNumber:
		if v.IsWhole() {
			return &shape{types: []string{"integer"}, format: numberFormat(v.AsNumber())}
		}
		return &shape{types: []string{"number"}}
	case models.KindBool:
		return &shape{types: []string{"boolean"}}
	default:
		return &shape{types: []string{"null"}}
	}
}

func stringFormat(s string) string {
	switch {
	case uuidRegex.MatchString(s):
		return "uuid"
	case rfc3339Regex.MatchString(s), iso8601Regex.MatchString(s), dateTimeRegex.MatchString(s):
		return "date-time"
	case dateOnlyRegex.MatchString(s):
		return "date"
	case emailRegex.MatchString(s):
		return "email"
	}
	return ""
}

func numberFormat(n float64) string {
	text := formatter.FormatNumber(n)
	switch {
	case unixTimestampRegex.MatchString(text):
		return "unix-time"
	case unixMilliRegex.MatchString(text):
		return "unix-time-ms"
	}
	return ""
}

// merge combines two shapes seen at the same position, e.g. two elements of
// one array. Either may be nil.
func merge(x, y *shape) *shape {
	if x == nil {
		return y
	}
	if y == nil {
		return x
	}

	out := &shape{types: slices.Clone(x.types)}
	for _, t := range y.types {
		if !slices.Contains(out.types, t) {
			out.types = append(out.types, t)
		}
	}
	// integer widens to number
	if slices.Contains(out.types, "number") {
		out.types = slices.DeleteFunc(out.types, func(t string) bool { return t == "integer" })
	}
	if x.format == y.format {
		out.format = x.format
	}

	if x.props != nil || y.props != nil {
		out.props = make(map[string]*shape)
		for _, src := range []*shape{x, y} {
			for _, key := range src.keys {
				if _, seen := out.props[key]; !seen {
					out.keys = append(out.keys, key)
				}
				out.props[key] = merge(out.props[key], src.props[key])
			}
		}
	}
	out.items = merge(x.items, y.items)
	return out
}

func (a *Analyzer) render(s *shape, name string) models.Value {
	obj := models.NewObject()
	if s == nil {
		// items of an empty array: any value
		return models.FromObject(obj)
	}

	isObject := slices.Contains(s.types, "object")
	if isObject {
		obj.Set("title", models.String(a.generateUniqueTitle(name)))
	}

	if len(s.types) == 1 {
		obj.Set("type", models.String(s.types[0]))
	} else {
		types := make([]models.Value, len(s.types))
		for i, t := range s.types {
			types[i] = models.String(t)
		}
		obj.Set("type", models.Array(types...))
	}
	if s.format != "" && len(s.types) == 1 {
		obj.Set("format", models.String(s.format))
	}

	if isObject {
		props := models.NewObject()
		for _, key := range s.keys {
			props.Set(key, a.render(s.props[key], jsonKeyToPascalCase(key)))
		}
		obj.Set("properties", models.FromObject(props))
	}
	if slices.Contains(s.types, "array") {
		obj.Set("items", a.render(s.items, singularize(name)))
	}
	return models.FromObject(obj)
}

// generateUniqueTitle ensures that the title is unique by appending a number if needed.
func (a *Analyzer) generateUniqueTitle(baseName string) string {
	name := baseName
	count := a.titles[baseName]
	if count > 0 {
		name = fmt.Sprintf("%s%d", baseName, count)
	}
	a.titles[baseName] = count + 1
	return name
}

// jsonKeyToPascalCase converts a JSON key to a PascalCase title.
func jsonKeyToPascalCase(jsonKey string) string {
	pascalCaseName := strcase.ToCamel(jsonKey)
	if pascalCaseName == "" {
		return "Field"
	}
	return pascalCaseName
}

var knownSingulars = map[string]string{
	"series":   "series",
	"status":   "status",
	"analysis": "analysis",
	"species":  "species",
	"news":     "news",
	"children": "child",
	"people":   "person",
	"men":      "man",
	"women":    "woman",
	"data":     "datum",
}

// singularize attempts to convert a plural name to a singular one.
func singularize(plural string) string {
	if singular, ok := knownSingulars[strings.ToLower(plural)]; ok {
		if plural != "" && strings.ToUpper(plural[:1]) == plural[:1] {
			return strings.ToUpper(singular[:1]) + singular[1:]
		}
		return singular
	}

	lowerPlural := strings.ToLower(plural)
	switch {
	case strings.HasSuffix(lowerPlural, "ies") && len(lowerPlural) > 3:
		return plural[:len(plural)-3] + "y"
	case strings.HasSuffix(lowerPlural, "ss"),
		strings.HasSuffix(lowerPlural, "us"),
		strings.HasSuffix(lowerPlural, "is"):
		return plural
	case strings.HasSuffix(lowerPlural, "s") && len(lowerPlural) > 1:
		return plural[:len(plural)-1]
	}
	return plural + "Item"
}
