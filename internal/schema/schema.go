// Package schema checks a Value against a declarative schema that is itself a
// Value: an object with an optional "type" and, for objects, "properties".
// Only types are checked. A property declared in the schema but missing from
// the value is not an error.
package schema

import (
	"fmt"
	"strings"

	"github.com/mcncl/treekit/internal/errors"
	"github.com/mcncl/treekit/internal/models"
	"github.com/mcncl/treekit/internal/parser"
	"github.com/mcncl/treekit/internal/path"
)

// ValidationError is one type mismatch. Path uses flatten notation; the
// root is "".
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// typeKinds maps schema type names onto the value kind they accept.
var typeKinds = map[string]models.Kind{
	"object":  models.KindObject,
	"array":   models.KindArray,
	"string":  models.KindString,
	"number":  models.KindNumber,
	"integer": models.KindNumber,
	"boolean": models.KindBool,
	"null":    models.KindNull,
}

// ParseFile loads a schema document, JSON or YAML by extension.
func ParseFile(filePath string) (models.Value, error) {
	return parser.ParseFile(filePath)
}

// ParseString loads a JSON schema document.
func ParseString(s string) (models.Value, error) {
	return parser.ParseString(s)
}

type frame struct {
	path   string
	value  models.Value
	schema models.Value
}

// Validate checks value against schema and returns every mismatch in
// document order. An empty result means the value conforms.
//
// A node's "type" may be a single name or a list of names, any of which
// matches; "integer" accepts every number. On a mismatch the node's
// properties are not inspected.
func Validate(value, schema models.Value) []ValidationError {
	var errs []ValidationError
	stack := []frame{{value: value, schema: schema}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !cur.schema.IsObject() {
			continue
		}
		node := cur.schema.AsObject()

		if typ, ok := node.Get("type"); ok {
			if msg := checkType(typ, cur.value); msg != "" {
				errs = append(errs, ValidationError{Path: cur.path, Message: msg})
				continue
			}
		}

		props, ok := node.Get("properties")
		if !ok || !props.IsObject() || !cur.value.IsObject() {
			continue
		}
		obj := cur.value.AsObject()
		members := props.AsObject().Members()
		// Pushed in reverse so properties pop in declaration order.
		for i := len(members) - 1; i >= 0; i-- {
			child, present := obj.Get(members[i].Key)
			if !present {
				continue
			}
			stack = append(stack, frame{
				path:   path.JoinKey(cur.path, members[i].Key, "."),
				value:  child,
				schema: members[i].Value,
			})
		}
	}
	return errs
}

// checkType returns a mismatch message, or "" when v satisfies typ.
func checkType(typ models.Value, v models.Value) string {
	var names []string
	switch typ.Kind() {
	case models.KindString:
		names = []string{typ.AsString()}
	case models.KindArray:
		for _, item := range typ.AsArray() {
			if item.Kind() != models.KindString {
				return fmt.Sprintf("schema type list must hold strings, got %s", item.Kind())
			}
			names = append(names, item.AsString())
		}
		if len(names) == 0 {
			return ""
		}
	default:
		return fmt.Sprintf("schema type must be a string, got %s", typ.Kind())
	}

	for _, name := range names {
		kind, known := typeKinds[name]
		if !known {
			return fmt.Sprintf("unknown schema type %q", name)
		}
		if kind == v.Kind() {
			return ""
		}
	}
	return fmt.Sprintf("expected %s, got %s", strings.Join(names, " or "), v.Kind())
}

// AsError folds validation failures into one error wrapping
// errors.ErrSchemaViolation, or nil when there are none.
func AsError(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	msg := fmt.Sprintf("%d schema violation(s), first at %q: %s", len(errs), errs[0].Path, errs[0].Message)
	return errors.NewValidationError(msg, errors.ErrSchemaViolation)
}
