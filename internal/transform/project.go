package transform

import (
	"fmt"
	"strings"

	"github.com/mcncl/treekit/internal/errors"
	"github.com/mcncl/treekit/internal/models"
	"github.com/mcncl/treekit/internal/path"
)

// Mapping binds an output key to the path whose first match supplies its value.
type Mapping struct {
	Key  string
	Path path.Expression
}

// NewMapping parses expr and pairs it with key.
func NewMapping(key, expr string) (Mapping, error) {
	e, err := path.Parse(expr)
	if err != nil {
		return Mapping{}, err
	}
	return Mapping{Key: key, Path: e}, nil
}

// ParseMappings reads "key=path" pairs. A pair without "=" uses the path's
// text as its key.
func ParseMappings(pairs []string) ([]Mapping, error) {
	mappings := make([]Mapping, 0, len(pairs))
	for _, pair := range pairs {
		key, expr, found := strings.Cut(pair, "=")
		if !found {
			expr = key
		}
		if key == "" {
			return nil, errors.NewTransformError(fmt.Sprintf("mapping %q has an empty key", pair), errors.ErrInvalidPath)
		}
		m, err := NewMapping(key, expr)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

// MappingsFromValue reads mappings from an object of key -> path string, in
// member order.
func MappingsFromValue(v models.Value) ([]Mapping, error) {
	if !v.IsObject() {
		return nil, errors.NewTransformError("mapping must be an object of key to path", errors.ErrInvalidPath)
	}
	var mappings []Mapping
	var err error
	v.AsObject().Range(func(key string, expr models.Value) bool {
		if expr.Kind() != models.KindString {
			err = errors.NewTransformError(fmt.Sprintf("mapping for %q must be a path string, got %s", key, expr.Kind()), errors.ErrInvalidPath)
			return false
		}
		var m Mapping
		if m, err = NewMapping(key, expr.AsString()); err != nil {
			return false
		}
		mappings = append(mappings, m)
		return true
	})
	if err != nil {
		return nil, err
	}
	return mappings, nil
}

// Project builds a new object whose keys come from mappings, each bound to
// the first value its path resolves to in source, or null when nothing
// matches. An array source is projected element by element.
func Project(source models.Value, mappings []Mapping) models.Value {
	if source.IsArray() {
		items := make([]models.Value, source.Len())
		for i, item := range source.AsArray() {
			items[i] = projectOne(item, mappings)
		}
		return models.Array(items...)
	}
	return projectOne(source, mappings)
}

func projectOne(source models.Value, mappings []Mapping) models.Value {
	out := models.NewObject()
	for _, m := range mappings {
		v, _ := m.Path.First(source)
		out.Set(m.Key, v.Clone())
	}
	return models.FromObject(out)
}
