package transform

import (
	"fmt"
	"sort"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/treekit/internal/errors"
	"github.com/mcncl/treekit/internal/models"
)

// SortKeys rebuilds objects with keys in ascending byte order. When recursive
// is false only the root object's own keys are reordered.
func SortKeys(v models.Value, recursive bool) models.Value {
	switch v.Kind() {
	case models.KindObject:
		members := v.AsObject().Members()
		sort.SliceStable(members, func(i, j int) bool { return members[i].Key < members[j].Key })
		out := models.NewObject()
		for _, m := range members {
			if recursive {
				out.Set(m.Key, SortKeys(m.Value, true))
			} else {
				out.Set(m.Key, m.Value.Clone())
			}
		}
		return models.FromObject(out)
	case models.KindArray:
		if !recursive {
			return v.Clone()
		}
		items := make([]models.Value, v.Len())
		for i, item := range v.AsArray() {
			items[i] = SortKeys(item, true)
		}
		return models.Array(items...)
	default:
		return v
	}
}

// RemoveKeys drops every object member whose key is in keys and reports how
// many members were dropped. Without recursive only the root object is
// inspected; with it, the remaining children of objects and arrays are too.
func RemoveKeys(v models.Value, keys []string, recursive bool) (models.Value, int) {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	removed := 0
	out := removeKeys(v, set, recursive, &removed)
	return out, removed
}

func removeKeys(v models.Value, set map[string]struct{}, recursive bool, removed *int) models.Value {
	switch v.Kind() {
	case models.KindObject:
		out := models.NewObject()
		v.AsObject().Range(func(key string, child models.Value) bool {
			if _, drop := set[key]; drop {
				*removed++
				return true
			}
			if recursive {
				out.Set(key, removeKeys(child, set, true, removed))
			} else {
				out.Set(key, child.Clone())
			}
			return true
		})
		return models.FromObject(out)
	case models.KindArray:
		if !recursive {
			return v.Clone()
		}
		items := make([]models.Value, v.Len())
		for i, item := range v.AsArray() {
			items[i] = removeKeys(item, set, true, removed)
		}
		return models.Array(items...)
	default:
		return v
	}
}

// CaseStyle names a key spelling convention for RenameKeys.
type CaseStyle string

const (
	CaseCamel          CaseStyle = "camel"
	CaseLowerCamel     CaseStyle = "lower_camel"
	CaseSnake          CaseStyle = "snake"
	CaseScreamingSnake CaseStyle = "screaming_snake"
	CaseKebab          CaseStyle = "kebab"
)

var caseConverters = map[CaseStyle]func(string) string{
	CaseCamel:          strcase.ToCamel,
	CaseLowerCamel:     strcase.ToLowerCamel,
	CaseSnake:          strcase.ToSnake,
	CaseScreamingSnake: strcase.ToScreamingSnake,
	CaseKebab:          strcase.ToKebab,
}

// ParseCaseStyle validates a style name.
func ParseCaseStyle(name string) (CaseStyle, error) {
	style := CaseStyle(name)
	if _, ok := caseConverters[style]; !ok {
		return "", errors.NewTransformError(fmt.Sprintf("unknown key case %q", name), errors.ErrUnknownOperation)
	}
	return style, nil
}

// RenameKeys rewrites object keys into style. Keys that collapse onto the same
// name keep the first one's position and the last one's value.
func RenameKeys(v models.Value, style CaseStyle, recursive bool) (models.Value, error) {
	convert, ok := caseConverters[style]
	if !ok {
		return models.Value{}, errors.NewTransformError(fmt.Sprintf("unknown key case %q", style), errors.ErrUnknownOperation)
	}
	return renameKeys(v, convert, recursive), nil
}

func renameKeys(v models.Value, convert func(string) string, recursive bool) models.Value {
	switch v.Kind() {
	case models.KindObject:
		out := models.NewObject()
		v.AsObject().Range(func(key string, child models.Value) bool {
			if recursive {
				out.Set(convert(key), renameKeys(child, convert, true))
			} else {
				out.Set(convert(key), child.Clone())
			}
			return true
		})
		return models.FromObject(out)
	case models.KindArray:
		if !recursive {
			return v.Clone()
		}
		items := make([]models.Value, v.Len())
		for i, item := range v.AsArray() {
			items[i] = renameKeys(item, convert, true)
		}
		return models.Array(items...)
	default:
		return v
	}
}
