// Package transform holds the structural rewrites of a models.Value tree.
// Every function returns a fresh tree and leaves its argument untouched.
package transform

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mcncl/treekit/internal/models"
	"github.com/mcncl/treekit/internal/path"
)

// DefaultSeparator joins object segments in flattened keys.
const DefaultSeparator = "."

// Flatten collapses v into a single-level Object keyed by root-to-leaf
// locations. Object segments are joined by separator and array segments are
// rendered as "[i]", e.g. {"a":{"b":[1,2]}} becomes {"a.b[0]":1,"a.b[1]":2}.
// Empty objects and arrays are kept as leaves; a scalar root is stored under "".
func Flatten(v models.Value, separator string) models.Value {
	if separator == "" {
		separator = DefaultSeparator
	}
	out := models.NewObject()
	flattenInto(out, "", v, separator, true)
	return models.FromObject(out)
}

func flattenInto(out *models.Object, prefix string, v models.Value, sep string, root bool) {
	switch v.Kind() {
	case models.KindObject:
		if v.Len() == 0 {
			if !root {
				out.Set(prefix, models.FromObject(nil))
			}
			return
		}
		v.AsObject().Range(func(key string, child models.Value) bool {
			flattenInto(out, path.JoinKey(prefix, key, sep), child, sep, false)
			return true
		})
	case models.KindArray:
		if v.Len() == 0 {
			if !root {
				out.Set(prefix, models.Array())
			}
			return
		}
		for i, item := range v.AsArray() {
			flattenInto(out, path.JoinIndex(prefix, i), item, sep, false)
		}
	default:
		out.Set(prefix, v.Clone())
	}
}

// maxUnflattenIndex bounds the array length Unflatten will allocate for one key.
const maxUnflattenIndex = 1 << 20

var indexSuffix = regexp.MustCompile(`^(.*?)((?:\[\d+\])*)$`)

// Unflatten rebuilds a nested tree from keys in Flatten notation. Array gaps
// are filled with null; when two keys disagree about a container's kind the
// later key wins. Non-object input is returned as a copy.
func Unflatten(v models.Value, separator string) models.Value {
	if !v.IsObject() {
		return v.Clone()
	}
	if separator == "" {
		separator = DefaultSeparator
	}

	root := &slot{}
	v.AsObject().Range(func(key string, leaf models.Value) bool {
		cur := root
		for _, st := range keySteps(key, separator) {
			cur = cur.child(st)
		}
		cur.setLeaf(leaf.Clone())
		return true
	})
	if root.kind == slotUnset {
		return models.FromObject(nil)
	}
	return root.build()
}

type step struct {
	key     string
	index   int
	isIndex bool
}

func keySteps(key, sep string) []step {
	if key == "" {
		return nil
	}
	var steps []step
	for _, part := range strings.Split(key, sep) {
		m := indexSuffix.FindStringSubmatch(part)
		name, indices := m[1], m[2]
		if name != "" || indices == "" {
			steps = append(steps, step{key: name})
		}
		for _, raw := range strings.Split(strings.Trim(indices, "[]"), "][") {
			if raw == "" {
				continue
			}
			i, err := strconv.Atoi(raw)
			if err != nil || i > maxUnflattenIndex {
				// Oversized indices are kept as literal keys
				steps = append(steps, step{key: "[" + raw + "]"})
				continue
			}
			steps = append(steps, step{index: i, isIndex: true})
		}
	}
	return steps
}

type slotKind int

const (
	slotUnset slotKind = iota
	slotLeaf
	slotObject
	slotArray
)

// slot is a mutable node used while rebuilding; Values are assembled at the end.
type slot struct {
	kind   slotKind
	leaf   models.Value
	keys   []string
	fields map[string]*slot
	items  map[int]*slot
}

func (s *slot) child(st step) *slot {
	if st.isIndex {
		if s.kind != slotArray {
			*s = slot{kind: slotArray, items: make(map[int]*slot)}
		}
		c, ok := s.items[st.index]
		if !ok {
			c = &slot{}
			s.items[st.index] = c
		}
		return c
	}
	if s.kind != slotObject {
		*s = slot{kind: slotObject, fields: make(map[string]*slot)}
	}
	c, ok := s.fields[st.key]
	if !ok {
		c = &slot{}
		s.fields[st.key] = c
		s.keys = append(s.keys, st.key)
	}
	return c
}

func (s *slot) setLeaf(v models.Value) {
	*s = slot{kind: slotLeaf, leaf: v}
}

func (s *slot) build() models.Value {
	switch s.kind {
	case slotLeaf:
		return s.leaf
	case slotObject:
		obj := models.NewObject()
		for _, k := range s.keys {
			obj.Set(k, s.fields[k].build())
		}
		return models.FromObject(obj)
	case slotArray:
		indices := make([]int, 0, len(s.items))
		for i := range s.items {
			indices = append(indices, i)
		}
		sort.Ints(indices)
		size := 0
		if len(indices) > 0 {
			size = indices[len(indices)-1] + 1
		}
		items := make([]models.Value, size)
		for _, i := range indices {
			items[i] = s.items[i].build()
		}
		return models.Array(items...)
	default:
		return models.Null()
	}
}
