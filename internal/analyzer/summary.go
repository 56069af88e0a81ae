package analyzer

import (
	"github.com/mcncl/treekit/internal/models"
)

// Summary holds structural statistics for one document.
type Summary struct {
	// Kinds counts nodes per kind name ("object", "array", "string", ...).
	Kinds map[string]int
	// Nodes is the total node count, the root included.
	Nodes int
	// MaxDepth is the deepest container nesting; a scalar root has depth 0.
	MaxDepth int
	// Keys is the number of object members across the document and
	// DistinctKeys the number of different key names among them.
	Keys         int
	DistinctKeys int
	// LongestArray is the largest element count of any array.
	LongestArray int
}

// Analyze walks v once, without recursion, and collects its Summary.
func Analyze(v models.Value) Summary {
	s := Summary{Kinds: make(map[string]int)}
	names := make(map[string]struct{})

	type item struct {
		value models.Value
		depth int
	}
	stack := []item{{value: v}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		s.Nodes++
		s.Kinds[cur.value.Kind().String()]++

		depth := cur.depth
		if cur.value.IsContainer() {
			depth++
		}
		s.MaxDepth = max(s.MaxDepth, depth)

		switch cur.value.Kind() {
		case models.KindObject:
			cur.value.AsObject().Range(func(key string, child models.Value) bool {
				s.Keys++
				names[key] = struct{}{}
				stack = append(stack, item{value: child, depth: depth})
				return true
			})
		case models.KindArray:
			s.LongestArray = max(s.LongestArray, cur.value.Len())
			for _, child := range cur.value.AsArray() {
				stack = append(stack, item{value: child, depth: depth})
			}
		}
	}
	s.DistinctKeys = len(names)
	return s
}

var kindOrder = []models.Kind{
	models.KindObject,
	models.KindArray,
	models.KindString,
	models.KindNumber,
	models.KindBool,
	models.KindNull,
}

// Value renders the summary as an ordered object for output.
func (s Summary) Value() models.Value {
	kinds := models.NewObject()
	for _, k := range kindOrder {
		kinds.Set(k.String(), models.Number(float64(s.Kinds[k.String()])))
	}
	return models.FromObject(models.ObjectOf(
		models.Member{Key: "nodes", Value: models.Number(float64(s.Nodes))},
		models.Member{Key: "kinds", Value: models.FromObject(kinds)},
		models.Member{Key: "max_depth", Value: models.Number(float64(s.MaxDepth))},
		models.Member{Key: "keys", Value: models.Number(float64(s.Keys))},
		models.Member{Key: "distinct_keys", Value: models.Number(float64(s.DistinctKeys))},
		models.Member{Key: "longest_array", Value: models.Number(float64(s.LongestArray))},
	))
}
