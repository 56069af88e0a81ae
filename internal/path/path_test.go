package path

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/treekit/internal/errors"
	"github.com/mcncl/treekit/internal/formatter"
	"github.com/mcncl/treekit/internal/models"
	"github.com/mcncl/treekit/internal/parser"
)

func mustValue(t *testing.T, text string) models.Value {
	t.Helper()
	v, err := parser.ParseString(text)
	require.NoError(t, err)
	return v
}

func compactAll(values []models.Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = formatter.Compact(v)
	}
	return out
}

func TestParse_Segments(t *testing.T) {
	e, err := Parse("users.*.tags[2].name")
	require.NoError(t, err)

	assert.Equal(t, []Segment{
		{Kind: SegmentKey, Name: "users"},
		{Kind: SegmentWildcard},
		{Kind: SegmentIndexedKey, Name: "tags", Index: 2},
		{Kind: SegmentKey, Name: "name"},
	}, e.Segments())
	assert.Equal(t, "users.*.tags[2].name", e.String())
}

func TestParse_KeysMayHoldPunctuation(t *testing.T) {
	e, err := Parse("first name.e-mail")
	require.NoError(t, err)
	assert.Equal(t, "first name", e.Segments()[0].Name)
	assert.Equal(t, "e-mail", e.Segments()[1].Name)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"empty segment", "a..b"},
		{"leading dot", ".a"},
		{"trailing dot", "a."},
		{"bare index", "[0]"},
		{"negative index", "a[-1]"},
		{"non-numeric index", "a[x]"},
		{"empty index", "a[]"},
		{"unterminated", "a[1"},
		{"text after index", "a[1]b"},
		{"double index", "a[1][2]"},
		{"stray bracket", "a]"},
		{"star in key", "a*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrInvalidPath))
			var appErr *errors.AppError
			require.True(t, stderrors.As(err, &appErr))
			assert.Equal(t, errors.ErrorTypePath, appErr.Type)
		})
	}
}

func TestResolve_WildcardFanOut(t *testing.T) {
	root := mustValue(t, `{"a": [{"b": 1}, {"b": 2}]}`)

	assert.Equal(t, []string{"1", "2"}, compactAll(MustParse("a.*.b").Resolve(root)))
	assert.Empty(t, MustParse("c.d").Resolve(root))
}

func TestResolve(t *testing.T) {
	root := mustValue(t, `{
		"store": {
			"books": [
				{"title": "A", "tags": ["x", "y"]},
				{"title": "B", "tags": []},
				{"title": "C"}
			],
			"owner": {"name": "Zed", "title": "Mr"},
			"count": 3
		}
	}`)

	tests := []struct {
		path string
		want []string
	}{
		{"store.count", []string{"3"}},
		{"store.books[1].title", []string{`"B"`}},
		{"store.books[3].title", nil},
		{"store.books.*.title", []string{`"A"`, `"B"`, `"C"`}},
		{"store.books.*.tags[1]", []string{`"y"`}},
		{"store.*.title", []string{`"Mr"`}},
		{"store.owner.*", []string{`"Zed"`, `"Mr"`}},
		{"store.*", []string{
			`[{"title":"A","tags":["x","y"]},{"title":"B","tags":[]},{"title":"C"}]`,
			`{"name":"Zed","title":"Mr"}`,
			`3`,
		}},
		{"store.count.*", nil},
		{"store.owner[0]", nil},
		{"store.count.value", nil},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := MustParse(tt.path).Resolve(root)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, compactAll(got))
		})
	}
}

func TestResolve_ScalarRoot(t *testing.T) {
	assert.Empty(t, MustParse("a").Resolve(models.Number(1)))
	assert.Empty(t, MustParse("*").Resolve(models.String("abc")))
}

func TestFirst(t *testing.T) {
	root := mustValue(t, `{"xs": [{"v": 10}, {"v": 20}]}`)

	v, ok := MustParse("xs.*.v").First(root)
	require.True(t, ok)
	assert.Equal(t, 10.0, v.AsNumber())

	v, ok = MustParse("xs.*.w").First(root)
	assert.False(t, ok)
	assert.True(t, v.IsNull())
}

func TestQuery_ReturnsCopies(t *testing.T) {
	root := mustValue(t, `{"a": {"b": [1]}}`)

	matches, err := Query(root, "a.b")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	matches[0].AsArray()[0] = models.String("changed")
	assert.Equal(t, `{"a":{"b":[1]}}`, formatter.Compact(root))
}

func TestQuery_InvalidPath(t *testing.T) {
	_, err := Query(models.Null(), "a..b")
	assert.ErrorIs(t, err, errors.ErrInvalidPath)
}

func TestResolveLocations(t *testing.T) {
	root := mustValue(t, `{"a": [{"b": 1}, {"c": 2}, {"b": 3}], "m": {"x": {"b": 4}}}`)

	matches := MustParse("a.*.b").ResolveLocations(root)
	require.Len(t, matches, 2)
	assert.Equal(t, "a[0].b", matches[0].Location)
	assert.Equal(t, "a[2].b", matches[1].Location)
	assert.Equal(t, 3.0, matches[1].Value.AsNumber())

	matches = MustParse("m.*.b").ResolveLocations(root)
	require.Len(t, matches, 1)
	assert.Equal(t, "m.x.b", matches[0].Location)

	matches = MustParse("a[1].c").ResolveLocations(root)
	require.Len(t, matches, 1)
	assert.Equal(t, "a[1].c", matches[0].Location)
}
