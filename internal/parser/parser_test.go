package parser

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/treekit/internal/config"
	"github.com/mcncl/treekit/internal/errors"
	"github.com/mcncl/treekit/internal/models"
)

func TestParse_SimpleObject(t *testing.T) {
	v, err := Parse(strings.NewReader(`{"name": "John Doe", "age": 30, "isStudent": false, "city": null}`))
	require.NoError(t, err)
	require.True(t, v.IsObject())

	obj := v.AsObject()
	assert.Equal(t, []string{"name", "age", "isStudent", "city"}, obj.Keys())

	name, _ := obj.Get("name")
	assert.Equal(t, "John Doe", name.AsString())
	age, _ := obj.Get("age")
	assert.Equal(t, 30.0, age.AsNumber())
	student, _ := obj.Get("isStudent")
	assert.Equal(t, models.KindBool, student.Kind())
	assert.False(t, student.AsBool())
	city, _ := obj.Get("city")
	assert.True(t, city.IsNull())
}

func TestParse_SimpleArray(t *testing.T) {
	v, err := ParseString(`[1, "test", true, null, 3.14]`)
	require.NoError(t, err)

	expected := models.Array(
		models.Number(1),
		models.String("test"),
		models.Bool(true),
		models.Null(),
		models.Number(3.14),
	)
	assert.True(t, models.Equal(expected, v), "got %v", v)
}

func TestParse_KeyOrderIsPreserved(t *testing.T) {
	v, err := ParseString(`{"zeta": 1, "alpha": {"y": 1, "b": 2, "m": 3}, "mid": []}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, v.AsObject().Keys())
	alpha, _ := v.AsObject().Get("alpha")
	assert.Equal(t, []string{"y", "b", "m"}, alpha.AsObject().Keys())
}

func TestParse_DuplicateKeyOverwritesInPlace(t *testing.T) {
	v, err := ParseString(`{"a": 1, "b": 2, "a": 3}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, v.AsObject().Keys())
	a, _ := v.AsObject().Get("a")
	assert.Equal(t, 3.0, a.AsNumber())
}

func TestParse_Scalars(t *testing.T) {
	tests := []struct {
		text string
		want models.Value
	}{
		{`"hi!\n"`, models.String("hi!\n")},
		{`-12.5e2`, models.Number(-1250)},
		{`0`, models.Number(0)},
		{`true`, models.Bool(true)},
		{`null`, models.Null()},
		{"  \n\t42 \n", models.Number(42)},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			v, err := ParseString(tt.text)
			require.NoError(t, err)
			assert.True(t, models.Equal(tt.want, v), "got %v", v)
		})
	}
}

func TestParse_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := ParseString(text)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, errors.ErrEmptyInput))
		assert.Contains(t, err.Error(), "input is empty")
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"missing closing brace", `{"name": "John Doe", "age": 30`},
		{"missing closing bracket", `["item1", "item2",`},
		{"trailing comma", `{"a": 1,}`},
		{"single quotes", `{'a': 1}`},
		{"bare key", `{a: 1}`},
		{"comment", `{"a": 1 /* c */}`},
		{"NaN literal", `{"a": NaN}`},
		{"missing comma", "[1\n2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.text)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrInvalidJSON), "got %v", err)

			var appErr *errors.AppError
			require.True(t, stderrors.As(err, &appErr))
			assert.Equal(t, errors.ErrorTypeParsing, appErr.Type)
		})
	}
}

func TestParse_SyntaxErrorHasPosition(t *testing.T) {
	_, err := ParseString("{\n  \"a\": 1,\n  \"b\": }\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line ")
	assert.Contains(t, err.Error(), "column ")
}

func TestParse_MultipleValues(t *testing.T) {
	_, err := ParseString(`{"a": 1} {"b": 2}`)
	require.Error(t, err)
}

func TestParse_MaxDepth(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Input.MaxDepth = 3
	p := NewParserWithConfig(cfg)

	_, err := p.ParseString(`[[[1]]]`)
	require.NoError(t, err)

	_, err = p.ParseString(`[[[[1]]]]`)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrTooDeep))

	// brackets inside strings do not count
	_, err = p.ParseString(`["[[[[[[", {"k": "]]]]{{{{"}]`)
	require.NoError(t, err)
}

func TestParse_DeepDocumentRejectedByDefault(t *testing.T) {
	depth := config.DefaultMaxDepth + 1
	text := strings.Repeat("[", depth) + strings.Repeat("]", depth)

	_, err := ParseString(text)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrTooDeep))
}

func TestParseFile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"product": "Laptop", "price": 1200.50}`), 0o644))

	v, err := ParseFile(path)
	require.NoError(t, err)
	price, ok := v.AsObject().Get("price")
	require.True(t, ok)
	assert.Equal(t, 1200.5, price.AsNumber())
}

func TestParseFile_YAMLByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("b: 1\na: [x, y]\n"), 0o644))

	v, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, v.AsObject().Keys())
}

func TestParseFile_Errors(t *testing.T) {
	_, err := ParseFile("")
	assert.True(t, stderrors.Is(err, errors.ErrInvalidFilePath))

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, stderrors.Is(err, errors.ErrFileNotFound))

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = ParseFile(empty)
	assert.True(t, stderrors.Is(err, errors.ErrFileEmpty))

	var appErr *errors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, errors.ErrorTypeInput, appErr.Type)
}
