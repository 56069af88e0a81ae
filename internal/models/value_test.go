package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_ZeroIsNull(t *testing.T) {
	var v Value
	assert.True(t, v.IsNull())
	assert.Equal(t, KindNull, v.Kind())
	assert.Equal(t, "null", v.Kind().String())
}

func TestValue_Accessors(t *testing.T) {
	assert.True(t, Bool(true).AsBool())
	assert.False(t, String("true").AsBool())
	assert.Equal(t, 2.5, Number(2.5).AsNumber())
	assert.Equal(t, "hi", String("hi").AsString())
	assert.Equal(t, "", Number(1).AsString())
	assert.Nil(t, String("x").AsArray())
	assert.Nil(t, Array().AsObject())
	assert.Equal(t, 2, Array(Null(), Bool(false)).Len())
	assert.Equal(t, 0, Array().Len())
	assert.True(t, Array().IsContainer())
	assert.False(t, Null().IsContainer())
}

func TestValue_IsWhole(t *testing.T) {
	assert.True(t, Number(3).IsWhole())
	assert.True(t, Number(-0).IsWhole())
	assert.False(t, Number(3.5).IsWhole())
	assert.False(t, Number(math.Inf(1)).IsWhole())
	assert.False(t, Number(math.NaN()).IsWhole())
	assert.False(t, String("3").IsWhole())
}

func TestObject_SetKeepsPosition(t *testing.T) {
	o := NewObject()
	o.Set("a", Number(1))
	o.Set("b", Number(2))
	o.Set("a", Number(3))

	assert.Equal(t, []string{"a", "b"}, o.Keys())
	v, ok := o.Get("a")
	require.True(t, ok)
	assert.Equal(t, 3.0, v.AsNumber())
}

func TestObject_Delete(t *testing.T) {
	o := ObjectOf(
		Member{Key: "a", Value: Number(1)},
		Member{Key: "b", Value: Number(2)},
		Member{Key: "c", Value: Number(3)},
	)

	assert.True(t, o.Delete("b"))
	assert.False(t, o.Delete("b"))
	assert.Equal(t, []string{"a", "c"}, o.Keys())

	v, ok := o.Get("c")
	require.True(t, ok)
	assert.Equal(t, 3.0, v.AsNumber())

	o.Set("b", Number(4))
	assert.Equal(t, []string{"a", "c", "b"}, o.Keys())
}

func TestObject_NilIsEmpty(t *testing.T) {
	var o *Object
	assert.Equal(t, 0, o.Len())
	assert.False(t, o.Has("x"))
	assert.Empty(t, o.Keys())
	assert.Equal(t, 0, o.Clone().Len())
	_, ok := o.Get("x")
	assert.False(t, ok)
}

func TestObject_ZeroValueSet(t *testing.T) {
	var o Object
	o.Set("k", Bool(true))
	assert.True(t, o.Has("k"))
}

func TestClone_NoSharedContainers(t *testing.T) {
	inner := ObjectOf(Member{Key: "x", Value: Number(1)})
	original := FromObject(ObjectOf(
		Member{Key: "list", Value: Array(Number(1), Number(2))},
		Member{Key: "inner", Value: FromObject(inner)},
	))

	copied := original.Clone()
	require.True(t, Equal(original, copied))

	copied.AsObject().Set("extra", Null())
	list, _ := copied.AsObject().Get("list")
	list.AsArray()[0] = String("changed")
	in, _ := copied.AsObject().Get("inner")
	in.AsObject().Set("x", Number(99))

	assert.Equal(t, 2, original.Len())
	origList, _ := original.AsObject().Get("list")
	assert.Equal(t, 1.0, origList.AsArray()[0].AsNumber())
	x, _ := inner.Get("x")
	assert.Equal(t, 1.0, x.AsNumber())
}

func TestEqual(t *testing.T) {
	ab := FromObject(ObjectOf(Member{Key: "a", Value: Null()}, Member{Key: "b", Value: Null()}))
	ba := FromObject(ObjectOf(Member{Key: "b", Value: Null()}, Member{Key: "a", Value: Null()}))

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nulls", Null(), Null(), true},
		{"kind mismatch", Null(), Bool(false), false},
		{"numbers", Number(1), Number(1), true},
		{"strings", String("a"), String("b"), false},
		{"arrays", Array(Number(1)), Array(Number(1)), true},
		{"array length", Array(Number(1)), Array(Number(1), Number(1)), false},
		{"object order matters", ab, ba, false},
		{"same object", ab, ab.Clone(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestValue_String(t *testing.T) {
	v := FromObject(ObjectOf(
		Member{Key: "a", Value: Array(Number(1), String("x"))},
		Member{Key: "b", Value: Null()},
	))
	assert.Equal(t, `{"a": [1 "x"], "b": null}`, v.String())
}
