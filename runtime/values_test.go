package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pontaoski/brace/types"
)

func rectLayout(name string) ([]FieldLayout, bool) {
	switch name {
	case "Point":
		return []FieldLayout{{"x", types.Int}, {"y", types.Int}}, true
	case "Rect":
		return []FieldLayout{
			{"min", &types.Struct{Name: "Point"}},
			{"tags", &types.Array{Elem: types.Str, Len: 2}},
		}, true
	}
	return nil, false
}

func TestZero(t *testing.T) {
	v, err := Zero(types.Int, rectLayout)
	require.NoError(t, err)
	require.Equal(t, IntValue(0), v)

	v, err = Zero(types.Bool, rectLayout)
	require.NoError(t, err)
	require.Equal(t, BoolValue(false), v)

	v, err = Zero(&types.Struct{Name: "Rect"}, rectLayout)
	require.NoError(t, err)
	require.Equal(t, `Rect { min: Point { x: 0, y: 0 }, tags: ["", ""] }`, v.String())
	require.Equal(t, "Rect", v.Type().String())

	_, err = Zero(&types.Struct{Name: "Nope"}, rectLayout)
	require.Error(t, err)
}

func TestZeroRejectsOversizedArrays(t *testing.T) {
	for _, n := range []int{-1, types.MaxArrayLen + 1, int(^uint(0) >> 1)} {
		_, err := Zero(&types.Array{Elem: types.Int, Len: n}, rectLayout)
		require.ErrorIs(t, err, ErrTooLarge, "length %d", n)
	}

	v, err := Zero(&types.Array{Elem: types.Bool, Len: 3}, rectLayout)
	require.NoError(t, err)
	require.Equal(t, "[false, false, false]", v.String())
}

func TestCopyIsIndependent(t *testing.T) {
	orig, err := Zero(&types.Struct{Name: "Rect"}, rectLayout)
	require.NoError(t, err)

	dup := Copy(orig)
	require.True(t, Equal(orig, dup))

	min, ok := dup.(*StructValue).Field("min")
	require.True(t, ok)
	x, ok := (*min).(*StructValue).Field("x")
	require.True(t, ok)
	*x = IntValue(7)

	require.False(t, Equal(orig, dup))
	require.Contains(t, orig.String(), "x: 0")
	require.Contains(t, dup.String(), "x: 7")

	require.Nil(t, Copy(nil))
}

func TestFormat(t *testing.T) {
	require.Equal(t, "<no value>", Format(nil))
	require.Equal(t, `"hi"`, Format(StrValue("hi")))
	require.Equal(t, "hi", StrValue("hi").String())
	require.Equal(t, "-3", Format(IntValue(-3)))
	require.Equal(t, "true", Format(BoolValue(true)))

	arr := &ArrayValue{Elem: types.Int, Items: []Value{IntValue(1), IntValue(2), IntValue(3)}}
	require.Equal(t, "[1, 2, 3]", arr.String())
	require.Equal(t, "[int*3]", arr.Type().String())
}

func TestEqual(t *testing.T) {
	require.True(t, Equal(IntValue(1), IntValue(1)))
	require.False(t, Equal(IntValue(1), IntValue(2)))
	require.False(t, Equal(IntValue(1), StrValue("1")))
	require.True(t, Equal(
		&ArrayValue{Elem: types.Int, Items: []Value{IntValue(1)}},
		&ArrayValue{Elem: types.Int, Items: []Value{IntValue(1)}},
	))
	require.False(t, Equal(nil, nil))
}
