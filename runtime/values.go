package runtime

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pontaoski/brace/types"
)

// Value is a runtime value. A nil Value means "no value", which is what a
// function without a result hands back.
type Value interface {
	Type() types.Type
	// Copy returns a value that shares nothing mutable with the receiver.
	Copy() Value
	String() string
}

type IntValue int64

func (v IntValue) Type() types.Type { return types.Int }
func (v IntValue) Copy() Value      { return v }
func (v IntValue) String() string   { return strconv.FormatInt(int64(v), 10) }

type BoolValue bool

func (v BoolValue) Type() types.Type { return types.Bool }
func (v BoolValue) Copy() Value      { return v }
func (v BoolValue) String() string   { return strconv.FormatBool(bool(v)) }

type StrValue string

func (v StrValue) Type() types.Type { return types.Str }
func (v StrValue) Copy() Value      { return v }
func (v StrValue) String() string   { return string(v) }

type ArrayValue struct {
	Elem  types.Type
	Items []Value
}

func (v *ArrayValue) Type() types.Type {
	return &types.Array{Elem: v.Elem, Len: len(v.Items)}
}

func (v *ArrayValue) Copy() Value {
	items := make([]Value, len(v.Items))
	for i, item := range v.Items {
		items[i] = item.Copy()
	}
	return &ArrayValue{Elem: v.Elem, Items: items}
}

func (v *ArrayValue) String() string {
	var parts []string
	for _, item := range v.Items {
		parts = append(parts, Format(item))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type FieldValue struct {
	Name  string
	Value Value
}

type StructValue struct {
	Name   string
	Fields []FieldValue
}

func (v *StructValue) Type() types.Type {
	return &types.Struct{Name: v.Name}
}

func (v *StructValue) Copy() Value {
	fields := make([]FieldValue, len(v.Fields))
	for i, field := range v.Fields {
		fields[i] = FieldValue{Name: field.Name, Value: field.Value.Copy()}
	}
	return &StructValue{Name: v.Name, Fields: fields}
}

func (v *StructValue) String() string {
	var parts []string
	for _, field := range v.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field.Name, Format(field.Value)))
	}
	return fmt.Sprintf("%s { %s }", v.Name, strings.Join(parts, ", "))
}

// Field returns a pointer to the named field's slot so it can be updated in
// place.
func (v *StructValue) Field(name string) (*Value, bool) {
	for i := range v.Fields {
		if v.Fields[i].Name == name {
			return &v.Fields[i].Value, true
		}
	}
	return nil, false
}

// Format renders a value the way print shows it. Strings nested inside
// arrays and structs are quoted.
func Format(v Value) string {
	switch val := v.(type) {
	case nil:
		return "<no value>"
	case StrValue:
		return strconv.Quote(string(val))
	}
	return v.String()
}

// Copy copies v, keeping nil as nil.
func Copy(v Value) Value {
	if v == nil {
		return nil
	}
	return v.Copy()
}

// StructLayout resolves a struct name to its declared fields.
type StructLayout func(name string) ([]FieldLayout, bool)

type FieldLayout struct {
	Name string
	Kind types.Type
}

// MaxValueSize bounds the scalar slots of a single zero value, so struct
// fields cannot multiply arrays past what the parser allows for one type.
const MaxValueSize = 4 * types.MaxArrayLen

// ErrTooLarge is returned by Zero for arrays outside the length limits.
var ErrTooLarge = stderrors.New("value too large")

// Zero builds the default value of t: 0, false, "", and element- or
// field-wise zeroes for arrays and structs.
func Zero(t types.Type, layout StructLayout) (Value, error) {
	budget := MaxValueSize
	return zero(t, layout, &budget)
}

func zero(t types.Type, layout StructLayout, budget *int) (Value, error) {
	switch kind := t.(type) {
	case types.Primitive:
		*budget--
		if *budget < 0 {
			return nil, fmt.Errorf("%w: more than %d slots", ErrTooLarge, MaxValueSize)
		}
		switch kind {
		case types.IntKind:
			return IntValue(0), nil
		case types.BoolKind:
			return BoolValue(false), nil
		case types.StrKind:
			return StrValue(""), nil
		}
	case *types.Array:
		if kind.Len < 0 || kind.Len > types.MaxArrayLen || kind.Len > *budget {
			return nil, fmt.Errorf("%w: %s", ErrTooLarge, kind)
		}
		items := make([]Value, kind.Len)
		for i := range items {
			item, err := zero(kind.Elem, layout, budget)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return &ArrayValue{Elem: kind.Elem, Items: items}, nil
	case *types.Struct:
		fields, ok := layout(kind.Name)
		if !ok {
			return nil, fmt.Errorf("unknown struct %s", kind.Name)
		}
		st := &StructValue{Name: kind.Name}
		for _, field := range fields {
			val, err := zero(field.Kind, layout, budget)
			if err != nil {
				return nil, err
			}
			st.Fields = append(st.Fields, FieldValue{Name: field.Name, Value: val})
		}
		return st, nil
	}
	return nil, fmt.Errorf("no zero value for %s", types.Name(t))
}

// Equal compares two values structurally.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case IntValue, BoolValue, StrValue:
		return a == b
	case *ArrayValue:
		y, ok := b.(*ArrayValue)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *StructValue:
		y, ok := b.(*StructValue)
		if !ok || x.Name != y.Name || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if x.Fields[i].Name != y.Fields[i].Name || !Equal(x.Fields[i].Value, y.Fields[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}
