package runtime

import (
	"sort"

	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/types"
)

type binding struct {
	kind  types.Type
	value Value
}

// Frame is one lexical scope. The parent link is only followed for lookups;
// a frame never owns its parent.
type Frame struct {
	parent *Frame
	values map[string]*binding

	// closed remembers names bound in child frames that have since exited,
	// so a failed lookup can say why the name is gone.
	closed map[string]bool
	exited bool
}

// NewFrame enters a new scope nested under parent (nil for a function's
// outermost scope).
func NewFrame(parent *Frame) *Frame {
	return &Frame{
		parent: parent,
		values: make(map[string]*binding),
	}
}

func (f *Frame) Parent() *Frame {
	return f.parent
}

func fault(kind errors.Kind, format string, args ...interface{}) *errors.Fault {
	return errors.New(errors.Runtime, kind, nil, format, args...)
}

// Bind declares name in this frame.
func (f *Frame) Bind(name string, kind types.Type, value Value) error {
	if f.exited {
		return fault(errors.UndefinedIdentifier, "cannot declare %s in a scope that has already closed", name)
	}
	if _, ok := f.values[name]; ok {
		return fault(errors.DuplicateBinding, "%s is already declared in this scope", name)
	}
	if err := checkValue(name, kind, value); err != nil {
		return err
	}
	f.values[name] = &binding{kind: kind, value: value}
	return nil
}

func (f *Frame) find(name string) (*binding, error) {
	if f.exited {
		return nil, fault(errors.UndefinedIdentifier, "%s was looked up in a scope that has already closed", name)
	}
	for cur := f; cur != nil; cur = cur.parent {
		if b, ok := cur.values[name]; ok {
			return b, nil
		}
	}
	for cur := f; cur != nil; cur = cur.parent {
		if cur.closed[name] {
			return nil, fault(errors.UndefinedIdentifier, "%s is not defined here; the scope that declared it has closed", name)
		}
	}
	return nil, fault(errors.UndefinedIdentifier, "%s is not defined", name)
}

// Lookup walks the scope chain for name.
func (f *Frame) Lookup(name string) (Value, error) {
	b, err := f.find(name)
	if err != nil {
		return nil, err
	}
	return b.value, nil
}

// Reference returns the storage slot of name, for updating a field or
// element in place.
func (f *Frame) Reference(name string) (*Value, types.Type, error) {
	b, err := f.find(name)
	if err != nil {
		return nil, nil, err
	}
	return &b.value, b.kind, nil
}

// Assign replaces the value of name in the frame that owns it.
func (f *Frame) Assign(name string, value Value) error {
	b, err := f.find(name)
	if err != nil {
		return err
	}
	if err := checkValue(name, b.kind, value); err != nil {
		return err
	}
	b.value = value
	return nil
}

// Exit discards the frame and everything bound in it.
func (f *Frame) Exit() {
	if f.exited {
		return
	}
	if f.parent != nil && len(f.values) > 0 {
		if f.parent.closed == nil {
			f.parent.closed = make(map[string]bool)
		}
		for name := range f.values {
			f.parent.closed[name] = true
		}
	}
	f.values = nil
	f.exited = true
}

// Names returns the names bound directly in this frame, sorted.
func (f *Frame) Names() []string {
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func checkValue(name string, kind types.Type, value Value) error {
	if value == nil {
		return fault(errors.NoValue, "%s cannot hold the result of a call that returned nothing", name)
	}
	if kind != nil && !types.Equal(kind, value.Type()) {
		return fault(errors.TypeMismatch, "%s is %s, cannot hold a %s value", name, kind, value.Type())
	}
	return nil
}
