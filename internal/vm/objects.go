package vm

import (
	"fmt"
	"strings"
)

// Object is the interface shared by all heap-allocated values
type Object interface {
	TypeName() string
	Format() string
}

// StringObject is an immutable interned string
type StringObject struct {
	Value string
}

func (s *StringObject) TypeName() string { return "String" }
func (s *StringObject) Format() string   { return s.Value }

// FunctionProto is the compile-time description of a function: its
// bytecode plus name and arity. Protos live in constant pools and are
// bound to a module's globals at runtime by OpMakeFunction.
type FunctionProto struct {
	Name  string
	Arity int
	Chunk *Chunk

	// Set on top-level (script) protos only.
	GlobalNames []string
	Exports     map[string]int // export name -> global slot
}

func (f *FunctionProto) TypeName() string { return "Function" }
func (f *FunctionProto) Format() string   { return "<fn " + f.displayName() + ">" }

func (f *FunctionProto) displayName() string {
	if f.Name == "" {
		return "<script>"
	}
	return f.Name
}

// FunctionObject is a runtime function: a prototype bound to the global
// table of the module it was defined in.
type FunctionObject struct {
	Proto   *FunctionProto
	Globals []Value
}

func (f *FunctionObject) TypeName() string { return "Function" }
func (f *FunctionObject) Format() string   { return f.Proto.Format() }

// NativeFn is the signature of host-provided functions. args[0] is
// always the receiver (method calls) or a placeholder (plain calls);
// the declared arguments follow.
type NativeFn func(vm *VM, args []Value) (Value, error)

// VariadicArity marks a native that accepts any number of arguments.
const VariadicArity = -1

// NativeFunction is a host function callable from bytecode
type NativeFunction struct {
	Name  string
	Arity int // declared argument count, not counting the receiver slot
	Fn    NativeFn
}

func (n *NativeFunction) TypeName() string { return "Function" }
func (n *NativeFunction) Format() string   { return "<native fn " + n.Name + ">" }

// NamespaceObject groups natives under a global name (Math, File, ...).
// Method dispatch on a namespace goes through the VM's native method
// tables keyed by the namespace name.
type NamespaceObject struct {
	Name string
}

func (n *NamespaceObject) TypeName() string { return n.Name }
func (n *NamespaceObject) Format() string   { return "<namespace " + n.Name + ">" }

// StructProto is the compile-time description of a struct declaration
type StructProto struct {
	Name    string
	Fields  []string
	Methods []*FunctionProto
}

func (s *StructProto) TypeName() string { return "Struct" }
func (s *StructProto) Format() string   { return "<struct " + s.Name + ">" }

// StructObject is a runtime struct: callable as a constructor, with its
// methods bound to the defining module's globals.
type StructObject struct {
	Proto   *StructProto
	Methods map[string]*FunctionObject
}

func (s *StructObject) TypeName() string { return "Struct" }
func (s *StructObject) Format() string   { return "<struct " + s.Proto.Name + ">" }

// InstanceObject is a struct instance with shared mutable fields
type InstanceObject struct {
	Struct *StructObject
	Fields map[string]Value
}

func (i *InstanceObject) TypeName() string { return i.Struct.Proto.Name }

func (i *InstanceObject) Format() string {
	var sb strings.Builder
	sb.WriteString(i.Struct.Proto.Name)
	sb.WriteByte('{')
	for n, field := range i.Struct.Proto.Fields {
		if n > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(field)
		sb.WriteString(": ")
		sb.WriteString(i.Fields[field].Format())
	}
	sb.WriteByte('}')
	return sb.String()
}

// BoundMethod is a struct method extracted as a value; calling it puts
// the receiver back into slot 0.
type BoundMethod struct {
	Receiver Value
	Fn       *FunctionObject
}

func (b *BoundMethod) TypeName() string { return "Function" }
func (b *BoundMethod) Format() string   { return b.Fn.Format() }

// BoundNative is a native method extracted as a value
type BoundNative struct {
	Receiver Value
	Fn       *NativeFunction
}

func (b *BoundNative) TypeName() string { return "Function" }
func (b *BoundNative) Format() string   { return b.Fn.Format() }

// ArrayObject is a shared mutable array
type ArrayObject struct {
	Elements []Value
}

func (a *ArrayObject) TypeName() string { return "Array" }

func (a *ArrayObject) Format() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, el := range a.Elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(el.Format())
	}
	sb.WriteByte(']')
	return sb.String()
}

// MapObject is a shared mutable map preserving insertion order. Keys
// are restricted to nil, numbers, booleans and strings.
type MapObject struct {
	keys  []Value
	index map[mapKey]int
	vals  map[mapKey]Value
}

func NewMapObject() *MapObject {
	return &MapObject{
		index: make(map[mapKey]int),
		vals:  make(map[mapKey]Value),
	}
}

func (m *MapObject) TypeName() string { return "Map" }

func (m *MapObject) Format() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k.Format())
		sb.WriteString(": ")
		mk, _ := keyFor(k)
		sb.WriteString(m.vals[mk].Format())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Set inserts or updates a key; returns false for unhashable keys
func (m *MapObject) Set(key, val Value) bool {
	mk, ok := keyFor(key)
	if !ok {
		return false
	}
	if _, exists := m.vals[mk]; !exists {
		m.index[mk] = len(m.keys)
		m.keys = append(m.keys, key)
	}
	m.vals[mk] = val
	return true
}

// Get returns the value for a key; missing or unhashable keys yield nil
func (m *MapObject) Get(key Value) (Value, bool) {
	mk, ok := keyFor(key)
	if !ok {
		return NilVal(), false
	}
	v, exists := m.vals[mk]
	if !exists {
		return NilVal(), false
	}
	return v, true
}

func (m *MapObject) Has(key Value) bool {
	mk, ok := keyFor(key)
	if !ok {
		return false
	}
	_, exists := m.vals[mk]
	return exists
}

// Remove deletes a key if present
func (m *MapObject) Remove(key Value) {
	mk, ok := keyFor(key)
	if !ok {
		return
	}
	pos, exists := m.index[mk]
	if !exists {
		return
	}
	delete(m.vals, mk)
	delete(m.index, mk)
	m.keys = append(m.keys[:pos], m.keys[pos+1:]...)
	for i := pos; i < len(m.keys); i++ {
		k, _ := keyFor(m.keys[i])
		m.index[k] = i
	}
}

// Keys returns the keys in insertion order
func (m *MapObject) Keys() []Value {
	out := make([]Value, len(m.keys))
	copy(out, m.keys)
	return out
}

// Values returns the values in key insertion order
func (m *MapObject) Values() []Value {
	out := make([]Value, 0, len(m.keys))
	for _, k := range m.keys {
		mk, _ := keyFor(k)
		out = append(out, m.vals[mk])
	}
	return out
}

func (m *MapObject) Len() int { return len(m.keys) }

// SetObject is a shared mutable set preserving insertion order
type SetObject struct {
	elems []Value
	index map[mapKey]int
}

func NewSetObject() *SetObject {
	return &SetObject{index: make(map[mapKey]int)}
}

func (s *SetObject) TypeName() string { return "Set" }

func (s *SetObject) Format() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, el := range s.elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(el.Format())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Add inserts an element; returns false for unhashable values
func (s *SetObject) Add(v Value) bool {
	mk, ok := keyFor(v)
	if !ok {
		return false
	}
	if _, exists := s.index[mk]; !exists {
		s.index[mk] = len(s.elems)
		s.elems = append(s.elems, v)
	}
	return true
}

func (s *SetObject) Has(v Value) bool {
	mk, ok := keyFor(v)
	if !ok {
		return false
	}
	_, exists := s.index[mk]
	return exists
}

// Remove deletes an element if present
func (s *SetObject) Remove(v Value) {
	mk, ok := keyFor(v)
	if !ok {
		return
	}
	pos, exists := s.index[mk]
	if !exists {
		return
	}
	delete(s.index, mk)
	s.elems = append(s.elems[:pos], s.elems[pos+1:]...)
	for i := pos; i < len(s.elems); i++ {
		k, _ := keyFor(s.elems[i])
		s.index[k] = i
	}
}

// Elements returns the elements in insertion order
func (s *SetObject) Elements() []Value {
	out := make([]Value, len(s.elems))
	copy(out, s.elems)
	return out
}

func (s *SetObject) Len() int { return len(s.elems) }

// RangeObject is an immutable numeric range
type RangeObject struct {
	Start     float64
	End       float64
	Inclusive bool
}

func (r *RangeObject) TypeName() string { return "Range" }

func (r *RangeObject) Format() string {
	op := ".."
	if r.Inclusive {
		op = "..="
	}
	return fmt.Sprintf("%s%s%s", formatNumber(r.Start), op, formatNumber(r.End))
}

// Contains reports whether v falls inside the range
func (r *RangeObject) Contains(v float64) bool {
	if r.Inclusive {
		return v >= r.Start && v <= r.End
	}
	return v >= r.Start && v < r.End
}

// ModuleObject is the value an import binds: a view over the module's
// export table.
type ModuleObject struct {
	entry *moduleEntry
}

func (m *ModuleObject) TypeName() string { return "Module" }
func (m *ModuleObject) Format() string   { return "<module " + m.entry.name + ">" }

// IteratorObject drives for-in loops. The next closure yields elements
// until exhausted; a one-element lookahead backs the has-next check.
type IteratorObject struct {
	next   func() (Value, bool)
	peeked *Value
	done   bool
}

func (i *IteratorObject) TypeName() string { return "Iterator" }
func (i *IteratorObject) Format() string   { return "<iterator>" }

// HasNext reports whether another element is available
func (i *IteratorObject) HasNext() bool {
	if i.done {
		return false
	}
	if i.peeked == nil {
		v, ok := i.next()
		if !ok {
			i.done = true
			return false
		}
		i.peeked = &v
	}
	return true
}

// Next returns the next element, or nil when exhausted
func (i *IteratorObject) Next() Value {
	if !i.HasNext() {
		return NilVal()
	}
	v := *i.peeked
	i.peeked = nil
	return v
}
