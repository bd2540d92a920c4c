package natives

import (
	"errors"
	"strings"

	"github.com/neon-lang/neon/internal/vm"
)

func arrayMethods() map[string]*vm.NativeFunction {
	return map[string]*vm.NativeFunction{
		"push":     {Name: "Array.push", Arity: 1, Fn: arrayPush},
		"pop":      {Name: "Array.pop", Arity: 0, Fn: arrayPop},
		"length":   {Name: "Array.length", Arity: 0, Fn: arrayLength},
		"contains": {Name: "Array.contains", Arity: 1, Fn: arrayContains},
		"join":     {Name: "Array.join", Arity: 1, Fn: arrayJoin},
	}
}

func receiverArray(args []vm.Value) (*vm.ArrayObject, error) {
	if a, ok := args[0].Obj.(*vm.ArrayObject); ok {
		return a, nil
	}
	return nil, errors.New("receiver must be an array")
}

func arrayPush(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	a, err := receiverArray(args)
	if err != nil {
		return vm.NilVal(), err
	}
	a.Elements = append(a.Elements, args[1])
	return vm.NilVal(), nil
}

func arrayPop(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	a, err := receiverArray(args)
	if err != nil {
		return vm.NilVal(), err
	}
	if len(a.Elements) == 0 {
		return vm.NilVal(), errors.New("pop from empty array")
	}
	last := a.Elements[len(a.Elements)-1]
	a.Elements = a.Elements[:len(a.Elements)-1]
	return last, nil
}

func arrayLength(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	a, err := receiverArray(args)
	if err != nil {
		return vm.NilVal(), err
	}
	return vm.NumberVal(float64(len(a.Elements))), nil
}

func arrayContains(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	a, err := receiverArray(args)
	if err != nil {
		return vm.NilVal(), err
	}
	for _, el := range a.Elements {
		if vm.Equal(el, args[1]) {
			return vm.BoolVal(true), nil
		}
	}
	return vm.BoolVal(false), nil
}

func arrayJoin(v *vm.VM, args []vm.Value) (vm.Value, error) {
	a, err := receiverArray(args)
	if err != nil {
		return vm.NilVal(), err
	}
	sep, err := argString(args, 1)
	if err != nil {
		return vm.NilVal(), err
	}
	parts := make([]string, len(a.Elements))
	for i, el := range a.Elements {
		parts[i] = el.Format()
	}
	return v.Intern(strings.Join(parts, sep)), nil
}

func mapMethods() map[string]*vm.NativeFunction {
	return map[string]*vm.NativeFunction{
		"get":    {Name: "Map.get", Arity: 1, Fn: mapGet},
		"set":    {Name: "Map.set", Arity: 2, Fn: mapSet},
		"has":    {Name: "Map.has", Arity: 1, Fn: mapHas},
		"remove": {Name: "Map.remove", Arity: 1, Fn: mapRemove},
		"keys":   {Name: "Map.keys", Arity: 0, Fn: mapKeys},
		"values": {Name: "Map.values", Arity: 0, Fn: mapValues},
		"length": {Name: "Map.length", Arity: 0, Fn: mapLength},
	}
}

func receiverMap(args []vm.Value) (*vm.MapObject, error) {
	if m, ok := args[0].Obj.(*vm.MapObject); ok {
		return m, nil
	}
	return nil, errors.New("receiver must be a map")
}

func mapGet(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	m, err := receiverMap(args)
	if err != nil {
		return vm.NilVal(), err
	}
	v, _ := m.Get(args[1])
	return v, nil
}

func mapSet(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	m, err := receiverMap(args)
	if err != nil {
		return vm.NilVal(), err
	}
	if !m.Set(args[1], args[2]) {
		return vm.NilVal(), errors.New("key must be a number, string, boolean or nil")
	}
	return vm.NilVal(), nil
}

func mapHas(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	m, err := receiverMap(args)
	if err != nil {
		return vm.NilVal(), err
	}
	return vm.BoolVal(m.Has(args[1])), nil
}

func mapRemove(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	m, err := receiverMap(args)
	if err != nil {
		return vm.NilVal(), err
	}
	m.Remove(args[1])
	return vm.NilVal(), nil
}

func mapKeys(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	m, err := receiverMap(args)
	if err != nil {
		return vm.NilVal(), err
	}
	return vm.ObjVal(&vm.ArrayObject{Elements: m.Keys()}), nil
}

func mapValues(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	m, err := receiverMap(args)
	if err != nil {
		return vm.NilVal(), err
	}
	return vm.ObjVal(&vm.ArrayObject{Elements: m.Values()}), nil
}

func mapLength(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	m, err := receiverMap(args)
	if err != nil {
		return vm.NilVal(), err
	}
	return vm.NumberVal(float64(m.Len())), nil
}

func setMethods() map[string]*vm.NativeFunction {
	return map[string]*vm.NativeFunction{
		"add":    {Name: "Set.add", Arity: 1, Fn: setAdd},
		"has":    {Name: "Set.has", Arity: 1, Fn: setHas},
		"remove": {Name: "Set.remove", Arity: 1, Fn: setRemove},
		"length": {Name: "Set.length", Arity: 0, Fn: setLength},
	}
}

func receiverSet(args []vm.Value) (*vm.SetObject, error) {
	if s, ok := args[0].Obj.(*vm.SetObject); ok {
		return s, nil
	}
	return nil, errors.New("receiver must be a set")
}

func setAdd(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	s, err := receiverSet(args)
	if err != nil {
		return vm.NilVal(), err
	}
	if !s.Add(args[1]) {
		return vm.NilVal(), errors.New("element must be a number, string, boolean or nil")
	}
	return vm.NilVal(), nil
}

func setHas(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	s, err := receiverSet(args)
	if err != nil {
		return vm.NilVal(), err
	}
	return vm.BoolVal(s.Has(args[1])), nil
}

func setRemove(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	s, err := receiverSet(args)
	if err != nil {
		return vm.NilVal(), err
	}
	s.Remove(args[1])
	return vm.NilVal(), nil
}

func setLength(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	s, err := receiverSet(args)
	if err != nil {
		return vm.NilVal(), err
	}
	return vm.NumberVal(float64(s.Len())), nil
}

func rangeMethods() map[string]*vm.NativeFunction {
	return map[string]*vm.NativeFunction{
		"contains": {Name: "Range.contains", Arity: 1, Fn: rangeContains},
	}
}

func rangeContains(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	r, ok := args[0].Obj.(*vm.RangeObject)
	if !ok {
		return vm.NilVal(), errors.New("receiver must be a range")
	}
	x, err := argNumber(args, 1)
	if err != nil {
		return vm.NilVal(), err
	}
	return vm.BoolVal(r.Contains(x)), nil
}
