package natives

import (
	"errors"
	"strings"

	"github.com/neon-lang/neon/internal/vm"
)

func stringMethods() map[string]*vm.NativeFunction {
	return map[string]*vm.NativeFunction{
		"length":    {Name: "String.length", Arity: 0, Fn: stringLength},
		"toUpper":   {Name: "String.toUpper", Arity: 0, Fn: stringTransform(strings.ToUpper)},
		"toLower":   {Name: "String.toLower", Arity: 0, Fn: stringTransform(strings.ToLower)},
		"trim":      {Name: "String.trim", Arity: 0, Fn: stringTransform(strings.TrimSpace)},
		"contains":  {Name: "String.contains", Arity: 1, Fn: stringContains},
		"substring": {Name: "String.substring", Arity: 2, Fn: stringSubstring},
		"split":     {Name: "String.split", Arity: 1, Fn: stringSplit},
	}
}

func receiverString(args []vm.Value) (string, error) {
	s := args[0].AsString()
	if s == nil {
		return "", errors.New("receiver must be a string")
	}
	return s.Value, nil
}

func stringLength(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	s, err := receiverString(args)
	if err != nil {
		return vm.NilVal(), err
	}
	return vm.NumberVal(float64(len([]rune(s)))), nil
}

func stringTransform(f func(string) string) vm.NativeFn {
	return func(v *vm.VM, args []vm.Value) (vm.Value, error) {
		s, err := receiverString(args)
		if err != nil {
			return vm.NilVal(), err
		}
		return v.Intern(f(s)), nil
	}
}

func stringContains(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	s, err := receiverString(args)
	if err != nil {
		return vm.NilVal(), err
	}
	sub, err := argString(args, 1)
	if err != nil {
		return vm.NilVal(), err
	}
	return vm.BoolVal(strings.Contains(s, sub)), nil
}

func stringSubstring(v *vm.VM, args []vm.Value) (vm.Value, error) {
	s, err := receiverString(args)
	if err != nil {
		return vm.NilVal(), err
	}
	start, err := argNumber(args, 1)
	if err != nil {
		return vm.NilVal(), err
	}
	end, err := argNumber(args, 2)
	if err != nil {
		return vm.NilVal(), err
	}
	runes := []rune(s)
	lo, hi := int(start), int(end)
	if lo < 0 || hi > len(runes) || lo > hi {
		return vm.NilVal(), errors.New("substring bounds out of range")
	}
	return v.Intern(string(runes[lo:hi])), nil
}

func stringSplit(v *vm.VM, args []vm.Value) (vm.Value, error) {
	s, err := receiverString(args)
	if err != nil {
		return vm.NilVal(), err
	}
	sep, err := argString(args, 1)
	if err != nil {
		return vm.NilVal(), err
	}
	parts := strings.Split(s, sep)
	elems := make([]vm.Value, len(parts))
	for i, p := range parts {
		elems[i] = v.Intern(p)
	}
	return vm.ObjVal(&vm.ArrayObject{Elements: elems}), nil
}
