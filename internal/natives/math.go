package natives

import (
	"errors"
	"math"

	"github.com/neon-lang/neon/internal/vm"
)

func mathMethods() map[string]*vm.NativeFunction {
	return map[string]*vm.NativeFunction{
		"abs":   {Name: "Math.abs", Arity: 1, Fn: unaryMath(math.Abs)},
		"floor": {Name: "Math.floor", Arity: 1, Fn: unaryMath(math.Floor)},
		"ceil":  {Name: "Math.ceil", Arity: 1, Fn: unaryMath(math.Ceil)},
		"sqrt":  {Name: "Math.sqrt", Arity: 1, Fn: unaryMath(math.Sqrt)},
		"pow":   {Name: "Math.pow", Arity: 2, Fn: mathPow},
		"min":   {Name: "Math.min", Arity: vm.VariadicArity, Fn: mathMin},
		"max":   {Name: "Math.max", Arity: vm.VariadicArity, Fn: mathMax},
	}
}

func unaryMath(f func(float64) float64) vm.NativeFn {
	return func(_ *vm.VM, args []vm.Value) (vm.Value, error) {
		x, err := argNumber(args, 1)
		if err != nil {
			return vm.NilVal(), err
		}
		return vm.NumberVal(f(x)), nil
	}
}

func mathPow(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	x, err := argNumber(args, 1)
	if err != nil {
		return vm.NilVal(), err
	}
	y, err := argNumber(args, 2)
	if err != nil {
		return vm.NilVal(), err
	}
	return vm.NumberVal(math.Pow(x, y)), nil
}

func mathMin(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	return foldNumbers(args[1:], math.Min)
}

func mathMax(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	return foldNumbers(args[1:], math.Max)
}

func foldNumbers(args []vm.Value, f func(a, b float64) float64) (vm.Value, error) {
	if len(args) == 0 {
		return vm.NilVal(), errors.New("expects at least 1 argument")
	}
	var acc float64
	for i, a := range args {
		if !a.IsNumber() {
			return vm.NilVal(), errors.New("all arguments must be numbers")
		}
		if i == 0 {
			acc = a.AsNumber()
			continue
		}
		acc = f(acc, a.AsNumber())
	}
	return vm.NumberVal(acc), nil
}
