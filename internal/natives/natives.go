// Package natives provides the host-function surface of the language:
// namespace globals (Math, File, Db, Uuid), built-in methods on the
// core types, and free-standing helpers like clock. Every native takes
// the receiver (or a placeholder) in args[0], followed by the declared
// arguments.
package natives

import (
	"fmt"
	"time"

	"github.com/neon-lang/neon/internal/config"
	"github.com/neon-lang/neon/internal/vm"
)

// Install registers all natives on a VM instance
func Install(v *vm.VM) {
	for _, ns := range []string{
		config.MathGlobalName, config.FileGlobalName,
		config.DbGlobalName, config.UuidGlobalName,
	} {
		v.RegisterGlobal(ns, vm.ObjVal(&vm.NamespaceObject{Name: ns}))
	}

	v.RegisterGlobal(config.ClockFuncName, vm.ObjVal(&vm.NativeFunction{
		Name:  config.ClockFuncName,
		Arity: 0,
		Fn:    clock,
	}))
	v.RegisterGlobal(config.ArgsGlobalName, vm.ObjVal(&vm.ArrayObject{}))

	v.RegisterMethods("String", stringMethods())
	v.RegisterMethods("Array", arrayMethods())
	v.RegisterMethods("Map", mapMethods())
	v.RegisterMethods("Set", setMethods())
	v.RegisterMethods("Range", rangeMethods())
	v.RegisterMethods(config.MathGlobalName, mathMethods())
	v.RegisterMethods(config.FileGlobalName, fileMethods())
	v.RegisterMethods(config.DbGlobalName, dbMethods())
	v.RegisterMethods(config.UuidGlobalName, uuidMethods())
}

// SetArgs binds the program's command-line arguments
func SetArgs(v *vm.VM, argv []string) {
	elems := make([]vm.Value, len(argv))
	for i, a := range argv {
		elems[i] = v.Intern(a)
	}
	v.RegisterGlobal(config.ArgsGlobalName, vm.ObjVal(&vm.ArrayObject{Elements: elems}))
}

func clock(_ *vm.VM, _ []vm.Value) (vm.Value, error) {
	return vm.NumberVal(float64(time.Now().UnixNano()) / 1e9), nil
}

// --- shared argument helpers ---

func argNumber(args []vm.Value, i int) (float64, error) {
	if i >= len(args) || !args[i].IsNumber() {
		return 0, fmt.Errorf("argument %d must be a number", i)
	}
	return args[i].AsNumber(), nil
}

func argString(args []vm.Value, i int) (string, error) {
	if i < len(args) {
		if s := args[i].AsString(); s != nil {
			return s.Value, nil
		}
	}
	return "", fmt.Errorf("argument %d must be a string", i)
}
