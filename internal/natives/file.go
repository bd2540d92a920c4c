package natives

import (
	"os"

	"github.com/neon-lang/neon/internal/vm"
)

func fileMethods() map[string]*vm.NativeFunction {
	return map[string]*vm.NativeFunction{
		"read":   {Name: "File.read", Arity: 1, Fn: fileRead},
		"write":  {Name: "File.write", Arity: 2, Fn: fileWrite},
		"exists": {Name: "File.exists", Arity: 1, Fn: fileExists},
	}
}

func fileRead(v *vm.VM, args []vm.Value) (vm.Value, error) {
	path, err := argString(args, 1)
	if err != nil {
		return vm.NilVal(), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return vm.NilVal(), err
	}
	return v.Intern(string(data)), nil
}

func fileWrite(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	path, err := argString(args, 1)
	if err != nil {
		return vm.NilVal(), err
	}
	content, err := argString(args, 2)
	if err != nil {
		return vm.NilVal(), err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return vm.NilVal(), err
	}
	return vm.NilVal(), nil
}

func fileExists(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	path, err := argString(args, 1)
	if err != nil {
		return vm.NilVal(), err
	}
	_, statErr := os.Stat(path)
	return vm.BoolVal(statErr == nil), nil
}
