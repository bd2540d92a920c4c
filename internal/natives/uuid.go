package natives

import (
	"github.com/google/uuid"

	"github.com/neon-lang/neon/internal/vm"
)

func uuidMethods() map[string]*vm.NativeFunction {
	return map[string]*vm.NativeFunction{
		"v4":    {Name: "Uuid.v4", Arity: 0, Fn: uuidV4},
		"parse": {Name: "Uuid.parse", Arity: 1, Fn: uuidParse},
	}
}

func uuidV4(v *vm.VM, _ []vm.Value) (vm.Value, error) {
	return v.Intern(uuid.NewString()), nil
}

// uuidParse validates a UUID string and returns its canonical form
func uuidParse(v *vm.VM, args []vm.Value) (vm.Value, error) {
	s, err := argString(args, 1)
	if err != nil {
		return vm.NilVal(), err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return vm.NilVal(), err
	}
	return v.Intern(id.String()), nil
}
