package vm

// callValue dispatches a call based on the callee type. The callee sits
// at stack slot sp-argc-1 and becomes slot 0 of the new frame.
func (vm *VM) callValue(callee Value, argc int) error {
	switch fn := callee.Obj.(type) {
	case *FunctionObject:
		return vm.callFunction(fn, argc)
	case *NativeFunction:
		return vm.callNative(fn, argc)
	case *StructObject:
		return vm.callConstructor(fn, argc)
	case *BoundMethod:
		vm.stack[vm.sp-argc-1] = fn.Receiver
		return vm.callFunction(fn.Fn, argc)
	case *BoundNative:
		vm.stack[vm.sp-argc-1] = fn.Receiver
		return vm.callNative(fn.Fn, argc)
	default:
		return vm.runtimeError("can only call functions and structs, got %s", callee.TypeName())
	}
}

// callFunction pushes a new call frame. Slot 0 of the frame holds the
// callee (plain calls) or the receiver (method calls).
func (vm *VM) callFunction(fn *FunctionObject, argc int) error {
	if argc != fn.Proto.Arity {
		return vm.runtimeError("function '%s' expects %d arguments but got %d",
			fn.Proto.displayName(), fn.Proto.Arity, argc)
	}
	if vm.frameCount >= vm.framesMax {
		return vm.runtimeError("stack overflow")
	}
	frame := &vm.frames[vm.frameCount]
	frame.fn = fn
	frame.chunk = fn.Proto.Chunk
	frame.ip = 0
	frame.base = vm.sp - argc - 1
	vm.frameCount++
	vm.frame = frame
	return nil
}

// callNative invokes a host function in place: no frame is pushed. The
// args slice spans slot 0 (receiver or placeholder) through the last
// declared argument.
func (vm *VM) callNative(fn *NativeFunction, argc int) error {
	if fn.Arity != VariadicArity && argc != fn.Arity {
		return vm.runtimeError("function '%s' expects %d arguments but got %d", fn.Name, fn.Arity, argc)
	}
	args := vm.stack[vm.sp-argc-1 : vm.sp]
	result, err := fn.Fn(vm, args)
	if err != nil {
		return vm.runtimeError("%s: %s", fn.Name, err)
	}
	vm.sp -= argc + 1
	vm.push(result)
	return nil
}

// callConstructor builds a struct instance from positional field values
func (vm *VM) callConstructor(st *StructObject, argc int) error {
	fields := st.Proto.Fields
	if argc != len(fields) {
		return vm.runtimeError("struct '%s' expects %d arguments but got %d",
			st.Proto.Name, len(fields), argc)
	}
	inst := &InstanceObject{
		Struct: st,
		Fields: make(map[string]Value, len(fields)),
	}
	base := vm.sp - argc
	for i, name := range fields {
		inst.Fields[name] = vm.stack[base+i]
	}
	vm.sp = base - 1 // discard the constructor slot too
	vm.push(ObjVal(inst))
	return nil
}

// invoke dispatches receiver.method(args). The receiver already sits
// where slot 0 of the callee frame will be.
func (vm *VM) invoke(name string, argc int) error {
	recv := vm.peek(argc)

	switch o := recv.Obj.(type) {
	case *ModuleObject:
		slot, ok := o.entry.exports[name]
		if !ok {
			return vm.runtimeError("module '%s' has no exported member '%s'", o.entry.name, name)
		}
		return vm.callValue(o.entry.globals[slot], argc)
	case *InstanceObject:
		if field, ok := o.Fields[name]; ok {
			return vm.callValue(field, argc)
		}
		if m, ok := o.Struct.Methods[name]; ok {
			return vm.callFunction(m, argc)
		}
		return vm.runtimeError("type '%s' has no method '%s'", o.Struct.Proto.Name, name)
	}

	typeName := recv.TypeName()
	fn, ok := vm.methods[typeName][name]
	if !ok {
		return vm.runtimeError("type '%s' has no method '%s'", typeName, name)
	}
	if fn.Arity != VariadicArity && argc != fn.Arity {
		return vm.runtimeError("method '%s.%s' expects %d arguments but got %d",
			typeName, name, fn.Arity, argc)
	}
	return vm.callNative(fn, argc)
}

// importModule resolves, compiles and runs a module at most once per
// VM. The cache entry is registered before the module's top-level code
// runs, so repeated imports of an executing module see the cache and
// never re-run it.
func (vm *VM) importModule(pathIdx int) error {
	path, err := vm.constantName(pathIdx)
	if err != nil {
		return err
	}
	if vm.loader == nil {
		return vm.runtimeError("cannot import '%s': no module loader configured", path)
	}

	canonical, err := vm.loader.Resolve(path, vm.frame.chunk.File)
	if err != nil {
		return vm.runtimeError("%s", err)
	}

	if entry, ok := vm.moduleCache[canonical]; ok {
		vm.push(ObjVal(&ModuleObject{entry: entry}))
		return nil
	}

	vm.logger.Debugf("run %s: loading module %s", vm.runID, canonical)
	proto, err := vm.loader.Load(canonical)
	if err != nil {
		return vm.runtimeError("%s", err)
	}
	vm.internProto(proto)

	entry := vm.instantiate(proto, canonical)
	vm.moduleCache[canonical] = entry

	fn := &FunctionObject{Proto: proto, Globals: entry.globals}
	vm.push(ObjVal(fn))
	resume := vm.frameCount
	if err := vm.callValue(ObjVal(fn), 0); err != nil {
		return err
	}
	if err := vm.execute(resume); err != nil {
		return err
	}
	vm.pop() // module top-level result
	entry.executed = true

	vm.push(ObjVal(&ModuleObject{entry: entry}))
	return nil
}
