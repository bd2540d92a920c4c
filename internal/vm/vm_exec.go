package vm

import (
	"fmt"
	"math"
	"strings"
)

// execute is the fetch-decode-execute loop. It runs until the frame
// stack shrinks back to minFrames, which lets module imports run their
// top-level code nested inside the importing frame.
func (vm *VM) execute(minFrames int) error {
	for vm.frameCount > minFrames {
		vm.steps++
		if vm.steps%1000 == 0 && vm.ctx != nil {
			if err := vm.ctx.Err(); err != nil {
				return fmt.Errorf("execution cancelled: %w", err)
			}
		}
		if err := vm.ensureStack(); err != nil {
			return err
		}

		frame := vm.frame
		if frame.ip >= len(frame.chunk.Code) {
			return errTruncatedBytecode
		}
		op := Opcode(frame.chunk.Code[frame.ip])
		frame.ip++

		var err error
		switch op {
		case OpConstant:
			err = vm.pushConstant(int(vm.readByte()))
		case OpConstant16:
			err = vm.pushConstant(vm.readU16())
		case OpConstant32:
			err = vm.pushConstant(vm.readU32())

		case OpNil:
			vm.push(NilVal())
		case OpTrue:
			vm.push(BoolVal(true))
		case OpFalse:
			vm.push(BoolVal(false))

		case OpPop:
			vm.pop()
		case OpDup:
			vm.push(vm.peek(0))

		case OpGetLocal:
			slot := int(vm.readByte())
			vm.push(vm.stack[frame.base+slot])
		case OpSetLocal:
			slot := int(vm.readByte())
			vm.stack[frame.base+slot] = vm.peek(0)

		case OpGetGlobal:
			err = vm.getGlobal(int(vm.readByte()))
		case OpGetGlobal16:
			err = vm.getGlobal(vm.readU16())
		case OpGetGlobal32:
			err = vm.getGlobal(vm.readU32())
		case OpSetGlobal:
			err = vm.setGlobal(int(vm.readByte()))
		case OpSetGlobal16:
			err = vm.setGlobal(vm.readU16())
		case OpSetGlobal32:
			err = vm.setGlobal(vm.readU32())

		case OpAdd:
			err = vm.opAdd()
		case OpSubtract:
			err = vm.opArith(op)
		case OpMultiply:
			err = vm.opArith(op)
		case OpDivide:
			err = vm.opArith(op)
		case OpModulo:
			err = vm.opArith(op)
		case OpNegate:
			if !vm.peek(0).IsNumber() {
				err = vm.runtimeError("operand must be a number")
				break
			}
			vm.push(NumberVal(-vm.pop().AsNumber()))

		case OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(BoolVal(valuesEqual(a, b)))
		case OpGreater:
			err = vm.opCompare(op)
		case OpLess:
			err = vm.opCompare(op)
		case OpNot:
			vm.push(BoolVal(!vm.pop().Truthy()))

		case OpJump:
			offset := vm.readU16()
			frame.ip += offset
		case OpJumpIfFalse:
			offset := vm.readU16()
			if !vm.pop().Truthy() {
				frame.ip += offset
			}
		case OpLoop:
			offset := vm.readU16()
			frame.ip -= offset

		case OpCall:
			argc := int(vm.readByte())
			err = vm.callValue(vm.peek(argc), argc)
		case OpInvoke:
			nameIdx := vm.readU16()
			argc := int(vm.readByte())
			var name string
			name, err = vm.constantName(nameIdx)
			if err == nil {
				err = vm.invoke(name, argc)
			}
		case OpReturn:
			result := vm.pop()
			done := vm.frame
			vm.frameCount--
			vm.sp = done.base
			vm.push(result)
			if vm.frameCount > 0 {
				vm.frame = &vm.frames[vm.frameCount-1]
			} else {
				vm.frame = nil
			}

		case OpMakeFunction:
			idx := vm.readU16()
			proto, ok := vm.constantObj(idx).(*FunctionProto)
			if !ok {
				err = errInvalidConstantIndex
				break
			}
			vm.push(ObjVal(&FunctionObject{Proto: proto, Globals: frame.fn.Globals}))
		case OpMakeStruct:
			idx := vm.readU16()
			proto, ok := vm.constantObj(idx).(*StructProto)
			if !ok {
				err = errInvalidConstantIndex
				break
			}
			st := &StructObject{Proto: proto, Methods: make(map[string]*FunctionObject, len(proto.Methods))}
			for _, m := range proto.Methods {
				st.Methods[m.Name] = &FunctionObject{Proto: m, Globals: frame.fn.Globals}
			}
			vm.push(ObjVal(st))

		case OpGetProperty:
			nameIdx := vm.readU16()
			var name string
			name, err = vm.constantName(nameIdx)
			if err == nil {
				err = vm.getProperty(vm.pop(), name)
			}
		case OpSetProperty:
			nameIdx := vm.readU16()
			var name string
			name, err = vm.constantName(nameIdx)
			if err == nil {
				value := vm.pop()
				obj := vm.pop()
				if err = vm.setProperty(obj, name, value); err == nil {
					vm.push(value)
				}
			}
		case OpGetIndex:
			index := vm.pop()
			obj := vm.pop()
			err = vm.getIndex(obj, index)
		case OpSetIndex:
			value := vm.pop()
			index := vm.pop()
			obj := vm.pop()
			if err = vm.setIndex(obj, index, value); err == nil {
				vm.push(value)
			}

		case OpMakeArray:
			n := vm.readU16()
			elems := make([]Value, n)
			copy(elems, vm.stack[vm.sp-n:vm.sp])
			vm.sp -= n
			vm.push(ObjVal(&ArrayObject{Elements: elems}))
		case OpMakeMap:
			err = vm.makeMap(vm.readU16())
		case OpMakeSet:
			err = vm.makeSet(vm.readU16())
		case OpMakeRange:
			inclusive := vm.readByte() == 1
			end := vm.pop()
			start := vm.pop()
			if !start.IsNumber() || !end.IsNumber() {
				err = vm.runtimeError("range bounds must be numbers")
				break
			}
			vm.push(ObjVal(&RangeObject{Start: start.AsNumber(), End: end.AsNumber(), Inclusive: inclusive}))

		case OpGetIterator:
			err = vm.makeIterator(vm.pop())
		case OpIterHasNext:
			it, ok := vm.pop().Obj.(*IteratorObject)
			if !ok {
				err = vm.runtimeError("value is not an iterator")
				break
			}
			vm.push(BoolVal(it.HasNext()))
		case OpIterNext:
			it, ok := vm.pop().Obj.(*IteratorObject)
			if !ok {
				err = vm.runtimeError("value is not an iterator")
				break
			}
			vm.push(it.Next())

		case OpInterpolate:
			n := int(vm.readByte())
			var sb strings.Builder
			for i := vm.sp - n; i < vm.sp; i++ {
				sb.WriteString(vm.stack[i].Format())
			}
			vm.sp -= n
			vm.push(vm.Intern(sb.String()))

		case OpPrint:
			fmt.Fprintln(vm.out, vm.pop().Format())

		case OpImport:
			err = vm.importModule(vm.readU16())

		default:
			err = vm.runtimeError("unknown opcode %d", op)
		}

		if err != nil {
			return err
		}
	}
	return nil
}

// --- operand readers ---

func (vm *VM) readByte() byte {
	b := vm.frame.chunk.Code[vm.frame.ip]
	vm.frame.ip++
	return b
}

func (vm *VM) readU16() int {
	v := vm.frame.chunk.ReadU16(vm.frame.ip)
	vm.frame.ip += 2
	return v
}

func (vm *VM) readU32() int {
	v := vm.frame.chunk.ReadU32(vm.frame.ip)
	vm.frame.ip += 4
	return v
}

// --- constants and globals ---

func (vm *VM) pushConstant(idx int) error {
	consts := vm.frame.chunk.Constants
	if idx < 0 || idx >= len(consts) {
		return errInvalidConstantIndex
	}
	vm.push(consts[idx])
	return nil
}

func (vm *VM) constantObj(idx int) Object {
	consts := vm.frame.chunk.Constants
	if idx < 0 || idx >= len(consts) {
		return nil
	}
	return consts[idx].Obj
}

func (vm *VM) constantName(idx int) (string, error) {
	if s, ok := vm.constantObj(idx).(*StringObject); ok {
		return s.Value, nil
	}
	return "", errInvalidConstantIndex
}

func (vm *VM) getGlobal(idx int) error {
	globals := vm.frame.fn.Globals
	if idx < 0 || idx >= len(globals) {
		return vm.runtimeError("invalid global slot %d", idx)
	}
	vm.push(globals[idx])
	return nil
}

func (vm *VM) setGlobal(idx int) error {
	globals := vm.frame.fn.Globals
	if idx < 0 || idx >= len(globals) {
		return vm.runtimeError("invalid global slot %d", idx)
	}
	globals[idx] = vm.peek(0)
	return nil
}

// --- arithmetic and comparison ---

// opAdd adds numbers or concatenates strings
func (vm *VM) opAdd() error {
	b := vm.pop()
	a := vm.pop()
	if a.IsNumber() && b.IsNumber() {
		vm.push(NumberVal(a.AsNumber() + b.AsNumber()))
		return nil
	}
	if as, bs := a.AsString(), b.AsString(); as != nil && bs != nil {
		vm.push(vm.Intern(as.Value + bs.Value))
		return nil
	}
	return vm.runtimeError("operands must be two numbers or two strings")
}

func (vm *VM) opArith(op Opcode) error {
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeError("operands must be numbers")
	}
	x, y := a.AsNumber(), b.AsNumber()
	switch op {
	case OpSubtract:
		vm.push(NumberVal(x - y))
	case OpMultiply:
		vm.push(NumberVal(x * y))
	case OpDivide:
		vm.push(NumberVal(x / y))
	case OpModulo:
		vm.push(NumberVal(math.Mod(x, y)))
	}
	return nil
}

func (vm *VM) opCompare(op Opcode) error {
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeError("operands must be numbers")
	}
	if op == OpGreater {
		vm.push(BoolVal(a.AsNumber() > b.AsNumber()))
	} else {
		vm.push(BoolVal(a.AsNumber() < b.AsNumber()))
	}
	return nil
}

// --- composites ---

func (vm *VM) makeMap(pairs int) error {
	m := NewMapObject()
	base := vm.sp - pairs*2
	for i := 0; i < pairs; i++ {
		key := vm.stack[base+i*2]
		val := vm.stack[base+i*2+1]
		if !m.Set(key, val) {
			return vm.runtimeError("map key must be a number, string, boolean or nil")
		}
	}
	vm.sp = base
	vm.push(ObjVal(m))
	return nil
}

func (vm *VM) makeSet(n int) error {
	s := NewSetObject()
	base := vm.sp - n
	for i := 0; i < n; i++ {
		if !s.Add(vm.stack[base+i]) {
			return vm.runtimeError("set element must be a number, string, boolean or nil")
		}
	}
	vm.sp = base
	vm.push(ObjVal(s))
	return nil
}

// --- property, index, iteration ---

func (vm *VM) getProperty(obj Value, name string) error {
	switch o := obj.Obj.(type) {
	case *InstanceObject:
		if v, ok := o.Fields[name]; ok {
			vm.push(v)
			return nil
		}
		if m, ok := o.Struct.Methods[name]; ok {
			vm.push(ObjVal(&BoundMethod{Receiver: obj, Fn: m}))
			return nil
		}
		return vm.runtimeError("undefined property '%s' on %s", name, o.Struct.Proto.Name)
	case *ModuleObject:
		if slot, ok := o.entry.exports[name]; ok {
			vm.push(o.entry.globals[slot])
			return nil
		}
		return vm.runtimeError("module '%s' has no exported member '%s'", o.entry.name, name)
	}

	if fn, ok := vm.methods[obj.TypeName()][name]; ok {
		vm.push(ObjVal(&BoundNative{Receiver: obj, Fn: fn}))
		return nil
	}
	return vm.runtimeError("type '%s' has no property '%s'", obj.TypeName(), name)
}

func (vm *VM) setProperty(obj Value, name string, value Value) error {
	inst, ok := obj.Obj.(*InstanceObject)
	if !ok {
		return vm.runtimeError("cannot set property on %s", obj.TypeName())
	}
	if _, ok := inst.Fields[name]; !ok {
		return vm.runtimeError("struct '%s' has no field '%s'", inst.Struct.Proto.Name, name)
	}
	inst.Fields[name] = value
	return nil
}

// asIndex converts a number value to a non-negative integer index
func asIndex(v Value) (int, bool) {
	if !v.IsNumber() {
		return 0, false
	}
	f := v.AsNumber()
	i := int(f)
	if float64(i) != f {
		return 0, false
	}
	return i, true
}

func (vm *VM) getIndex(obj, index Value) error {
	switch o := obj.Obj.(type) {
	case *ArrayObject:
		i, ok := asIndex(index)
		if !ok {
			return vm.runtimeError("array index must be an integer")
		}
		if i < 0 || i >= len(o.Elements) {
			return vm.runtimeError("array index %d out of bounds (length %d)", i, len(o.Elements))
		}
		vm.push(o.Elements[i])
		return nil
	case *StringObject:
		i, ok := asIndex(index)
		if !ok {
			return vm.runtimeError("string index must be an integer")
		}
		runes := []rune(o.Value)
		if i < 0 || i >= len(runes) {
			return vm.runtimeError("string index %d out of bounds (length %d)", i, len(runes))
		}
		vm.push(vm.Intern(string(runes[i])))
		return nil
	case *MapObject:
		if _, hashable := keyFor(index); !hashable {
			return vm.runtimeError("map key must be a number, string, boolean or nil")
		}
		v, _ := o.Get(index)
		vm.push(v)
		return nil
	}
	return vm.runtimeError("type '%s' is not indexable", obj.TypeName())
}

func (vm *VM) setIndex(obj, index, value Value) error {
	switch o := obj.Obj.(type) {
	case *ArrayObject:
		i, ok := asIndex(index)
		if !ok {
			return vm.runtimeError("array index must be an integer")
		}
		if i < 0 || i >= len(o.Elements) {
			return vm.runtimeError("array index %d out of bounds (length %d)", i, len(o.Elements))
		}
		o.Elements[i] = value
		return nil
	case *MapObject:
		if !o.Set(index, value) {
			return vm.runtimeError("map key must be a number, string, boolean or nil")
		}
		return nil
	}
	return vm.runtimeError("type '%s' does not support index assignment", obj.TypeName())
}

// makeIterator pushes an iterator over arrays, ranges, strings, maps
// (their keys) and sets.
func (vm *VM) makeIterator(v Value) error {
	switch o := v.Obj.(type) {
	case *ArrayObject:
		i := 0
		vm.push(ObjVal(&IteratorObject{next: func() (Value, bool) {
			if i >= len(o.Elements) {
				return NilVal(), false
			}
			el := o.Elements[i]
			i++
			return el, true
		}}))
		return nil
	case *RangeObject:
		cur := o.Start
		vm.push(ObjVal(&IteratorObject{next: func() (Value, bool) {
			if o.Inclusive && cur > o.End {
				return NilVal(), false
			}
			if !o.Inclusive && cur >= o.End {
				return NilVal(), false
			}
			el := cur
			cur++
			return NumberVal(el), true
		}}))
		return nil
	case *StringObject:
		runes := []rune(o.Value)
		i := 0
		vm.push(ObjVal(&IteratorObject{next: func() (Value, bool) {
			if i >= len(runes) {
				return NilVal(), false
			}
			el := vm.Intern(string(runes[i]))
			i++
			return el, true
		}}))
		return nil
	case *MapObject:
		keys := o.Keys()
		i := 0
		vm.push(ObjVal(&IteratorObject{next: func() (Value, bool) {
			if i >= len(keys) {
				return NilVal(), false
			}
			el := keys[i]
			i++
			return el, true
		}}))
		return nil
	case *SetObject:
		elems := o.Elements()
		i := 0
		vm.push(ObjVal(&IteratorObject{next: func() (Value, bool) {
			if i >= len(elems) {
				return NilVal(), false
			}
			el := elems[i]
			i++
			return el, true
		}}))
		return nil
	}
	return vm.runtimeError("type '%s' is not iterable", v.TypeName())
}
