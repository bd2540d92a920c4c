package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of a prototype's chunk
// and, recursively, of every function and struct method it defines.
func Disassemble(proto *FunctionProto) string {
	var sb strings.Builder
	disassembleProto(&sb, proto)
	return sb.String()
}

func disassembleProto(sb *strings.Builder, proto *FunctionProto) {
	fmt.Fprintf(sb, "== %s ==\n", proto.displayName())

	chunk := proto.Chunk
	offset := 0
	for offset < len(chunk.Code) {
		offset = disassembleInstruction(sb, chunk, offset)
	}

	for _, c := range chunk.Constants {
		switch obj := c.Obj.(type) {
		case *FunctionProto:
			sb.WriteByte('\n')
			disassembleProto(sb, obj)
		case *StructProto:
			for _, m := range obj.Methods {
				sb.WriteByte('\n')
				fmt.Fprintf(sb, "-- %s.%s --\n", obj.Name, m.Name)
				disassembleProto(sb, m)
			}
		}
	}
}

// DisassembleInstruction renders one instruction and returns the next offset
func DisassembleInstruction(chunk *Chunk, offset int) (string, int) {
	var sb strings.Builder
	next := disassembleInstruction(&sb, chunk, offset)
	return sb.String(), next
}

func disassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	fmt.Fprintf(sb, "%04d ", offset)

	line := chunk.LineAt(offset)
	if offset > 0 && line == chunk.LineAt(offset-1) {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(sb, "%4d ", line)
	}

	op := Opcode(chunk.Code[offset])
	name, known := OpcodeNames[op]
	if !known {
		fmt.Fprintf(sb, "UNKNOWN %d\n", op)
		return offset + 1
	}

	switch op {
	case OpConstant:
		return constantInstruction(sb, name, chunk, offset, 1)
	case OpConstant16:
		return constantInstruction(sb, name, chunk, offset, 2)
	case OpConstant32:
		return constantInstruction(sb, name, chunk, offset, 4)

	case OpGetLocal, OpSetLocal, OpCall, OpInterpolate, OpMakeRange:
		fmt.Fprintf(sb, "%-16s %d\n", name, chunk.Code[offset+1])
		return offset + 2

	case OpGetGlobal, OpSetGlobal:
		fmt.Fprintf(sb, "%-16s %d\n", name, chunk.Code[offset+1])
		return offset + 2
	case OpGetGlobal16, OpSetGlobal16:
		fmt.Fprintf(sb, "%-16s %d\n", name, chunk.ReadU16(offset+1))
		return offset + 3
	case OpGetGlobal32, OpSetGlobal32:
		fmt.Fprintf(sb, "%-16s %d\n", name, chunk.ReadU32(offset+1))
		return offset + 5

	case OpJump, OpJumpIfFalse:
		jump := chunk.ReadU16(offset + 1)
		fmt.Fprintf(sb, "%-16s %d -> %d\n", name, offset, offset+3+jump)
		return offset + 3
	case OpLoop:
		jump := chunk.ReadU16(offset + 1)
		fmt.Fprintf(sb, "%-16s %d -> %d\n", name, offset, offset+3-jump)
		return offset + 3

	case OpMakeFunction, OpMakeStruct, OpGetProperty, OpSetProperty, OpImport:
		idx := chunk.ReadU16(offset + 1)
		fmt.Fprintf(sb, "%-16s %d (%s)\n", name, idx, constantString(chunk, idx))
		return offset + 3

	case OpMakeArray, OpMakeMap, OpMakeSet:
		fmt.Fprintf(sb, "%-16s %d\n", name, chunk.ReadU16(offset+1))
		return offset + 3

	case OpInvoke:
		idx := chunk.ReadU16(offset + 1)
		argc := chunk.Code[offset+3]
		fmt.Fprintf(sb, "%-16s %d (%s) argc=%d\n", name, idx, constantString(chunk, idx), argc)
		return offset + 4

	default:
		fmt.Fprintf(sb, "%s\n", name)
		return offset + 1
	}
}

func constantInstruction(sb *strings.Builder, name string, chunk *Chunk, offset, width int) int {
	var idx int
	switch width {
	case 1:
		idx = int(chunk.Code[offset+1])
	case 2:
		idx = chunk.ReadU16(offset + 1)
	default:
		idx = chunk.ReadU32(offset + 1)
	}
	fmt.Fprintf(sb, "%-16s %d (%s)\n", name, idx, constantString(chunk, idx))
	return offset + 1 + width
}

func constantString(chunk *Chunk, idx int) string {
	if idx < 0 || idx >= len(chunk.Constants) {
		return "<bad constant>"
	}
	return chunk.Constants[idx].Format()
}
