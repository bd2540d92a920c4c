// Package vm implements the bytecode compiler and virtual machine for Neon
package vm

// Opcode represents a single VM instruction
type Opcode byte

const (
	// Constants. Pool-indexed instructions come in three widths; the
	// compiler always emits the narrowest variant that fits the index.
	OpConstant   Opcode = iota // u8 operand
	OpConstant16               // u16 operand
	OpConstant32               // u32 operand

	// Literals
	OpNil
	OpTrue
	OpFalse

	// Stack manipulation
	OpPop
	OpDup

	// Variables
	OpGetLocal    // u8 slot
	OpSetLocal    // u8 slot
	OpGetGlobal   // u8 index
	OpGetGlobal16 // u16 index
	OpGetGlobal32 // u32 index
	OpSetGlobal   // u8 index
	OpSetGlobal16 // u16 index
	OpSetGlobal32 // u32 index

	// Arithmetic
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpNegate

	// Comparison and logic
	OpEqual
	OpGreater
	OpLess
	OpNot

	// Control flow. Jump operands are u16 byte offsets; forward jumps
	// are emitted as 0xffff placeholders and backpatched.
	OpJump        // u16 forward offset
	OpJumpIfFalse // u16 forward offset, pops the condition
	OpLoop        // u16 backward offset

	// Calls
	OpCall   // u8 argc
	OpInvoke // u16 method-name constant + u8 argc
	OpReturn

	// Function and struct instantiation from compile-time prototypes
	OpMakeFunction // u16 prototype constant
	OpMakeStruct   // u16 prototype constant

	// Field and index access
	OpGetProperty // u16 name constant
	OpSetProperty // u16 name constant
	OpGetIndex
	OpSetIndex

	// Composite literals
	OpMakeArray // u16 element count
	OpMakeMap   // u16 pair count
	OpMakeSet   // u16 element count
	OpMakeRange // u8 inclusive flag

	// Iteration protocol for for-in loops
	OpGetIterator
	OpIterHasNext
	OpIterNext

	// Strings
	OpInterpolate // u8 part count

	// Statements
	OpPrint
	OpImport // u16 path constant
)

// OpcodeNames maps opcodes to their string names (for the disassembler)
var OpcodeNames = map[Opcode]string{
	OpConstant:   "CONSTANT",
	OpConstant16: "CONSTANT_16",
	OpConstant32: "CONSTANT_32",

	OpNil:   "NIL",
	OpTrue:  "TRUE",
	OpFalse: "FALSE",

	OpPop: "POP",
	OpDup: "DUP",

	OpGetLocal:    "GET_LOCAL",
	OpSetLocal:    "SET_LOCAL",
	OpGetGlobal:   "GET_GLOBAL",
	OpGetGlobal16: "GET_GLOBAL_16",
	OpGetGlobal32: "GET_GLOBAL_32",
	OpSetGlobal:   "SET_GLOBAL",
	OpSetGlobal16: "SET_GLOBAL_16",
	OpSetGlobal32: "SET_GLOBAL_32",

	OpAdd:      "ADD",
	OpSubtract: "SUBTRACT",
	OpMultiply: "MULTIPLY",
	OpDivide:   "DIVIDE",
	OpModulo:   "MODULO",
	OpNegate:   "NEGATE",

	OpEqual:   "EQUAL",
	OpGreater: "GREATER",
	OpLess:    "LESS",
	OpNot:     "NOT",

	OpJump:        "JUMP",
	OpJumpIfFalse: "JUMP_IF_FALSE",
	OpLoop:        "LOOP",

	OpCall:   "CALL",
	OpInvoke: "INVOKE",
	OpReturn: "RETURN",

	OpMakeFunction: "MAKE_FUNCTION",
	OpMakeStruct:   "MAKE_STRUCT",

	OpGetProperty: "GET_PROPERTY",
	OpSetProperty: "SET_PROPERTY",
	OpGetIndex:    "GET_INDEX",
	OpSetIndex:    "SET_INDEX",

	OpMakeArray: "MAKE_ARRAY",
	OpMakeMap:   "MAKE_MAP",
	OpMakeSet:   "MAKE_SET",
	OpMakeRange: "MAKE_RANGE",

	OpGetIterator: "GET_ITERATOR",
	OpIterHasNext: "ITER_HAS_NEXT",
	OpIterNext:    "ITER_NEXT",

	OpInterpolate: "INTERPOLATE",

	OpPrint:  "PRINT",
	OpImport: "IMPORT",
}
