package vm

import "sort"

// LineMark records that bytecode at Offset and beyond (until the next
// mark) came from the given source line and column.
type LineMark struct {
	Offset int
	Line   int
	Column int
}

// Chunk represents a sequence of bytecode instructions
type Chunk struct {
	// Code is the bytecode instructions
	Code []byte

	// Constants pool - literals, names, function prototypes
	Constants []Value

	// Lines is a run-length line table: one mark per source position
	// change, sorted by offset. Looked up by binary search on errors.
	Lines []LineMark

	// Name is the function name the chunk belongs to
	Name string

	// File is the source file name
	File string
}

// NewChunk creates a new empty chunk
func NewChunk(name string) *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 256),
		Constants: make([]Value, 0, 64),
		Name:      name,
	}
}

// Write adds a byte to the chunk with source position info
func (c *Chunk) Write(b byte, line, col int) {
	if n := len(c.Lines); n == 0 || c.Lines[n-1].Line != line || c.Lines[n-1].Column != col {
		c.Lines = append(c.Lines, LineMark{Offset: len(c.Code), Line: line, Column: col})
	}
	c.Code = append(c.Code, b)
}

// WriteOp writes an opcode to the chunk
func (c *Chunk) WriteOp(op Opcode, line, col int) {
	c.Write(byte(op), line, col)
}

// WriteU16 writes a 2-byte big-endian operand
func (c *Chunk) WriteU16(v uint16, line, col int) {
	c.Write(byte(v>>8), line, col)
	c.Write(byte(v), line, col)
}

// WriteU32 writes a 4-byte big-endian operand
func (c *Chunk) WriteU32(v uint32, line, col int) {
	c.Write(byte(v>>24), line, col)
	c.Write(byte(v>>16), line, col)
	c.Write(byte(v>>8), line, col)
	c.Write(byte(v), line, col)
}

// AddConstant adds a constant to the pool and returns its index
func (c *Chunk) AddConstant(value Value) int {
	c.Constants = append(c.Constants, value)
	return len(c.Constants) - 1
}

// ReadU16 reads a 2-byte big-endian operand at offset
func (c *Chunk) ReadU16(offset int) int {
	return int(c.Code[offset])<<8 | int(c.Code[offset+1])
}

// ReadU32 reads a 4-byte big-endian operand at offset
func (c *Chunk) ReadU32(offset int) int {
	return int(c.Code[offset])<<24 | int(c.Code[offset+1])<<16 |
		int(c.Code[offset+2])<<8 | int(c.Code[offset+3])
}

// PositionAt returns the source line and column for a bytecode offset
func (c *Chunk) PositionAt(offset int) (line, col int) {
	if len(c.Lines) == 0 {
		return 0, 0
	}
	// First mark past the offset; the one before it covers the offset.
	i := sort.Search(len(c.Lines), func(i int) bool {
		return c.Lines[i].Offset > offset
	})
	if i == 0 {
		return c.Lines[0].Line, c.Lines[0].Column
	}
	return c.Lines[i-1].Line, c.Lines[i-1].Column
}

// LineAt returns the source line for a bytecode offset
func (c *Chunk) LineAt(offset int) int {
	line, _ := c.PositionAt(offset)
	return line
}

// Len returns the number of bytes in the chunk
func (c *Chunk) Len() int {
	return len(c.Code)
}
