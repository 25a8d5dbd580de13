package frame

import (
	"cortexdbg/unwind"
	"cortexdbg/value"
)

// SourceInformation is a frame or variable's position in the original
// source, when DWARF line/decl information resolves one.
type SourceInformation struct {
	Directory string
	File      string
	Line      int
	Column    int
}

// Variable is one reconstructed local, parameter, or compile-time
// constant in scope at a StackFrame's code location.
type Variable struct {
	Name   string
	Value  value.Value
	Source SourceInformation
}

// StackFrame is one level of a reconstructed call stack: the call
// frame's recovered registers and code-range bounds, the function it
// represents, the source line it stopped at, and every variable in
// scope there.
type StackFrame struct {
	CallFrame unwind.CallFrame

	Name      string
	Source    SourceInformation
	Variables []Variable
}
