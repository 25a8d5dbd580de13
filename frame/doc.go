// Package frame implements the stack-frame composer (C7): given one
// unwound CallFrame, it locates the enclosing function DIE, evaluates
// the function's DW_AT_frame_base expression, enumerates the variable
// DIEs in scope at the frame's code location, and evaluates each one
// through expr and value to produce a StackFrame.
//
// Composing a frame can require register or memory data the cache
// doesn't have yet - both the frame-base expression and every
// variable's location expression can pause - so Composer.Run follows the
// same suspend/resume contract as expr, value, and unwind.
package frame
