// Package value implements the typed value evaluator (C5): given a
// DWARF type and the Pieces a location expression (C4) resolved to, it
// reconstructs a typed EvaluatorValue by reading the underlying bytes
// out of a target.MemoryAndRegisters cache.
//
// Like expr, evaluation is restartable: Evaluate returns Outcome.Done
// with the reconstructed Value, or Outcome.Need naming the register or
// memory range still missing, using the same Requirement shape as the
// expr package so a single suspend/resume driver (C9) can service both.
//
// Type-tree dispatch follows the DWARF tag of the type DIE: base_type,
// pointer_type, array_type, structure_type/union_type (via member
// DIEs), and enumeration_type. Each composite type's members consume a
// sub-range of the parent's Pieces according to their bit offset, the
// same piece-consumption rule the teacher's SourceVariable.
// addVariableChildren implements for its register/memory dereference
// operators.
package value
