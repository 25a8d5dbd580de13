// Package cortexerr is a helper package for the plain Go language error
// type, used throughout the engine in place of ad-hoc fmt.Errorf chains.
//
// Errors are created with Errorf(), which is similar to fmt.Errorf() but
// normalises the resulting chain so that adjacent duplicate parts (as can
// happen when a low-level error is wrapped with the same prefix at every
// level of the call stack) are collapsed. Is() and Has() test whether an
// error was produced from a given pattern, directly or somewhere in its
// wrapped chain, without needing a sentinel value per error site.
//
// On top of this a closed Code enumerates the taxonomy a caller needs to
// react to programmatically (surfaced vs fatal vs locally recovered, per
// the error handling design): ConfigurationMissing, TargetCommunication,
// DwarfMalformed, DwarfUnsupported, AlignmentViolation, AmbiguousFunction,
// BreakpointsExhausted. Coded() attaches a Code to an Errorf-produced
// error; CodeOf() recovers it.
package cortexerr
