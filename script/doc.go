// Package script implements M-SCRIPT: recording a cortexdbg CLI
// session to a fixture and replaying it later, the way the teacher's
// debugger/script package scribes and rescribes a plain-text command
// log. Fixtures here are YAML rather than plain text, so the full
// command-plus-rendered-output pair captured at each step survives
// round-tripping and can be diffed line by line in a test.
package script
