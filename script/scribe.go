package script

import (
	"cortexdbg/cortexerr"
)

// Scribe records a sequence of commands and their rendered output into
// a Fixture, mirroring the teacher's Scribe type's start/write/end
// lifecycle (StartSession/WriteInput/EndSession here renamed to match
// Go's more common Open/Record/Close idiom).
type Scribe struct {
	name   string
	events []Event
	active bool
}

// NewScribe returns a Scribe ready to record a fixture called name.
func NewScribe(name string) *Scribe {
	return &Scribe{name: name}
}

// IsActive reports whether a recording session is in progress.
func (s *Scribe) IsActive() bool {
	return s.active
}

// Open begins a new recording. It is an error to Open an already-active
// Scribe, matching the teacher's "script scribe already active" guard.
func (s *Scribe) Open() error {
	if s.active {
		return cortexerr.Errorf("script: scribe already active")
	}
	s.active = true
	s.events = nil
	return nil
}

// Record appends one command/output pair to the fixture being built.
// It silently does nothing if no session is active, matching the
// teacher's documented "safe not to check IsActive" contract.
func (s *Scribe) Record(command, output string) {
	if !s.active {
		return
	}
	s.events = append(s.events, Event{Command: command, Output: output})
}

// Close ends the recording and returns the completed Fixture.
func (s *Scribe) Close() *Fixture {
	s.active = false
	return &Fixture{Name: s.name, Events: s.events}
}
