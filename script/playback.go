package script

import (
	"fmt"

	"cortexdbg/cortexerr"
)

// Dispatcher runs one line of CLI input and returns the output it
// produced. cli.REPL.Dispatch also takes a context, so a closure that
// binds one adapts it to this type without script needing to import the
// cli package.
type Dispatcher func(command string) (output string, exit bool)

// Mismatch describes one recorded event whose replayed output didn't
// match the fixture.
type Mismatch struct {
	Index   int
	Command string
	Want    string
	Got     string
}

// Replay feeds every Fixture event's Command through dispatch in order
// and compares the result against the recorded Output, the way the
// teacher's Rescribe type feeds scribed lines back through the
// debugger's input loop - except here the point is regression-testing
// the rendered output, not just re-executing the commands.
func Replay(f *Fixture, dispatch Dispatcher) ([]Mismatch, error) {
	var mismatches []Mismatch

	for i, ev := range f.Events {
		got, exit := dispatch(ev.Command)
		if got != ev.Output {
			mismatches = append(mismatches, Mismatch{
				Index:   i,
				Command: ev.Command,
				Want:    ev.Output,
				Got:     got,
			})
		}
		if exit && i != len(f.Events)-1 {
			return mismatches, cortexerr.Errorf("script: %s exited before the end of fixture %q", ev.Command, f.Name)
		}
	}

	return mismatches, nil
}

// String renders a Mismatch for a test failure message.
func (m Mismatch) String() string {
	return fmt.Sprintf("event %d (%q): want %q, got %q", m.Index, m.Command, m.Want, m.Got)
}
