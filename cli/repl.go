package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"cortexdbg/target"
)

var colorPrompt = color.New(color.FgBlue, color.Bold)

// Run drives an interactive prompt loop over stdin/out until the user
// types "exit" or sends EOF (Ctrl-D). An interrupt (Ctrl-C) discards
// the current line and the loop keeps prompting. It returns the process
// exit code: 0 on normal termination, matching spec.md's CLI contract.
func Run(ctx context.Context, newProbe func() target.Probe, out io.Writer) (int, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          colorPrompt.Sprint("(cortexdbg) "),
		HistoryFile:     "",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return 1, err
	}
	defer rl.Close()

	repl := New(newProbe)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return 0, nil
		}
		if err != nil {
			return 1, err
		}

		output, exit := repl.Dispatch(ctx, line)
		if output != "" {
			fmt.Fprintln(out, output)
		}
		if exit {
			return 0, nil
		}
	}
}
