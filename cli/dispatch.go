package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"cortexdbg/cli/commandline"
	"cortexdbg/config"
	"cortexdbg/cortexerr"
	"cortexdbg/frame"
	"cortexdbg/render"
	"cortexdbg/session"
	"cortexdbg/target"
)

// REPL is the M-CLI front end: a command loop over at most one open
// session.Session, built up incrementally by "set-binary"/"set-chip"/
// "set-probe-number" the way the original implementation's CLI sends
// those as independent configuration requests before attaching.
type REPL struct {
	cmds     *commandline.Commands
	newProbe func() target.Probe

	cfg  config.Session
	sess *session.Session
}

// New returns a REPL with no session open yet. newProbe constructs the
// target.Probe implementation a completed set-binary/set-chip pair
// attaches to (target.NewMockProbe for offline/demo use).
func New(newProbe func() target.Probe) *REPL {
	return &REPL{
		cmds:     newCommands(),
		newProbe: newProbe,
	}
}

// Dispatch validates and executes one line of input, returning the text
// to print and whether the REPL should exit after printing it.
func (r *REPL) Dispatch(ctx context.Context, line string) (output string, exit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}

	if err := r.cmds.Validate(line); err != nil {
		return fmt.Sprintf("%s (try 'help')", err), false
	}

	tokens := commandline.TokeniseInput(line)
	cmd, _ := tokens.Get()
	cmd = strings.ToUpper(cmd)

	switch cmd {
	case cmdHelp:
		keyword, ok := tokens.Get()
		if ok {
			return r.cmds.Help(keyword), false
		}
		return r.cmds.HelpOverview(), false

	case cmdExit:
		return "", true

	case cmdStatus:
		return r.status(), false

	case cmdContinue:
		return r.guarded(func() (string, error) {
			return "running", r.sess.Resume(ctx)
		})

	case cmdHalt:
		return r.guarded(func() (string, error) {
			return "halted", r.sess.Halt(ctx)
		})

	case cmdStep:
		return r.guarded(func() (string, error) {
			return "stepped", r.sess.Step(ctx)
		})

	case cmdReset:
		return r.guarded(func() (string, error) {
			return "reset", r.sess.Reset(ctx)
		})

	case cmdRegisters:
		return r.guarded(func() (string, error) {
			regs, err := r.sess.Registers(ctx)
			if err != nil {
				return "", err
			}
			return formatRegisters(regs), nil
		})

	case cmdRead:
		arg, _ := tokens.Get()
		addr, err := parseHex(arg)
		if err != nil {
			return err.Error(), false
		}
		return r.guarded(func() (string, error) {
			v, err := r.sess.ReadMemory(ctx, addr)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%#010x: %#010x", addr, v), nil
		})

	case cmdSetBinary:
		path, _ := tokens.Get()
		r.cfg.Binary = path
		return r.maybeOpen(ctx)

	case cmdSetChip:
		name, _ := tokens.Get()
		r.cfg.Chip = name
		return r.maybeOpen(ctx)

	case cmdSetProbeNumber:
		n, _ := tokens.Get()
		num, err := strconv.Atoi(n)
		if err != nil {
			return cortexerr.Errorf("invalid probe number %q: %w", n, err).Error(), false
		}
		r.cfg.ProbeNumber = num
		return r.maybeOpen(ctx)

	case cmdSetBreakpoint:
		arg, _ := tokens.Get()
		addr, err := parseHex(arg)
		if err != nil {
			return err.Error(), false
		}
		return r.guarded(func() (string, error) {
			bp, err := r.sess.SetBreakpointAtAddress(ctx, addr)
			if err != nil {
				return "", err
			}
			if !bp.Verified {
				return fmt.Sprintf("breakpoint at %#010x pending (no free hardware unit)", addr), nil
			}
			return fmt.Sprintf("breakpoint set at %#010x", addr), nil
		})

	case cmdClearBreakpoint:
		arg, _ := tokens.Get()
		addr, err := parseHex(arg)
		if err != nil {
			return err.Error(), false
		}
		return r.guarded(func() (string, error) {
			return fmt.Sprintf("breakpoint at %#010x cleared", addr), r.sess.ClearBreakpoint(ctx, addr)
		})

	case cmdClearAllBreakpoints:
		return r.guarded(func() (string, error) {
			return "all breakpoints cleared", r.sess.ClearAllBreakpoints(ctx)
		})

	case cmdStack, cmdStackTrace:
		return r.guarded(func() (string, error) {
			var frames []frame.StackFrame
			if cmd == cmdStackTrace {
				sf, err := r.sess.StackTrace(ctx, maxCLIStackDepth)
				if err != nil {
					return "", err
				}
				frames = sf
			} else {
				frames = r.sess.LastStackTrace()
			}
			return formatStack(frames), nil
		})

	case cmdCode:
		return r.guarded(func() (string, error) {
			return r.code(), nil
		})

	case cmdPrint:
		name, _ := tokens.Get()
		return r.guarded(func() (string, error) {
			v, ok := r.sess.Print(name)
			if !ok {
				return fmt.Sprintf("no variable named %q in scope", name), nil
			}
			return render.Value(v), nil
		})
	}

	return fmt.Sprintf("%s is not yet implemented", cmd), false
}

// maxCLIStackDepth bounds "stack-trace", matching M-DAP's own limit.
const maxCLIStackDepth = 64

// guarded runs fn only if a session is open, closing over the common
// "no session yet" guidance the spec's CLI surface expects for commands
// issued before set-binary/set-chip have completed attachment.
func (r *REPL) guarded(fn func() (string, error)) (string, bool) {
	if r.sess == nil {
		return "no target attached yet (use set-binary and set-chip)", false
	}
	out, err := fn()
	if err != nil {
		return err.Error(), false
	}
	return out, false
}

func (r *REPL) status() string {
	if r.sess == nil {
		return "no target attached"
	}
	return "attached"
}

// maybeOpen (re)opens the session once both Binary and Chip are set,
// closing any previously open one first.
func (r *REPL) maybeOpen(ctx context.Context) (string, bool) {
	if r.cfg.Binary == "" || r.cfg.Chip == "" {
		return "ok", false
	}

	if r.sess != nil {
		_ = r.sess.Close(ctx)
		r.sess = nil
	}

	cfg := r.cfg
	sess, err := session.Open(ctx, &cfg, nil, r.newProbe())
	if err != nil {
		return err.Error(), false
	}
	r.sess = sess
	return fmt.Sprintf("attached to %s on %s", cfg.Chip, cfg.Binary), false
}

func parseHex(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, cortexerr.Errorf("invalid hex address %q: %w", s, err)
	}
	return uint32(v), nil
}

func formatRegisters(regs [target.NumCoreRegisters]uint32) string {
	var b strings.Builder
	for i, v := range regs {
		fmt.Fprintf(&b, "r%-2d %#010x\n", i, v)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatStack(frames []frame.StackFrame) string {
	if len(frames) == 0 {
		return "<no stack trace>"
	}
	var b strings.Builder
	for i, f := range frames {
		fmt.Fprintf(&b, "#%d %s (%s:%d)\n", i, f.Name, f.Source.File, f.Source.Line)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *REPL) code() string {
	frames := r.sess.LastStackTrace()
	if len(frames) == 0 {
		return "<no stack trace>"
	}
	top := frames[0]
	if top.Source.File == "" {
		return "<no source information>"
	}

	f, err := os.Open(top.Source.File)
	if err != nil {
		return fmt.Sprintf("%s:%d (source unavailable: %s)", top.Source.File, top.Source.Line, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		n++
		if n == top.Source.Line {
			return fmt.Sprintf("%s:%d: %s", top.Source.File, top.Source.Line, scanner.Text())
		}
	}
	return fmt.Sprintf("%s:%d (line not found)", top.Source.File, top.Source.Line)
}
