package cli

import (
	"sort"

	"cortexdbg/cli/commandline"
)

// command keywords
const (
	cmdExit      = "EXIT"
	cmdStatus    = "STATUS"
	cmdContinue  = "CONTINUE"
	cmdHalt      = "HALT"
	cmdStep      = "STEP"
	cmdReset     = "RESET"
	cmdRegisters = "REGISTERS"

	cmdRead = "READ"

	cmdSetBinary      = "SET-BINARY"
	cmdSetChip        = "SET-CHIP"
	cmdSetProbeNumber = "SET-PROBE-NUMBER"

	cmdSetBreakpoint       = "SET-BREAKPOINT"
	cmdClearBreakpoint     = "CLEAR-BREAKPOINT"
	cmdClearAllBreakpoints = "CLEAR-ALL-BREAKPOINTS"

	cmdStack      = "STACK"
	cmdStackTrace = "STACK-TRACE"
	cmdCode       = "CODE"
	cmdPrint      = "PRINT"
)

const cmdHelp = "HELP"

// commandTemplate enumerates every command this front end accepts, using
// cli/commandline's template syntax: %<label>S/%<label>N for typed
// placeholders, (a|b) for an optional one-of, [a|b] for a required one-of.
var commandTemplate = []string{
	cmdExit,
	cmdStatus,
	cmdContinue,
	cmdHalt,
	cmdStep,
	cmdReset,
	cmdRegisters,

	cmdRead + " %<address>S",

	cmdSetBinary + " %<path>F",
	cmdSetChip + " %<name>S",
	cmdSetProbeNumber + " %<number>N",

	cmdSetBreakpoint + " %<address>S",
	cmdClearBreakpoint + " %<address>S",
	cmdClearAllBreakpoints,

	cmdStack,
	cmdStackTrace,
	cmdCode,
	cmdPrint + " %<name>S",
}

var helps = map[string]string{
	cmdExit:                "end the session and quit",
	cmdStatus:              "report whether the core is halted or running",
	cmdContinue:            "let the core run free",
	cmdHalt:                "stop the core",
	cmdStep:                "execute a single instruction",
	cmdReset:               "reset the core, leaving it halted at the reset vector",
	cmdRegisters:           "dump every core register",
	cmdRead:                "read one 32-bit word of target memory at the given hex address",
	cmdSetBinary:           "set the path of the ELF binary to load DWARF information from",
	cmdSetChip:             "set the target chip name",
	cmdSetProbeNumber:      "set which attached probe to use",
	cmdSetBreakpoint:       "set a hardware breakpoint at a hex address",
	cmdClearBreakpoint:     "clear the breakpoint at a hex address",
	cmdClearAllBreakpoints: "clear every breakpoint",
	cmdStack:               "print the most recently composed call stack",
	cmdStackTrace:          "recompute and print the call stack from the core's current PC",
	cmdCode:                "print the source line at the innermost frame's PC",
	cmdPrint:               "print the value of an in-scope variable",
}

// newCommands parses commandTemplate and attaches the help command,
// panicking if the template itself is malformed (a build-time bug, not a
// runtime condition, matching the teacher's own commands.go init()).
func newCommands() *commandline.Commands {
	cmds, err := commandline.ParseCommandTemplate(commandTemplate)
	if err != nil {
		panic(err)
	}
	if err := cmds.AddHelp(cmdHelp, helps); err != nil {
		panic(err)
	}
	sort.Stable(cmds)
	return cmds
}
