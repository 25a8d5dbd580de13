// Command cortexdbg is the on-host debugger binary: "cortexdbg cli" for
// an interactive prompt, "cortexdbg dap" to serve the Debug Adapter
// Protocol. Both load --binary/--chip/--probe-number/--config flags (or
// their CORTEXDBG_* environment equivalents) into a config.Session, but
// neither attaches from it: "cli" only logs it and attaches through
// set-binary/set-chip, and "dap" takes only its listening port from it
// and attaches through an "attach" request.
package main

import "cortexdbg/cmd/cortexdbg/cmd"

func main() {
	cmd.Execute()
}
