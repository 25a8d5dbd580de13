// Package cli implements the M-CLI front end: an interactive
// read-eval-print loop over a session.Session, using the same
// command-template/tokeniser machinery (cli/commandline) the debugger
// this module is adapted from uses for its own terminal.
package cli
