// Package logging provides the engine's central logger: a bounded
// ring-buffer of recent log lines (so a front end can show "tail -f
// session.log" style output on demand) fed from a standard log/slog
// logger.
//
// A session's logger fans every record out to two handlers using
// github.com/samber/slog-multi: a human-readable stderr handler, and a
// Ring handler that keeps the last N formatted lines in memory for
// Tail()/Write(). Tags (component names: "dwarf", "unwind", "frame", ...)
// are attached as the slog logger name via WithGroup/With("component",
// ...), matching the tag-prefixed lines the engine's lineage has always
// produced.
//
// The reconstruction packages (expr, value, unwind, frame, breakpoint)
// do not log. A location expression that leaves more than one entry on
// its stack keeps only the top one without a log record, and an enum or
// variant part whose selector matches no enumerator or variant is
// returned as a cortexerr.DwarfMalformed error.
package logging
