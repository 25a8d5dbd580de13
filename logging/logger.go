package logging

import (
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// DefaultRingSize is the number of lines a session's Ring retains when no
// explicit size is requested.
const DefaultRingSize = 500

// New builds a *slog.Logger that fans every record out to stderr (as
// human-readable text) and into a Ring of the given size. The returned
// Ring is what a front end polls with Tail()/Write() to render a session
// log without blocking on the handler chain.
func New(ringSize int) (*slog.Logger, *Ring) {
	ring := NewRing(ringSize)

	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	fanout := slogmulti.Fanout(stderrHandler, newRingHandler(ring))

	return slog.New(fanout), ring
}

// component returns a logger whose records are tagged with the given
// component name, the slog equivalent of the engine's historical
// tag-prefixed log lines ("dwarf: ...", "unwind: ...").
func component(l *slog.Logger, tag string) *slog.Logger {
	return l.With("component", tag)
}

// Component is the exported form of component, used by packages that
// receive a *slog.Logger from session setup and need to tag their own
// records ("dwarf", "unwind", "frame", "breakpoint", "driver", "dap").
func Component(l *slog.Logger, tag string) *slog.Logger {
	return component(l, tag)
}

var (
	defaultLogger *slog.Logger
	defaultRing   *Ring
)

func init() {
	defaultLogger, defaultRing = New(DefaultRingSize)
}

// Default returns the package-level logger and its backing ring, created
// with DefaultRingSize. Most of the engine obtains its logger this way
// rather than threading a *slog.Logger through every constructor.
func Default() (*slog.Logger, *Ring) {
	return defaultLogger, defaultRing
}
