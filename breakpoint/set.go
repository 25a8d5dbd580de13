package breakpoint

import (
	"sync"

	"cortexdbg/cortexerr"
)

// Breakpoint is one active breakpoint: where it was resolved to, and
// whether a hardware slot was actually granted (the DAP/CLI front ends
// surface a non-verified breakpoint rather than failing setBreakpoints
// outright).
type Breakpoint struct {
	Location Location
	Verified bool
}

// Set tracks the debug session's active breakpoints, keyed by address,
// and enforces the target's fixed number of hardware comparator slots -
// generalized from the teacher's breakpoints.Breakpoints, which tracks
// an address set with no slot limit because the host (a 6507 emulator)
// has no such hardware constraint.
type Set struct {
	mu       sync.Mutex
	active   map[uint32]*Breakpoint
	maxSlots int
}

// NewSet returns an empty Set enforcing at most maxSlots simultaneously
// verified breakpoints.
func NewSet(maxSlots int) *Set {
	return &Set{
		active:   make(map[uint32]*Breakpoint),
		maxSlots: maxSlots,
	}
}

// Add registers a breakpoint at loc. Verified is true unless doing so
// would exceed maxSlots, in which case the breakpoint is still recorded
// but reported unverified rather than returning an error - per this
// resolver's contract, slot exhaustion is a degraded result, not a
// fatal one. A recorded unverified breakpoint stays unverified: a later
// Remove frees a slot for the next Add, but does not re-verify it.
func (s *Set) Add(loc Location) *Breakpoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	bp := &Breakpoint{Location: loc, Verified: s.verifiedCountLocked() < s.maxSlots}
	s.active[loc.Address] = bp
	return bp
}

// AddStrict is Add but returns cortexerr.BreakpointsExhausted instead of
// recording an unverified breakpoint, for callers (a CLI "break" command)
// that want to report slot exhaustion immediately rather than let it
// surface later as an unverified breakpoint in a stackTrace/scopes round.
func (s *Set) AddStrict(loc Location) (*Breakpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.verifiedCountLocked()
	if n >= s.maxSlots {
		return nil, errSlotsExhausted(n)
	}
	bp := &Breakpoint{Location: loc, Verified: true}
	s.active[loc.Address] = bp
	return bp, nil
}

// Remove clears any breakpoint at addr.
func (s *Set) Remove(addr uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, addr)
}

// Check reports whether addr currently carries a verified breakpoint.
func (s *Set) Check(addr uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	bp, ok := s.active[addr]
	return ok && bp.Verified
}

// All returns every active breakpoint, verified or not.
func (s *Set) All() []*Breakpoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Breakpoint, 0, len(s.active))
	for _, bp := range s.active {
		out = append(out, bp)
	}
	return out
}

func (s *Set) verifiedCountLocked() int {
	n := 0
	for _, bp := range s.active {
		if bp.Verified {
			n++
		}
	}
	return n
}

// errSlotsExhausted is returned by callers that want a hard failure
// instead of a silently-unverified breakpoint (e.g. a CLI command that
// should report the condition immediately rather than waiting for the
// next stackTrace/scopes round to reveal it).
func errSlotsExhausted(n int) error {
	return cortexerr.Coded(cortexerr.BreakpointsExhausted, "no free hardware breakpoint slot (%d in use)", n)
}
