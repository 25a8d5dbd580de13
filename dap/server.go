package dap

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"

	"cortexdbg/config"
	"cortexdbg/cortexerr"
	"cortexdbg/logging"
	"cortexdbg/render"
	"cortexdbg/session"
	"cortexdbg/target"
)

// Server is the M-DAP front end: it owns zero or one active
// session.Session (created by an "attach" request) and serves the
// length-prefixed JSON protocol over a single TCP connection at a time.
type Server struct {
	port     int
	log      *slog.Logger
	newProbe func() target.Probe

	base config.Session
	sess *session.Session
	seq  int
}

// NewServer returns a Server listening on 127.0.0.1:port. newProbe
// constructs the target.Probe implementation an "attach" request opens
// (a real hardware driver in production, target.NewMockProbe in tests or
// offline/demo mode).
func NewServer(port int, log *slog.Logger, newProbe func() target.Probe) *Server {
	if log == nil {
		log, _ = logging.Default()
	}
	return &Server{
		port:     port,
		log:      logging.Component(log, "dap"),
		newProbe: newProbe,
	}
}

// ListenAndServe binds 127.0.0.1:port and serves DAP requests over one
// accepted connection until the client disconnects. Cancelling ctx stops
// a pending Accept; it does not close a connection already accepted.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return cortexerr.Coded(cortexerr.TargetCommunication, "listening on %s: %w", addr, err)
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	conn, err := ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer conn.Close()

	return s.serve(ctx, conn)
}

func (s *Server) serve(ctx context.Context, conn net.Conn) error {
	r := bufio.NewReader(conn)
	for {
		req, err := readMessage(r)
		if err != nil {
			s.log.Info("connection closed", "error", err)
			return nil
		}

		resp := s.dispatch(ctx, req)
		if err := writeMessage(conn, resp); err != nil {
			return err
		}

		if req.Command == "disconnect" {
			return nil
		}
	}
}

func (s *Server) nextSeq() int {
	s.seq++
	return s.seq
}

func (s *Server) success(req message, body interface{}) message {
	var raw json.RawMessage
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	return message{
		Seq:        s.nextSeq(),
		Type:       "response",
		Command:    req.Command,
		RequestSeq: req.Seq,
		Success:    true,
		Body:       raw,
	}
}

func (s *Server) failure(req message, err error) message {
	s.log.Warn("request failed", "command", req.Command, "error", err)
	return message{
		Seq:        s.nextSeq(),
		Type:       "response",
		Command:    req.Command,
		RequestSeq: req.Seq,
		Success:    false,
		Message:    err.Error(),
	}
}

func (s *Server) dispatch(ctx context.Context, req message) message {
	handler, ok := handlers[req.Command]
	if !ok {
		return s.failure(req, cortexerr.Errorf("unsupported DAP command %q", req.Command))
	}

	body, err := handler(ctx, s, req.Arguments)
	if err != nil {
		return s.failure(req, err)
	}
	return s.success(req, body)
}

type handlerFunc func(ctx context.Context, s *Server, args json.RawMessage) (interface{}, error)

var handlers = map[string]handlerFunc{
	"initialize":        handleInitialize,
	"attach":            handleAttach,
	"setBreakpoints":    handleSetBreakpoints,
	"threads":           handleThreads,
	"configurationDone": handleConfigurationDone,
	"pause":             handlePause,
	"continue":          handleContinue,
	"next":              handleNext,
	"stackTrace":        handleStackTrace,
	"scopes":            handleScopes,
	"variables":         handleVariables,
	"disconnect":        handleDisconnect,
}

func handleInitialize(_ context.Context, _ *Server, _ json.RawMessage) (interface{}, error) {
	return map[string]interface{}{
		"supportsConfigurationDoneRequest": true,
	}, nil
}

type attachArgs struct {
	Program     string `json:"program"`
	Chip        string `json:"chip"`
	ProbeNumber int    `json:"probeNumber"`
}

func handleAttach(ctx context.Context, s *Server, args json.RawMessage) (interface{}, error) {
	var a attachArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, cortexerr.Coded(cortexerr.ConfigurationMissing, "decoding attach arguments: %w", err)
	}

	cfg := &config.Session{
		Binary:      a.Program,
		Chip:        a.Chip,
		ProbeNumber: a.ProbeNumber,
	}

	sess, err := session.Open(ctx, cfg, s.log, s.newProbe())
	if err != nil {
		return nil, err
	}
	s.sess = sess
	return nil, nil
}

type breakpointSourceArgs struct {
	Source struct {
		Path string `json:"path"`
	} `json:"source"`
	Breakpoints []struct {
		Line   int `json:"line"`
		Column int `json:"column"`
	} `json:"breakpoints"`
}

func handleSetBreakpoints(ctx context.Context, s *Server, args json.RawMessage) (interface{}, error) {
	if s.sess == nil {
		return nil, cortexerr.Errorf("setBreakpoints before attach")
	}

	var a breakpointSourceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, cortexerr.Errorf("decoding setBreakpoints arguments: %w", err)
	}

	type verified struct {
		Verified bool `json:"verified"`
		Line     int  `json:"line"`
	}

	out := make([]verified, 0, len(a.Breakpoints))
	for _, bp := range a.Breakpoints {
		resolved, err := s.sess.SetBreakpoint(ctx, a.Source.Path, bp.Line, bp.Column)
		if err != nil {
			out = append(out, verified{Verified: false, Line: bp.Line})
			continue
		}
		out = append(out, verified{Verified: resolved.Verified, Line: resolved.Location.Line})
	}

	return map[string]interface{}{"breakpoints": out}, nil
}

// singleThreadID is the only thread this engine ever reports: one Cortex-M
// core halted at a single PC.
const singleThreadID = 1

func handleThreads(_ context.Context, _ *Server, _ json.RawMessage) (interface{}, error) {
	return map[string]interface{}{
		"threads": []map[string]interface{}{
			{"id": singleThreadID, "name": "core"},
		},
	}, nil
}

func handleConfigurationDone(_ context.Context, _ *Server, _ json.RawMessage) (interface{}, error) {
	return nil, nil
}

func handlePause(ctx context.Context, s *Server, _ json.RawMessage) (interface{}, error) {
	if s.sess == nil {
		return nil, cortexerr.Errorf("pause before attach")
	}
	return nil, s.sess.Halt(ctx)
}

func handleContinue(ctx context.Context, s *Server, _ json.RawMessage) (interface{}, error) {
	if s.sess == nil {
		return nil, cortexerr.Errorf("continue before attach")
	}
	return nil, s.sess.Resume(ctx)
}

func handleNext(ctx context.Context, s *Server, _ json.RawMessage) (interface{}, error) {
	if s.sess == nil {
		return nil, cortexerr.Errorf("next before attach")
	}
	return nil, s.sess.Step(ctx)
}

// maxStackDepth bounds how many frames stackTrace recovers; deep enough
// for any realistic call chain without unwinding indefinitely into
// malformed CFI.
const maxStackDepth = 64

func handleStackTrace(ctx context.Context, s *Server, _ json.RawMessage) (interface{}, error) {
	if s.sess == nil {
		return nil, cortexerr.Errorf("stackTrace before attach")
	}

	frames, err := s.sess.StackTrace(ctx, maxStackDepth)
	if err != nil {
		return nil, err
	}

	type stackFrame struct {
		ID     int    `json:"id"`
		Name   string `json:"name"`
		Line   int    `json:"line"`
		Source string `json:"source"`
	}

	out := make([]stackFrame, len(frames))
	for i, f := range frames {
		out[i] = stackFrame{ID: i, Name: f.Name, Line: f.Source.Line, Source: f.Source.File}
	}

	return map[string]interface{}{"stackFrames": out, "totalFrames": len(out)}, nil
}

// localsScopeReference is the sole variablesReference this server hands
// out, covering frame 0's locals; deeper per-frame scopes are not
// modeled (see DESIGN.md).
const localsScopeReference = 1

func handleScopes(_ context.Context, s *Server, _ json.RawMessage) (interface{}, error) {
	if s.sess == nil {
		return nil, cortexerr.Errorf("scopes before attach")
	}
	return map[string]interface{}{
		"scopes": []map[string]interface{}{
			{"name": "Locals", "variablesReference": localsScopeReference, "expensive": false},
		},
	}, nil
}

func handleVariables(_ context.Context, s *Server, args json.RawMessage) (interface{}, error) {
	if s.sess == nil {
		return nil, cortexerr.Errorf("variables before attach")
	}

	type variable struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}

	var out []variable
	for _, f := range s.sess.LastStackTrace() {
		for _, v := range f.Variables {
			out = append(out, variable{Name: v.Name, Value: render.Value(v.Value)})
		}
		break // frame 0 only, matching the single scope advertised above
	}

	return map[string]interface{}{"variables": out}, nil
}

func handleDisconnect(ctx context.Context, s *Server, _ json.RawMessage) (interface{}, error) {
	if s.sess == nil {
		return nil, nil
	}
	err := s.sess.Close(ctx)
	s.sess = nil
	return nil, err
}
