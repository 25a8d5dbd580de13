package dap

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"cortexdbg/target"
)

func newTestServer() *Server {
	return NewServer(0, nil, func() target.Probe { return target.NewMockProbe() })
}

func TestDispatchInitializeAdvertisesConfigurationDone(t *testing.T) {
	s := newTestServer()
	resp := s.dispatch(context.Background(), message{Seq: 1, Command: "initialize"})
	require.True(t, resp.Success)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	require.Equal(t, true, body["supportsConfigurationDoneRequest"])
}

func TestDispatchThreadsReportsSingleCore(t *testing.T) {
	s := newTestServer()
	resp := s.dispatch(context.Background(), message{Seq: 1, Command: "threads"})
	require.True(t, resp.Success)
	require.Contains(t, string(resp.Body), `"id":1`)
}

func TestDispatchUnknownCommandFails(t *testing.T) {
	s := newTestServer()
	resp := s.dispatch(context.Background(), message{Seq: 1, Command: "bogus"})
	require.False(t, resp.Success)
	require.Contains(t, resp.Message, "bogus")
}

func TestDispatchStackTraceBeforeAttachFails(t *testing.T) {
	s := newTestServer()
	resp := s.dispatch(context.Background(), message{Seq: 1, Command: "stackTrace"})
	require.False(t, resp.Success)
}

func TestDispatchSetBreakpointsBeforeAttachFails(t *testing.T) {
	s := newTestServer()
	args, _ := json.Marshal(breakpointSourceArgs{})
	resp := s.dispatch(context.Background(), message{Seq: 1, Command: "setBreakpoints", Arguments: args})
	require.False(t, resp.Success)
}

func TestDispatchDisconnectWithNoSessionIsNotAnError(t *testing.T) {
	s := newTestServer()
	resp := s.dispatch(context.Background(), message{Seq: 1, Command: "disconnect"})
	require.True(t, resp.Success)
}

func TestResponseSeqIncrementsMonotonically(t *testing.T) {
	s := newTestServer()
	first := s.dispatch(context.Background(), message{Seq: 1, Command: "initialize"})
	second := s.dispatch(context.Background(), message{Seq: 2, Command: "threads"})
	require.Less(t, first.Seq, second.Seq)
}
