// Package dap implements the M-DAP front end: a length-prefixed JSON
// request/response/event server, bound to 127.0.0.1 on a configurable
// port (default config.DefaultDAPPort), translating the Debug Adapter
// Protocol operation set named in spec.md §6 into session.Session calls.
//
// The transport framing is "Content-Length: N\r\n\r\n{json}", matching
// the wire format every real DAP client (editor) speaks; this package
// implements only the dozen operations this engine supports, not the
// full upstream DAP specification.
package dap
