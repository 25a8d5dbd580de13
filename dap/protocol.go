package dap

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cortexdbg/cortexerr"
)

// message is the minimal envelope shared by requests, responses, and
// events, following the three message kinds spec.md §5 names.
type message struct {
	Seq        int             `json:"seq"`
	Type       string          `json:"type"` // "request", "response", or "event"
	Command    string          `json:"command,omitempty"`
	Event      string          `json:"event,omitempty"`
	Arguments  json.RawMessage `json:"arguments,omitempty"`
	RequestSeq int             `json:"request_seq,omitempty"`
	Success    bool            `json:"success,omitempty"`
	Message    string          `json:"message,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// readMessage reads one length-prefixed JSON message:
// "Content-Length: N\r\n\r\n<N bytes of JSON>".
func readMessage(r *bufio.Reader) (message, error) {
	var length int
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return message{}, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "Content-Length:") {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:")))
			if err != nil {
				return message{}, cortexerr.Coded(cortexerr.DwarfMalformed, "malformed Content-Length header %q: %w", line, err)
			}
			length = n
		}
	}

	if length <= 0 {
		return message{}, cortexerr.Errorf("missing or zero Content-Length header")
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return message{}, err
	}

	var m message
	if err := json.Unmarshal(buf, &m); err != nil {
		return message{}, cortexerr.Coded(cortexerr.DwarfMalformed, "decoding DAP message: %w", err)
	}
	return m, nil
}

// writeMessage frames m as "Content-Length: N\r\n\r\n{json}" and writes
// it to w.
func writeMessage(w io.Writer, m message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Content-Length: %d\r\n\r\n%s", len(body), body)
	return err
}
