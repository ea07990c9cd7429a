// Package stomp implements the terminal side of the push channel: a minimal
// STOMP 1.2 client over a websocket, covering the frames the broker server
// speaks — CONNECT/CONNECTED, SUBSCRIBE, SEND, and MESSAGE.
package stomp

import (
	"bytes"
	"fmt"
	"strings"
)

// Frame commands used on this channel.
const (
	CmdConnect   = "CONNECT"
	CmdConnected = "CONNECTED"
	CmdSubscribe = "SUBSCRIBE"
	CmdSend      = "SEND"
	CmdMessage   = "MESSAGE"
	CmdError     = "ERROR"
)

// Common header names.
const (
	HdrDestination   = "destination"
	HdrSubscription  = "subscription"
	HdrID            = "id"
	HdrAck           = "ack"
	HdrAcceptVersion = "accept-version"
)

// Frame is one STOMP frame: command line, header lines, blank line, body,
// NUL terminator.
type Frame struct {
	Command string
	Headers map[string]string
	Body    []byte
}

// NewFrame builds a frame with the given command.
func NewFrame(command string) *Frame {
	return &Frame{Command: command, Headers: make(map[string]string)}
}

// Marshal renders the frame in wire format.
func (f *Frame) Marshal() []byte {
	var b bytes.Buffer
	b.WriteString(f.Command)
	b.WriteByte('\n')
	for k, v := range f.Headers {
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(v)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.Write(f.Body)
	b.WriteByte(0)
	return b.Bytes()
}

// ParseFrame decodes a frame from wire format. The server pads header lines
// and the body with whitespace, so parsing is line-based and tolerant: the
// first line is the command, lines up to the first blank line are headers,
// and the remainder up to the NUL is the body.
func ParseFrame(data []byte) (*Frame, error) {
	text := strings.TrimRight(string(data), "\x00\n\r ")
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("empty frame")
	}

	f := NewFrame(strings.TrimSpace(lines[0]))
	i := 1
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(strings.Trim(lines[i], "\x00"))
		if line == "" {
			i++
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed header line %q in %s frame", line, f.Command)
		}
		f.Headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if i < len(lines) {
		body := strings.TrimSpace(strings.Join(lines[i:], "\n"))
		f.Body = []byte(strings.Trim(body, "\x00"))
	}
	return f, nil
}
