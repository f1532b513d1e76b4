// Package websocket streams live interpreter output to connected
// clients. A connection is bound to one session; the client submits
// source over the socket and receives output chunks as they appear,
// followed by exactly one result frame per submission.
package websocket

import "github.com/bitsnaps/open-creator/internal/interpreter"

// Frame is one message on a stream connection.
type Frame struct {
	Type    string              `json:"type,omitempty"`
	Code    string              `json:"code,omitempty"`
	Data    string              `json:"data,omitempty"`
	Result  *interpreter.Result `json:"result,omitempty"`
	Message string              `json:"message,omitempty"`
}

// Frame types.
const (
	TypeExecute = "execute"
	TypeOutput  = "output"
	TypeResult  = "result"
	TypeError   = "error"
	TypePing    = "ping"
	TypePong    = "pong"
)
