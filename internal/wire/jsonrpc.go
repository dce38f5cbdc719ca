package wire

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// JSON-RPC error codes emitted by the bridge.
const (
	CodeParseError     = -32700
	CodeTransportError = -32000
	CodeProtocolError  = -32001
)

// Request is one JSON-RPC 2.0 message read from the local side. The id is
// caller-supplied and opaque; the bridge never generates or rewrites it.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is one JSON-RPC 2.0 message written to the local side. Exactly one
// of Result and Error is present on a well-formed response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the error member of a JSON-RPC response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ParseRequest parses one input line as a JSON-RPC request envelope.
func ParseRequest(line []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Request{}, fmt.Errorf("parse request: %w", err)
	}
	return req, nil
}

// ErrorResponse synthesizes a JSON-RPC error line for the given id. A nil id
// marshals as null, which is what the local side expects when the request id
// itself could not be parsed.
func ErrorResponse(id json.RawMessage, code int, message string) json.RawMessage {
	b, _ := json.Marshal(Response{JSONRPC: "2.0", ID: id, Error: &Error{Code: code, Message: message}})
	return b
}

// IDsEqual reports whether two JSON-RPC ids denote the same value. The
// comparison is semantic, not textual, so a numeric id survives whitespace or
// re-encoding differences. A missing id only matches a missing or null id.
func IDsEqual(a, b json.RawMessage) bool {
	av, aok := idValue(a)
	bv, bok := idValue(b)
	if !aok || !bok {
		return false
	}
	return reflect.DeepEqual(av, bv)
}

func idValue(raw json.RawMessage) (any, bool) {
	if len(raw) == 0 {
		return nil, true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return v, true
}
