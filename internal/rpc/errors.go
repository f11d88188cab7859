package rpc

import "fmt"

// Error represents a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("rpc error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// ServerError is a structured handler failure: a human-readable message
// plus optional structured data for the client.
type ServerError struct {
	Message string
	Data    any
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return e.Message
}

// Errorf builds a ServerError from a format string.
func Errorf(format string, args ...any) *ServerError {
	return &ServerError{Message: fmt.Sprintf(format, args...)}
}
