package rpc

import (
	"encoding/json"
	"fmt"
)

// MethodHandler executes a request method from raw parameter bytes,
// producing a result value or a JSON-RPC error object.
type MethodHandler interface {
	Execute(params []byte) (result any, rpcErr *Error)
}

// NotificationHandler executes a notification from raw parameter bytes.
// Notifications produce no response; undecodable params are dropped.
type NotificationHandler interface {
	Execute(params []byte)
}

// method adapts a typed handler function to MethodHandler.
type method[P, O any] struct {
	fn       func(P) (O, *ServerError)
	fallback any // error data attached to invalid-params responses
}

// Execute decodes params into P and runs the handler. Missing params decode
// to P's zero value.
func (m method[P, O]) Execute(params []byte) (any, *Error) {
	var p P
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &Error{
				Code:    CodeInvalidParams,
				Message: fmt.Sprintf("invalid params: %v", err),
				Data:    m.fallback,
			}
		}
	}
	out, serr := m.fn(p)
	if serr != nil {
		return nil, &Error{
			Code:    CodeInternalError,
			Message: serr.Message,
			Data:    serr.Data,
		}
	}
	return out, nil
}

// Method adapts fn to a MethodHandler. The parameter value is decoded from
// the request's params field; the result value is serialized into the
// response.
func Method[P, O any](fn func(P) (O, *ServerError)) MethodHandler {
	return method[P, O]{fn: fn}
}

// MethodWithFallback is Method with a fallback value included as error data
// when parameter decoding fails.
func MethodWithFallback[P, O any](fn func(P) (O, *ServerError), fallback any) MethodHandler {
	return method[P, O]{fn: fn, fallback: fallback}
}

// notification adapts a typed handler function to NotificationHandler.
type notification[P any] struct {
	fn func(P)
}

func (n notification[P]) Execute(params []byte) {
	var p P
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return
		}
	}
	n.fn(p)
}

// Notification adapts fn to a NotificationHandler.
func Notification[P any](fn func(P)) NotificationHandler {
	return notification[P]{fn: fn}
}
