package rpc

import (
	"fmt"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// responseBase is the skeleton every response is assembled onto.
const responseBase = `{"jsonrpc":"2.0"}`

// Dispatcher routes decoded JSON-RPC payloads to registered handlers. The
// transport treats payloads as opaque text; the Dispatcher is the only
// component that looks inside them.
//
// Registration and dispatch are safe for concurrent use.
type Dispatcher struct {
	mu            sync.RWMutex
	methods       map[string]MethodHandler
	notifications map[string]NotificationHandler
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		methods:       make(map[string]MethodHandler),
		notifications: make(map[string]NotificationHandler),
	}
}

// RegisterMethod registers a request handler under a method name.
// Re-registering a name replaces the previous handler.
func (d *Dispatcher) RegisterMethod(name string, h MethodHandler) {
	d.mu.Lock()
	d.methods[name] = h
	d.mu.Unlock()
}

// RegisterNotification registers a notification handler under a method name.
func (d *Dispatcher) RegisterNotification(name string, h NotificationHandler) {
	d.mu.Lock()
	d.notifications[name] = h
	d.mu.Unlock()
}

// Dispatch consumes one decoded message payload and returns the encoded
// response. ok is false when the message warrants no response (a
// notification, or garbage without a request id).
//
// Every failure mode is expressed as a response: unparseable payloads get a
// parse-error response, unknown methods a method-not-found response, and a
// result that cannot be serialized an internal-error response.
func (d *Dispatcher) Dispatch(payload string) (response string, ok bool) {
	if !gjson.Valid(payload) {
		return errorResponse("null", &Error{
			Code:    CodeParseError,
			Message: "parse error",
		}), true
	}

	id := gjson.Get(payload, "id")
	methodName := gjson.Get(payload, "method")
	params := gjson.Get(payload, "params")

	if methodName.Type != gjson.String || methodName.Str == "" {
		if !id.Exists() {
			return "", false
		}
		return errorResponse(id.Raw, &Error{
			Code:    CodeInvalidRequest,
			Message: "invalid request: missing method",
		}), true
	}

	if !id.Exists() {
		d.mu.RLock()
		h := d.notifications[methodName.Str]
		d.mu.RUnlock()
		if h != nil {
			h.Execute(rawParams(params))
		}
		return "", false
	}

	d.mu.RLock()
	h := d.methods[methodName.Str]
	d.mu.RUnlock()
	if h == nil {
		return errorResponse(id.Raw, &Error{
			Code:    CodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", methodName.Str),
		}), true
	}

	result, rpcErr := h.Execute(rawParams(params))
	if rpcErr != nil {
		return errorResponse(id.Raw, rpcErr), true
	}
	return resultResponse(id.Raw, result), true
}

// rawParams extracts the params field as raw JSON, or nil when absent.
func rawParams(params gjson.Result) []byte {
	if !params.Exists() {
		return nil
	}
	return []byte(params.Raw)
}

// resultResponse assembles a success response. A result value that cannot
// be serialized degrades to an internal-error response.
func resultResponse(idRaw string, result any) string {
	out, err := sjson.SetRaw(responseBase, "id", idRaw)
	if err != nil {
		idRaw, out = "null", responseBase
	}
	withResult, err := sjson.Set(out, "result", result)
	if err != nil {
		return errorResponse(idRaw, &Error{
			Code:    CodeInternalError,
			Message: fmt.Sprintf("result could not be serialized: %v", err),
		})
	}
	return withResult
}

// errorResponse assembles an error response. Error data that cannot be
// serialized is dropped rather than losing the response.
func errorResponse(idRaw string, rpcErr *Error) string {
	out, err := sjson.SetRaw(responseBase, "id", idRaw)
	if err != nil {
		out = responseBase
	}
	withErr, err := sjson.Set(out, "error", rpcErr)
	if err != nil {
		withErr, _ = sjson.Set(out, "error", &Error{
			Code:    rpcErr.Code,
			Message: rpcErr.Message,
		})
	}
	return withErr
}
