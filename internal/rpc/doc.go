// Package rpc is the dispatch boundary between the transport core and
// method implementations.
//
// The transport hands the Dispatcher one decoded JSON-RPC payload at a time
// and gets back the encoded response, when one is due. Handlers are plain
// functions over typed parameter and result values; the generic Method and
// Notification adapters take care of decoding params, reporting invalid
// params with an optional fallback value, and turning structured handler
// failures into JSON-RPC error objects. A result or error value that cannot
// be serialized produces an internal-error response rather than aborting.
//
//	d := rpc.NewDispatcher()
//	d.RegisterMethod("textDocument/hover", rpc.Method(
//	    func(p HoverParams) (Hover, *rpc.ServerError) { ... }))
//	d.RegisterNotification("textDocument/didChange", rpc.Notification(
//	    func(p DidChangeParams) { ... }))
package rpc
