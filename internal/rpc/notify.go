package rpc

import "github.com/tidwall/sjson"

// NotificationPayload assembles a server-initiated notification payload.
// ok is false when params cannot be serialized; callers should skip the
// notification rather than fail the connection.
func NotificationPayload(method string, params any) (payload string, ok bool) {
	out, err := sjson.Set(responseBase, "method", method)
	if err != nil {
		return "", false
	}
	if params != nil {
		out, err = sjson.Set(out, "params", params)
		if err != nil {
			return "", false
		}
	}
	return out, true
}
