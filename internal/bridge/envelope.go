package bridge

import "encoding/json"

// envelope is the wire shape every bridge function returns: either a
// result payload or an error, never both (spec §6 "accept and return
// UTF-8 JSON").
type envelope struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *errorPayload   `json:"error,omitempty"`
}

// errorPayload carries the boundary error code spec §7 defines
// (direrr.Kind.Code()) alongside a human-readable message.
type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func encodeOK(v any) []byte {
	result, err := json.Marshal(v)
	if err != nil {
		return encodeErr(err)
	}
	data, err := json.Marshal(envelope{OK: true, Result: result})
	if err != nil {
		// v's own encoding failed in a way Marshal(envelope) can't
		// recover from; fall back to a literal so the host always
		// gets valid JSON back.
		return []byte(`{"ok":false,"error":{"code":"INTERNAL_ERROR","message":"failed to encode response"}}`)
	}
	return data
}

func encodeErr(err error) []byte {
	data, marshalErr := json.Marshal(envelope{OK: false, Error: &errorPayload{
		Code:    codeOf(err),
		Message: err.Error(),
	}})
	if marshalErr != nil {
		return []byte(`{"ok":false,"error":{"code":"INTERNAL_ERROR","message":"failed to encode error"}}`)
	}
	return data
}
