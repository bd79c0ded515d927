// Package bridge defines the wire protocol between the webview content and
// the native shell: the Request/Response envelopes and the closed set of
// dispatch error kinds.
package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/morezero/webview-bridge/pkg/jsonval"
)

const logPrefix = "bridge:message"

// Request is one call from the web content to a capability module.
// Payload is nil when the caller sent none; that is distinct from an explicit
// JSON null payload.
type Request struct {
	ID      string         `json:"id"`
	Module  string         `json:"module"`
	Action  string         `json:"action"`
	Payload *jsonval.Value `json:"payload,omitempty"`
}

// Response is the reply for exactly one Request. Success gates which of Data
// and Error is populated; the other is omitted from the wire form entirely.
type Response struct {
	ID      string         `json:"id"`
	Success bool           `json:"success"`
	Data    *jsonval.Value `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ParseRequest decodes raw JSON text into a Request. Module and action are
// required non-empty strings; anything else is an *Error with
// CodeInvalidMessageFormat.
func ParseRequest(data []byte) (*Request, *Error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, InvalidMessageFormat(err.Error())
	}
	if req.Module == "" {
		return nil, InvalidMessageFormat("missing or empty field: module")
	}
	if req.Action == "" {
		return nil, InvalidMessageFormat("missing or empty field: action")
	}
	return &req, nil
}

// RecoverID extracts the id from raw text that may not be a well-formed
// Request, so even a rejected message gets a correlatable Response. Returns
// the empty string when no id can be recovered.
func RecoverID(data []byte) string {
	var probe struct {
		ID string `json:"id"`
	}
	// Best effort: a decode error after the id field still leaves it populated.
	_ = json.Unmarshal(data, &probe)
	return probe.ID
}

// SuccessResponse builds a success Response carrying data (which may be nil
// when the action has no result).
func SuccessResponse(id string, data *jsonval.Value) *Response {
	return &Response{ID: id, Success: true, Data: data}
}

// ErrorResponse builds a failure Response from a dispatch error.
func ErrorResponse(id string, err *Error) *Response {
	return &Response{ID: id, Success: false, Error: err.Message}
}

// Encode serializes the response to JSON text.
func (r *Response) Encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to encode response: %w", logPrefix, err)
	}
	return data, nil
}
