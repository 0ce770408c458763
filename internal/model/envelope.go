package model

import (
	"bytes"
	"encoding/json"
)

// Envelope is the normalized shape every upstream response is reduced to
// before it reaches a handler or the storefront SDK. The commerce API is
// inconsistent about its success shape: sometimes {status, data}, sometimes
// {message}, sometimes an empty body on a 2xx (deletes in particular).
// A single adapter lives here so no handler parses upstream bodies ad hoc.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// StatusSuccess is the normalized status for all 2xx responses.
const StatusSuccess = "success"

// defaultSuccessMessage is used when upstream gives a 2xx with no usable body.
const defaultSuccessMessage = "operation completed successfully"

// Normalize converts a raw upstream response (status code plus body) into
// either a success Envelope or an *APIError.
//
// Rules, in order:
//   - 2xx with an empty or non-JSON body is a SUCCESS. Upstream delete
//     operations routinely return empty bodies; treating them as failures
//     is a known bug class, so a minimal envelope is synthesized instead.
//   - 2xx with a JSON body keeps the raw body as Data and lifts the
//     upstream message if one is present.
//   - 429 maps to a rate-limit error.
//   - Any other non-2xx extracts a human-readable message from the body
//     ("message", then "errors.message", then a generic fallback) and
//     propagates the upstream status code.
func Normalize(statusCode int, body []byte) (*Envelope, error) {
	if statusCode >= 200 && statusCode < 300 {
		return normalizeSuccess(body), nil
	}

	if statusCode == 429 {
		return nil, NewRateLimitError("commerce API")
	}

	return nil, NewUpstreamStatusError(statusCode, extractMessage(body))
}

// DecodeData unmarshals the envelope's payload into v. Most endpoints nest
// the payload under a "data" key; a few return it at the top level. Both
// shapes decode here so callers never branch on the upstream's mood.
// Returns a validation error when the envelope carries no data at all.
func (e *Envelope) DecodeData(v any) error {
	if len(e.Data) == 0 {
		return NewValidationError("response", "no data in upstream response")
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	payload := e.Data
	if err := json.Unmarshal(e.Data, &wrapper); err == nil &&
		len(wrapper.Data) > 0 && !bytes.Equal(wrapper.Data, []byte("null")) {
		payload = wrapper.Data
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return NewInternalError(err)
	}
	return nil
}

func normalizeSuccess(body []byte) *Envelope {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return &Envelope{Status: StatusSuccess, Message: defaultSuccessMessage}
	}

	// A bare JSON array is a payload with nothing to peek at.
	if body[0] == '[' {
		return &Envelope{Status: StatusSuccess, Message: defaultSuccessMessage, Data: json.RawMessage(body)}
	}

	// Peek at the body for a message; keep the full body opaque as Data so
	// side-channel fields (e.g. signin's top-level token) survive.
	var peek struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &peek); err != nil {
		// Non-JSON body on a success status: same synthesized fallback as
		// the empty-body case.
		return &Envelope{Status: StatusSuccess, Message: defaultSuccessMessage}
	}

	env := &Envelope{
		Status:  StatusSuccess,
		Message: peek.Message,
		Data:    json.RawMessage(body),
	}
	if env.Message == "" {
		env.Message = defaultSuccessMessage
	}
	return env
}

// extractMessage pulls the most specific human-readable message out of an
// upstream failure body. Upstream uses "message" at the top level for most
// errors and "errors.message" for mongoose-style validation failures.
func extractMessage(body []byte) string {
	const fallback = "request failed, please try again"

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return fallback
	}

	var payload struct {
		Message string `json:"message"`
		Errors  struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	if payload.Message != "" {
		return payload.Message
	}
	if payload.Errors.Message != "" {
		return payload.Errors.Message
	}
	return fallback
}
