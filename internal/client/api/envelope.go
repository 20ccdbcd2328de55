package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// StatusSuccess is the discriminator the storefront API uses for a
// successful call.
const StatusSuccess = "SUCCESS"

// Envelope is the storefront API response body.
type Envelope struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// OK reports whether the envelope carries the success discriminator.
func (e *Envelope) OK() bool {
	return e != nil && e.Status == StatusSuccess
}

// Decode unmarshals the response payload into v.
func (e *Envelope) Decode(v any) error {
	if e == nil || len(e.Response) == 0 {
		return errors.New("envelope has no response payload")
	}
	if err := json.Unmarshal(e.Response, v); err != nil {
		return fmt.Errorf("decode envelope payload: %w", err)
	}
	return nil
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: server returned %d: %s", e.Method, e.URL, e.Code, e.Body)
}
