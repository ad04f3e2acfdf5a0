// Package llm provides the internal representations shared by the model
// client, the session store and the web views: chat turns, modes, embedding
// results and the error taxonomy for failed interactions.
package llm

import "fmt"

// ErrorResponse represents an error returned by the JSON endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RemoteServiceError is any failure of a call to the hosted model service:
// network, auth, quota, or a response that could not be understood.
type RemoteServiceError struct {
	// Op is the adapter operation that failed (e.g. "send_message").
	Op string

	// StatusCode is the HTTP status returned by the service, 0 when the
	// request never produced a response.
	StatusCode int

	Err error
}

func (e *RemoteServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote service %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("remote service %s failed: %v", e.Op, e.Err)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when uploaded image bytes cannot be decoded or are
// not in a supported format.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format == "" {
		return "decode image: " + e.Err.Error()
	}

	return fmt.Sprintf("decode %s image: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// InvalidStateError is returned when a chat message is sent without a valid
// conversation, or when a history would lose its user/assistant alternation.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return "invalid chat state: " + e.Reason
}
