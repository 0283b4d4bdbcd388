package catalog

import (
	"fmt"
	"net/http"
)

// Sentinel classifications attached at the call sites that know what a
// failing status means (unknown product id, rejected credentials).
var (
	ErrNotFound   = fmt.Errorf("catalog: product not found")
	ErrAuthFailed = fmt.Errorf("catalog: login rejected")
)

// TransportError reports that the request never produced an HTTP response:
// DNS failure, refused connection, timeout.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("catalog: %s: network failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError reports a non-2xx response. Detail carries the response body
// text so callers can show what the service actually said.
type RemoteError struct {
	Op     string
	Status int
	Detail string
}

func (e *RemoteError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("catalog: %s: %s", e.Op, http.StatusText(e.Status))
	}
	return fmt.Sprintf("catalog: %s: %s: %s", e.Op, http.StatusText(e.Status), e.Detail)
}
