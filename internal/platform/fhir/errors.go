package fhir

import (
	"errors"
	"fmt"
)

// ErrMissingID is returned when a create succeeds at the HTTP level but the
// server response carries no resource id.
var ErrMissingID = errors.New("server did not return a resource id")

// RemoteCallError wraps any failure that happened while talking to the FHIR
// server, including non-2xx responses and bodies that fail to decode.
type RemoteCallError struct {
	Op           string
	ResourceType string
	Err          error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ResourceType, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// AsRemoteCallError returns the RemoteCallError in err's chain, if any.
func AsRemoteCallError(err error) (*RemoteCallError, bool) {
	var rerr *RemoteCallError
	if errors.As(err, &rerr) {
		return rerr, true
	}
	return nil, false
}
