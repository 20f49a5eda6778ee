package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownCollection is returned for a collection slug the client has no adapter for.
var ErrUnknownCollection = errors.New("unknown collection")

// NetworkError reports a transport failure or an unsuccessful response status.
type NetworkError struct {
	Collection string
	URL        string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Collection, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Collection, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ShapeError reports a decoded payload that lacks the fields the adapter expects.
type ShapeError struct {
	Collection string
	Missing    string
	Err        error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Collection, e.Missing, e.Err)
	}
	return fmt.Sprintf("decode %s: missing %q", e.Collection, e.Missing)
}

func (e *ShapeError) Unwrap() error { return e.Err }

// NotFoundError reports an id that resolves to nothing.
type NotFoundError struct {
	Collection string
	ID         int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Collection, e.ID)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
