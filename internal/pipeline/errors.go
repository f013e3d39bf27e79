package pipeline

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/reach-cli/pkg/ors"
)

var (
	// ErrNotFound means geocoding returned zero matches.
	ErrNotFound = eris.New("address not found")
	// ErrEmptyAddress means the address text was blank.
	ErrEmptyAddress = eris.New("address is empty")
	// ErrUnavailable means no travel time could be determined.
	ErrUnavailable = eris.New("travel time unavailable")
	// ErrInvalidParameter means an origin, mode or duration was rejected.
	ErrInvalidParameter = eris.New("invalid parameter")
)

// ServiceError reports a failed call to an external service: a non-2xx
// status, a transport failure, or an unusable response.
type ServiceError struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: service returned status %d: %s", e.Op, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newServiceError(op string, err error) *ServiceError {
	se := &ServiceError{Op: op, Err: err, Detail: err.Error()}
	var status *ors.StatusError
	if errors.As(err, &status) {
		se.StatusCode = status.StatusCode
		se.Detail = status.Body
	}
	return se
}
