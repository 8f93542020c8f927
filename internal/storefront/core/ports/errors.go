package ports

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a lookup miss (unknown product or order). It is
// recovered locally by omission and never escalated as fatal.
var ErrNotFound = errors.New("not found")

// UnavailableError reports a transient backend outage: the request never got a
// usable answer. Recovery (reconnect, backoff) belongs to the presentation
// layer; the core only surfaces the condition with enough context to decide
// retry vs. degrade, and counts the occurrences it observes.
type UnavailableError struct {
	Service string // collaborator that failed, e.g. "product-catalog"
	Op      string // operation attempted, e.g. "GetProduct"
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s unavailable: %v", e.Service, e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// IsUnavailable reports whether err carries an UnavailableError anywhere in
// its chain.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
