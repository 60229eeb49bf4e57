package failure

import (
	"errors"
	"fmt"
)

// StatusError carries a non-success HTTP status through the retry stack so
// the policy can grade it by cause.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d fetching %s", e.Code, e.URL)
}

// Kind returns the failure class of the status code.
func (e *StatusError) Kind() Kind {
	if k := ClassifyStatus(e.Code); k != KindNone {
		return k
	}
	// Unexpected non-success statuses (e.g. 404) are not retryable but also
	// not an infrastructure failure.
	return KindNone
}

// Of classifies any error, preferring an embedded HTTP status over
// transport-level inspection.
func Of(err error) Kind {
	if err == nil {
		return KindNone
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Kind()
	}
	return ClassifyError(err)
}
