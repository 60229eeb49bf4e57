// Package failure classifies crawl-fetch failures so retry policy and
// operator counters can treat them by cause rather than uniformly.
package failure

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"syscall"
)

// Kind is the failure class of a fetch attempt.
type Kind int

const (
	// KindNone means the attempt succeeded.
	KindNone Kind = iota
	// KindTransient covers network/DNS/timeout errors and 5xx responses.
	KindTransient
	// KindRateLimited covers HTTP 429 responses.
	KindRateLimited
	// KindBlocked covers HTTP 403 anti-bot responses.
	KindBlocked
	// KindFatal covers process/resource errors that must never be retried.
	KindFatal
	// KindPermanent covers deterministic non-network failures, such as a
	// malformed provider response; retrying cannot change the outcome.
	KindPermanent
)

// String returns the label used for logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransient:
		return "transient"
	case KindRateLimited:
		return "rate_limited"
	case KindBlocked:
		return "blocked"
	case KindFatal:
		return "fatal"
	case KindPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// ClassifyStatus maps an HTTP status code to a failure kind.
func ClassifyStatus(code int) Kind {
	switch {
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code == http.StatusForbidden:
		return KindBlocked
	case code >= http.StatusInternalServerError:
		return KindTransient
	default:
		return KindNone
	}
}

// ClassifyError maps a transport-level error to a failure kind.
// Resource exhaustion is fatal, everything network-shaped is transient,
// and anything else is permanent.
func ClassifyError(err error) Kind {
	if err == nil {
		return KindNone
	}

	if errors.Is(err, syscall.ENOMEM) || errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE) {
		return KindFatal
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return KindFatal
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindTransient
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ENETUNREACH) {
		return KindTransient
	}

	return KindPermanent
}
