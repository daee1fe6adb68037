package retry

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"

	"google.golang.org/api/googleapi"
)

// Kind classifies a remote failure.
type Kind int

const (
	// Transient failures are expected to resolve on retry.
	Transient Kind = iota
	// Permanent failures will not resolve on retry.
	Permanent
)

// Classify decides whether an error from the remote store is worth
// retrying. HTTP status codes from the Sheets API drive the decision;
// plain transport errors (timeouts, dropped connections) count as
// transient, everything unrecognized as permanent so a malformed request
// never burns the attempt budget.
func Classify(err error) Kind {
	if err == nil {
		return Permanent
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return Transient
		}
		if apiErr.Code >= 500 {
			return Transient
		}
		return Permanent
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Transient
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return Transient
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return Transient
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Transient
	}

	return Permanent
}
