package retry

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"testing"

	"google.golang.org/api/googleapi"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"rate limited", &googleapi.Error{Code: 429}, Transient},
		{"request timeout", &googleapi.Error{Code: 408}, Transient},
		{"internal error", &googleapi.Error{Code: 500}, Transient},
		{"bad gateway", &googleapi.Error{Code: 502}, Transient},
		{"service unavailable", &googleapi.Error{Code: 503}, Transient},
		{"bad request", &googleapi.Error{Code: 400}, Permanent},
		{"unauthorized", &googleapi.Error{Code: 401}, Permanent},
		{"forbidden", &googleapi.Error{Code: 403}, Permanent},
		{"not found", &googleapi.Error{Code: 404}, Permanent},
		{"net timeout", timeoutErr{}, Transient},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, Transient},
		{"url error", &url.Error{Op: "Post", URL: "https://sheets", Err: errors.New("EOF")}, Transient},
		{"unexpected eof", io.ErrUnexpectedEOF, Transient},
		{"plain error", errors.New("malformed range"), Permanent},
		{"wrapped api error", fmt.Errorf("read range: %w", &googleapi.Error{Code: 503}), Transient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

var _ net.Error = timeoutErr{}
