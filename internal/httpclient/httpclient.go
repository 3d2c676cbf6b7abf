package httpclient

import (
	"net"
	"net/http"
	"time"

	"github.com/smit333/Oracle-Agent-Ex/internal/logging"
)

// New returns an http.Client configured for outbound requests.
//
// If connectTimeout > 0 the dialer enforces it separately from the total
// request timeout, matching the transport contract the HCM client expects.
func New(timeout time.Duration, logger logging.Logger) *http.Client {
	return NewWithConnectTimeout(timeout, 0, logger)
}

// NewWithConnectTimeout builds an http.Client with distinct total and
// connect timeouts.
func NewWithConnectTimeout(timeout, connectTimeout time.Duration, logger logging.Logger) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := baseTransport()
	if connectTimeout > 0 {
		dialer := &net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}
		transport.DialContext = dialer.DialContext
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &loggingRoundTripper{
			base:   transport,
			logger: logging.OrNop(logger),
		},
	}
}

func baseTransport() *http.Transport {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Transport{}
	}
	return base.Clone()
}

type loggingRoundTripper struct {
	base   http.RoundTripper
	logger logging.Logger
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	elapsed := time.Since(start)
	if err != nil {
		t.logger.Debug("%s %s failed after %s: %v", req.Method, req.URL.Redacted(), elapsed, err)
		return nil, err
	}
	t.logger.Debug("%s %s -> %d in %s", req.Method, req.URL.Redacted(), resp.StatusCode, elapsed)
	return resp, nil
}
