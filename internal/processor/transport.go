package processor

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// NewHTTPClient returns the client used for dataset downloads. Requests are
// logged through log; no timeout is set, cancellation goes through the
// request context.
func NewHTTPClient(log zerolog.Logger) *http.Client {
	return &http.Client{
		Transport: &RequestLogger{
			Next: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
			},
			Log: log,
		},
	}
}

// RequestLogger is a round tripper that logs outgoing HTTP requests.
type RequestLogger struct {
	Next http.RoundTripper
	Log  zerolog.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *RequestLogger) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()

	next := t.Next
	if next == nil {
		next = http.DefaultTransport
	}

	resp, err := next.RoundTrip(r)
	if err != nil {
		t.Log.Warn().
			Err(err).
			Str("method", r.Method).
			Str("url", r.URL.Redacted()).
			Dur("duration", time.Since(start)).
			Msg("Request failed")

		return nil, err
	}

	t.Log.Debug().
		Str("method", r.Method).
		Str("url", r.URL.Redacted()).
		Int("status", resp.StatusCode).
		Int64("size", resp.ContentLength).
		Dur("duration", time.Since(start)).
		Msg("Request processed")

	return resp, nil
}
