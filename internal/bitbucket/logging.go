package bitbucket

import (
	"bytes"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dshills/codeinsights/internal/redact"
)

const (
	maxLoggedRequestBody  = 512
	maxLoggedResponseBody = 4 * 1024
)

// loggingRoundTripper logs requests and responses. Bodies are only read when
// the logger is at debug level.
type loggingRoundTripper struct {
	next   http.RoundTripper
	logger *zerolog.Logger
}

func newLoggingRoundTripper(next http.RoundTripper, logger *zerolog.Logger) http.RoundTripper {
	return &loggingRoundTripper{next: next, logger: logger}
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID := req.Header.Get("X-Request-Id")
	l.logger.Debug().
		Str("method", req.Method).
		Str("url", redact.URL(req.URL.String())).
		Str("requestId", requestID).
		Msg("> request")

	if l.logger.GetLevel() <= zerolog.DebugLevel && req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			data, _ := io.ReadAll(body)
			body.Close()
			l.logger.Debug().Str("requestId", requestID).
				Str("body", redact.Truncate(redact.Secrets(string(data)), maxLoggedRequestBody)).
				Msg("> request body")
		}
	}

	resp, err := l.next.RoundTrip(req)
	if err != nil {
		l.logger.Debug().Err(err).Str("requestId", requestID).Msg("< request failed")
		return nil, err
	}

	event := l.logger.Debug().Int("status", resp.StatusCode).Str("requestId", requestID)
	if l.logger.GetLevel() <= zerolog.DebugLevel && resp.Body != nil {
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(data))
		if readErr == nil && len(data) > 0 {
			event = event.Str("body", redact.Truncate(redact.Secrets(string(data)), maxLoggedResponseBody))
		}
	}
	event.Msg("< response")

	return resp, nil
}
