package bitbucket

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultProxyURL is the Bitbucket Pipelines authentication proxy.
const DefaultProxyURL = "http://host.docker.internal:29418"

const defaultTimeout = 60 * time.Second

// Response is the outcome of a completed request, whatever its status.
type Response struct {
	StatusCode int
	Status     string
	Body       []byte
}

// Transport performs JSON requests against the API. A non-nil error means the
// request did not complete; HTTP error statuses are returned as a Response.
type Transport interface {
	Get(ctx context.Context, url string) (*Response, error)
	Put(ctx context.Context, url string, body any) (*Response, error)
	Post(ctx context.Context, url string, body any) (*Response, error)
}

// This will force go to complain if the type doesn't satisfy the interface.
var _ Transport = (*HTTPTransport)(nil)

// HTTPTransport implements Transport over net/http.
type HTTPTransport struct {
	httpClient *http.Client
	proxy      *url.URL
	timeout    time.Duration
	userAgent  string
	logger     *zerolog.Logger
}

// TransportOpt configures an HTTPTransport.
type TransportOpt func(*HTTPTransport)

// WithHTTPClient uses httpClient as-is, ignoring proxy and timeout options.
func WithHTTPClient(httpClient *http.Client) TransportOpt {
	return func(t *HTTPTransport) {
		t.httpClient = httpClient
	}
}

// WithProxy routes every request through proxy. A nil proxy disables proxying.
func WithProxy(proxy *url.URL) TransportOpt {
	return func(t *HTTPTransport) {
		t.proxy = proxy
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) TransportOpt {
	return func(t *HTTPTransport) {
		t.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) TransportOpt {
	return func(t *HTTPTransport) {
		t.userAgent = ua
	}
}

// WithTransportLogger logs every request and response at debug level.
func WithTransportLogger(logger *zerolog.Logger) TransportOpt {
	return func(t *HTTPTransport) {
		t.logger = logger
	}
}

// NewHTTPTransport creates a transport. Without options it talks directly to
// the network with a 60s timeout.
func NewHTTPTransport(opts ...TransportOpt) *HTTPTransport {
	nop := zerolog.Nop()
	t := &HTTPTransport{
		timeout:   defaultTimeout,
		userAgent: "codeinsights",
		logger:    &nop,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.httpClient == nil {
		base := http.DefaultTransport.(*http.Transport).Clone()
		if t.proxy != nil {
			base.Proxy = http.ProxyURL(t.proxy)
		} else {
			base.Proxy = nil
		}
		t.httpClient = &http.Client{
			Timeout:   t.timeout,
			Transport: newLoggingRoundTripper(base, t.logger),
		}
	}
	return t
}

// Get issues a GET request.
func (t *HTTPTransport) Get(ctx context.Context, url string) (*Response, error) {
	return t.do(ctx, http.MethodGet, url, nil)
}

// Put issues a PUT request with body encoded as JSON.
func (t *HTTPTransport) Put(ctx context.Context, url string, body any) (*Response, error) {
	return t.do(ctx, http.MethodPut, url, body)
}

// Post issues a POST request with body encoded as JSON.
func (t *HTTPTransport) Post(ctx context.Context, url string, body any) (*Response, error) {
	return t.do(ctx, http.MethodPost, url, body)
}

func (t *HTTPTransport) do(ctx context.Context, method, url string, body any) (*Response, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("X-Request-Id", uuid.New().String())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, url)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       data,
	}, nil
}
