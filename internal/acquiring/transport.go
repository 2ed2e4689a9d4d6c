package acquiring

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

const defaultTimeout = 30 * time.Second

// Transport performs one blocking HTTP exchange and returns the raw body.
type Transport interface {
	Request(ctx context.Context, uri, method string, params url.Values, headers http.Header) (string, error)
}

// HTTPTransport is the net/http backed Transport.
type HTTPTransport struct {
	httpClient *http.Client
	headers    http.Header
	timeout    time.Duration
}

type TransportOption func(*HTTPTransport)

// WithHTTPClient replaces the underlying client, e.g. to set a proxy or TLS config.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		if c != nil {
			t.httpClient = c
		}
	}
}

// WithTimeout bounds each exchange. It applies to the final client whatever the
// option order, and never mutates a client passed to WithHTTPClient.
func WithTimeout(d time.Duration) TransportOption {
	return func(t *HTTPTransport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithDefaultHeaders adds headers sent on every request.
func WithDefaultHeaders(h http.Header) TransportOption {
	return func(t *HTTPTransport) {
		for k, vs := range h {
			for _, v := range vs {
				t.headers.Add(k, v)
			}
		}
	}
}

func NewHTTPTransport(opts ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{
		httpClient: &http.Client{Timeout: defaultTimeout},
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.timeout > 0 {
		c := *t.httpClient
		c.Timeout = t.timeout
		t.httpClient = &c
	}
	return t
}

func (t *HTTPTransport) Request(ctx context.Context, uri, method string, params url.Values, headers http.Header) (string, error) {
	if uri == "" {
		return "", invalidArgument("URI must not be empty")
	}

	var (
		body        io.Reader
		contentType string
	)
	switch method {
	case http.MethodGet:
		encoded := params.Encode()
		if encoded != "" {
			sep := "?"
			if strings.Contains(uri, "?") {
				sep = "&"
			}
			uri += sep + encoded
		}
		contentType = "application/json"
	case http.MethodPost:
		body = strings.NewReader(params.Encode())
		contentType = "application/x-www-form-urlencoded"
	default:
		return "", invalidArgument("unsupported HTTP method %q", method)
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return "", invalidArgument("cannot build request: %v", err)
	}

	for k, vs := range t.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, vs := range headers {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-type", contentType)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Code: errnoOf(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &HTTPError{Method: method, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Code: errnoOf(err), Err: err}
	}

	return string(raw), nil
}

func errnoOf(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return 0
}
