package acquiring

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRoundTripperWithError allows us to fail at the HTTP client level
type MockRoundTripperWithError func(req *http.Request) (*http.Response, error)

func (f MockRoundTripperWithError) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type capturedRequest struct {
	method      string
	query       url.Values
	body        string
	contentType string
	header      http.Header
}

func newCapturingServer(t *testing.T, status int, respBody string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		captured.method = r.Method
		captured.query = r.URL.Query()
		captured.body = string(b)
		captured.contentType = r.Header.Get("Content-type")
		captured.header = r.Header.Clone()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestHTTPTransport_Request(t *testing.T) {
	params := url.Values{"orderId": {"abc"}, "amount": {"1000"}}

	t.Run("POST_EncodesBody", func(t *testing.T) {
		srv, got := newCapturingServer(t, http.StatusOK, `{"errorCode":0}`)
		tr := NewHTTPTransport()

		body, err := tr.Request(context.Background(), srv.URL+"/payment/rest/deposit.do", http.MethodPost, params, nil)
		require.NoError(t, err)

		assert.Equal(t, `{"errorCode":0}`, body)
		assert.Equal(t, http.MethodPost, got.method)
		assert.Equal(t, "application/x-www-form-urlencoded", got.contentType)
		assert.Empty(t, got.query)

		form, err := url.ParseQuery(got.body)
		require.NoError(t, err)
		assert.Equal(t, params, form)
	})

	t.Run("GET_EncodesQuery", func(t *testing.T) {
		srv, got := newCapturingServer(t, http.StatusOK, `{}`)
		tr := NewHTTPTransport()

		_, err := tr.Request(context.Background(), srv.URL+"/payment/rest/deposit.do", http.MethodGet, params, nil)
		require.NoError(t, err)

		assert.Equal(t, http.MethodGet, got.method)
		assert.Equal(t, "application/json", got.contentType)
		assert.Equal(t, "", got.body)
		assert.Equal(t, params, got.query)
	})

	t.Run("Headers", func(t *testing.T) {
		srv, got := newCapturingServer(t, http.StatusOK, `{}`)
		tr := NewHTTPTransport(WithDefaultHeaders(http.Header{
			"X-Client":     {"default"},
			"X-Shop":       {"main"},
			"Content-type": {"text/plain"},
		}))

		_, err := tr.Request(context.Background(), srv.URL, http.MethodPost, params, http.Header{"X-Shop": {"override"}})
		require.NoError(t, err)

		assert.Equal(t, "default", got.header.Get("X-Client"))
		assert.Equal(t, []string{"override"}, got.header.Values("X-Shop"))
		assert.Equal(t, "application/x-www-form-urlencoded", got.contentType)
	})

	t.Run("Non200_IsHTTPError", func(t *testing.T) {
		srv, _ := newCapturingServer(t, http.StatusBadGateway, `{"errorCode":0,"orderId":"ignored"}`)
		tr := NewHTTPTransport()

		body, err := tr.Request(context.Background(), srv.URL, http.MethodPost, params, nil)

		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.MethodPost, httpErr.Method)
		assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
		assert.Equal(t, "", body)
	})

	t.Run("UnsupportedMethod", func(t *testing.T) {
		called := false
		tr := NewHTTPTransport(WithHTTPClient(&http.Client{Transport: MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			called = true
			return nil, errors.New("unreachable")
		})}))

		_, err := tr.Request(context.Background(), "https://gateway.test", http.MethodPut, params, nil)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.False(t, called)
	})

	t.Run("EmptyURI", func(t *testing.T) {
		_, err := NewHTTPTransport().Request(context.Background(), "", http.MethodPost, params, nil)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("NetworkError", func(t *testing.T) {
		tr := NewHTTPTransport(WithHTTPClient(&http.Client{Transport: MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			return nil, &netOpError{err: syscall.ECONNREFUSED}
		})}))

		_, err := tr.Request(context.Background(), "https://gateway.test", http.MethodPost, params, nil)

		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Equal(t, int(syscall.ECONNREFUSED), netErr.Code)
		assert.Contains(t, netErr.Error(), syscall.ECONNREFUSED.Error())
	})

	t.Run("Timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		tr := NewHTTPTransport(WithTimeout(20 * time.Millisecond))
		_, err := tr.Request(context.Background(), srv.URL, http.MethodGet, nil, nil)

		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Equal(t, 0, netErr.Code)
	})

	t.Run("WithTimeout_DoesNotMutateGivenClient", func(t *testing.T) {
		given := &http.Client{Timeout: time.Minute}
		NewHTTPTransport(WithHTTPClient(given), WithTimeout(time.Second))
		assert.Equal(t, time.Minute, given.Timeout)
	})

	t.Run("WithTimeout_AnyOrder", func(t *testing.T) {
		given := &http.Client{Timeout: time.Minute}

		before := NewHTTPTransport(WithTimeout(time.Second), WithHTTPClient(given))
		after := NewHTTPTransport(WithHTTPClient(given), WithTimeout(time.Second))

		assert.Equal(t, time.Second, before.httpClient.Timeout)
		assert.Equal(t, time.Second, after.httpClient.Timeout)
		assert.Equal(t, time.Minute, given.Timeout)
	})

	t.Run("DefaultTimeout", func(t *testing.T) {
		assert.Equal(t, defaultTimeout, NewHTTPTransport().httpClient.Timeout)
	})
}

type netOpError struct{ err error }

func (e *netOpError) Error() string { return "dial tcp: " + e.err.Error() }
func (e *netOpError) Unwrap() error { return e.err }
