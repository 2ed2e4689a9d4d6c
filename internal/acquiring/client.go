package acquiring

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"acquiring-gateway/internal/logger"
	"acquiring-gateway/internal/metrics"

	"go.uber.org/zap"
)

const (
	ProductionBaseURI = "https://securepayments.sberbank.ru"
	TestBaseURI       = "https://3dsec.sberbank.ru"
)

type Config struct {
	// Either UserName and Password, or Token. UserName/Password wins when both are set.
	UserName string
	Password string
	Token    string

	// BaseURI defaults to ProductionBaseURI.
	BaseURI string

	// Transport defaults to an HTTPTransport built from TransportOptions.
	Transport        Transport
	TransportOptions []TransportOption
}

// Client issues gateway operations. It holds no mutable state and may be
// shared between goroutines when its Transport can.
type Client struct {
	userName  string
	password  string
	token     string
	baseURI   string
	transport Transport
}

func NewClient(cfg Config) (*Client, error) {
	hasPair := cfg.UserName != "" && cfg.Password != ""
	if !hasPair && cfg.Token == "" {
		return nil, invalidArgument("either userName and password or token must be provided")
	}

	transport := cfg.Transport
	if transport == nil {
		transport = NewHTTPTransport(cfg.TransportOptions...)
	} else if isNilValue(transport) {
		return nil, invalidArgument("transport %T is nil", transport)
	}

	baseURI := cfg.BaseURI
	if baseURI == "" {
		baseURI = ProductionBaseURI
	}

	c := &Client{
		baseURI:   strings.TrimRight(baseURI, "/"),
		transport: transport,
	}
	if hasPair {
		c.userName, c.password = cfg.UserName, cfg.Password
	} else {
		c.token = cfg.Token
	}
	return c, nil
}

func isNilValue(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

type callOptions struct {
	method  string
	headers http.Header
}

// CallOption tunes a single gateway call.
type CallOption func(*callOptions)

// WithMethod selects GET or POST (the default). Other methods fail in the transport.
func WithMethod(method string) CallOption {
	return func(o *callOptions) {
		o.method = strings.ToUpper(method)
	}
}

func WithHeaders(h http.Header) CallOption {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = make(http.Header)
		}
		for k, vs := range h {
			for _, v := range vs {
				o.headers.Add(k, v)
			}
		}
	}
}

type operation struct {
	name string
	path string
	// auth is false for wallet payments, where merchant login and payment token authenticate.
	auth bool
}

func (c *Client) authenticate(p Params) {
	delete(p, "userName")
	delete(p, "password")
	delete(p, "token")
	if c.userName != "" {
		p["userName"] = c.userName
		p["password"] = c.password
		return
	}
	p["token"] = c.token
}

// execute sends p, which the caller owns, and normalizes the reply.
func (c *Client) execute(ctx context.Context, op operation, p Params, opts []CallOption) (Result, error) {
	o := callOptions{method: http.MethodPost}
	for _, opt := range opts {
		opt(&o)
	}

	if op.auth {
		c.authenticate(p)
	}

	ctx = logger.WithCallID(ctx)
	log := logger.FromCtx(ctx).With(
		zap.String("operation", op.name),
		zap.String("method", o.method),
	)

	timer := metrics.StartTimer()
	body, err := c.transport.Request(ctx, c.baseURI+op.path, o.method, encodeParams(p), o.headers)

	var result Result
	if err == nil {
		result, err = ParseResponse([]byte(body))
	}
	metrics.ObserveGatewayCall(op.name, resultLabel(err), timer.Duration())

	if err != nil {
		log.Warn("gateway call failed", zap.Error(err), zap.Duration("duration", timer.Duration()))
		return nil, err
	}

	log.Debug("gateway call succeeded", zap.Duration("duration", timer.Duration()))
	return result, nil
}
