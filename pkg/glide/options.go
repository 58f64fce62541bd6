package glide

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/fivetwenty-io/glide-client/internal/constants"
	internalhttp "github.com/fivetwenty-io/glide-client/internal/http"
)

// Request is a single Table API call handed to a Transport.
type Request = internalhttp.Request

// Response is a fully read Table API response.
type Response = internalhttp.Response

// Transport sends requests to the Table API. Implementations return an error
// for transport failures; the default transport also returns one (an
// *APIError) for statuses >= 400.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}

// Codec (de)serializes records and response envelopes.
type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// JSONCodec is the default Codec.
type JSONCodec struct{}

// Marshal implements Codec.
func (JSONCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal implements Codec.
func (JSONCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// Option configures a Cursor.
type Option func(*options)

type options struct {
	provider     ConfigProvider
	transport    Transport
	logger       Logger
	codec        Codec
	httpOpts     []internalhttp.Option
	limit        int
	batchSize    int
	deleteMethod string
}

func buildOptions(opts []Option) *options {
	o := &options{
		logger:       nopLogger{},
		codec:        JSONCodec{},
		limit:        constants.DefaultQueryLimit,
		batchSize:    constants.DefaultBatchSize,
		deleteMethod: http.MethodDelete,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// WithConfig uses an explicit configuration instead of the environment.
func WithConfig(config *Config) Option {
	return func(o *options) {
		o.provider = config
	}
}

// WithConfigProvider resolves the configuration through provider.
func WithConfigProvider(provider ConfigProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithTransport replaces the HTTP transport. The transport is expected to
// resolve request paths against the instance itself.
func WithTransport(transport Transport) Option {
	return func(o *options) {
		o.transport = transport
	}
}

// WithLogger sets the logger for the cursor and its transport.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCodec replaces the JSON codec used for records.
func WithCodec(codec Codec) Option {
	return func(o *options) {
		if codec != nil {
			o.codec = codec
		}
	}
}

// WithDebug enables request/response logging in the default transport.
func WithDebug(debug bool) Option {
	return func(o *options) {
		o.httpOpts = append(o.httpOpts, internalhttp.WithDebug(debug))
	}
}

// WithUserAgent overrides the User-Agent of the default transport.
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		o.httpOpts = append(o.httpOpts, internalhttp.WithUserAgent(userAgent))
	}
}

// WithRetryConfig lets the default transport retry connection errors, 429 and
// 5xx responses. Retries are disabled unless this is set.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(o *options) {
		o.httpOpts = append(o.httpOpts, internalhttp.WithRetryConfig(retryMax, waitMin, waitMax))
	}
}

// WithTimeout sets the per-request timeout of the default transport.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.httpOpts = append(o.httpOpts, internalhttp.WithTimeout(timeout))
	}
}

// WithHTTPClient sets the *http.Client used by the default transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		o.httpOpts = append(o.httpOpts, internalhttp.WithHTTPClient(httpClient))
	}
}

// WithLimit sets the initial query limit.
func WithLimit(limit int) Option {
	return func(o *options) {
		o.limit = limit
	}
}

// WithBatchSize sets the initial batch size.
func WithBatchSize(batchSize int) Option {
	return func(o *options) {
		o.batchSize = batchSize
	}
}

// WithDeleteMethod sets the HTTP method Delete uses. The default is DELETE;
// http.MethodPut reproduces clients that delete with a body-less PUT.
func WithDeleteMethod(method string) Option {
	return func(o *options) {
		if method != "" {
			o.deleteMethod = method
		}
	}
}

func (o *options) newTransport(config *Config) Transport {
	if o.transport != nil {
		return o.transport
	}

	httpOpts := append([]internalhttp.Option{internalhttp.WithLogger(o.logger)}, o.httpOpts...)

	return internalhttp.NewClient(config.BaseURL(), httpOpts...)
}
