package httpclient

import "context"

// Field is a single name/value pair used for headers and query parameters.
type Field struct {
	Name  string
	Value string
}

// RequestOptions carries the per-request header and query fields. Fields are
// applied in order, so a later field with a repeated name overwrites an
// earlier one.
type RequestOptions struct {
	Headers []Field
	Params  []Field
}

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header(key string) string
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, url string, opts RequestOptions) (Response, error)
	Post(ctx context.Context, url string, body any, opts RequestOptions) (Response, error)
	Put(ctx context.Context, url string, body any, opts RequestOptions) (Response, error)
	Delete(ctx context.Context, url string, opts RequestOptions) (Response, error)
}
