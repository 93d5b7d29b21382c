package httpclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	c := resty.New()
	c.SetTimeout(timeout)
	return &RestyClient{client: c}
}

// Get performs an HTTP GET request with the specified context, URL, and options.
func (r *RestyClient) Get(ctx context.Context, url string, opts RequestOptions) (Response, error) {
	return r.do(ctx, http.MethodGet, url, nil, opts)
}

// Post performs an HTTP POST request carrying the given body.
func (r *RestyClient) Post(ctx context.Context, url string, body any, opts RequestOptions) (Response, error) {
	return r.do(ctx, http.MethodPost, url, body, opts)
}

// Put performs an HTTP PUT request carrying the given body.
func (r *RestyClient) Put(ctx context.Context, url string, body any, opts RequestOptions) (Response, error) {
	return r.do(ctx, http.MethodPut, url, body, opts)
}

// Delete performs an HTTP DELETE request.
func (r *RestyClient) Delete(ctx context.Context, url string, opts RequestOptions) (Response, error) {
	return r.do(ctx, http.MethodDelete, url, nil, opts)
}

func (r *RestyClient) do(ctx context.Context, method, url string, body any, opts RequestOptions) (Response, error) {
	req := r.client.R().SetContext(ctx)
	for _, f := range opts.Headers {
		req.SetHeader(f.Name, f.Value)
	}
	for _, f := range opts.Params {
		req.SetQueryParam(f.Name, f.Value)
	}
	if body != nil {
		// resty only url-encodes form payloads given via SetFormData, so field
		// maps sent under the form content type are routed there.
		if fields, ok := body.(map[string]string); ok && isFormContentType(req.Header.Get("Content-Type")) {
			req.SetFormData(fields)
		} else {
			req.SetBody(body)
		}
	}
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

func isFormContentType(ct string) bool {
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded")
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte             { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int          { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header(key string) string { return r.resp.Header().Get(key) }
