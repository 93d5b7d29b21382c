package requests

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/samvad-httpkit/pkg/httpclient"
)

// Builder accumulates a single request and dispatches it at most once.
// Every chain call returns the same builder. Builders are not safe for
// concurrent use and are not reusable: terminate each builder with one
// Do or Handle call and mint a fresh builder for the next request.
type Builder struct {
	factory *Factory
	method  Method
	url     string
	body    any
	ctype   ContentType
	headers []httpclient.Field
	params  []httpclient.Field
	ctx     context.Context
}

// Header appends one header pair. Repeated names keep call order; the
// transport applies them last-wins.
func (b *Builder) Header(name, value string) *Builder {
	b.headers = append(b.headers, httpclient.Field{Name: name, Value: value})
	return b
}

// ContentType replaces the payload encoding tag. The tag becomes a
// Content-Type header when the request is sent, not here.
func (b *Builder) ContentType(ct ContentType) *Builder {
	b.ctype = ct
	return b
}

// Param appends one query parameter. An empty name is silently ignored.
func (b *Builder) Param(name, value string) *Builder {
	if name == "" {
		return b
	}
	b.params = append(b.params, httpclient.Field{Name: name, Value: value})
	return b
}

// Params appends every pair in values. A nil or empty map is silently
// ignored.
func (b *Builder) Params(values map[string]string) *Builder {
	for name, value := range values {
		b.Param(name, value)
	}
	return b
}

// WithContext sets the context the dispatch runs under. A nil ctx is
// ignored.
func (b *Builder) WithContext(ctx context.Context) *Builder {
	if ctx != nil {
		b.ctx = ctx
	}
	return b
}

// Do sends the request synchronously and returns the transport's response
// or its error unchanged. Non-2xx responses are responses, not errors.
// The Content-Type header is finalized here for every dispatch, appended
// after caller headers so it wins over a manually set one.
func (b *Builder) Do() (httpclient.Response, error) {
	id := uuid.NewString()
	log := b.factory.log

	headers := make([]httpclient.Field, 0, len(b.headers)+1)
	headers = append(headers, b.headers...)
	headers = append(headers, httpclient.Field{Name: "Content-Type", Value: b.ctype.MIME()})
	opts := httpclient.RequestOptions{Headers: headers, Params: b.params}

	log.DebugObj("request dispatching", "request_meta", map[string]any{
		"id":           id,
		"method":       b.method.String(),
		"url":          b.url,
		"content_type": b.ctype.MIME(),
		"headers":      len(b.headers),
		"params":       len(b.params),
	})

	start := time.Now()
	resp, err := b.send(opts)

	d := Dispatch{
		ID:        id,
		Method:    b.method.String(),
		URL:       b.url,
		StartedAt: start.UTC(),
		ElapsedMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		d.Error = err.Error()
		log.ErrorObj("request failed", "dispatch", d)
	} else {
		d.Status = resp.StatusCode()
		log.InfoObj("request completed", "dispatch", d)
	}
	b.factory.notify(d)

	return resp, err
}

// Callbacks routes the outcome of an asynchronous dispatch. Nil fields are
// skipped. OnBefore runs first and synchronously: returning false cancels
// the dispatch before anything is sent, and no other callback fires.
type Callbacks struct {
	OnBefore   func() bool
	OnSuccess  func(httpclient.Response)
	OnError    func(error)
	OnComplete func()
}

// Handle dispatches the request without blocking the caller. Exactly one
// of OnSuccess or OnError fires per dispatch, then OnComplete.
func (b *Builder) Handle(cb Callbacks) {
	if cb.OnBefore != nil && !cb.OnBefore() {
		return
	}

	go func() {
		resp, err := b.Do()
		if err != nil {
			if cb.OnError != nil {
				cb.OnError(err)
			}
		} else if cb.OnSuccess != nil {
			cb.OnSuccess(resp)
		}
		if cb.OnComplete != nil {
			cb.OnComplete()
		}
	}()
}

// send routes the dispatch to the client verb for the builder's method.
// Methods outside the known set dispatch as GET.
func (b *Builder) send(opts httpclient.RequestOptions) (httpclient.Response, error) {
	ctx := b.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	client := b.factory.client
	switch b.method {
	case MethodPost:
		return client.Post(ctx, b.url, normalizeBody(b.body), opts)
	case MethodPut:
		return client.Put(ctx, b.url, normalizeBody(b.body), opts)
	case MethodDelete:
		return client.Delete(ctx, b.url, opts)
	default:
		return client.Get(ctx, b.url, opts)
	}
}

// normalizeBody replaces a string body with its JSON-quoted form and passes
// every other type through for the transport's own serialization.
func normalizeBody(body any) any {
	s, ok := body.(string)
	if !ok {
		return body
	}
	quoted, _ := json.Marshal(s)
	return string(quoted)
}
