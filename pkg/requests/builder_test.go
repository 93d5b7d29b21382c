package requests

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/samvad-hq/samvad-httpkit/pkg/httpclient"
)

// fakeResponse lets us stub the httpclient.Response interface.
type fakeResponse struct {
	body       []byte
	statusCode int
}

func (f fakeResponse) Body() []byte         { return f.body }
func (f fakeResponse) StatusCode() int      { return f.statusCode }
func (f fakeResponse) Header(string) string { return "" }

// fakeCall records one dispatch received by the fake transport.
type fakeCall struct {
	ctx    context.Context
	method string
	url    string
	body   any
	opts   httpclient.RequestOptions
}

// fakeClient stubs httpclient.Client and records every call.
type fakeClient struct {
	resp  fakeResponse
	err   error
	calls []fakeCall
}

func (f *fakeClient) record(ctx context.Context, method, url string, body any, opts httpclient.RequestOptions) (httpclient.Response, error) {
	f.calls = append(f.calls, fakeCall{ctx: ctx, method: method, url: url, body: body, opts: opts})
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeClient) Get(ctx context.Context, url string, opts httpclient.RequestOptions) (httpclient.Response, error) {
	return f.record(ctx, http.MethodGet, url, nil, opts)
}

func (f *fakeClient) Post(ctx context.Context, url string, body any, opts httpclient.RequestOptions) (httpclient.Response, error) {
	return f.record(ctx, http.MethodPost, url, body, opts)
}

func (f *fakeClient) Put(ctx context.Context, url string, body any, opts httpclient.RequestOptions) (httpclient.Response, error) {
	return f.record(ctx, http.MethodPut, url, body, opts)
}

func (f *fakeClient) Delete(ctx context.Context, url string, opts httpclient.RequestOptions) (httpclient.Response, error) {
	return f.record(ctx, http.MethodDelete, url, nil, opts)
}

// gatedClient blocks GET dispatches until the gate channel is closed.
type gatedClient struct {
	fakeClient
	gate chan struct{}
}

func (g *gatedClient) Get(ctx context.Context, url string, opts httpclient.RequestOptions) (httpclient.Response, error) {
	<-g.gate
	return g.fakeClient.Get(ctx, url, opts)
}

func TestChainReturnsSameBuilder(t *testing.T) {
	f := NewFactory(&fakeClient{}, nil)
	b := f.Post("http://example.com", nil)
	got := b.Header("X-A", "1").ContentType(FormURLEncoded).Param("a", "1").WithContext(context.Background())
	if got != b {
		t.Fatalf("chain calls must return the original builder")
	}
}

func TestHeadersAppendInOrderAndContentTypeWins(t *testing.T) {
	c := &fakeClient{resp: fakeResponse{statusCode: http.StatusOK}}
	f := NewFactory(c, nil)

	_, err := f.Get("http://example.com").
		Header("X-A", "1").
		Header("Content-Type", "text/plain").
		Do()
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	got := c.calls[0].opts.Headers
	if len(got) != 3 {
		t.Fatalf("expected 3 header fields, got %d", len(got))
	}
	if got[0].Name != "X-A" || got[0].Value != "1" {
		t.Errorf("header[0] = %s=%s", got[0].Name, got[0].Value)
	}
	if got[1].Name != "Content-Type" || got[1].Value != "text/plain" {
		t.Errorf("header[1] = %s=%s", got[1].Name, got[1].Value)
	}
	last := got[len(got)-1]
	if last.Name != "Content-Type" || last.Value != "application/json" {
		t.Fatalf("expected finalized Content-Type last, got %s=%s", last.Name, last.Value)
	}
}

func TestContentTypeFinalizedOnEveryDispatch(t *testing.T) {
	c := &fakeClient{resp: fakeResponse{statusCode: http.StatusOK}}
	f := NewFactory(c, nil)

	if _, err := f.Get("http://example.com").Do(); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if _, err := f.Delete("http://example.com").ContentType(FormURLEncoded).Do(); err != nil {
		t.Fatalf("Do: %v", err)
	}

	lastHeader := func(i int) httpclient.Field {
		hs := c.calls[i].opts.Headers
		return hs[len(hs)-1]
	}
	if got := lastHeader(0); got.Name != "Content-Type" || got.Value != "application/json" {
		t.Fatalf("GET finalized header = %s=%s", got.Name, got.Value)
	}
	if got := lastHeader(1); got.Value != "application/x-www-form-urlencoded" {
		t.Fatalf("DELETE form header = %s", got.Value)
	}
}

func TestParamHandling(t *testing.T) {
	c := &fakeClient{resp: fakeResponse{statusCode: http.StatusOK}}
	f := NewFactory(c, nil)

	b := f.Get("http://example.com").Param("a", "1").Params(map[string]string{"b": "2", "c": "3"})
	b.Param("", "dropped")
	b.Params(nil)
	if _, err := b.Do(); err != nil {
		t.Fatalf("Do: %v", err)
	}

	got := c.calls[0].opts.Params
	if len(got) != 3 {
		t.Fatalf("expected 3 params, got %d", len(got))
	}
	if got[0].Name != "a" || got[0].Value != "1" {
		t.Fatalf("expected a=1 first, got %s=%s", got[0].Name, got[0].Value)
	}
	seen := map[string]string{}
	for _, p := range got {
		seen[p.Name] = p.Value
	}
	if seen["b"] != "2" || seen["c"] != "3" {
		t.Fatalf("map params missing: %v", seen)
	}
}

func TestStringBodyIsJSONQuoted(t *testing.T) {
	c := &fakeClient{resp: fakeResponse{statusCode: http.StatusOK}}
	f := NewFactory(c, nil)

	if _, err := f.Post("http://example.com", "hello").Do(); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := c.calls[0].body; got != `"hello"` {
		t.Fatalf("string body = %v, want its JSON-quoted form", got)
	}

	payload := map[string]string{"k": "v"}
	if _, err := f.Put("http://example.com", payload).Do(); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got, ok := c.calls[1].body.(map[string]string); !ok || got["k"] != "v" {
		t.Fatalf("non-string body must pass through unchanged, got %#v", c.calls[1].body)
	}
}

func TestUnknownMethodDispatchesAsGet(t *testing.T) {
	c := &fakeClient{resp: fakeResponse{statusCode: http.StatusOK}}
	f := NewFactory(c, nil)

	b := f.Get("http://example.com")
	b.method = Method(42)
	if _, err := b.Do(); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := c.calls[0].method; got != http.MethodGet {
		t.Fatalf("expected GET fallback, got %s", got)
	}
}

func TestWithContextCarriesToTransport(t *testing.T) {
	type ctxKey struct{}
	c := &fakeClient{resp: fakeResponse{statusCode: http.StatusOK}}
	f := NewFactory(c, nil)

	ctx := context.WithValue(context.Background(), ctxKey{}, "v")
	if _, err := f.Get("http://example.com").WithContext(ctx).Do(); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := c.calls[0].ctx; got == nil || got.Value(ctxKey{}) != "v" {
		t.Fatalf("context not carried to the transport")
	}

	if _, err := f.Get("http://example.com").Do(); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if c.calls[1].ctx == nil {
		t.Fatalf("expected background context when none is set")
	}
}

func TestHandleRoutesSuccess(t *testing.T) {
	c := &fakeClient{resp: fakeResponse{body: []byte("ok"), statusCode: http.StatusOK}}
	f := NewFactory(c, nil)

	var events []string
	var status int
	done := make(chan struct{})
	f.Get("http://example.com").Handle(Callbacks{
		OnBefore:   func() bool { return true },
		OnSuccess:  func(resp httpclient.Response) { status = resp.StatusCode(); events = append(events, "success") },
		OnError:    func(error) { events = append(events, "error") },
		OnComplete: func() { events = append(events, "complete"); close(done) },
	})
	<-done

	if len(events) != 2 || events[0] != "success" || events[1] != "complete" {
		t.Fatalf("unexpected callback order %v", events)
	}
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
}

func TestHandleRoutesError(t *testing.T) {
	boom := errors.New("boom")
	c := &fakeClient{err: boom}
	f := NewFactory(c, nil)

	var events []string
	var got error
	done := make(chan struct{})
	f.Get("http://example.com").Handle(Callbacks{
		OnSuccess:  func(httpclient.Response) { events = append(events, "success") },
		OnError:    func(err error) { got = err; events = append(events, "error") },
		OnComplete: func() { events = append(events, "complete"); close(done) },
	})
	<-done

	if len(events) != 2 || events[0] != "error" || events[1] != "complete" {
		t.Fatalf("unexpected callback order %v", events)
	}
	if got != boom {
		t.Fatalf("error must reach OnError unchanged, got %v", got)
	}
}

func TestNon2xxRoutesToSuccess(t *testing.T) {
	c := &fakeClient{resp: fakeResponse{statusCode: http.StatusInternalServerError}}
	f := NewFactory(c, nil)

	var viaSuccess bool
	done := make(chan struct{})
	f.Get("http://example.com").Handle(Callbacks{
		OnSuccess:  func(resp httpclient.Response) { viaSuccess = resp.StatusCode() == http.StatusInternalServerError },
		OnError:    func(error) {},
		OnComplete: func() { close(done) },
	})
	<-done

	if !viaSuccess {
		t.Fatalf("non-2xx response must route to OnSuccess")
	}
}

func TestOnBeforeFalseCancelsDispatch(t *testing.T) {
	c := &fakeClient{resp: fakeResponse{statusCode: http.StatusOK}}
	var recorded int
	f := NewFactory(c, nil, ListenerFunc(func(Dispatch) { recorded++ }))

	fired := false
	f.Get("http://example.com").Handle(Callbacks{
		OnBefore:   func() bool { return false },
		OnSuccess:  func(httpclient.Response) { fired = true },
		OnError:    func(error) { fired = true },
		OnComplete: func() { fired = true },
	})

	if len(c.calls) != 0 {
		t.Fatalf("expected no transport call after veto, got %d", len(c.calls))
	}
	if fired {
		t.Fatalf("no callback may fire after a veto")
	}
	if recorded != 0 {
		t.Fatalf("listeners must not see vetoed sends")
	}
}

func TestHandleSkipsNilCallbacks(t *testing.T) {
	c := &fakeClient{resp: fakeResponse{statusCode: http.StatusOK}}
	done := make(chan struct{})
	f := NewFactory(c, nil, ListenerFunc(func(Dispatch) { close(done) }))

	f.Get("http://example.com").Handle(Callbacks{})
	<-done

	if len(c.calls) != 1 {
		t.Fatalf("expected 1 transport call, got %d", len(c.calls))
	}
}

func TestHandleDoesNotBlockCaller(t *testing.T) {
	gated := &gatedClient{
		fakeClient: fakeClient{resp: fakeResponse{statusCode: http.StatusOK}},
		gate:       make(chan struct{}),
	}
	f := NewFactory(gated, nil)

	done := make(chan struct{})
	f.Get("http://example.com").Handle(Callbacks{OnComplete: func() { close(done) }})

	select {
	case <-done:
		t.Fatalf("dispatch finished before the transport was released")
	default:
	}
	close(gated.gate)
	<-done
}
