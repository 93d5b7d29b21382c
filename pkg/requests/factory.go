package requests

import (
	"time"

	"github.com/samvad-hq/samvad-httpkit/pkg/httpclient"
)

// Factory mints request builders bound to an explicitly injected HTTP
// client. The zero Factory is not usable; construct one with NewFactory.
type Factory struct {
	client    httpclient.Client
	log       Logger
	listeners []Listener
}

// DefaultClient returns the transport used when none is injected.
func DefaultClient() httpclient.Client { return httpclient.NewRestyClient(30 * time.Second) }

// NewFactory builds a factory around the given client. A nil client falls
// back to DefaultClient, a nil log to a no-op logger. Listeners observe
// every completed dispatch in registration order; nil entries are dropped.
func NewFactory(client httpclient.Client, log Logger, listeners ...Listener) *Factory {
	if client == nil {
		client = DefaultClient()
	}

	ls := make([]Listener, 0, len(listeners))
	for _, l := range listeners {
		if l == nil {
			continue
		}
		ls = append(ls, l)
	}

	return &Factory{client: client, log: ensureLogger(log), listeners: ls}
}

// Get returns a builder for a GET request to url.
func (f *Factory) Get(url string) *Builder { return f.newBuilder(MethodGet, url, nil) }

// Post returns a builder for a POST request to url carrying body.
func (f *Factory) Post(url string, body any) *Builder { return f.newBuilder(MethodPost, url, body) }

// Put returns a builder for a PUT request to url carrying body.
func (f *Factory) Put(url string, body any) *Builder { return f.newBuilder(MethodPut, url, body) }

// Delete returns a builder for a DELETE request to url.
func (f *Factory) Delete(url string) *Builder { return f.newBuilder(MethodDelete, url, nil) }

func (f *Factory) newBuilder(m Method, url string, body any) *Builder {
	return &Builder{factory: f, method: m, url: url, body: body}
}
