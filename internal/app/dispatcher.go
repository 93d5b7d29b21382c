package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/samvad-hq/samvad-httpkit/internal/config"
	"github.com/samvad-hq/samvad-httpkit/internal/journal"
	"github.com/samvad-hq/samvad-httpkit/internal/logger"
	"github.com/samvad-hq/samvad-httpkit/pkg/endpoints"
	"github.com/samvad-hq/samvad-httpkit/pkg/httpclient"
	"github.com/samvad-hq/samvad-httpkit/pkg/requests"
)

// Dispatcher represents the one-shot dispatch runtime. It wires the request
// factory, endpoint profiles, and the dispatch journal together, sends a
// single call described by the CLI, and prints the response.
type Dispatcher struct {
	cfg     *config.Config
	factory *requests.Factory
	store   journal.Store
	log     logger.Logger
	out     io.Writer
}

// Call describes a single request to dispatch. Either URL or EndpointID must
// be set; when EndpointID is set, Path is joined onto the profile's base URL.
type Call struct {
	Method      string
	URL         string
	EndpointID  string
	Path        string
	ContentType string
	Headers     []httpclient.Field
	Params      []httpclient.Field
	Body        any
}

// NewDispatcher builds a dispatch runtime from config.
func NewDispatcher(cfg *config.Config, log logger.Logger) (*Dispatcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	journalOpts := journal.Options{
		RecordTTL:       cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	}
	store, err := journal.NewStore(cfg.JournalType, cfg.BBoltPath, journalOpts)
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}
	log.InfoObj("journal initialized", "journal_config", map[string]any{
		"type":                     cfg.JournalType,
		"path":                     cfg.BBoltPath,
		"record_ttl_seconds":       int(cfg.JournalTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.JournalCleanupInterval.Seconds()),
	})

	client := httpclient.NewRestyClient(cfg.ClientTimeout)
	factory := requests.NewFactory(client, log, journal.NewRecorder(store))

	return &Dispatcher{
		cfg:     cfg,
		factory: factory,
		store:   store,
		log:     log,
		out:     os.Stdout,
	}, nil
}

// Run dispatches the call and blocks until its callbacks have fired or the
// context is cancelled. The journal store is closed when Run returns, so a
// Dispatcher serves exactly one Run.
func (d *Dispatcher) Run(ctx context.Context, call Call) error {
	if d == nil || d.factory == nil {
		return fmt.Errorf("dispatcher is not initialized")
	}
	defer d.closeStore()

	b, err := d.newBuilder(call)
	if err != nil {
		return err
	}
	if call.ContentType != "" {
		b.ContentType(requests.ParseContentType(call.ContentType))
	}
	for _, f := range call.Headers {
		b.Header(f.Name, f.Value)
	}
	for _, f := range call.Params {
		b.Param(f.Name, f.Value)
	}
	b.WithContext(ctx)

	done := make(chan struct{})
	var callErr error
	b.Handle(requests.Callbacks{
		OnSuccess: func(resp httpclient.Response) {
			fmt.Fprintf(d.out, "%d %s\n", resp.StatusCode(), http.StatusText(resp.StatusCode()))
			if body := resp.Body(); len(body) > 0 {
				fmt.Fprintf(d.out, "%s\n", body)
			}
		},
		OnError: func(err error) {
			callErr = err
		},
		OnComplete: func() {
			close(done)
		},
	})

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return callErr
}

// newBuilder mints the builder for the call, resolving endpoint profiles
// when an endpoint id is given.
func (d *Dispatcher) newBuilder(call Call) (*requests.Builder, error) {
	method := requests.ParseMethod(call.Method)

	if call.EndpointID == "" {
		if strings.TrimSpace(call.URL) == "" {
			return nil, fmt.Errorf("a target url or endpoint id is required")
		}
		return d.direct(method, call.URL, call.Body), nil
	}

	reg, err := endpoints.LoadRegistry(d.cfg.EndpointsFile)
	if err != nil {
		return nil, fmt.Errorf("load endpoints registry: %w", err)
	}
	eps := reg.All()
	ids := make([]string, 0, len(eps))
	for _, ep := range eps {
		ids = append(ids, ep.ID)
	}
	d.log.InfoObj("endpoints registry loaded", "endpoints_meta", map[string]any{
		"count": len(ids),
		"ids":   ids,
	})

	resolver, err := endpoints.NewResolver(reg, d.factory)
	if err != nil {
		return nil, err
	}
	switch method {
	case requests.MethodPost:
		return resolver.Post(call.EndpointID, call.Path, call.Body)
	case requests.MethodPut:
		return resolver.Put(call.EndpointID, call.Path, call.Body)
	case requests.MethodDelete:
		return resolver.Delete(call.EndpointID, call.Path)
	default:
		return resolver.Get(call.EndpointID, call.Path)
	}
}

func (d *Dispatcher) direct(method requests.Method, url string, body any) *requests.Builder {
	switch method {
	case requests.MethodPost:
		return d.factory.Post(url, body)
	case requests.MethodPut:
		return d.factory.Put(url, body)
	case requests.MethodDelete:
		return d.factory.Delete(url)
	default:
		return d.factory.Get(url)
	}
}

// closeStore safely closes the journal backend, logging any errors encountered.
func (d *Dispatcher) closeStore() {
	if d == nil || d.store == nil {
		return
	}
	if err := d.store.Close(); err != nil {
		d.log.ErrorObj("journal close failed", "error", err)
	}
}
