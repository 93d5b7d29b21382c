package endpoints

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/samvad-hq/samvad-httpkit/pkg/requests"
)

// Resolver mints pre-configured builders from endpoint profiles. Profile
// defaults are applied before the caller's own chain calls, so chained
// Header/Param/ContentType calls win over profile values.
type Resolver struct {
	reg     *Registry
	factory *requests.Factory
}

// NewResolver binds a loaded registry to a request factory.
func NewResolver(reg *Registry, factory *requests.Factory) (*Resolver, error) {
	if reg == nil {
		return nil, errors.New("endpoint registry is nil")
	}
	if factory == nil {
		return nil, errors.New("request factory is nil")
	}
	return &Resolver{reg: reg, factory: factory}, nil
}

// Get mints a GET builder for the endpoint's base URL joined with path.
func (r *Resolver) Get(id, path string) (*requests.Builder, error) {
	ep, target, err := r.resolve(id, path)
	if err != nil {
		return nil, err
	}
	return r.apply(ep, r.factory.Get(target)), nil
}

// Post mints a POST builder carrying body.
func (r *Resolver) Post(id, path string, body any) (*requests.Builder, error) {
	ep, target, err := r.resolve(id, path)
	if err != nil {
		return nil, err
	}
	return r.apply(ep, r.factory.Post(target, body)), nil
}

// Put mints a PUT builder carrying body.
func (r *Resolver) Put(id, path string, body any) (*requests.Builder, error) {
	ep, target, err := r.resolve(id, path)
	if err != nil {
		return nil, err
	}
	return r.apply(ep, r.factory.Put(target, body)), nil
}

// Delete mints a DELETE builder.
func (r *Resolver) Delete(id, path string) (*requests.Builder, error) {
	ep, target, err := r.resolve(id, path)
	if err != nil {
		return nil, err
	}
	return r.apply(ep, r.factory.Delete(target)), nil
}

// resolve looks up the profile and joins the target URL.
func (r *Resolver) resolve(id, path string) (Endpoint, string, error) {
	ep, ok := r.reg.ByID(id)
	if !ok {
		return Endpoint{}, "", fmt.Errorf("unknown endpoint %q", id)
	}
	if !ep.EnabledValue() {
		return Endpoint{}, "", fmt.Errorf("endpoint %q is disabled", id)
	}
	target, err := joinURL(ep.BaseURL, path)
	if err != nil {
		return Endpoint{}, "", err
	}
	return ep, target, nil
}

// apply sets the profile defaults on a freshly minted builder.
func (r *Resolver) apply(ep Endpoint, b *requests.Builder) *requests.Builder {
	b.ContentType(requests.ParseContentType(ep.ContentType))
	for name, value := range ep.Headers {
		b.Header(name, value)
	}
	b.Params(ep.Params)
	return b
}

func joinURL(base, path string) (string, error) {
	if path == "" {
		return base, nil
	}
	target, err := url.JoinPath(base, path)
	if err != nil {
		return "", fmt.Errorf("join endpoint url: %w", err)
	}
	return target, nil
}
