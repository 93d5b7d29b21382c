package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// configFile represents the structure of the endpoints configuration file.
type configFile struct {
	Endpoints []Endpoint `json:"endpoints" yaml:"endpoints"`
}

// Endpoint is a single named profile declared in config files. Headers and
// Params are defaults applied to every builder minted for the profile;
// chained builder calls override them.
type Endpoint struct {
	ID          string            `json:"id" yaml:"id"`
	BaseURL     string            `json:"base_url" yaml:"base_url"`
	ContentType string            `json:"content_type" yaml:"content_type"`
	Headers     map[string]string `json:"headers" yaml:"headers"`
	Params      map[string]string `json:"params" yaml:"params"`
	Enabled     *bool             `json:"enabled" yaml:"enabled"`
}

// EnabledValue returns the enabled flag defaulting to true.
func (e Endpoint) EnabledValue() bool {
	if e.Enabled == nil {
		return true
	}
	return *e.Enabled
}

// Registry materializes endpoint profiles loaded from config files.
type Registry struct {
	mu        sync.RWMutex
	endpoints []Endpoint
	idx       map[string]Endpoint
}

// LoadRegistry loads the endpoint registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("endpoints file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open endpoints file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read endpoints file: %w", err)
	}

	fileReg, err := parseEndpointRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Endpoints) == 0 {
		return nil, errors.New("endpoints file contains no endpoint entries")
	}

	reg := &Registry{
		endpoints: make([]Endpoint, len(fileReg.Endpoints)),
		idx:       make(map[string]Endpoint, len(fileReg.Endpoints)),
	}

	for i := range fileReg.Endpoints {
		ep := sanitizeEndpoint(fileReg.Endpoints[i])
		if err := validateEndpoint(ep); err != nil {
			return nil, fmt.Errorf("endpoints[%d]: %w", i, err)
		}
		if _, exists := reg.idx[ep.ID]; exists {
			return nil, fmt.Errorf("duplicate endpoint id %q", ep.ID)
		}
		reg.endpoints[i] = ep
		reg.idx[ep.ID] = ep
	}

	return reg, nil
}

// parseEndpointRegistry attempts to decode the endpoints file content.
func parseEndpointRegistry(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalEndpointRegistry(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return configFile{}, errors.New("endpoints file format not recognized (expected YAML or JSON)")
}

// unmarshalEndpointRegistry decodes the endpoints file using the provided function.
func unmarshalEndpointRegistry(name string, data []byte, fn func([]byte, any) error) (configFile, error) {
	var reg configFile
	if err := fn(data, &reg); err != nil {
		return configFile{}, fmt.Errorf("decode %s endpoints: %w", name, err)
	}
	return reg, nil
}

// sanitizeEndpoint trims and normalizes the endpoint fields.
func sanitizeEndpoint(ep Endpoint) Endpoint {
	ep.ID = strings.TrimSpace(ep.ID)
	ep.BaseURL = strings.TrimSpace(ep.BaseURL)
	ep.ContentType = strings.ToLower(strings.TrimSpace(ep.ContentType))

	if ep.Enabled == nil {
		def := true
		ep.Enabled = &def
	}
	ep.Headers = sanitizePairs(ep.Headers)
	ep.Params = sanitizePairs(ep.Params)

	return ep
}

// sanitizePairs trims and removes empty entries.
func sanitizePairs(pairs map[string]string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[string]string, len(pairs))
	for k, v := range pairs {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateEndpoint checks that required fields are present.
func validateEndpoint(ep Endpoint) error {
	if ep.ID == "" {
		return errors.New("id is required")
	}
	if ep.BaseURL == "" {
		return fmt.Errorf("base_url is required for endpoint %q", ep.ID)
	}
	return nil
}

// ByID returns the endpoint profile by id.
func (r *Registry) ByID(id string) (Endpoint, bool) {
	if r == nil {
		return Endpoint{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return Endpoint{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.idx[id]
	return ep, ok
}

// All returns all configured endpoints.
func (r *Registry) All() []Endpoint {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}

// Enabled returns endpoints that are enabled.
func (r *Registry) Enabled() []Endpoint {
	if r == nil {
		return nil
	}

	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]Endpoint, 0, len(all))
	for _, ep := range all {
		if ep.EnabledValue() {
			out = append(out, ep)
		}
	}
	return out
}
