package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/samvad-hq/samvad-httpkit/internal/app"
	"github.com/samvad-hq/samvad-httpkit/pkg/httpclient"
)

var reHeaderFieldName = regexp.MustCompile("^[-!#$%&'*+.^_|~a-zA-Z0-9]+$")

type itemType int

const (
	unknownItem itemType = iota
	headerItem
	paramItem
	fieldItem
)

// parseCall turns positional arguments into a dispatchable call. The
// grammar is [METHOD] URL [ITEM ...], where an item of the form name:value
// adds a header, name==value adds a query parameter, and name=value adds a
// body field. With an endpoint profile the URL position holds the request
// path instead and may be omitted.
func parseCall(args []string, endpointID, body string, form bool) (app.Call, error) {
	call := app.Call{EndpointID: endpointID}
	if form {
		call.ContentType = "form"
	}

	rest := args
	if len(rest) > 0 && isVerb(rest[0]) {
		call.Method = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 && !(endpointID != "" && isItem(rest[0])) {
		if endpointID == "" {
			call.URL = rest[0]
		} else {
			call.Path = rest[0]
		}
		rest = rest[1:]
	}

	fields := make(map[string]string)
	for _, arg := range rest {
		kind, name, value := splitItem(arg)
		switch kind {
		case headerItem:
			if !reHeaderFieldName.MatchString(name) {
				return app.Call{}, fmt.Errorf("invalid header field name: %s", name)
			}
			call.Headers = append(call.Headers, httpclient.Field{Name: name, Value: value})
		case paramItem:
			call.Params = append(call.Params, httpclient.Field{Name: name, Value: value})
		case fieldItem:
			fields[name] = value
		default:
			return app.Call{}, fmt.Errorf("unknown request item: %s", arg)
		}
	}

	if len(fields) > 0 {
		if body != "" {
			return app.Call{}, fmt.Errorf("request body and field items cannot be mixed")
		}
		call.Body = fields
	} else if body != "" {
		if json.Valid([]byte(body)) {
			call.Body = json.RawMessage(body)
		} else {
			call.Body = body
		}
	}

	if call.Method == "" {
		if call.Body != nil {
			call.Method = "post"
		} else {
			call.Method = "get"
		}
	}
	if endpointID == "" && strings.TrimSpace(call.URL) == "" {
		return app.Call{}, fmt.Errorf("URL is required")
	}
	return call, nil
}

func isVerb(s string) bool {
	switch strings.ToUpper(s) {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func isItem(s string) bool {
	return strings.ContainsAny(s, ":=")
}

// splitItem classifies a request item by its first separator.
func splitItem(s string) (itemType, string, string) {
	for i, c := range s {
		switch c {
		case ':':
			return headerItem, s[:i], s[i+1:]
		case '=':
			if i+1 < len(s) && s[i+1] == '=' {
				return paramItem, s[:i], s[i+2:]
			}
			return fieldItem, s[:i], s[i+1:]
		}
	}
	return unknownItem, "", ""
}
