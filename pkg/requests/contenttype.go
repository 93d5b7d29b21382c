package requests

import "strings"

// ContentType tags the payload encoding of a request. The tag is resolved
// to a Content-Type header when the request is sent, never earlier.
type ContentType int

// Supported encodings. JSON is the zero value and the fallback for any
// unrecognized tag.
const (
	JSON ContentType = iota
	FormURLEncoded
)

// MIME returns the Content-Type header value for the tag.
func (c ContentType) MIME() string {
	if c == FormURLEncoded {
		return "application/x-www-form-urlencoded"
	}
	return "application/json"
}

// ParseContentType maps a configuration string to a ContentType tag.
// Unrecognized values map to JSON, the tag's own fallback.
func ParseContentType(s string) ContentType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "form", "form-urlencoded", "urlencoded", "application/x-www-form-urlencoded":
		return FormURLEncoded
	default:
		return JSON
	}
}
