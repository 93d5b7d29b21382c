package requests

import (
	"net/http"
	"strings"
)

// Method identifies the verb a builder dispatches with.
type Method int

// Supported methods. MethodGet is the zero value.
const (
	MethodGet Method = iota
	MethodPost
	MethodPut
	MethodDelete
)

// String returns the wire verb. Values outside the known set report as GET,
// the verb they dispatch with.
func (m Method) String() string {
	switch m {
	case MethodPost:
		return http.MethodPost
	case MethodPut:
		return http.MethodPut
	case MethodDelete:
		return http.MethodDelete
	default:
		return http.MethodGet
	}
}

// ParseMethod maps a verb name to a Method. Unrecognized names map to
// MethodGet, matching dispatch behavior for unknown methods.
func ParseMethod(s string) Method {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case http.MethodPost:
		return MethodPost
	case http.MethodPut:
		return MethodPut
	case http.MethodDelete:
		return MethodDelete
	default:
		return MethodGet
	}
}
