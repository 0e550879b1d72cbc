package proxy

import "strings"

// HttpMethod is an enum of the standard Http Methods.
type HttpMethod int

const (
	GET HttpMethod = iota
	HEAD
	POST
	PUT
	DELETE
	CONNECT
	OPTIONS
	TRACE
	PATCH
)

var httpMethodNames = [...]string{"GET", "HEAD", "POST", "PUT", "DELETE", "CONNECT", "OPTIONS", "TRACE", "PATCH"}

func (m HttpMethod) String() string {
	if m < 0 || int(m) >= len(httpMethodNames) {
		return "UNKNOWN"
	}
	return httpMethodNames[m]
}

// methodList joins methods the way the Access-Control-Allow-Methods header
// expects them.
func methodList(methods ...HttpMethod) string {
	names := make([]string, 0, len(methods))
	for _, m := range methods {
		names = append(names, m.String())
	}
	return strings.Join(names, ",")
}
