package http

import (
	"strings"

	"github.com/indigo-web/rgi/http/headers"
	"github.com/indigo-web/rgi/http/method"
)

// Request represents HTTP request
type Request struct {
	// Method is one of the supported methods, never method.Unknown.
	Method method.Method
	// URI is the raw request target, as it was received.
	URI string
	// Headers holds lower-cased header names and their validated values.
	Headers headers.Headers
	// Body is either nil, *Body or *ChunkedBody. It must be consumed by the handler.
	Body Payload
	// Mount holds path segments already routed by the handlers chain.
	Mount []string
	// Path holds path segments not routed yet.
	Path []string
	// Query is the raw query string, without the question mark.
	Query string
	// HasQuery distinguishes an empty query from an absent one.
	HasQuery bool
	// Range is the decoded range header, if any.
	Range *headers.Range
}

// ShiftPath moves the next path segment into the mount and returns it.
func (r *Request) ShiftPath() (segment string, ok bool) {
	if len(r.Path) == 0 {
		return "", false
	}

	segment = r.Path[0]
	r.Mount = append(r.Mount, segment)
	r.Path = r.Path[1:]

	return segment, true
}

// ProxyURI builds the URI of the unrouted part of the request. It's the URI to be used
// when forwarding the request upstream.
func (r *Request) ProxyURI() string {
	var b strings.Builder
	b.WriteByte('/')
	b.WriteString(strings.Join(r.Path, "/"))

	if r.HasQuery {
		b.WriteByte('?')
		b.WriteString(r.Query)
	}

	return b.String()
}
