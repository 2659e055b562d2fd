package http

import (
	"github.com/indigo-web/rgi/http/headers"
	"github.com/indigo-web/rgi/http/status"
)

// Response is either built by the handler or parsed from the wire on the client side.
type Response struct {
	Status status.Code
	// Reason must consist of letters, digits, dashes and spaces only.
	Reason  string
	Headers headers.Headers
	// Body is any Payload. Responses to HEAD requests never carry one.
	Body Payload
	// ContentRange is the decoded content-range header of a received response.
	ContentRange *headers.ContentRange
}

// NewResponse returns a response with the default reason phrase of the code.
func NewResponse(code status.Code, body Payload) *Response {
	return &Response{
		Status:  code,
		Reason:  status.Text(code),
		Headers: make(headers.Headers),
		Body:    body,
	}
}

// Header sets a header, returning the response back for chaining.
func (r *Response) Header(key, value string) *Response {
	if r.Headers == nil {
		r.Headers = make(headers.Headers)
	}

	r.Headers[key] = value
	return r
}
