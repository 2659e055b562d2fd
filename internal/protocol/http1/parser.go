package http1

import (
	"strings"

	"github.com/indigo-web/rgi/config"
	"github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/rgi/http"
	"github.com/indigo-web/rgi/http/headers"
	"github.com/indigo-web/rgi/http/method"
	"github.com/indigo-web/rgi/http/status"
	"github.com/indigo-web/rgi/internal/grammar"
)

const (
	protocol          = "HTTP/1.1"
	requestLineSuffix = " " + protocol
	statusLinePrefix  = protocol + " "
	minRequestLine    = len("GET / HTTP/1.1")
	minStatusLine     = len("HTTP/1.1 200 OK")
)

// Framing holds decoded values of headers, affecting how the message is framed.
type Framing struct {
	// ContentLength is -1 if the header is absent.
	ContentLength int64
	Chunked       bool
	Range         *headers.Range
	ContentRange  *headers.ContentRange
}

// HasBody reports whether a body follows the preamble.
func (f Framing) HasBody() bool {
	return f.ContentLength >= 0 || f.Chunked
}

// ParseMethod accepts only the supported methods.
func ParseMethod(str string) (method.Method, error) {
	m := method.Parse(str)
	if m == method.Unknown {
		return m, errors.Grammarf("bad HTTP method: %q", str)
	}

	return m, nil
}

// ParseRequestLine splits the request line into the method and the URI.
func ParseRequestLine(line string) (m method.Method, uri string, err error) {
	if len(line) < minRequestLine {
		return 0, "", errors.Grammarf("request line too short: %q", line)
	}

	if !strings.HasSuffix(line, requestLineSuffix) {
		return 0, "", errors.Grammarf("bad protocol in request line: %q", line[len(line)-len(requestLineSuffix):])
	}

	src := line[:len(line)-len(requestLineSuffix)]
	sep := strings.Index(src, " /")
	if sep < 1 {
		return 0, "", errors.Grammarf("bad request line: %q", line)
	}

	if m, err = ParseMethod(src[:sep]); err != nil {
		return 0, "", err
	}

	return m, src[sep+1:], nil
}

// ParseURI validates the URI and splits it into path segments and the query.
func ParseURI(uri string) (path []string, query string, hasQuery bool, err error) {
	switch {
	case len(uri) == 0:
		return nil, "", false, errors.Grammarf("uri is empty")
	case uri[0] != '/':
		return nil, "", false, errors.Grammarf("path does not start with /: %q", uri)
	case strings.Contains(uri, "//"):
		return nil, "", false, errors.Grammarf("'//' in uri: %q", uri)
	case !grammar.URI.Contains(uri):
		return nil, "", false, errors.Grammarf("bad bytes in uri: %q", uri)
	}

	rawPath := uri
	if q := strings.IndexByte(uri, '?'); q != -1 {
		rawPath, query, hasQuery = uri[:q], uri[q+1:], true
		if !grammar.Query.Contains(query) {
			return nil, "", false, errors.Grammarf("bad bytes in query: %q", query)
		}
	}

	path, err = ParsePath(rawPath)
	return path, query, hasQuery, err
}

// ParsePath splits the path into segments. The root path has none.
func ParsePath(path string) ([]string, error) {
	if len(path) == 0 || path[0] != '/' {
		return nil, errors.Grammarf("path does not start with /: %q", path)
	}

	if path == "/" {
		return []string{}, nil
	}

	segments := strings.Split(path[1:], "/")
	for _, segment := range segments {
		if !grammar.Path.Contains(segment) {
			return nil, errors.Grammarf("bad bytes in path: %q", path)
		}
	}

	return segments, nil
}

// ParseResponseLine decodes the status line.
func ParseResponseLine(line string) (code status.Code, reason string, err error) {
	if len(line) < minStatusLine {
		return 0, "", errors.Grammarf("response line too short: %q", line)
	}

	if !strings.HasPrefix(line, statusLinePrefix) {
		return 0, "", errors.Grammarf("bad protocol in response line: %q", line[:len(statusLinePrefix)])
	}

	rawStatus := line[len(statusLinePrefix) : len(statusLinePrefix)+3]
	if !grammar.Decimal.Contains(rawStatus) {
		return 0, "", errors.Grammarf("bad status: %q", rawStatus)
	}

	code = status.Code(rawStatus[0]-'0')*100 + status.Code(rawStatus[1]-'0')*10 + status.Code(rawStatus[2]-'0')
	if !code.Valid() {
		return 0, "", errors.Grammarf("bad status: %q", rawStatus)
	}

	if line[len(statusLinePrefix)+3] != ' ' {
		return 0, "", errors.Grammarf("bad response line: %q", line)
	}

	reason, err = ParseReason(line[len(statusLinePrefix)+4:])
	return code, reason, err
}

// ParseReason validates the reason phrase.
func ParseReason(reason string) (string, error) {
	if len(reason) == 0 || !grammar.Reason.Contains(reason) {
		return "", errors.Grammarf("bad reason: %q", reason)
	}

	if reason == "OK" {
		return "OK", nil
	}

	return reason, nil
}

// ParseHeaderName validates the name and lower-cases it.
func ParseHeaderName(name string) (string, error) {
	switch {
	case len(name) == 0:
		return "", errors.Grammarf("header name is empty")
	case len(name) > config.MaxHeaderKeySize:
		return "", errors.Grammarf("header name too long: %q...", name[:config.MaxHeaderKeySize])
	case !grammar.Name.Contains(name):
		return "", errors.Grammarf("bad bytes in header name: %q", name)
	}

	return strings.ToLower(name), nil
}

// ParseHeaderValue validates the value.
func ParseHeaderValue(value string) (string, error) {
	if len(value) == 0 {
		return "", errors.Grammarf("header value is empty")
	}

	if !grammar.Value.Contains(value) {
		return "", errors.Grammarf("bad bytes in header value: %q", value)
	}

	return value, nil
}

// ParseHeaders decodes header lines. Framing-related headers are decoded additionally.
func ParseHeaders(lines []string, isResponse bool) (headers.Headers, Framing, error) {
	framing := Framing{ContentLength: -1}

	if len(lines) > config.MaxHeaders {
		return nil, framing, errors.Grammarf("too many headers: %d > %d", len(lines), config.MaxHeaders)
	}

	hdrs := make(headers.Headers, len(lines))

	for _, line := range lines {
		if len(line) < 4 {
			return nil, framing, errors.Grammarf("header line too short: %q", line)
		}

		sep := strings.Index(line, ": ")
		if sep < 1 {
			return nil, framing, errors.Grammarf("bad header line: %q", line)
		}

		key, err := ParseHeaderName(line[:sep])
		if err != nil {
			return nil, framing, err
		}

		value, err := ParseHeaderValue(line[sep+2:])
		if err != nil {
			return nil, framing, err
		}

		if hdrs.Has(key) {
			return nil, framing, errors.Grammarf("duplicate header: %q", line)
		}

		hdrs[key] = value

		switch key {
		case "content-length":
			if framing.ContentLength, err = headers.ParseContentLength(value); err != nil {
				return nil, framing, err
			}
		case "transfer-encoding":
			if value != "chunked" {
				return nil, framing, errors.Grammarf("bad transfer-encoding: %q", value)
			}

			framing.Chunked = true
		case "range":
			if isResponse {
				return nil, framing, errors.Grammarf("response cannot include a range header")
			}

			r, err := headers.ParseRange(value)
			if err != nil {
				return nil, framing, err
			}

			framing.Range = &r
		case "content-range":
			if !isResponse {
				return nil, framing, errors.Grammarf("request cannot include a content-range header")
			}

			cr, err := headers.ParseContentRange(value)
			if err != nil {
				return nil, framing, err
			}

			framing.ContentRange = &cr
		}
	}

	if framing.ContentLength >= 0 && framing.Chunked {
		return nil, framing, errors.Grammarf("cannot have both content-length and transfer-encoding headers")
	}

	if framing.Range != nil && framing.HasBody() {
		return nil, framing, errors.Grammarf("cannot include range header and content-length/transfer-encoding")
	}

	return hdrs, framing, nil
}

// splitPreamble splits the preamble (without the terminating empty line) into the first
// line and header lines.
func splitPreamble(preamble string) (first string, lines []string) {
	first, rest, found := strings.Cut(preamble, "\r\n")
	if !found {
		return first, nil
	}

	return first, strings.Split(rest, "\r\n")
}

func newBody(framing Framing, src http.Reader) (http.Payload, error) {
	switch {
	case framing.ContentLength >= 0:
		return http.NewBody(src, framing.ContentLength)
	case framing.Chunked:
		return http.NewChunkedBody(src)
	default:
		return nil, nil
	}
}

// ParseRequest decodes the request preamble (without the terminating CRLF CRLF) and
// attaches the body, if any, to be read from src.
func ParseRequest(preamble string, src http.Reader) (*http.Request, error) {
	line, lines := splitPreamble(preamble)

	m, uri, err := ParseRequestLine(line)
	if err != nil {
		return nil, err
	}

	path, query, hasQuery, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	hdrs, framing, err := ParseHeaders(lines, false)
	if err != nil {
		return nil, err
	}

	if framing.HasBody() && !m.AllowsBody() {
		return nil, errors.Grammarf("%s request with a body", m)
	}

	body, err := newBody(framing, src)
	if err != nil {
		return nil, err
	}

	return &http.Request{
		Method:   m,
		URI:      uri,
		Headers:  hdrs,
		Body:     body,
		Mount:    []string{},
		Path:     path,
		Query:    query,
		HasQuery: hasQuery,
		Range:    framing.Range,
	}, nil
}

// ParseResponse decodes the response preamble. Responses to HEAD requests never have
// a body, whatever their headers say.
func ParseResponse(requestMethod method.Method, preamble string, src http.Reader) (*http.Response, error) {
	line, lines := splitPreamble(preamble)

	code, reason, err := ParseResponseLine(line)
	if err != nil {
		return nil, err
	}

	hdrs, framing, err := ParseHeaders(lines, true)
	if err != nil {
		return nil, err
	}

	var body http.Payload
	if requestMethod != method.HEAD {
		if body, err = newBody(framing, src); err != nil {
			return nil, err
		}
	}

	return &http.Response{
		Status:       code,
		Reason:       reason,
		Headers:      hdrs,
		Body:         body,
		ContentRange: framing.ContentRange,
	}, nil
}
