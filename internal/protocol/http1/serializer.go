package http1

import (
	"strconv"

	"github.com/indigo-web/rgi/config"
	"github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/rgi/http"
	"github.com/indigo-web/rgi/http/headers"
	"github.com/indigo-web/rgi/http/method"
	"github.com/indigo-web/rgi/http/status"
	"github.com/indigo-web/rgi/internal/grammar"
)

// AppendRequest renders the request preamble, including the terminating empty line.
func AppendRequest(dst []byte, m method.Method, uri string, hdrs headers.Headers) ([]byte, error) {
	if m == method.Unknown || m > method.Count {
		return dst, errors.Usagef("bad HTTP method: %d", m)
	}

	if _, _, _, err := ParseURI(uri); err != nil {
		return dst, errors.Usagef("bad uri: %q", uri)
	}

	dst = append(dst, m.String()...)
	dst = sp(dst)
	dst = append(dst, uri...)
	dst = sp(dst)
	dst = append(dst, protocol...)

	return appendHeaders(dst, hdrs)
}

// AppendResponse renders the response preamble, including the terminating empty line.
func AppendResponse(dst []byte, code status.Code, reason string, hdrs headers.Headers) ([]byte, error) {
	if !code.Valid() {
		return dst, errors.Usagef("need 100 <= status <= 599; got %d", code)
	}

	if len(reason) == 0 || !grammar.Reason.Contains(reason) {
		return dst, errors.Usagef("bad reason: %q", reason)
	}

	dst = append(dst, statusLinePrefix...)
	dst = strconv.AppendUint(dst, uint64(code), 10)
	dst = sp(dst)
	dst = append(dst, reason...)

	return appendHeaders(dst, hdrs)
}

func appendHeaders(dst []byte, hdrs headers.Headers) ([]byte, error) {
	if len(hdrs) > config.MaxHeaders {
		return dst, errors.Usagef("too many headers: %d > %d", len(hdrs), config.MaxHeaders)
	}

	for _, key := range hdrs.SortedKeys() {
		if len(key) == 0 || len(key) > config.MaxHeaderKeySize || !grammar.Key.Contains(key) {
			return dst, errors.Usagef("bad header name: %q", key)
		}

		value := hdrs[key]
		if len(value) == 0 || !grammar.Outgoing.Contains(value) {
			return dst, errors.Usagef("bad header value: %s: %q", key, value)
		}

		dst = crlf(dst)
		dst = append(dst, key...)
		dst = colonsp(dst)
		dst = append(dst, value...)
	}

	return crlf(crlf(dst)), nil
}

// SetOutputHeaders sets framing headers, derived from the body. Headers set by the caller
// must agree with the body, and the body must be ready to be written.
func SetOutputHeaders(hdrs headers.Headers, body http.Payload) error {
	if err := checkOutgoing(body); err != nil {
		return err
	}

	switch b := body.(type) {
	case nil:
		return nil
	case http.Bytes:
		if len(b) > config.MaxIOSize {
			return errors.Usagef("bytes body too large: %d > %d", len(b), config.MaxIOSize)
		}

		return setContentLength(hdrs, int64(len(b)))
	case *http.Body:
		return setContentLength(hdrs, b.ContentLength())
	case *http.BodyIter:
		return setContentLength(hdrs, b.ContentLength())
	case *http.ChunkedBody, *http.ChunkedBodyIter:
		if hdrs.Has("content-length") {
			return errors.Usagef("cannot have both content-length and transfer-encoding headers")
		}

		return hdrs.SetDefault("transfer-encoding", "chunked")
	default:
		return errors.Usagef("bad body type: %T", body)
	}
}

func checkOutgoing(body http.Payload) error {
	var isNil bool

	switch b := body.(type) {
	case *http.Body:
		isNil = b == nil
	case *http.ChunkedBody:
		isNil = b == nil
	case *http.BodyIter:
		isNil = b == nil
	case *http.ChunkedBodyIter:
		isNil = b == nil
	default:
		return nil
	}

	if isNil {
		return errors.Usagef("body must not be a nil %T", body)
	}

	if state := http.StateOf(body); state != http.Ready {
		return errors.Usagef("cannot send %T: body is %s, expected ready", body, state)
	}

	return nil
}

func setContentLength(hdrs headers.Headers, length int64) error {
	if hdrs.Has("transfer-encoding") {
		return errors.Usagef("cannot have both content-length and transfer-encoding headers")
	}

	return hdrs.SetDefault("content-length", strconv.FormatInt(length, 10))
}

func sp(b []byte) []byte {
	return append(b, ' ')
}

func colonsp(b []byte) []byte {
	return append(b, ':', ' ')
}

func crlf(b []byte) []byte {
	return append(b, '\r', '\n')
}
