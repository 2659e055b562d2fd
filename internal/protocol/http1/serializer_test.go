package http1

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/chunkedbody"
	rgierrors "github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/rgi/http"
	"github.com/indigo-web/rgi/http/headers"
	"github.com/indigo-web/rgi/http/method"
	"github.com/indigo-web/rgi/http/status"
	"github.com/stretchr/testify/require"
)

func TestAppendRequest(t *testing.T) {
	t.Run("rendering", func(t *testing.T) {
		raw, err := AppendRequest(nil, method.GET, "/foo/bar?x=1", headers.Headers{
			"host":   "example.com",
			"accept": "*/*",
		})
		require.NoError(t, err)
		require.Equal(t, "GET /foo/bar?x=1 HTTP/1.1\r\naccept: */*\r\nhost: example.com\r\n\r\n", string(raw))
	})

	t.Run("no headers", func(t *testing.T) {
		raw, err := AppendRequest(nil, method.DELETE, "/", nil)
		require.NoError(t, err)
		require.Equal(t, "DELETE / HTTP/1.1\r\n\r\n", string(raw))
	})

	t.Run("round trip", func(t *testing.T) {
		for range 50 {
			hdrs := make(headers.Headers)
			for range 5 {
				hdrs["x-"+strings.ToLower(uniuri.NewLen(8))] = uniuri.NewLen(20)
			}

			uri := "/" + uniuri.NewLen(10) + "/" + uniuri.NewLen(5) + "?q=" + uniuri.NewLen(5)
			raw, err := AppendRequest(nil, method.PUT, uri, hdrs)
			require.NoError(t, err)

			preamble, found := strings.CutSuffix(string(raw), "\r\n\r\n")
			require.True(t, found)
			request, err := ParseRequest(preamble, nil)
			require.NoError(t, err)

			rendered, err := AppendRequest(nil, request.Method, request.URI, request.Headers)
			require.NoError(t, err)
			require.Equal(t, string(raw), string(rendered))
		}
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := AppendRequest(nil, method.Unknown, "/", nil)
		require.True(t, errors.Is(err, rgierrors.ErrUsage))
		_, err = AppendRequest(nil, method.GET, "no-slash", nil)
		require.True(t, errors.Is(err, rgierrors.ErrUsage))
		_, err = AppendRequest(nil, method.GET, "/", headers.Headers{"Host": "example.com"})
		require.True(t, errors.Is(err, rgierrors.ErrUsage))
		_, err = AppendRequest(nil, method.GET, "/", headers.Headers{"host": "a\r\nx-injected: 1"})
		require.True(t, errors.Is(err, rgierrors.ErrUsage))
		_, err = AppendRequest(nil, method.GET, "/", headers.Headers{"host": ""})
		require.True(t, errors.Is(err, rgierrors.ErrUsage))
		_, err = AppendRequest(nil, method.GET, "/", headers.Headers{strings.Repeat("a", 33): "b"})
		require.True(t, errors.Is(err, rgierrors.ErrUsage))

		tooMany := make(headers.Headers)
		for range 21 {
			tooMany["x-"+strings.ToLower(uniuri.NewLen(10))] = "1"
		}
		_, err = AppendRequest(nil, method.GET, "/", tooMany)
		require.True(t, errors.Is(err, rgierrors.ErrUsage))
	})
}

func TestAppendResponse(t *testing.T) {
	t.Run("rendering", func(t *testing.T) {
		raw, err := AppendResponse(nil, status.OK, "OK", headers.Headers{"content-length": "5"})
		require.NoError(t, err)
		require.Equal(t, "HTTP/1.1 200 OK\r\ncontent-length: 5\r\n\r\n", string(raw))
	})

	t.Run("round trip", func(t *testing.T) {
		raw, err := AppendResponse(nil, status.NotFound, "Not Found", headers.Headers{"x-a": "1"})
		require.NoError(t, err)

		resp, err := ParseResponse(method.GET, strings.TrimSuffix(string(raw), "\r\n\r\n"), nil)
		require.NoError(t, err)
		require.Equal(t, status.NotFound, resp.Status)
		require.Equal(t, "Not Found", resp.Reason)
		require.Equal(t, headers.Headers{"x-a": "1"}, resp.Headers)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := AppendResponse(nil, 600, "Bad", nil)
		require.True(t, errors.Is(err, rgierrors.ErrUsage))
		_, err = AppendResponse(nil, 99, "Bad", nil)
		require.True(t, errors.Is(err, rgierrors.ErrUsage))
		_, err = AppendResponse(nil, 200, "", nil)
		require.True(t, errors.Is(err, rgierrors.ErrUsage))
		_, err = AppendResponse(nil, 200, "OK\r\n", nil)
		require.True(t, errors.Is(err, rgierrors.ErrUsage))
	})
}

func TestSetOutputHeaders(t *testing.T) {
	t.Run("bytes", func(t *testing.T) {
		hdrs := make(headers.Headers)
		require.NoError(t, SetOutputHeaders(hdrs, http.Bytes("hello")))
		require.Equal(t, "5", hdrs["content-length"])
	})

	t.Run("no body", func(t *testing.T) {
		hdrs := make(headers.Headers)
		require.NoError(t, SetOutputHeaders(hdrs, nil))
		require.Empty(t, hdrs)
	})

	t.Run("body", func(t *testing.T) {
		body, err := http.NewBody(http.NewStreamReader(strings.NewReader("")), 1234)
		require.NoError(t, err)
		hdrs := headers.Headers{"content-length": "1234"}
		require.NoError(t, SetOutputHeaders(hdrs, body))

		hdrs = headers.Headers{"content-length": "1"}
		require.True(t, errors.Is(SetOutputHeaders(hdrs, body), rgierrors.ErrUsage))
	})

	t.Run("chunked", func(t *testing.T) {
		body, err := http.NewChunkedBodyIter(http.Chunks([]byte("hello")))
		require.NoError(t, err)
		hdrs := make(headers.Headers)
		require.NoError(t, SetOutputHeaders(hdrs, body))
		require.Equal(t, "chunked", hdrs["transfer-encoding"])

		hdrs = headers.Headers{"content-length": "5"}
		require.Error(t, SetOutputHeaders(hdrs, body))
	})

	t.Run("fixed with transfer-encoding", func(t *testing.T) {
		hdrs := headers.Headers{"transfer-encoding": "chunked"}
		require.Error(t, SetOutputHeaders(hdrs, http.Bytes("hello")))
	})

	t.Run("nil pointers", func(t *testing.T) {
		for _, body := range []http.Payload{
			(*http.Body)(nil), (*http.ChunkedBody)(nil),
			(*http.BodyIter)(nil), (*http.ChunkedBodyIter)(nil),
		} {
			err := SetOutputHeaders(make(headers.Headers), body)
			require.True(t, errors.Is(err, rgierrors.ErrUsage), "%T", body)
		}
	})

	t.Run("partly read body", func(t *testing.T) {
		body, err := http.NewBody(http.NewStreamReader(strings.NewReader("hello world")), 11)
		require.NoError(t, err)
		_, err = body.Read(make([]byte, 4))
		require.NoError(t, err)

		hdrs := make(headers.Headers)
		require.True(t, errors.Is(SetOutputHeaders(hdrs, body), rgierrors.ErrUsage))
		require.Empty(t, hdrs)
	})
}

// decodeChunked decodes the chunked body with an independent decoder.
func decodeChunked(t *testing.T, data []byte) []byte {
	parser := chunkedbody.NewParser(chunkedbody.DefaultSettings())
	var output []byte

	for len(data) > 0 {
		chunk, extra, err := parser.Parse(data, false)
		output = append(output, chunk...)
		data = extra

		if err == io.EOF {
			return output
		}

		require.NoError(t, err)
	}

	t.Fatal("unterminated chunked body")
	return nil
}

func TestChunkedEncoding(t *testing.T) {
	pieces := [][]byte{
		[]byte("Hello"),
		[]byte(strings.Repeat("a", 4096)),
		[]byte(uniuri.NewLen(100)),
	}

	body, err := http.NewChunkedBodyIter(http.Chunks(pieces...))
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = body.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, string(bytes.Join(pieces, nil)), string(decodeChunked(t, out.Bytes())))
}
