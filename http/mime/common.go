// Package mime holds content types commonly set by handlers. Every value is a valid
// outgoing header value.
package mime

import (
	"path"
	"strings"
)

type MIME = string

const (
	OctetStream MIME = "application/octet-stream"
	Plain       MIME = "text/plain"
	HTML        MIME = "text/html"
	JSON        MIME = "application/json"
	CSS         MIME = "text/css"
	JS          MIME = "text/javascript"
	PNG         MIME = "image/png"
	SVG         MIME = "image/svg+xml"
)

var byExtension = map[string]MIME{
	".txt":  Plain,
	".htm":  HTML,
	".html": HTML,
	".json": JSON,
	".css":  CSS,
	".js":   JS,
	".png":  PNG,
	".svg":  SVG,
}

// ByExtension guesses the content type by the extension of the last path segment.
// Unknown extensions are octet streams.
func ByExtension(p string) MIME {
	if mime, ok := byExtension[strings.ToLower(path.Ext(p))]; ok {
		return mime
	}

	return OctetStream
}

// Complies returns whether the content-type header value is of the MIME. Empty value is
// considered compatible with any MIME
func Complies(mime MIME, with string) bool {
	// get rid of parameters if any
	with, _, _ = strings.Cut(with, ";")
	with = strings.TrimSpace(with)
	return len(with) == 0 || with == mime
}
