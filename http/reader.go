package http

import (
	"io"

	"github.com/indigo-web/rgi/config"
	"github.com/indigo-web/rgi/internal/buffer"
)

// NewStreamReader adapts any io.Reader to be a body source. Useful to send a file or any
// other locally available stream as a body.
func NewStreamReader(r io.Reader) Reader {
	return buffer.NewReader(r, buffer.New(config.BufferSize))
}
