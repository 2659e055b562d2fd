package http

import (
	"iter"

	"github.com/indigo-web/rgi/http/headers"
)

// API is the capability table handed to every handler call. Handlers build their response
// bodies through it instead of depending on the constructors directly.
type API struct {
	Body            func(src Reader, contentLength int64) (*Body, error)
	ChunkedBody     func(src Reader) (*ChunkedBody, error)
	BodyIter        func(source iter.Seq[[]byte], contentLength int64) (*BodyIter, error)
	ChunkedBodyIter func(source iter.Seq[Chunk]) (*ChunkedBodyIter, error)
	Range           func(start, stop int64) (headers.Range, error)
	ContentRange    func(start, stop, total int64) (headers.ContentRange, error)
}

var DefaultAPI = &API{
	Body:            NewBody,
	ChunkedBody:     NewChunkedBody,
	BodyIter:        NewBodyIter,
	ChunkedBodyIter: NewChunkedBodyIter,
	Range:           headers.NewRange,
	ContentRange:    headers.NewContentRange,
}
