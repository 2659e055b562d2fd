package headers

import (
	"strconv"
	"strings"

	"github.com/indigo-web/rgi/config"
	"github.com/indigo-web/rgi/errors"
)

const (
	rangePrefix        = "bytes="
	contentRangePrefix = "bytes "
	maxRangeSize       = 39
	maxContentRange    = 56
)

// Range is a byte range of a range request header. Stop is exclusive, as opposed to the
// wire form, where the end is inclusive.
type Range struct {
	start, stop int64
}

func NewRange(start, stop int64) (Range, error) {
	if start < 0 || start >= config.MaxLength {
		return Range{}, errors.Usagef("need 0 <= start < %d; got %d", int64(config.MaxLength), start)
	}

	if stop <= start || stop > config.MaxLength {
		return Range{}, errors.Usagef("need start < stop <= %d; got %d", int64(config.MaxLength), stop)
	}

	return Range{start: start, stop: stop}, nil
}

func (r Range) Start() int64 {
	return r.start
}

func (r Range) Stop() int64 {
	return r.stop
}

// String renders the range in its wire form.
func (r Range) String() string {
	buff := make([]byte, 0, maxRangeSize)
	buff = append(buff, rangePrefix...)
	buff = strconv.AppendInt(buff, r.start, 10)
	buff = append(buff, '-')
	buff = strconv.AppendInt(buff, r.stop-1, 10)

	return string(buff)
}

func (r Range) Equal(other Range) bool {
	return r == other
}

// EqualString compares the range to its wire form.
func (r Range) EqualString(str string) bool {
	return r.String() == str
}

// ParseRange decodes a range header value in the only form supported: bytes=START-END.
func ParseRange(value string) (Range, error) {
	if len(value) < 9 || len(value) > maxRangeSize || !strings.HasPrefix(value, rangePrefix) {
		return Range{}, errors.Grammarf("bad range: %q", value)
	}

	inner := value[len(rangePrefix):]
	dash := strings.IndexByte(inner, '-')
	if dash < 1 {
		return Range{}, errors.Grammarf("bad range: %q", value)
	}

	start, end := parseDecimal(inner[:dash]), parseDecimal(inner[dash+1:])
	if start < 0 || end < start || end >= config.MaxLength {
		return Range{}, errors.Grammarf("bad range: %q", value)
	}

	return Range{start: start, stop: end + 1}, nil
}

// ContentRange is a byte range of a content-range response header. Stop is exclusive.
type ContentRange struct {
	start, stop, total int64
}

func NewContentRange(start, stop, total int64) (ContentRange, error) {
	if start < 0 || start >= config.MaxLength {
		return ContentRange{}, errors.Usagef("need 0 <= start < %d; got %d", int64(config.MaxLength), start)
	}

	if stop <= start || stop > config.MaxLength {
		return ContentRange{}, errors.Usagef("need start < stop <= %d; got %d", int64(config.MaxLength), stop)
	}

	if total < stop || total > config.MaxLength {
		return ContentRange{}, errors.Usagef("need stop <= total <= %d; got %d", int64(config.MaxLength), total)
	}

	return ContentRange{start: start, stop: stop, total: total}, nil
}

func (c ContentRange) Start() int64 {
	return c.start
}

func (c ContentRange) Stop() int64 {
	return c.stop
}

func (c ContentRange) Total() int64 {
	return c.total
}

func (c ContentRange) String() string {
	buff := make([]byte, 0, maxContentRange)
	buff = append(buff, contentRangePrefix...)
	buff = strconv.AppendInt(buff, c.start, 10)
	buff = append(buff, '-')
	buff = strconv.AppendInt(buff, c.stop-1, 10)
	buff = append(buff, '/')
	buff = strconv.AppendInt(buff, c.total, 10)

	return string(buff)
}

func (c ContentRange) Equal(other ContentRange) bool {
	return c == other
}

func (c ContentRange) EqualString(str string) bool {
	return c.String() == str
}

// ParseContentRange decodes a content-range header value: bytes START-END/TOTAL.
func ParseContentRange(value string) (ContentRange, error) {
	if len(value) < 11 || len(value) > maxContentRange || !strings.HasPrefix(value, contentRangePrefix) {
		return ContentRange{}, errors.Grammarf("bad content-range: %q", value)
	}

	inner := value[len(contentRangePrefix):]
	dash := strings.IndexByte(inner, '-')
	if dash < 1 {
		return ContentRange{}, errors.Grammarf("bad content-range: %q", value)
	}

	slash := strings.IndexByte(inner[dash+1:], '/')
	if slash < 1 {
		return ContentRange{}, errors.Grammarf("bad content-range: %q", value)
	}

	slash += dash + 1
	start := parseDecimal(inner[:dash])
	end := parseDecimal(inner[dash+1 : slash])
	total := parseDecimal(inner[slash+1:])

	if start < 0 || end < start || total <= end || total > config.MaxLength {
		return ContentRange{}, errors.Grammarf("bad content-range: %q", value)
	}

	return ContentRange{start: start, stop: end + 1, total: total}, nil
}
