package headers

import (
	"maps"
	"slices"
	"strconv"

	"github.com/indigo-web/rgi/config"
	"github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/rgi/internal/grammar"
)

// Headers maps lower-cased header names to their values. Names are unique by construction.
type Headers map[string]string

// Has reports whether the header is presented.
func (h Headers) Has(key string) bool {
	_, found := h[key]
	return found
}

// Clone returns a copy, which is never nil.
func (h Headers) Clone() Headers {
	if h == nil {
		return make(Headers)
	}

	return maps.Clone(h)
}

// SortedKeys returns header names in lexicographical order. Headers are always rendered
// in this order, so the output is deterministic.
func (h Headers) SortedKeys() []string {
	return slices.Sorted(maps.Keys(h))
}

// SetDefault sets the header unless it's already presented. An already presented header
// holding a different value is an error.
func (h Headers) SetDefault(key, value string) error {
	if current, found := h[key]; found {
		if current != value {
			return errors.Usagef("%q mismatch: %q != %q", key, value, current)
		}

		return nil
	}

	h[key] = value
	return nil
}

// ParseContentLength decodes a content-length value: at most 16 decimal digits with no
// leading zeroes.
func ParseContentLength(value string) (int64, error) {
	switch {
	case len(value) == 0:
		return 0, errors.Grammarf("content-length is empty")
	case len(value) > config.MaxContentLengthSize:
		return 0, errors.Grammarf("content-length too long: %q...", value[:config.MaxContentLengthSize])
	case !grammar.Decimal.Contains(value):
		return 0, errors.Grammarf("bad bytes in content-length: %q", value)
	case value[0] == '0' && len(value) > 1:
		return 0, errors.Grammarf("content-length has leading zero: %q", value)
	}

	return parseDecimal(value), nil
}

// parseDecimal returns -1 if the value isn't a canonical decimal number of at most 16 digits.
func parseDecimal(value string) int64 {
	if len(value) == 0 || len(value) > config.MaxContentLengthSize || !grammar.Decimal.Contains(value) {
		return -1
	}

	if value[0] == '0' && len(value) > 1 {
		return -1
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return -1
	}

	return n
}
