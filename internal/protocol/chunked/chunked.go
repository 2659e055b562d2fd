// Package chunked implements the grammar of chunk-size lines of the chunked transfer encoding.
package chunked

import (
	"strconv"
	"strings"

	"github.com/indigo-web/rgi/config"
	"github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/rgi/internal/grammar"
	"github.com/indigo-web/rgi/internal/hexconv"
)

// maxSizeDigits is enough to represent config.MaxIOSize.
const maxSizeDigits = 7

// Extension is a single key=value chunk extension.
type Extension struct {
	Key, Value string
}

// ParseSize decodes the chunk size. Leading zeroes are prohibited, so the only way to write
// zero is "0".
func ParseSize(str string) (int, error) {
	if len(str) > maxSizeDigits {
		return 0, errors.Grammarf("chunk_size is too long: %q...", str[:maxSizeDigits])
	}

	size, ok := hexconv.Uint(str)
	if !ok || (str[0] == '0' && len(str) > 1) {
		return 0, errors.Grammarf("bad chunk_size: %q", str)
	}

	if size > config.MaxIOSize {
		return 0, errors.Grammarf("need chunk_size <= %d; got %d", config.MaxIOSize, size)
	}

	return int(size), nil
}

// ParseExtension decodes a key=value pair. Both key and value must be non-empty.
func ParseExtension(str string) (*Extension, error) {
	eq := strings.IndexByte(str, '=')
	if eq < 1 || eq == len(str)-1 {
		return nil, errors.Grammarf("bad chunk extension: %q", str)
	}

	key, value := str[:eq], str[eq+1:]
	if !grammar.ExtKey.Contains(key) {
		return nil, errors.Grammarf("bad bytes in extension key: %q", key)
	}

	if !grammar.ExtValue.Contains(value) {
		return nil, errors.Grammarf("bad bytes in extension value: %q", value)
	}

	return &Extension{Key: key, Value: value}, nil
}

// ParseLine decodes a chunk-size line without its CRLF terminator.
func ParseLine(line string) (size int, ext *Extension, err error) {
	semicolon := strings.IndexByte(line, ';')
	if semicolon == -1 {
		size, err = ParseSize(line)
		return size, nil, err
	}

	if size, err = ParseSize(line[:semicolon]); err != nil {
		return 0, nil, err
	}

	ext, err = ParseExtension(line[semicolon+1:])
	return size, ext, err
}

// AppendLine renders a chunk-size line including the CRLF.
func AppendLine(dst []byte, size int, ext *Extension) ([]byte, error) {
	if size < 0 || size > config.MaxIOSize {
		return dst, errors.Usagef("need 0 <= chunk_size <= %d; got %d", config.MaxIOSize, size)
	}

	dst = strconv.AppendUint(dst, uint64(size), 16)

	if ext != nil {
		if len(ext.Key) == 0 || !grammar.ExtKey.Contains(ext.Key) {
			return dst, errors.Usagef("bad chunk extension key: %q", ext.Key)
		}

		if len(ext.Value) == 0 || !grammar.ExtValue.Contains(ext.Value) {
			return dst, errors.Usagef("bad chunk extension value: %q", ext.Value)
		}

		dst = append(dst, ';')
		dst = append(dst, ext.Key...)
		dst = append(dst, '=')
		dst = append(dst, ext.Value...)
	}

	return append(dst, '\r', '\n'), nil
}
