// Package grammar holds byte classes of every production of the HTTP/1.1 subset spoken
// by the engine. Every byte of a token is checked against its class before the token
// is interpreted any further.
package grammar

// Set is a byte class.
type Set [256]bool

func newSet(groups ...string) (s Set) {
	for _, group := range groups {
		for i := 0; i < len(group); i++ {
			s[group[i]] = true
		}
	}

	return s
}

// Has reports whether the byte belongs to the class.
func (s *Set) Has(c byte) bool {
	return s[c]
}

// Contains reports whether every byte of str belongs to the class. An empty string
// trivially does.
func (s *Set) Contains(str string) bool {
	for i := 0; i < len(str); i++ {
		if !s[str[i]] {
			return false
		}
	}

	return true
}

const (
	lower = "-0123456789abcdefghijklmnopqrstuvwxyz"
	upper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	uri   = "/?"
	path  = "+.:_~"
	query = "%&="
	space = " "
	value = `"'()*,;<>[]`
)

var (
	Name        = newSet(lower, upper)
	Key         = newSet(lower)
	Value       = newSet(lower, upper, path, query, uri, space, value)
	URI         = newSet(lower, upper, path, query, uri)
	Path        = newSet(lower, upper, path)
	Query       = newSet(lower, upper, path, query)
	Reason      = newSet(lower, upper, space)
	ExtKey      = newSet(lower, upper)
	ExtValue    = newSet(lower, upper, path, value)
	Decimal     = newSet("0123456789")
	Hexadecimal = newSet("0123456789abcdefABCDEF")
	// Outgoing is every printable ASCII character. Header values produced locally are
	// checked against it, so no control character (CR and LF in particular) gets through.
	Outgoing = newOutgoing()
)

func newOutgoing() (s Set) {
	for c := 0x20; c < 0x7f; c++ {
		s[c] = true
	}

	return s
}
