package method

type Method uint8

const (
	Unknown Method = iota
	GET
	PUT
	POST
	HEAD
	DELETE

	// Count is the last one enum, so contains the greatest integer value of all the
	// methods.
	Count = iota - 1
)

// List contains all the supported HTTP methods.
var List = []Method{GET, PUT, POST, HEAD, DELETE}

func Parse(str string) Method {
	switch len(str) {
	case 3:
		if str == "GET" {
			return GET
		} else if str == "PUT" {
			return PUT
		}
	case 4:
		if str == "POST" {
			return POST
		} else if str == "HEAD" {
			return HEAD
		}
	case 6:
		if str == "DELETE" {
			return DELETE
		}
	}

	return Unknown
}

func (m Method) String() string {
	switch m {
	case GET:
		return "GET"
	case PUT:
		return "PUT"
	case POST:
		return "POST"
	case HEAD:
		return "HEAD"
	case DELETE:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// AllowsBody reports whether a request of this method may carry a body.
func (m Method) AllowsBody() bool {
	return m == PUT || m == POST
}
