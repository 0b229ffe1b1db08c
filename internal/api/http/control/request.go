package control

import "bytes"

// Method is the request method as far as the controller cares.
type Method uint8

const (
	// MethodOther is any method the controller ignores.
	MethodOther Method = iota
	// MethodGet is GET.
	MethodGet
)

// methodGet is the request line prefix of a GET request.
var methodGet = []byte("GET ")

// Request is a parsed request line. Path and Query alias the raw buffer.
type Request struct {
	Method Method
	Path   []byte
	// Query is nil unless a '?' is followed by at least one byte of the target.
	Query []byte
}

// ParseRequest extracts the method, path and query from a raw request.
// The input may be truncated; whatever is present is parsed.
func ParseRequest(raw []byte) Request {
	if !bytes.HasPrefix(raw, methodGet) {
		return Request{Method: MethodOther}
	}

	target := raw[len(methodGet):]
	if end := bytes.IndexAny(target, " \r\n"); end >= 0 {
		target = target[:end]
	}

	req := Request{Method: MethodGet, Path: target}

	if i := bytes.IndexByte(target, '?'); i >= 0 {
		req.Path = target[:i]

		if query := target[i+1:]; len(query) > 0 {
			req.Query = query
		}
	}

	return req
}
