package request

import (
	"net/http"
	"net/url"
)

// Request describes one call against the REST API. Raw, when set, is sent
// verbatim instead of the JSON encoding of Body.
type Request struct {
	Method   string
	Endpoint string
	Values   url.Values
	Body     interface{}
	Raw      []byte
	Header   http.Header
}
