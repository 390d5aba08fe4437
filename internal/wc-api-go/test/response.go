package test

import (
	"io"
	"net/http"
	"strings"
)

// Response builds canned *http.Response values
type Response struct{}

// GetWithBody returns a 200 response carrying body
func (r Response) GetWithBody(body string) *http.Response {
	return r.GetWithStatus(http.StatusOK, body)
}

// GetWithStatus returns a response with the given status code and body
func (r Response) GetWithStatus(code int, body string) *http.Response {
	return &http.Response{
		Status:     http.StatusText(code),
		StatusCode: code,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}
