package net

import (
	"io"
	"net/http"
)

// RequestEnricher adds Basic Authentication settings in Request in case of Basic Authentication
type RequestEnricher interface {
	EnrichRequest(r *http.Request, URL string)
}

// RequestCreator builds *http.Request values
type RequestCreator interface {
	NewRequest(method, url string, body io.Reader) (*http.Request, error)
}

// Client executes prepared requests
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultRequestCreator delegates to http.NewRequest
type DefaultRequestCreator struct{}

// NewRequest ...
func (DefaultRequestCreator) NewRequest(method, url string, body io.Reader) (*http.Request, error) {
	return http.NewRequest(method, url, body)
}
