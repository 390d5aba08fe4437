package net // import "WooFeedSync/internal/wc-api-go/net"

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"WooFeedSync/internal/wc-api-go/request"
)

// Sender provides HTTP Requests
type Sender struct {
	requestEnricher RequestEnricher
	urlBuilder      URLBuilder
	httpClient      Client
	requestCreator  RequestCreator
	limiter         *rate.Limiter
}

// Send method sends requests to WooCommerce API
func (s *Sender) Send(req request.Request) (resp *http.Response, err error) {
	r, err := s.prepareRequest(req)
	if err != nil {
		return nil, err
	}
	if s.limiter != nil {
		// in-flight calls are never cancelled client-side
		if err := s.limiter.Wait(context.Background()); err != nil {
			return nil, errors.Wrap(err, "failed in limiter.Wait")
		}
	}
	return s.httpClient.Do(r)
}

func (s *Sender) prepareRequest(req request.Request) (*http.Request, error) {
	URL := s.urlBuilder.GetURL(req)

	var body io.Reader
	contentType := ""
	switch {
	case req.Raw != nil:
		body = bytes.NewReader(req.Raw)
	case req.Body != nil && (req.Method == http.MethodPost || req.Method == http.MethodPut):
		reqBody, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrapf(err, "failed in json.Marshal, endpoint:%s", req.Endpoint)
		}
		body = bytes.NewReader(reqBody)
		contentType = "application/json"
	}

	r, err := s.requestCreator.NewRequest(req.Method, URL, body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed in NewRequest, endpoint:%s", req.Endpoint)
	}
	if s.requestEnricher != nil {
		s.requestEnricher.EnrichRequest(r, URL)
	}
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	return r, nil
}

// SetRequestEnricher ...
func (s *Sender) SetRequestEnricher(a RequestEnricher) {
	s.requestEnricher = a
}

// SetURLBuilder ...
func (s *Sender) SetURLBuilder(urlBuilder URLBuilder) {
	s.urlBuilder = urlBuilder
}

// SetHTTPClient ...
func (s *Sender) SetHTTPClient(c Client) {
	s.httpClient = c
}

// SetRequestCreator ...
func (s *Sender) SetRequestCreator(rc RequestCreator) {
	s.requestCreator = rc
}

// SetRPS throttles outgoing requests; rps <= 0 removes the limit.
func (s *Sender) SetRPS(rps int) {
	if rps <= 0 {
		s.limiter = nil
		return
	}
	s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}
