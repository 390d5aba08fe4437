package client

import (
	"net/http"

	"WooFeedSync/internal/wc-api-go/request"
)

// SenderMock imitates sending requests and receiving responses
type SenderMock struct {
	response http.Response
	Requests []request.Request
}

// Send ...
func (r *SenderMock) Send(req request.Request) (resp *http.Response, err error) {
	r.Requests = append(r.Requests, req)
	return &r.response, nil
}
