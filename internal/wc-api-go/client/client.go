package client // import "WooFeedSync/internal/wc-api-go/client"

import (
	"net/http"
	"net/url"
	"time"

	"WooFeedSync/internal/wc-api-go/auth"
	wcnet "WooFeedSync/internal/wc-api-go/net"
	"WooFeedSync/internal/wc-api-go/options"
	"WooFeedSync/internal/wc-api-go/request"
)

// Client is upper level class which delegate all work to Requester
type Client struct {
	sender Sender
}

// Factory assembles a Client from connection options
type Factory struct {
	HTTPClient *http.Client
}

// NewClient wires Basic Authentication, URL building and throttling into a Client
func (f Factory) NewClient(o options.Basic) Client {
	a := &auth.BasicAuthentication{Options: o}

	httpClient := f.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	s := &wcnet.Sender{}
	s.SetRequestEnricher(a)
	s.SetURLBuilder(&wcnet.RestURLBuilder{Options: o, QueryEnricher: a})
	s.SetHTTPClient(httpClient)
	s.SetRequestCreator(wcnet.DefaultRequestCreator{})
	s.SetRPS(o.Options.RPS)

	return Client{sender: s}
}

// NewWithSender is used by tests to replace the transport
func NewWithSender(s Sender) Client {
	return Client{sender: s}
}

// Get Method loads data from Endpoint with specified parameters
func (c *Client) Get(endpoint string, parameters url.Values) (*http.Response, error) {
	return c.sender.Send(request.Request{
		Method:   http.MethodGet,
		Endpoint: endpoint,
		Values:   parameters,
	})
}

// Post Method usually creates new instances
func (c *Client) Post(endpoint string, parameters url.Values, body interface{}) (*http.Response, error) {
	return c.sender.Send(request.Request{
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Values:   parameters,
		Body:     body,
	})
}

// Put Method usually update existing instances
func (c *Client) Put(endpoint string, body interface{}) (*http.Response, error) {
	return c.sender.Send(request.Request{
		Method:   http.MethodPut,
		Endpoint: endpoint,
		Body:     body,
	})
}

// Delete Method usually removes existing instances
func (c *Client) Delete(endpoint string, parameters url.Values) (*http.Response, error) {
	return c.sender.Send(request.Request{
		Method:   http.MethodDelete,
		Endpoint: endpoint,
		Values:   parameters,
	})
}

// Upload posts a binary body (media) with the given headers
func (c *Client) Upload(endpoint string, data []byte, header http.Header) (*http.Response, error) {
	return c.sender.Send(request.Request{
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Raw:      data,
		Header:   header,
	})
}
