package client

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WooFeedSync/internal/wc-api-go/options"
	"WooFeedSync/internal/wc-api-go/request"
	"WooFeedSync/internal/wc-api-go/test"
)

func TestRequest(t *testing.T) {
	parameters := url.Values{}
	parameters.Set("foo", "bar")

	methods := []string{"GET", "POST", "PUT", "DELETE"}

	Assert := assert.New(t)

	for _, method := range methods {
		t.Logf("Test method: %s", method)
		req := request.Request{
			Method:   method,
			Endpoint: "products",
			Values:   parameters,
		}

		sender := getSenderMock(getResponseMock(method))
		client := NewWithSender(sender)

		r, _ := executeRequest(client, &req)

		body, _ := io.ReadAll(r.Body)
		Assert.Equal(getResponseBody(method), string(body))
		Assert.Len(sender.Requests, 1)
		Assert.Equal(method, sender.Requests[0].Method)

		if err := r.Body.Close(); err != nil {
			t.Errorf("Failed to close body of response")
		}
	}
}

func TestFactory_NewClient(t *testing.T) {
	var gotPath, gotQuery, gotUser, gotPass, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUser, gotPass, _ = r.BasicAuth()
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := Factory{}.NewClient(options.Basic{
		URL:    srv.URL + "/",
		Key:    "ck_1",
		Secret: "cs_1",
		Options: options.Advanced{
			WPAPI:   true,
			Version: "wc/v3",
			RPS:     50,
		},
	})

	resp, err := c.Post("products", url.Values{"force": {"true"}}, map[string]string{"sku": "A1"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/wp-json/wc/v3/products", gotPath)
	assert.Equal(t, "force=true", gotQuery)
	assert.Equal(t, "ck_1", gotUser)
	assert.Equal(t, "cs_1", gotPass)
	assert.Equal(t, "application/json", gotType)
}

func TestFactory_QueryStringAuth(t *testing.T) {
	var q url.Values
	var hasAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query()
		_, _, hasAuth = r.BasicAuth()
	}))
	defer srv.Close()

	c := Factory{}.NewClient(options.Basic{
		URL:     srv.URL,
		Key:     "ck_2",
		Secret:  "cs_2",
		Options: options.Advanced{WPAPI: true, Version: "wc/v3", QueryStringAuth: true},
	})
	resp, err := c.Get("products/categories", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.False(t, hasAuth)
	assert.Equal(t, "ck_2", q.Get("consumer_key"))
	assert.Equal(t, "cs_2", q.Get("consumer_secret"))
}

func TestUpload(t *testing.T) {
	var gotBody []byte
	var gotDisposition string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotDisposition = r.Header.Get("Content-Disposition")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := Factory{}.NewClient(options.Basic{URL: srv.URL, Options: options.Advanced{WPAPI: true, Version: "wp/v2"}})
	h := http.Header{}
	h.Set("Content-Disposition", `attachment; filename="A1_1.jpg"`)
	resp, err := c.Upload("media", []byte{0xff, 0xd8}, h)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []byte{0xff, 0xd8}, gotBody)
	assert.Equal(t, `attachment; filename="A1_1.jpg"`, gotDisposition)
}

func getSenderMock(response *http.Response) *SenderMock {
	sender := SenderMock{
		response: *response,
	}
	return &sender
}

func executeRequest(c Client, r *request.Request) (*http.Response, error) {
	switch r.Method {
	case "GET":
		return c.Get(r.Endpoint, r.Values)
	case "POST":
		return c.Post(r.Endpoint, r.Values, r.Body)
	case "PUT":
		return c.Put(r.Endpoint, r.Body)
	case "DELETE":
		return c.Delete(r.Endpoint, r.Values)
	default:
		return nil, errors.New("incorrect request method")
	}
}

func getResponseMock(method string) *http.Response {
	body := getResponseBody(method)
	response := test.Response{}
	return response.GetWithBody(body)
}

func getResponseBody(method string) string {
	return "Hello " + method + "!"
}
