package wooapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"WooFeedSync/internal/wooapi/models"
	"WooFeedSync/pkg/logging"
)

const maxErrLen = 200

// Result is what every remote call returns. Only transport failures are
// reported as errors; HTTP error statuses are data.
type Result struct {
	StatusCode int
	Body       string
	Data       interface{}
}

// NewResult reads and closes the response body.
func NewResult(r *http.Response) (*Result, error) {
	logger := logging.GetLogger()
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Errorf("failed Body.Close()")
		}
	}(r.Body)

	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed in io.ReadAll(r.Body)")
	}
	logger.Debugf("HTTP %d: %s", r.StatusCode, ShortErr(string(bodyBytes)))

	res := &Result{StatusCode: r.StatusCode, Body: string(bodyBytes)}
	var data interface{}
	if err := json.Unmarshal(bodyBytes, &data); err == nil {
		res.Data = data
	}
	return res, nil
}

// OK reports a 2xx status.
func (r *Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the raw body into v.
func (r *Result) Decode(v interface{}) error {
	if err := json.Unmarshal([]byte(r.Body), v); err != nil {
		return errors.Wrapf(err, "failed in json.Unmarshal, status:%d", r.StatusCode)
	}
	return nil
}

// Err decodes a WooCommerce error body. Nil when the body is not one.
func (r *Result) Err() *models.ErrorWoo {
	var e models.ErrorWoo
	if err := json.Unmarshal([]byte(r.Body), &e); err != nil || e.Code == "" {
		return nil
	}
	return &e
}

// Detail formats the result for a row log: "HTTP <code>: <truncated body>".
func (r *Result) Detail() string {
	return fmt.Sprintf("HTTP %d: %s", r.StatusCode, ShortErr(r.Body))
}

// ShortErr trims s and cuts it to 200 characters, marking the cut with "...".
func ShortErr(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= maxErrLen {
		return s
	}
	return string([]rune(s)[:maxErrLen]) + "..."
}
