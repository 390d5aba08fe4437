package url

import (
	URL "net/url"

	"WooFeedSync/internal/wc-api-go/request"
)

// QueryEnricherMock returns the request values untouched
type QueryEnricherMock struct{}

// GetEnrichedQuery ...
func (q *QueryEnricherMock) GetEnrichedQuery(_ string, query URL.Values, _ request.Request) URL.Values {
	if query == nil {
		return URL.Values{}
	}
	return query
}
