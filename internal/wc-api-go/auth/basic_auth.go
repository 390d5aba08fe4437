package auth // import "WooFeedSync/internal/wc-api-go/auth"

import (
	"net/http"
	"net/url"

	"WooFeedSync/internal/wc-api-go/options"
	"WooFeedSync/internal/wc-api-go/request"
)

// BasicAuthentication structure stores all required parameter values
type BasicAuthentication struct {
	Options options.Basic
}

// GetEnrichedQuery adds credentials to the query when QueryStringAuth is on
func (b *BasicAuthentication) GetEnrichedQuery(_ string, p url.Values, _ request.Request) url.Values {
	if p == nil {
		p = url.Values{}
	}
	if b.Options.Options.QueryStringAuth {
		p.Set("consumer_key", b.Options.Key)
		p.Set("consumer_secret", b.Options.Secret)
	}
	return p
}

// EnrichRequest sets the Authorization header unless credentials travel in the query
func (b *BasicAuthentication) EnrichRequest(r *http.Request, _ string) {
	if b.Options.Options.QueryStringAuth {
		return
	}
	r.SetBasicAuth(b.Options.Key, b.Options.Secret)
}
