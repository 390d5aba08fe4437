package net // import "WooFeedSync/internal/wc-api-go/net"

import (
	"strings"

	"WooFeedSync/internal/wc-api-go/options"
	"WooFeedSync/internal/wc-api-go/request"
	"WooFeedSync/internal/wc-api-go/url"
)

// URLBuilder interface
type URLBuilder interface {
	GetURL(req request.Request) string
}

// RestURLBuilder joins site URL, API prefix, version and endpoint
type RestURLBuilder struct {
	Options       options.Basic
	QueryEnricher url.QueryEnricher
}

// GetURL ...
func (b *RestURLBuilder) GetURL(req request.Request) string {
	prefix := "/wc-api/"
	if b.Options.Options.WPAPI {
		prefix = b.Options.Options.WPAPIPrefix
		if prefix == "" {
			prefix = "/wp-json/"
		}
	}

	base := strings.TrimRight(b.Options.URL, "/") + "/" + strings.Trim(prefix, "/") + "/"
	if v := strings.Trim(b.Options.Options.Version, "/"); v != "" {
		base += v + "/"
	}
	u := base + strings.TrimLeft(req.Endpoint, "/")

	query := req.Values
	if b.QueryEnricher != nil {
		query = b.QueryEnricher.GetEnrichedQuery(u, query, req)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
