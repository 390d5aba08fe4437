package options // import "WooFeedSync/internal/wc-api-go/options"

// Basic holds the site URL and the credential pair used for Basic Authentication.
type Basic struct {
	URL     string
	Key     string
	Secret  string
	Options Advanced
}

// Advanced selects the REST namespace and transport behaviour.
type Advanced struct {
	WPAPI           bool
	WPAPIPrefix     string
	Version         string
	QueryStringAuth bool
	// RPS caps outgoing requests per second; 0 disables throttling.
	RPS int
}
