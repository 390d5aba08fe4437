package images

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"WooFeedSync/internal/version"
	wp_api "WooFeedSync/internal/wp-api"
	"WooFeedSync/pkg/logging"
)

const maxImageSize = 20 << 20

// Uploader stores image bytes in the catalog's media library.
type Uploader interface {
	MediaUpload(data []byte, filename string) (*wp_api.MediaJson, error)
}

type MediaRef struct {
	ID  int
	URL string
}

type Importer struct {
	uploader  Uploader
	client    *http.Client
	max       int
	userAgent string
}

// NewImporter caps every import at max URLs. A nil client uses a default
// one, which follows redirects.
func NewImporter(u Uploader, max int, client *http.Client) *Importer {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Importer{
		uploader:  u,
		client:    client,
		max:       max,
		userAgent: version.GetVersion().UserAgent(),
	}
}

// SplitURLs splits a comma separated cell into trimmed, non-empty URLs.
func SplitURLs(s string) []string {
	return lo.FilterMap(strings.Split(s, ","), func(u string, _ int) (string, bool) {
		u = strings.TrimSpace(u)
		return u, u != ""
	})
}

// Import fetches and uploads up to max URLs in order as {baseName}_{n}.jpg.
// Failed URLs are skipped, so the result may be shorter than the input.
func (i *Importer) Import(urls []string, baseName string) []MediaRef {
	logger := logging.GetLogger().GetLoggerWithField("sku", baseName)

	if i.max >= 0 && len(urls) > i.max {
		urls = urls[:i.max]
	}
	var out []MediaRef
	for n, u := range urls {
		filename := fmt.Sprintf("%s_%d.jpg", baseName, n+1)
		data, err := i.fetch(u)
		if err != nil {
			logger.Warnf("image %s skipped: %v", u, err)
			continue
		}
		m, err := i.uploader.MediaUpload(data, filename)
		if err != nil {
			logger.Warnf("image %s not uploaded: %v", u, err)
			continue
		}
		out = append(out, MediaRef{ID: m.Id, URL: m.SourceUrl})
	}
	return out
}

func (i *Importer) fetch(u string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed in http.NewRequest")
	}
	req.Header.Set("User-Agent", i.userAgent)

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed in client.Do")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, errors.Wrap(err, "failed in io.ReadAll")
	}
	if len(data) == 0 {
		return nil, errors.New("empty body")
	}
	return data, nil
}
