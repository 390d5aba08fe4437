package wp_api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"WooFeedSync/internal/config"
	"WooFeedSync/internal/wc-api-go/client"
	"WooFeedSync/internal/wc-api-go/options"
	"WooFeedSync/internal/wooapi"
	"WooFeedSync/internal/wooapi/models"
	"WooFeedSync/pkg/logging"
)

// WPAPI covers the wp/v2 routes WooCommerce does not expose: custom
// taxonomies, term assignment and the media library.
type WPAPI interface {
	TermList(taxonomy string, page int) (*wooapi.Result, error)
	TermListAll(taxonomy string) ([]Term, error)
	TermAdd(taxonomy, name string) (*Term, int, error)
	AssignTerms(productID int, taxonomy string, ids []int) (*wooapi.Result, error)
	MediaUpload(data []byte, filename string) (*MediaJson, error)
}

type wpapi struct {
	api client.Client
}

func NewAPI(api client.Client) WPAPI {
	return &wpapi{api: api}
}

// NewFromConfig authenticates with the WordPress user and application password.
func NewFromConfig(cfg *config.Config) WPAPI {
	factory := client.Factory{}
	return NewAPI(factory.NewClient(options.Basic{
		URL:    cfg.WOOCOMMERCE.URL,
		Key:    cfg.WOOCOMMERCE.User,
		Secret: cfg.WOOCOMMERCE.Password,
		Options: options.Advanced{
			WPAPI:       true,
			WPAPIPrefix: "/wp-json/",
			Version:     "wp/v2",
			RPS:         cfg.WOOCOMMERCE.RPS,
		},
	}))
}

func (w *wpapi) TermList(taxonomy string, page int) (*wooapi.Result, error) {
	p := url.Values{}
	p.Set("per_page", "100")
	p.Set("page", strconv.Itoa(page))
	r, err := w.api.Get(taxonomy, p)
	if err != nil {
		return nil, errors.Wrapf(err, "failed in client.Get, taxonomy:%s", taxonomy)
	}
	return wooapi.NewResult(r)
}

// TermListAll pages through a taxonomy. A route that does not exist is an error.
func (w *wpapi) TermListAll(taxonomy string) (result []Term, err error) {
	logger := logging.GetLogger()
	logger.Debugf("Start TermListAll %s", taxonomy)
	defer logger.Debugf("End TermListAll %s", taxonomy)

	for page := 1; ; page++ {
		r, err := w.TermList(taxonomy, page)
		if err != nil {
			return nil, err
		}
		switch r.StatusCode {
		case http.StatusOK:
			var terms []Term
			if err := r.Decode(&terms); err != nil {
				return nil, errors.Wrap(err, "failed to Unmarshal terms")
			}
			result = append(result, terms...)
			if len(terms) < 100 {
				return result, nil
			}
		case http.StatusBadRequest:
			if e := r.Err(); e != nil && e.Code == "rest_post_invalid_page_number" {
				return result, nil
			}
			return nil, errors.New(r.Detail())
		default:
			return nil, errors.Errorf("failed to list %s: %s", taxonomy, r.Detail())
		}
	}
}

// TermAdd creates a term. For an existing term the int is its id and the error is set.
func (w *wpapi) TermAdd(taxonomy, name string) (*Term, int, error) {
	r, err := w.api.Post(taxonomy, nil, Term{Name: name})
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed in client.Post, taxonomy:%s", taxonomy)
	}
	res, err := wooapi.NewResult(r)
	if err != nil {
		return nil, 0, err
	}
	if res.StatusCode != http.StatusCreated {
		if e := res.Err(); e != nil {
			if e.Code == models.CodeTermExists {
				return nil, e.Data.ResourceId, e
			}
			return nil, 0, e
		}
		return nil, 0, errors.New(res.Detail())
	}
	var t Term
	if err := res.Decode(&t); err != nil {
		return nil, 0, err
	}
	if t.ID == 0 {
		return nil, 0, errors.Errorf("term %q created without id", name)
	}
	return &t, t.ID, nil
}

// AssignTerms sets taxonomy terms on a product through wp/v2/product/{id}.
func (w *wpapi) AssignTerms(productID int, taxonomy string, ids []int) (*wooapi.Result, error) {
	endpoint := fmt.Sprintf("product/%d", productID)
	r, err := w.api.Post(endpoint, nil, map[string][]int{taxonomy: ids})
	if err != nil {
		return nil, errors.Wrapf(err, "failed in client.Post, endpoint:%s", endpoint)
	}
	return wooapi.NewResult(r)
}

// MediaUpload stores data in the media library under filename.
func (w *wpapi) MediaUpload(data []byte, filename string) (*MediaJson, error) {
	logger := logging.GetLogger()
	logger.Debugf("Start MediaUpload %s", filename)
	defer logger.Debugf("End MediaUpload %s", filename)

	h := http.Header{}
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	h.Set("Content-Type", http.DetectContentType(data))

	r, err := w.api.Upload("media", data, h)
	if err != nil {
		return nil, errors.Wrap(err, "failed in client.Upload")
	}
	res, err := wooapi.NewResult(r)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusCreated {
		return nil, errors.Errorf("media upload %s: %s", filename, res.Detail())
	}
	var m MediaJson
	if err := res.Decode(&m); err != nil {
		return nil, errors.Wrap(err, "failed to Unmarshal media")
	}
	if m.Id == 0 {
		return nil, errors.Errorf("media upload %s returned no id", filename)
	}
	return &m, nil
}
