package taxonomy

import (
	"github.com/pkg/errors"

	"WooFeedSync/internal/cache"
	"WooFeedSync/internal/wooapi"
	wp_api "WooFeedSync/internal/wp-api"
	"WooFeedSync/pkg/logging"
)

// DefaultBrandSlugs are tried in order: WooCommerce Brands, then Perfect WooCommerce Brands.
var DefaultBrandSlugs = []string{"product_brand", "pwb-brand"}

// Terms is the part of the WordPress API brand taxonomies need.
type Terms interface {
	TermListAll(taxonomy string) ([]wp_api.Term, error)
	TermAdd(taxonomy, name string) (*wp_api.Term, int, error)
	AssignTerms(productID int, taxonomy string, ids []int) (*wooapi.Result, error)
}

// BrandTaxonomy is one way a site may store brands.
type BrandTaxonomy interface {
	Slug() string
	List() ([]cache.BrandRef, error)
	Create(name string) (int, error)
	Assign(productID, brandID int) error
}

type wpBrandTaxonomy struct {
	slug string
	wp   Terms
}

// BrandTaxonomies builds adapters for slugs over the WordPress terms API.
func BrandTaxonomies(wp Terms, slugs ...string) []BrandTaxonomy {
	if len(slugs) == 0 {
		slugs = DefaultBrandSlugs
	}
	out := make([]BrandTaxonomy, 0, len(slugs))
	for _, s := range slugs {
		out = append(out, &wpBrandTaxonomy{slug: s, wp: wp})
	}
	return out
}

func (b *wpBrandTaxonomy) Slug() string { return b.slug }

func (b *wpBrandTaxonomy) List() ([]cache.BrandRef, error) {
	terms, err := b.wp.TermListAll(b.slug)
	if err != nil {
		return nil, err
	}
	out := make([]cache.BrandRef, 0, len(terms))
	for _, t := range terms {
		out = append(out, cache.BrandRef{ID: t.ID, Name: t.Name})
	}
	return out, nil
}

// Create returns the id of the new term, or of the existing one with that name.
func (b *wpBrandTaxonomy) Create(name string) (int, error) {
	_, id, err := b.wp.TermAdd(b.slug, name)
	if id > 0 {
		return id, nil
	}
	return 0, err
}

func (b *wpBrandTaxonomy) Assign(productID, brandID int) error {
	r, err := b.wp.AssignTerms(productID, b.slug, []int{brandID})
	if err != nil {
		return err
	}
	if !r.OK() {
		return errors.New(r.Detail())
	}
	return nil
}

// BrandLoader lists brands from the first taxonomy that has any.
func BrandLoader(adapters []BrandTaxonomy) func() ([]cache.BrandRef, error) {
	return func() ([]cache.BrandRef, error) {
		logger := logging.GetLogger()
		var lastErr error
		for _, a := range adapters {
			list, err := a.List()
			if err != nil {
				logger.Debugf("brand taxonomy %s: %v", a.Slug(), err)
				lastErr = err
				continue
			}
			if len(list) > 0 {
				return list, nil
			}
		}
		if lastErr != nil && len(adapters) > 0 {
			logger.Warnf("no brand taxonomy answered: %v", lastErr)
		}
		return []cache.BrandRef{}, nil
	}
}
