package taxonomy

import (
	"strings"

	"github.com/pkg/errors"

	"WooFeedSync/internal/cache"
	"WooFeedSync/internal/rules"
	"WooFeedSync/internal/wooapi/models"
	"WooFeedSync/pkg/logging"
)

// Categories is the part of the WooCommerce API category resolution needs.
type Categories interface {
	ProductCategoryListAll() ([]*models.ProductCategory, error)
	ProductCategoryAdd(c *models.ProductCategory) (*models.ProductCategory, int, error)
}

// CategoryLoader feeds the category cache from a full paginated listing.
func CategoryLoader(woo Categories) func() ([]cache.CategoryRef, error) {
	return func() ([]cache.CategoryRef, error) {
		list, err := woo.ProductCategoryListAll()
		if err != nil {
			return nil, err
		}
		out := make([]cache.CategoryRef, 0, len(list))
		for _, c := range list {
			out = append(out, cache.CategoryRef{ID: c.ID, Name: c.Name, Parent: c.Parent})
		}
		return out, nil
	}
}

// Category is a resolved category term.
type Category struct {
	ID   int
	Name string
}

// Query is the part of a row category resolution looks at.
type Query struct {
	Override    string
	Name        string
	Brand       string
	Description string
}

// Text is the lowercased searchable text rules are scored against.
func (q Query) Text() string {
	return strings.ToLower(q.Name + " " + q.Brand + " " + q.Description)
}

type Resolver struct {
	cache           cache.CacheTaxonomy
	woo             Categories
	brands          []BrandTaxonomy
	defaultCategory string
}

func NewResolver(c cache.CacheTaxonomy, woo Categories, brands []BrandTaxonomy, defaultCategory string) *Resolver {
	return &Resolver{cache: c, woo: woo, brands: brands, defaultCategory: defaultCategory}
}

func (r *Resolver) Cache() cache.CacheTaxonomy { return r.cache }

// ResolveCategory picks the row's category: an existing category named by the
// row, then the best scoring rule, then the default category. Nil means none
// could be resolved or created.
func (r *Resolver) ResolveCategory(q Query) (*Category, error) {
	logger := logging.GetLogger()

	if q.Override != "" {
		c, err := r.cache.GetCategoryByName(q.Override)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return &Category{ID: c.ID, Name: c.Name}, nil
		}
	}

	list, err := r.cache.GetRules()
	if err != nil {
		return nil, err
	}
	if rule, score := rules.Best(list, q.Text()); rule != nil {
		logger.Debugf("rule %q (line %d) scored %d", rule.TermName, rule.Line, score)
		if rule.ExplicitID > 0 {
			return &Category{ID: rule.ExplicitID, Name: rule.TermName}, nil
		}
		parent, err := r.parentCategory(rule.ParentName)
		if err != nil {
			logger.Warnf("parent category %q: %v", rule.ParentName, err)
			parent = 0
		}
		id, err := r.EnsureCategory(rule.TermName, parent)
		if err == nil && id > 0 {
			return &Category{ID: id, Name: rule.TermName}, nil
		}
		logger.Warnf("category %q: %v", rule.TermName, err)
	}

	if r.defaultCategory == "" {
		return nil, nil
	}
	id, err := r.EnsureCategory(r.defaultCategory, 0)
	if err != nil || id == 0 {
		logger.Warnf("default category %q: %v", r.defaultCategory, err)
		return nil, nil
	}
	return &Category{ID: id, Name: r.defaultCategory}, nil
}

// parentCategory finds a rule's parent by name at any level, and creates it
// at the top level only when no category has that name.
func (r *Resolver) parentCategory(name string) (int, error) {
	if strings.TrimSpace(name) == "" {
		return 0, nil
	}
	c, err := r.cache.GetCategoryByName(name)
	if err != nil {
		return 0, err
	}
	if c != nil {
		return c.ID, nil
	}
	return r.EnsureCategory(name, 0)
}

// EnsureCategory returns the id of (name, parent), creating the term if absent.
// A successful create invalidates the category cache.
func (r *Resolver) EnsureCategory(name string, parent int) (int, error) {
	id, _, err := r.FindOrCreateCategory(name, parent)
	return id, err
}

// FindOrCreateCategory is EnsureCategory that also tells whether this call
// created the term. A term the store reports as already existing is found,
// not created.
func (r *Resolver) FindOrCreateCategory(name string, parent int) (int, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false, errors.New("category name is empty")
	}
	c, err := r.cache.GetCategory(name, parent)
	if err != nil {
		return 0, false, err
	}
	if c != nil {
		return c.ID, false, nil
	}

	created, id, err := r.woo.ProductCategoryAdd(&models.ProductCategory{Name: name, Parent: parent})
	if created != nil || id > 0 {
		r.cache.InvalidateCategories()
		logging.GetLogger().Infof("category %q (parent %d) -> #%d", name, parent, id)
		return id, created != nil, nil
	}
	if err == nil {
		err = errors.New("no id returned")
	}
	return 0, false, errors.Wrapf(err, "failed in ProductCategoryAdd(%s)", name)
}

// EnsureBrand returns the brand term id for name, creating it through the
// first brand taxonomy that accepts it. 0 when name is empty or nothing worked.
func (r *Resolver) EnsureBrand(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, nil
	}
	b, err := r.cache.GetBrand(name)
	if err != nil {
		return 0, err
	}
	if b != nil {
		return b.ID, nil
	}

	var lastErr error
	for _, a := range r.brands {
		id, err := a.Create(name)
		if err == nil && id > 0 {
			r.cache.InvalidateBrands()
			return id, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no brand taxonomy configured")
	}
	return 0, errors.Wrapf(lastErr, "brand %q", name)
}

// AssignBrand attaches the brand to a product through the first taxonomy that accepts it.
func (r *Resolver) AssignBrand(productID, brandID int) error {
	if productID == 0 || brandID == 0 {
		return nil
	}
	var lastErr error
	for _, a := range r.brands {
		if err := a.Assign(productID, brandID); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
