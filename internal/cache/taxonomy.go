package cache

import (
	"strings"
	"sync"

	"github.com/pkg/errors"

	"WooFeedSync/internal/rules"
	"WooFeedSync/pkg/logging"
)

type CategoryRef struct {
	ID     int
	Name   string
	Parent int
}

type BrandRef struct {
	ID   int
	Name string
}

// Loaders fetch the full remote state. Rules may be nil.
type Loaders struct {
	Categories func() ([]CategoryRef, error)
	Brands     func() ([]BrandRef, error)
	Rules      func() ([]rules.Rule, error)
}

type CacheTaxonomy interface {
	Warm() error
	RefreshCategories() error
	RefreshBrands() error
	RefreshRules() error

	InvalidateCategories()
	InvalidateBrands()
	InvalidateRules()

	GetCategories() ([]CategoryRef, error)
	GetCategory(name string, parent int) (*CategoryRef, error)
	GetCategoryByName(name string) (*CategoryRef, error)
	GetBrands() ([]BrandRef, error)
	GetBrand(name string) (*BrandRef, error)
	GetRules() ([]rules.Rule, error)
}

type categoryKey struct {
	name   string
	parent int
}

// Taxonomy is the session cache of categories, brands and rules. Entries
// load on first use; Invalidate* drops them so the next read refetches.
type Taxonomy struct {
	mu      sync.Mutex
	loaders Loaders

	categories      []CategoryRef
	categoriesByKey map[categoryKey]*CategoryRef
	brands          []BrandRef
	brandsByName    map[string]*BrandRef
	rules           []rules.Rule
	rulesLoaded     bool
}

func NewTaxonomy(l Loaders) *Taxonomy {
	return &Taxonomy{loaders: l}
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Warm loads everything once, as done at the start of a run.
func (t *Taxonomy) Warm() error {
	if _, err := t.GetCategories(); err != nil {
		return err
	}
	if _, err := t.GetBrands(); err != nil {
		logging.GetLogger().Warnf("brands not loaded: %v", err)
	}
	_, err := t.GetRules()
	return err
}

func (t *Taxonomy) RefreshCategories() error {
	t.InvalidateCategories()
	_, err := t.GetCategories()
	return err
}

func (t *Taxonomy) RefreshBrands() error {
	t.InvalidateBrands()
	_, err := t.GetBrands()
	return err
}

func (t *Taxonomy) RefreshRules() error {
	t.InvalidateRules()
	_, err := t.GetRules()
	return err
}

func (t *Taxonomy) InvalidateCategories() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.categories, t.categoriesByKey = nil, nil
}

func (t *Taxonomy) InvalidateBrands() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.brands, t.brandsByName = nil, nil
}

func (t *Taxonomy) InvalidateRules() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules, t.rulesLoaded = nil, false
}

func (t *Taxonomy) loadCategories() error {
	if t.categoriesByKey != nil {
		return nil
	}
	logger := logging.GetLogger()
	logger.Debug("Start RefreshCategories")
	defer logger.Debug("End RefreshCategories")

	if t.loaders.Categories == nil {
		return errors.New("no category loader")
	}
	list, err := t.loaders.Categories()
	if err != nil {
		return errors.Wrap(err, "failed in load categories")
	}
	t.categories = list
	t.categoriesByKey = make(map[categoryKey]*CategoryRef, len(list))
	for i := range list {
		k := categoryKey{key(list[i].Name), list[i].Parent}
		if _, dup := t.categoriesByKey[k]; !dup {
			t.categoriesByKey[k] = &t.categories[i]
		}
	}
	logger.Infof("%d categories loaded", len(list))
	return nil
}

func (t *Taxonomy) GetCategories() ([]CategoryRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.loadCategories(); err != nil {
		return nil, err
	}
	return append([]CategoryRef(nil), t.categories...), nil
}

// GetCategory looks up (name, parent) case-insensitively. Nil when absent.
func (t *Taxonomy) GetCategory(name string, parent int) (*CategoryRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.loadCategories(); err != nil {
		return nil, err
	}
	if c, ok := t.categoriesByKey[categoryKey{key(name), parent}]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

// GetCategoryByName returns the first category named name under any parent.
func (t *Taxonomy) GetCategoryByName(name string) (*CategoryRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.loadCategories(); err != nil {
		return nil, err
	}
	k := key(name)
	for _, c := range t.categories {
		if key(c.Name) == k {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (t *Taxonomy) loadBrands() error {
	if t.brandsByName != nil {
		return nil
	}
	if t.loaders.Brands == nil {
		t.brandsByName = map[string]*BrandRef{}
		return nil
	}
	list, err := t.loaders.Brands()
	if err != nil {
		return errors.Wrap(err, "failed in load brands")
	}
	t.brands = list
	t.brandsByName = make(map[string]*BrandRef, len(list))
	for i := range list {
		if _, dup := t.brandsByName[key(list[i].Name)]; !dup {
			t.brandsByName[key(list[i].Name)] = &t.brands[i]
		}
	}
	logging.GetLogger().Infof("%d brands loaded", len(list))
	return nil
}

func (t *Taxonomy) GetBrands() ([]BrandRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.loadBrands(); err != nil {
		return nil, err
	}
	return append([]BrandRef(nil), t.brands...), nil
}

func (t *Taxonomy) GetBrand(name string) (*BrandRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.loadBrands(); err != nil {
		return nil, err
	}
	if b, ok := t.brandsByName[key(name)]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

// GetRules never fails: a rule table that cannot be read counts as empty.
func (t *Taxonomy) GetRules() ([]rules.Rule, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.rulesLoaded {
		t.rulesLoaded = true
		if t.loaders.Rules != nil {
			list, err := t.loaders.Rules()
			if err != nil {
				logging.GetLogger().Warnf("rule table not loaded, using no rules: %v", err)
				list = nil
			}
			t.rules = list
		}
		logging.GetLogger().Infof("%d category rules loaded", len(t.rules))
	}
	return t.rules, nil
}
