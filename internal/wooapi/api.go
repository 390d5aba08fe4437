package wooapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"WooFeedSync/internal/config"
	"WooFeedSync/internal/wc-api-go/client"
	"WooFeedSync/internal/wc-api-go/options"
	"WooFeedSync/internal/wooapi/models"
	optionsWoo "WooFeedSync/internal/wooapi/options"
	"WooFeedSync/pkg/logging"
)

const perPage = 100

// SkuStatuses is the lookup order of FindBySku. "any" excludes trash, so
// trash and the remaining states are queried explicitly.
var SkuStatuses = []string{"any", "trash", "draft", "pending", "private", "publish"}

type WOOAPI interface {
	ProductList(opts ...optionsWoo.Option) (*Result, error)
	ProductAdd(p *models.Product) (*Result, error)
	ProductUpdate(ID int, p *models.Product) (*Result, error)
	FindBySku(sku string) (*models.Product, error)
	Upsert(p *models.Product, knownID int, sku string) (*UpsertResult, error)

	VariationList(productID int, opts ...optionsWoo.Option) (*Result, error)
	VariationListAll(productID int) ([]models.Variation, error)
	VariationBatch(productID int, b *models.VariationBatch) (*Result, error)
	ReplaceVariants(productID int, creates []*models.Variation) (int, error)

	ProductCategoryList(opts ...optionsWoo.Option) ([]*models.ProductCategory, error)
	ProductCategoryListAll() ([]*models.ProductCategory, error)
	ProductCategoryAdd(c *models.ProductCategory) (*models.ProductCategory, int, error)
}

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionError  Action = "error"
)

// UpsertResult carries the confirmed product for create/update, or Detail for error.
type UpsertResult struct {
	Action  Action
	Product *models.Product
	Detail  string
}

// Options tune variant replacement.
type Options struct {
	VariantBatch      int
	VariantBatchDelay time.Duration
}

type wooapi struct {
	api        client.Client
	batchSize  int
	batchDelay time.Duration
}

func NewAPI(api client.Client, o Options) WOOAPI {
	if o.VariantBatch <= 0 {
		o.VariantBatch = 100
	}
	return &wooapi{
		api:        api,
		batchSize:  o.VariantBatch,
		batchDelay: o.VariantBatchDelay,
	}
}

// NewFromConfig builds the wc/v3 client from the WOOCOMMERCE and SYNC sections.
func NewFromConfig(cfg *config.Config) WOOAPI {
	factory := client.Factory{}
	api := factory.NewClient(options.Basic{
		URL:    cfg.WOOCOMMERCE.URL,
		Key:    cfg.WOOCOMMERCE.Key,
		Secret: cfg.WOOCOMMERCE.Secret,
		Options: options.Advanced{
			WPAPI:       true,
			WPAPIPrefix: "/wp-json/",
			Version:     "wc/v3",
			RPS:         cfg.WOOCOMMERCE.RPS,
		},
	})

	return NewAPI(api, Options{
		VariantBatch:      cfg.SYNC.VariantBatch,
		VariantBatchDelay: time.Duration(cfg.SYNC.VariantBatchDelay) * time.Millisecond,
	})
}

func params(opts ...optionsWoo.Option) url.Values {
	p := url.Values{}
	for _, field := range opts {
		o := new(optionsWoo.OptionStruct)
		field(o)
		p.Set(o.Key, o.Value)
	}
	return p
}

func (w *wooapi) send(method, endpoint string, p url.Values, body interface{}) (*Result, error) {
	logger := logging.GetLogger()
	logger.Debugf("%s %s", method, endpoint)

	var (
		r   *http.Response
		err error
	)
	switch method {
	case http.MethodGet:
		r, err = w.api.Get(endpoint, p)
	case http.MethodPost:
		r, err = w.api.Post(endpoint, p, body)
	case http.MethodPut:
		r, err = w.api.Put(endpoint, body)
	case http.MethodDelete:
		r, err = w.api.Delete(endpoint, p)
	default:
		return nil, errors.Errorf("unsupported method %s", method)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed in send request to Woo Api, endpoint:%s", endpoint)
	}
	return NewResult(r)
}

func (w *wooapi) ProductList(opts ...optionsWoo.Option) (*Result, error) {
	return w.send(http.MethodGet, "products", params(opts...), nil)
}

func (w *wooapi) ProductAdd(p *models.Product) (*Result, error) {
	return w.send(http.MethodPost, "products", nil, p)
}

func (w *wooapi) ProductUpdate(ID int, p *models.Product) (*Result, error) {
	return w.send(http.MethodPut, fmt.Sprintf("products/%d", ID), nil, p)
}

// FindBySku returns the first product carrying sku in any lifecycle state, or nil.
func (w *wooapi) FindBySku(sku string) (*models.Product, error) {
	logger := logging.GetLogger()
	logger.Debugf("FindBySku:>Start %s", sku)
	defer logger.Debug("FindBySku:>End")

	if sku == "" {
		return nil, nil
	}
	for _, status := range SkuStatuses {
		r, err := w.ProductList(optionsWoo.PerPage(1), optionsWoo.Sku(sku), optionsWoo.Status(status))
		if err != nil {
			return nil, errors.Wrapf(err, "failed in FindBySku, sku:%s, status:%s", sku, status)
		}
		if r.StatusCode != http.StatusOK {
			continue
		}
		var products []models.Product
		if err := r.Decode(&products); err != nil {
			continue
		}
		if len(products) > 0 && products[0].ID > 0 {
			return &products[0], nil
		}
	}
	return nil, nil
}

func confirmed(r *Result, codes ...int) *models.Product {
	if !lo.Contains(codes, r.StatusCode) {
		return nil
	}
	var p models.Product
	if err := r.Decode(&p); err != nil || p.ID == 0 {
		return nil
	}
	return &p
}

// Upsert creates or updates the product keyed by sku. The only retry is the
// re-search after a create rejected for a duplicate SKU.
func (w *wooapi) Upsert(p *models.Product, knownID int, sku string) (*UpsertResult, error) {
	logger := logging.GetLogger()
	logger.Debugf("Upsert:>Start sku:%s knownID:%d", sku, knownID)
	defer logger.Debug("Upsert:>End")

	update := func(ID int) (*UpsertResult, error) {
		r, err := w.ProductUpdate(ID, p)
		if err != nil {
			return nil, err
		}
		if product := confirmed(r, http.StatusOK); product != nil {
			return &UpsertResult{Action: ActionUpdate, Product: product}, nil
		}
		logger.Warnf("update of #%d not confirmed: %s", ID, r.Detail())
		return nil, nil
	}

	if knownID > 0 {
		if res, err := update(knownID); err != nil || res != nil {
			return res, err
		}
	}

	found, err := w.FindBySku(sku)
	if err != nil {
		return nil, err
	}
	if found != nil {
		if res, err := update(found.ID); err != nil || res != nil {
			return res, err
		}
	}

	r, err := w.ProductAdd(p)
	if err != nil {
		return nil, err
	}
	if product := confirmed(r, http.StatusOK, http.StatusCreated); product != nil {
		return &UpsertResult{Action: ActionCreate, Product: product}, nil
	}

	if r.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(r.Body), "sku") {
		logger.Infof("create of sku %s rejected as duplicate, searching again", sku)
		retry, err := w.FindBySku(sku)
		if err != nil {
			return nil, err
		}
		if retry != nil {
			if res, err := update(retry.ID); err != nil || res != nil {
				return res, err
			}
		}
	}

	return &UpsertResult{Action: ActionError, Detail: r.Detail()}, nil
}

func (w *wooapi) VariationList(productID int, opts ...optionsWoo.Option) (*Result, error) {
	return w.send(http.MethodGet, fmt.Sprintf("products/%d/variations", productID), params(opts...), nil)
}

func (w *wooapi) VariationListAll(productID int) ([]models.Variation, error) {
	var all []models.Variation
	for page := 1; ; page++ {
		r, err := w.VariationList(productID, optionsWoo.PerPage(perPage), optionsWoo.Page(page))
		if err != nil {
			return nil, errors.Wrapf(err, "failed in VariationList, product:%d, page:%d", productID, page)
		}
		if r.StatusCode != http.StatusOK {
			return all, errors.Errorf("failed in VariationList, product:%d: %s", productID, r.Detail())
		}
		var chunk []models.Variation
		if err := r.Decode(&chunk); err != nil {
			return all, err
		}
		all = append(all, chunk...)
		if len(chunk) < perPage {
			return all, nil
		}
	}
}

func (w *wooapi) VariationBatch(productID int, b *models.VariationBatch) (*Result, error) {
	return w.send(http.MethodPost, fmt.Sprintf("products/%d/variations/batch", productID), nil, b)
}

// ReplaceVariants deletes every existing variation of the product and creates
// the given ones in batches. Delete failures are logged and ignored. The
// returned count only includes variations the remote confirmed with an id.
func (w *wooapi) ReplaceVariants(productID int, creates []*models.Variation) (int, error) {
	logger := logging.GetLogger().GetLoggerWithField("product", productID)
	logger.Debug("ReplaceVariants:>Start")
	defer logger.Debug("ReplaceVariants:>End")

	existing, err := w.VariationListAll(productID)
	if err != nil {
		logger.Warnf("failed to list variations: %v", err)
	}
	ids := lo.FilterMap(existing, func(v models.Variation, _ int) (int, bool) {
		return v.ID, v.ID > 0
	})
	for _, chunk := range lo.Chunk(ids, w.batchSize) {
		r, err := w.VariationBatch(productID, &models.VariationBatch{Delete: chunk})
		if err != nil {
			logger.Warnf("failed to delete variations: %v", err)
		} else if !r.OK() {
			logger.Warnf("failed to delete variations: %s", r.Detail())
		}
	}

	created := 0
	for i, chunk := range lo.Chunk(creates, w.batchSize) {
		if i > 0 && w.batchDelay > 0 {
			time.Sleep(w.batchDelay)
		}
		r, err := w.VariationBatch(productID, &models.VariationBatch{Create: chunk})
		if err != nil {
			logger.Warnf("variation batch %d failed: %v", i+1, err)
			continue
		}
		var resp models.VariationBatchResponse
		if err := r.Decode(&resp); err != nil {
			logger.Warnf("variation batch %d not confirmed: %s", i+1, r.Detail())
			continue
		}
		created += lo.CountBy(resp.Create, func(v models.Variation) bool { return v.ID > 0 })
	}
	return created, nil
}

func (w *wooapi) ProductCategoryList(opts ...optionsWoo.Option) ([]*models.ProductCategory, error) {
	r, err := w.send(http.MethodGet, "products/categories", params(opts...), nil)
	if err != nil {
		return nil, err
	}
	if r.StatusCode != http.StatusOK {
		if e := r.Err(); e != nil {
			return nil, e
		}
		return nil, errors.New(r.Detail())
	}
	var productsCategory []*models.ProductCategory
	if err := r.Decode(&productsCategory); err != nil {
		return nil, err
	}
	return productsCategory, nil
}

func (w *wooapi) ProductCategoryListAll() ([]*models.ProductCategory, error) {
	logger := logging.GetLogger()
	logger.Debug("ProductCategoryListAll:>Start")
	defer logger.Debug("ProductCategoryListAll:>End")

	var productsCategory []*models.ProductCategory
	for i := 1; ; i++ {
		productsCategoryTemp, err := w.ProductCategoryList(optionsWoo.PerPage(perPage), optionsWoo.Page(i))
		if err != nil {
			return nil, errors.Wrapf(err, "failed in ProductCategoryList, PerPage:%d, Page:%d", perPage, i)
		}
		productsCategory = append(productsCategory, productsCategoryTemp...)
		logger.Debugf("Page load:%d", i)
		if len(productsCategoryTemp) < perPage {
			break
		}
	}
	return productsCategory, nil
}

// ProductCategoryAdd creates a category. When the term already exists under
// the same parent the returned int is the existing term id.
func (w *wooapi) ProductCategoryAdd(c *models.ProductCategory) (*models.ProductCategory, int, error) {
	logger := logging.GetLogger()
	logger.Debugf("ProductCategoryAdd:>Start %s (parent %d)", c.Name, c.Parent)
	defer logger.Debug("ProductCategoryAdd:>End")

	if c.Name == "" {
		return nil, 0, errors.New("category name is empty")
	}

	r, err := w.send(http.MethodPost, "products/categories", nil, c)
	if err != nil {
		return nil, 0, err
	}
	if !r.OK() {
		e := r.Err()
		if e == nil {
			return nil, 0, errors.New(r.Detail())
		}
		if e.Code == models.CodeTermExists {
			return nil, e.Data.ResourceId, e
		}
		return nil, 0, e
	}

	var productCategory models.ProductCategory
	if err := r.Decode(&productCategory); err != nil {
		return nil, 0, err
	}
	return &productCategory, productCategory.ID, nil
}
