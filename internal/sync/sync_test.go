package sync

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WooFeedSync/internal/cache"
	"WooFeedSync/internal/feed"
	"WooFeedSync/internal/images"
	"WooFeedSync/internal/rules"
	"WooFeedSync/internal/taxonomy"
	"WooFeedSync/internal/wc-api-go/client"
	"WooFeedSync/internal/wc-api-go/options"
	"WooFeedSync/internal/wc-api-go/test"
	"WooFeedSync/internal/wooapi"
	"WooFeedSync/internal/wooapi/models"
	wp_api "WooFeedSync/internal/wp-api"
)

type stopAfter struct {
	rows    int
	calls   int
	cleared bool
}

func (s *stopAfter) Clear() error {
	s.cleared = true
	return nil
}

func (s *stopAfter) IsSet() (bool, error) {
	s.calls++
	return s.rows > 0 && s.calls > s.rows, nil
}

func newService(t *testing.T, rs []rules.Rule, stop StopFlag) (*Service, *test.Server) {
	t.Helper()
	return newServiceWithRules(t, func() ([]rules.Rule, error) { return rs, nil }, stop)
}

func newServiceWithRules(t *testing.T, load func() ([]rules.Rule, error), stop StopFlag) (*Service, *test.Server) {
	t.Helper()
	srv := test.NewServer()
	t.Cleanup(srv.Close)

	woo := wooapi.NewAPI(client.Factory{}.NewClient(options.Basic{
		URL: srv.URL, Options: options.Advanced{WPAPI: true, Version: "wc/v3"},
	}), wooapi.Options{VariantBatch: 2})
	wp := wp_api.NewAPI(client.Factory{}.NewClient(options.Basic{
		URL: srv.URL, Options: options.Advanced{WPAPI: true, Version: "wp/v2"},
	}))
	brands := taxonomy.BrandTaxonomies(wp)
	tx := cache.NewTaxonomy(cache.Loaders{
		Categories: taxonomy.CategoryLoader(woo),
		Brands:     taxonomy.BrandLoader(brands),
		Rules:      load,
	})
	if stop == nil {
		stop = &stopAfter{}
	}
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	return NewService(Deps{
		Woo:      woo,
		Resolver: taxonomy.NewResolver(tx, woo, brands, "Otros"),
		Stop:     stop,
	}, Options{
		MetaPrefix: "_feed_",
		Now:        func() time.Time { return now },
	}), srv
}

var headers = []string{"SKU", "Name", "Type", "Regular price", "In stock?", "Tags", "Attribute 1 name", "Attribute 1 value(s)", "meta:_feed_variants_json"}

func sheetOf(rows ...[]string) *feed.Sheet {
	return feed.MemorySheet(feed.NewTable("feed", headers, rows))
}

func TestRun_Idempotent(t *testing.T) {
	s, srv := newService(t, []rules.Rule{{TermName: "Phones", Keywords: []string{"phone"}}}, nil)
	sheet := sheetOf(
		[]string{"A1", "Smart phone", "simple", "$10.00", "1", "Acme"},
		[]string{"A2", "Lamp", "", "5", "", ""},
		[]string{"V1", "Shirt", "variable", "", "1", "", "Color", "Red|Blue",
			`[{"id":"r","price":"9","specs":{"Color":"Red"}},{"id":"b","price":"9","specs":{"Color":"Blue"}}]`},
	)

	r, err := s.Run(context.Background(), sheet, Selection{})
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, r.State)
	assert.Equal(t, 3, r.Created)
	assert.Equal(t, 0, r.Errors)
	assert.Equal(t, StateCompleted, s.State())

	ids := make([]string, sheet.Len())
	for i, rec := range sheet.Records() {
		assert.Equal(t, StatusOK, rec.Value(feed.ColSyncStatus), rec.Value(feed.ColSyncLog))
		ids[i] = rec.Value(feed.ColID)
		assert.NotEmpty(t, ids[i])
	}
	assert.Equal(t, "Phones", sheet.Record(0).Value(feed.ColCategories))
	assert.Equal(t, "Otros", sheet.Record(1).Value(feed.ColCategories))
	assert.Equal(t, "2024-05-06 07:08:09", sheet.Record(0).Value(feed.ColSyncTimestamp))
	assert.Equal(t, "create #"+ids[2]+" (2v)", sheet.Record(2).Value(feed.ColSyncLog))

	pid, _ := strconv.Atoi(ids[0])
	require.Len(t, srv.Brands("product_brand"), 1)
	assert.Equal(t, []int{srv.Brands("product_brand")[0].ID}, srv.Assigned(pid, "product_brand"))

	r, err = s.Run(context.Background(), sheet, Selection{})
	require.NoError(t, err)
	assert.Equal(t, 0, r.Created)
	assert.Equal(t, 3, r.Updated)
	assert.Len(t, srv.Products(), 3)
	assert.Len(t, srv.Categories(), 2)
	assert.Len(t, srv.Brands("product_brand"), 1)
	for i, rec := range sheet.Records() {
		assert.Equal(t, ids[i], rec.Value(feed.ColID))
	}
	vid, _ := strconv.Atoi(ids[2])
	assert.Len(t, srv.Variations(vid), 2)

	// A cell cleared in the feed is cleared in the store on the next run.
	s.Images = images.NewImporter(wp_api.NewAPI(client.Factory{}.NewClient(options.Basic{
		URL: srv.URL, Options: options.Advanced{WPAPI: true, Version: "wp/v2"},
	})), 5, nil)
	first := sheet.Record(0)
	first.Set(feed.ColDescription, "Long text")
	first.Set(feed.ColImages, srv.AddImage("a1.jpg", []byte("jpeg")))
	_, err = s.Run(context.Background(), sheet, Selection{})
	require.NoError(t, err)
	p, ok := srv.Product(pid)
	require.True(t, ok)
	assert.Equal(t, "Long text", p.Description)
	require.Len(t, p.Images, 1)

	first.Set(feed.ColDescription, "")
	first.Set(feed.ColImages, "")
	_, err = s.Run(context.Background(), sheet, Selection{})
	require.NoError(t, err)
	p, _ = srv.Product(pid)
	assert.Equal(t, "Smart phone", p.Name)
	assert.Empty(t, p.Description)
	assert.Empty(t, p.Images)
	assert.Equal(t, []models.Tag{{Name: "Acme"}}, p.Tags)
	assert.Equal(t, "10.00", p.RegularPrice)
}

func TestRun_RereadsRulesEveryRun(t *testing.T) {
	table := []rules.Rule{{TermName: "Lamps", Keywords: []string{"lamp"}}}
	s, srv := newServiceWithRules(t, func() ([]rules.Rule, error) { return table, nil }, nil)
	sheet := sheetOf([]string{"L1", "Desk lamp", "simple", "12", "1", ""})

	_, err := s.Run(context.Background(), sheet, Selection{})
	require.NoError(t, err)
	assert.Equal(t, "Lamps", sheet.Record(0).Value(feed.ColCategories))

	table = []rules.Rule{{TermName: "Lighting", Keywords: []string{"lamp"}}}

	_, err = s.Run(context.Background(), sheet, Selection{})
	require.NoError(t, err)
	assert.Equal(t, "Lighting", sheet.Record(0).Value(feed.ColCategories))

	names := map[string]bool{}
	for _, c := range srv.Categories() {
		names[c.Name] = true
	}
	assert.True(t, names["Lamps"])
	assert.True(t, names["Lighting"])
}

func TestRun_StaleIDKeepsSkuUnique(t *testing.T) {
	s, srv := newService(t, nil, nil)
	existing := srv.AddProduct(models.Product{Sku: "A1", Name: "Old"})
	sheet := feed.MemorySheet(feed.NewTable("feed", []string{"SKU", "Name", "Regular price", "ID"}, [][]string{
		{"A1", "New", "3", "9999"},
	}))

	r, err := s.Run(context.Background(), sheet, Selection{})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Updated)
	assert.Len(t, srv.Products(), 1)
	assert.Equal(t, strconv.Itoa(existing), sheet.Record(0).Value(feed.ColID))
	p, _ := srv.Product(existing)
	assert.Equal(t, "New", p.Name)
}

func TestRun_SkipsWithoutRemoteWrites(t *testing.T) {
	s, srv := newService(t, nil, nil)
	sheet := sheetOf(
		[]string{"A1", "Phone", "simple", "10", "0"},
		[]string{"", "No sku", "simple", "10", "1"},
		[]string{"A3", "Free", "simple", "0", "1"},
	)

	r, err := s.Run(context.Background(), sheet, Selection{})
	require.NoError(t, err)
	assert.Equal(t, 3, r.Skipped)
	assert.Zero(t, srv.Writes())

	assert.Equal(t, StatusSkip, sheet.Record(0).Value(feed.ColSyncStatus))
	assert.Equal(t, "out of stock", sheet.Record(0).Value(feed.ColSyncLog))
	assert.Empty(t, sheet.Record(1).Value(feed.ColSyncStatus))
	assert.Equal(t, "no price", sheet.Record(2).Value(feed.ColSyncLog))
}

func TestRun_CancelAfterThree(t *testing.T) {
	stop := &stopAfter{rows: 3}
	s, srv := newService(t, nil, stop)
	var rows [][]string
	for n := 1; n <= 10; n++ {
		rows = append(rows, []string{"S" + strconv.Itoa(n), "Item", "simple", "1", "1"})
	}
	sheet := sheetOf(rows...)

	r, err := s.Run(context.Background(), sheet, Selection{})
	require.NoError(t, err)
	assert.True(t, stop.cleared)
	assert.Equal(t, StateCancelled, r.State)
	assert.Equal(t, 3, r.Rows)
	assert.Len(t, srv.Products(), 3)
	for i, rec := range sheet.Records() {
		if i < 3 {
			assert.Equal(t, StatusOK, rec.Value(feed.ColSyncStatus))
		} else {
			assert.Empty(t, rec.Value(feed.ColSyncStatus), rec.Line())
		}
	}
	assert.Equal(t, StateCancelled, s.LastReport().State)
}

func TestRun_ContextCancelled(t *testing.T) {
	s, srv := newService(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := s.Run(ctx, sheetOf([]string{"A1", "Item", "simple", "1", "1"}), Selection{})
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, r.State)
	assert.Empty(t, srv.Products())
}

func TestRun_ErrorIsRecordedAndRunContinues(t *testing.T) {
	s, srv := newService(t, nil, nil)
	srv.FailStatus = map[string]int{"POST /wc/v3/products": 500}
	sheet := sheetOf(
		[]string{"A1", "Item", "simple", "1", "1"},
		[]string{"A2", "Item", "simple", "1", "1"},
	)

	r, err := s.Run(context.Background(), sheet, Selection{})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Errors)
	assert.Equal(t, 2, r.Rows)
	assert.Equal(t, StatusError, sheet.Record(1).Value(feed.ColSyncStatus))
	assert.True(t, strings.HasPrefix(sheet.Record(0).Value(feed.ColSyncLog), "HTTP 500"))
}

func TestRun_Selection(t *testing.T) {
	s, srv := newService(t, nil, nil)
	sheet := sheetOf(
		[]string{"A1", "Item", "simple", "1", "1"},
		[]string{"A2", "Item", "simple", "1", "1"},
		[]string{"A3", "Item", "simple", "1", "1"},
	)

	r, err := s.Run(context.Background(), sheet, Selection{From: 3, To: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Rows)
	require.Len(t, srv.Products(), 1)
	assert.Equal(t, "A2", srv.Products()[0].Sku)
	assert.Equal(t, StatusOK, sheet.Record(1).Value(feed.ColSyncStatus))
}

func TestRun_AlreadyRunning(t *testing.T) {
	s, _ := newService(t, nil, nil)
	_, err := s.begin()
	require.NoError(t, err)
	_, err = s.Run(context.Background(), sheetOf(), Selection{})
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestSheetStats(t *testing.T) {
	tbl := feed.NewTable("feed", []string{"SKU", "sync_status"}, [][]string{
		{"A", "ok"}, {"B", "error"}, {"C", "skip"}, {"D", ""}, {"", "ok"},
	})
	assert.Equal(t, Stats{Total: 4, Synced: 1, Errors: 1, Pending: 2}, SheetStats(tbl))
}

func TestCreateAllCategories(t *testing.T) {
	pause := categoryPause
	categoryPause = 0
	t.Cleanup(func() { categoryPause = pause })
	s, srv := newService(t, nil, nil)
	existing := srv.AddCategory("Home", 0)

	sheet := feed.MemorySheet(feed.NewTable("CATEGORÍAS", []string{"term_name", "parent_name", "woo_cat_id"}, [][]string{
		{"Phones", "Electronics", ""},
		{"Electronics", "", ""},
		{"Home", "", ""},
		{"Garden", "", "77"},
		{"Tools", "Nope", ""},
	}))

	r, err := s.CreateAllCategories(context.Background(), sheet)
	require.NoError(t, err)
	assert.Equal(t, &CategoryReport{Created: 2, Existing: 2, Errors: 1}, r)

	electronics := sheet.Record(1).Value(feed.ColWooCatID)
	assert.NotEmpty(t, electronics)
	assert.Equal(t, strconv.Itoa(existing), sheet.Record(2).Value(feed.ColWooCatID))
	assert.Equal(t, "77", sheet.Record(3).Value(feed.ColWooCatID))
	assert.Empty(t, sheet.Record(4).Value(feed.ColWooCatID))

	var phones models.ProductCategory
	for _, c := range srv.Categories() {
		if c.Name == "Phones" {
			phones = c
		}
	}
	assert.Equal(t, electronics, strconv.Itoa(phones.Parent))
	assert.Equal(t, StateIdle, s.State())
}

func TestCreateAllCategories_TermExistsAndPriorState(t *testing.T) {
	pause := categoryPause
	categoryPause = 0
	t.Cleanup(func() { categoryPause = pause })
	s, srv := newService(t, nil, nil)
	late := srv.AddCategory("Late", 0)

	// the listing lags behind the store and misses "Late"
	woo := wooapi.NewAPI(client.Factory{}.NewClient(options.Basic{
		URL: srv.URL, Options: options.Advanced{WPAPI: true, Version: "wc/v3"},
	}), wooapi.Options{})
	tx := cache.NewTaxonomy(cache.Loaders{
		Categories: func() ([]cache.CategoryRef, error) {
			all, err := taxonomy.CategoryLoader(woo)()
			var seen []cache.CategoryRef
			for _, c := range all {
				if c.ID != late {
					seen = append(seen, c)
				}
			}
			return seen, err
		},
	})
	s.Resolver = taxonomy.NewResolver(tx, woo, nil, "")

	cancelled := &Report{State: StateCancelled, Rows: 4}
	s.end(cancelled)

	sheet := feed.MemorySheet(feed.NewTable("CATEGORÍAS", []string{"term_name", "parent_name"}, [][]string{
		{"Late", ""},
		{"Fresh", ""},
	}))
	r, err := s.CreateAllCategories(context.Background(), sheet)
	require.NoError(t, err)
	assert.Equal(t, &CategoryReport{Created: 1, Existing: 1}, r)
	assert.Equal(t, strconv.Itoa(late), sheet.Record(0).Value(feed.ColWooCatID))
	assert.Len(t, srv.Categories(), 2)

	assert.Equal(t, StateCancelled, s.State())
	assert.Same(t, cancelled, s.LastReport())
}

func TestRefresh(t *testing.T) {
	s, srv := newService(t, []rules.Rule{{TermName: "A", Keywords: []string{"abc"}}}, nil)
	srv.AddCategory("One", 0)
	srv.AddBrand("product_brand", "Acme")

	cats, rs, err := s.RefreshCategories()
	require.NoError(t, err)
	assert.Equal(t, 1, cats)
	assert.Equal(t, 1, rs)

	n, err := s.RefreshBrands()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
