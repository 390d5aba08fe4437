package wp_api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WooFeedSync/internal/wc-api-go/client"
	"WooFeedSync/internal/wc-api-go/options"
	"WooFeedSync/internal/wc-api-go/test"
	"WooFeedSync/internal/wooapi/models"
)

func newTestAPI(t *testing.T) (WPAPI, *test.Server) {
	srv := test.NewServer()
	t.Cleanup(srv.Close)
	c := client.Factory{}.NewClient(options.Basic{
		URL:     srv.URL,
		Key:     "user",
		Secret:  "app pass",
		Options: options.Advanced{WPAPI: true, Version: "wp/v2"},
	})
	return NewAPI(c), srv
}

func TestTermAddAndList(t *testing.T) {
	api, srv := newTestAPI(t)

	term, id, err := api.TermAdd("product_brand", "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme", term.Name)

	_, again, err := api.TermAdd("product_brand", "acme")
	require.Error(t, err)
	assert.Equal(t, id, again)

	terms, err := api.TermListAll("product_brand")
	require.NoError(t, err)
	assert.Len(t, terms, 1)
	assert.Len(t, srv.Brands("product_brand"), 1)
}

func TestTermListAll_UnknownTaxonomy(t *testing.T) {
	api, _ := newTestAPI(t)
	_, err := api.TermListAll("pwb-brand")
	assert.Error(t, err)
}

func TestAssignTerms(t *testing.T) {
	api, srv := newTestAPI(t)
	pid := srv.AddProduct(models.Product{Sku: "S"})
	bid := srv.AddBrand("product_brand", "Acme")

	r, err := api.AssignTerms(pid, "product_brand", []int{bid})
	require.NoError(t, err)
	assert.True(t, r.OK())
	assert.Equal(t, []int{bid}, srv.Assigned(pid, "product_brand"))

	r, err = api.AssignTerms(pid, "pwb-brand", []int{bid})
	require.NoError(t, err)
	assert.False(t, r.OK())
}

func TestMediaUpload(t *testing.T) {
	api, srv := newTestAPI(t)

	m, err := api.MediaUpload([]byte("\xff\xd8\xff\xe0jpeg"), "S_1.jpg")
	require.NoError(t, err)
	assert.NotZero(t, m.Id)
	media := srv.Media()
	require.Len(t, media, 1)
	assert.Equal(t, "S_1.jpg", media[0].Filename)
}
