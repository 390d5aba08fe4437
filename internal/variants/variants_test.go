package variants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WooFeedSync/internal/transform"
	"WooFeedSync/internal/wc-api-go/client"
	"WooFeedSync/internal/wc-api-go/options"
	"WooFeedSync/internal/wc-api-go/test"
	"WooFeedSync/internal/wooapi"
	"WooFeedSync/internal/wooapi/models"
)

func records(n int) []transform.VariantRecord {
	out := make([]transform.VariantRecord, n)
	for i := range out {
		out[i] = transform.VariantRecord{ExternalID: string(rune('a' + i)), Specs: map[string]string{"Color": "c", "Size": "s"}}
	}
	return out
}

func TestBuild(t *testing.T) {
	attrs := []models.Attribute{
		{Name: "Color", Options: []string{"c"}, Variation: true},
		{Name: "Size", Options: []string{"s"}, Variation: false},
	}
	recs := []transform.VariantRecord{{ExternalID: "X1", PriceRaw: "$12.00", Specs: map[string]string{"Color": "Red", "Size": "L"}}, {ExternalID: "X2"}}

	vs := Build("P", recs, attrs, "_feed_")
	require.Len(t, vs, 2)
	assert.Equal(t, "P_V001", vs[0].Sku)
	assert.Equal(t, "12.00", vs[0].RegularPrice)
	assert.Equal(t, []models.VariationAttribute{{Name: "Color", Option: "Red"}}, vs[0].Attributes)
	assert.False(t, vs[0].ManageStock)
	assert.Equal(t, "instock", vs[0].StockStatus)
	assert.Equal(t, []models.MetaData{{Key: "_feed_variant_id", Value: "X1"}}, vs[0].MetaData)

	assert.Equal(t, "P_V002", vs[1].Sku)
	assert.Equal(t, "0", vs[1].RegularPrice)
	assert.Empty(t, vs[1].Attributes)
}

func TestSync_RegenerateShrinks(t *testing.T) {
	srv := test.NewServer()
	defer srv.Close()
	api := wooapi.NewAPI(client.Factory{}.NewClient(options.Basic{
		URL: srv.URL, Options: options.Advanced{WPAPI: true, Version: "wc/v3"},
	}), wooapi.Options{VariantBatch: 2})
	id := srv.AddProduct(models.Product{Sku: "P", Type: "variable"})
	attrs := []models.Attribute{{Name: "Color", Options: []string{"c"}, Variation: true}}

	n, err := Sync(api, id, "P", records(5), attrs, "_feed_")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.Len(t, srv.Variations(id), 5)

	n, err = Sync(api, id, "P", records(3), attrs, "_feed_")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	vs := srv.Variations(id)
	require.Len(t, vs, 3)
	assert.Equal(t, []string{"P_V001", "P_V002", "P_V003"}, []string{vs[0].Sku, vs[1].Sku, vs[2].Sku})
}

func TestSync_OnlyConfirmedAreCounted(t *testing.T) {
	srv := test.NewServer()
	defer srv.Close()
	api := wooapi.NewAPI(client.Factory{}.NewClient(options.Basic{
		URL: srv.URL, Options: options.Advanced{WPAPI: true, Version: "wc/v3"},
	}), wooapi.Options{VariantBatch: 2})
	id := srv.AddProduct(models.Product{Sku: "Q", Type: "variable"})
	// another product already owns Q_V002, so that item comes back without id
	srv.AddProduct(models.Product{Sku: "Q_V002"})

	n, err := Sync(api, id, "Q", records(3), nil, "_feed_")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSync_NoRecords(t *testing.T) {
	n, err := Sync(nil, 5, "P", nil, nil, "")
	assert.NoError(t, err)
	assert.Zero(t, n)
}
