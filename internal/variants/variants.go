package variants

import (
	"fmt"

	"github.com/samber/lo"

	"WooFeedSync/internal/transform"
	"WooFeedSync/internal/wooapi/models"
)

// Replacer is the catalog call that swaps a product's whole variation set.
type Replacer interface {
	ReplaceVariants(productID int, creates []*models.Variation) (int, error)
}

// SKU is the generated variation SKU: parent SKU, "_V", 1-based position padded to 3 digits.
func SKU(parent string, position int) string {
	return fmt.Sprintf("%s_V%03d", parent, position)
}

// Build turns records into variation payloads. Only attributes flagged as
// variation-defining are copied from the record specs. Variation stock is
// never managed.
func Build(parentSKU string, records []transform.VariantRecord, attrs []models.Attribute, metaPrefix string) []*models.Variation {
	defining := lo.Filter(attrs, func(a models.Attribute, _ int) bool { return a.Variation })

	out := make([]*models.Variation, 0, len(records))
	for i, r := range records {
		v := &models.Variation{
			Sku:          SKU(parentSKU, i+1),
			RegularPrice: lo.Ternary(transform.Money(r.PriceRaw) != "", transform.Money(r.PriceRaw), "0"),
			ManageStock:  false,
			StockStatus:  "instock",
			Attributes:   []models.VariationAttribute{},
			MetaData:     []models.MetaData{{Key: metaPrefix + "variant_id", Value: r.ExternalID}},
		}
		for _, a := range defining {
			if val := r.Specs[a.Name]; val != "" {
				v.Attributes = append(v.Attributes, models.VariationAttribute{Name: a.Name, Option: val})
			}
		}
		out = append(out, v)
	}
	return out
}

// Sync replaces the product's variations with records and returns how many
// the catalog confirmed. No records means nothing is touched.
func Sync(api Replacer, productID int, parentSKU string, records []transform.VariantRecord, attrs []models.Attribute, metaPrefix string) (int, error) {
	if productID == 0 || len(records) == 0 {
		return 0, nil
	}
	return api.ReplaceVariants(productID, Build(parentSKU, records, attrs, metaPrefix))
}
