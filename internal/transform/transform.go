package transform

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"WooFeedSync/internal/feed"
	"WooFeedSync/internal/images"
	"WooFeedSync/internal/taxonomy"
	"WooFeedSync/internal/wooapi/models"
)

const (
	TypeSimple   = "simple"
	TypeVariable = "variable"

	maxAttributes = 3
)

// Skip reasons, checked in this order.
const (
	SkipNoSKU      = "no SKU"
	SkipOutOfStock = "out of stock"
	SkipNoPrice    = "no price"
)

// MetaFields are the provenance fields copied from "meta:<prefix><field>"
// columns into "<prefix><field>" meta data. brand and last_sync are filled in.
var MetaFields = []string{
	"asin",
	"parent_asin",
	"brand",
	"upc",
	"url",
	"prime",
	"has_variants",
	"variants_count",
	"variants_json",
	"last_sync",
	"parser",
}

// Row is a read-only view of one feed row.
type Row interface {
	Get(col string) (string, bool)
}

type Options struct {
	// MetaPrefix is prepended to meta keys, e.g. "_feed_".
	MetaPrefix string
	Now        time.Time
}

// Skip means the row produces no remote write.
type Skip struct {
	Reason string
}

// Entry is a row normalized for the catalog. Payload categories are empty
// and images nil until resolved, since both need remote calls.
type Entry struct {
	SKU      string
	Variable bool
	KnownID  int
	Brand    string
	Images   []string
	Category taxonomy.Query
	Payload  *models.Product

	Variants []VariantRecord
	// VariantsErr is set when the variants column could not be parsed.
	VariantsErr error
}

// MetaColumn is the feed column holding meta field f.
func MetaColumn(prefix, f string) string {
	return feed.MetaPrefix + prefix + f
}

// Transform maps a row to an Entry, or to a Skip.
func Transform(row Row, o Options) (*Entry, *Skip) {
	v := func(col string) string {
		s, _ := row.Get(col)
		return strings.TrimSpace(s)
	}
	meta := func(f string) string { return v(MetaColumn(o.MetaPrefix, f)) }

	sku := v(feed.ColSKU)
	if sku == "" {
		return nil, &Skip{Reason: SkipNoSKU}
	}
	if stock := strings.ToLower(v(feed.ColInStock)); stock == "0" || stock == "false" {
		return nil, &Skip{Reason: SkipOutOfStock}
	}

	productType := strings.ToLower(v(feed.ColType))
	if productType == "" {
		productType = TypeSimple
	}
	variable := productType == TypeVariable

	price := Money(v(feed.ColRegularPrice))
	if price == "" && !variable {
		return nil, &Skip{Reason: SkipNoPrice}
	}

	brand := lo.Ternary(meta("brand") != "", meta("brand"), v(feed.ColTags))

	e := &Entry{
		SKU:      sku,
		Variable: variable,
		Brand:    brand,
		Images:   images.SplitURLs(v(feed.ColImages)),
		Category: taxonomy.Query{
			Override:    v(feed.ColCategories),
			Name:        v(feed.ColName),
			Brand:       brand,
			Description: lo.Ternary(v(feed.ColShortDescription) != "", v(feed.ColShortDescription), v(feed.ColDescription)),
		},
	}
	if id, ok := intValue(v(feed.ColID)); ok && id > 0 {
		e.KnownID = id
	}

	p := &models.Product{
		Sku:               sku,
		Name:              v(feed.ColName),
		Type:              productType,
		Status:            lo.Ternary(v(feed.ColPublished) == "1", "publish", "draft"),
		Featured:          v(feed.ColFeatured) == "1",
		CatalogVisibility: lo.Ternary(v(feed.ColVisibility) != "", v(feed.ColVisibility), "visible"),
		Description:       v(feed.ColDescription),
		ShortDescription:  v(feed.ColShortDescription),
		TaxStatus:         lo.Ternary(v(feed.ColTaxStatus) != "", v(feed.ColTaxStatus), "taxable"),
		ManageStock:       false,
		StockStatus:       "instock",
		Weight:            v(feed.ColWeight),
		Dimensions:        &models.Dimensions{Length: v(feed.ColLength), Width: v(feed.ColWidth), Height: v(feed.ColHeight)},
		Categories:        []models.Categories{},
		Tags:              []models.Tag{},
		Attributes:        attributes(v, variable),
		MetaData:          []models.MetaData{},
	}
	if !variable {
		p.RegularPrice = price
	}
	if brand != "" {
		p.Tags = []models.Tag{{Name: brand}}
	}

	for _, f := range MetaFields {
		value := meta(f)
		switch f {
		case "brand":
			value = brand
		case "last_sync":
			value = o.Now.Format(feed.Timestamp)
		}
		if value != "" {
			p.MetaData = append(p.MetaData, models.MetaData{Key: o.MetaPrefix + f, Value: value})
		}
	}
	e.Payload = p

	if variable {
		e.Variants, e.VariantsErr = ParseVariants(meta("variants_json"))
	}
	return e, nil
}

// attributes reads the three "Attribute N" slots. On variable rows every
// attribute defines variations.
func attributes(v func(string) string, variable bool) []models.Attribute {
	out := []models.Attribute{}
	for n := 1; n <= maxAttributes; n++ {
		nameCol, valuesCol, visibleCol := feed.AttributeCols(n)
		name, values := v(nameCol), v(valuesCol)
		if name == "" || values == "" {
			continue
		}
		options := lo.FilterMap(strings.Split(values, "|"), func(o string, _ int) (string, bool) {
			o = strings.TrimSpace(o)
			return o, o != ""
		})
		if len(options) == 0 {
			continue
		}
		out = append(out, models.Attribute{
			Name:      name,
			Options:   options,
			Visible:   v(visibleCol) != "0",
			Variation: variable,
		})
	}
	return out
}
