package models

// Product is both the write payload and the read model of wc/v3/products.
// Fields owned by the feed are always sent so that a cleared cell clears
// the remote value. A nil slice is sent as null and left alone by the store.
type Product struct {
	ID                int            `json:"id,omitempty"`
	Name              string         `json:"name,omitempty"`
	Slug              string         `json:"slug,omitempty"`
	Permalink         string         `json:"permalink,omitempty"`
	DateModified      string         `json:"date_modified,omitempty"`
	Type              string         `json:"type,omitempty"`
	Status            string         `json:"status,omitempty"`
	Featured          bool           `json:"featured"`
	CatalogVisibility string         `json:"catalog_visibility,omitempty"`
	Description       string         `json:"description"`
	ShortDescription  string         `json:"short_description"`
	Sku               string         `json:"sku,omitempty"`
	Price             string         `json:"price,omitempty"`
	RegularPrice      string         `json:"regular_price,omitempty"`
	TaxStatus         string         `json:"tax_status,omitempty"`
	ManageStock       bool           `json:"manage_stock"`
	StockStatus       string         `json:"stock_status,omitempty"`
	Weight            string         `json:"weight"`
	Dimensions        *Dimensions    `json:"dimensions"`
	Categories        []Categories   `json:"categories"`
	Tags              []Tag          `json:"tags"`
	Images            []ProductImage `json:"images"`
	Attributes        []Attribute    `json:"attributes"`
	Variations        []int          `json:"variations,omitempty"`
	MetaData          []MetaData     `json:"meta_data"`
	Links             *Links         `json:"_links,omitempty"`
}

type ProductImage struct {
	Id   int    `json:"id,omitempty"`
	Src  string `json:"src,omitempty"`
	Name string `json:"name,omitempty"`
	Alt  string `json:"alt,omitempty"`
}

type Dimensions struct {
	Length string `json:"length"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

type Categories struct {
	Id   int    `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

type Tag struct {
	Id   int    `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Attribute is a custom (non-global) product attribute.
type Attribute struct {
	Name      string   `json:"name"`
	Position  int      `json:"position,omitempty"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
	Options   []string `json:"options"`
}

type MetaData struct {
	Id    int         `json:"id,omitempty"`
	Key   string      `json:"key,omitempty"`
	Value interface{} `json:"value,omitempty"`
}

type Links struct {
	Self []struct {
		Href string `json:"href,omitempty"`
	} `json:"self,omitempty"`
	Collection []struct {
		Href string `json:"href,omitempty"`
	} `json:"collection,omitempty"`
	Up []struct {
		Href string `json:"href,omitempty"`
	} `json:"up,omitempty"`
}
