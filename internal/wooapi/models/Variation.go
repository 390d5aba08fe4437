package models

type Variation struct {
	ID           int                  `json:"id,omitempty"`
	Sku          string               `json:"sku,omitempty"`
	RegularPrice string               `json:"regular_price,omitempty"`
	ManageStock  bool                 `json:"manage_stock"`
	StockStatus  string               `json:"stock_status,omitempty"`
	Attributes   []VariationAttribute `json:"attributes"`
	MetaData     []MetaData           `json:"meta_data,omitempty"`
	Error        *ErrorWoo            `json:"error,omitempty"`
}

type VariationAttribute struct {
	Name   string `json:"name"`
	Option string `json:"option"`
}

// VariationBatch is the body of products/{id}/variations/batch.
type VariationBatch struct {
	Create []*Variation `json:"create,omitempty"`
	Delete []int        `json:"delete,omitempty"`
}

type VariationBatchResponse struct {
	Create []Variation `json:"create"`
	Delete []Variation `json:"delete"`
}
