package feed

import "strconv"

// Product feed columns.
const (
	ColSKU              = "SKU"
	ColName             = "Name"
	ColType             = "Type"
	ColRegularPrice     = "Regular price"
	ColInStock          = "In stock?"
	ColCategories       = "Categories"
	ColTags             = "Tags"
	ColDescription      = "Description"
	ColShortDescription = "Short description"
	ColImages           = "Images"
	ColPublished        = "Published"
	ColFeatured         = "Is featured?"
	ColVisibility       = "Visibility in catalog"
	ColTaxStatus        = "Tax status"
	ColWeight           = "Weight (kg)"
	ColLength           = "Length (cm)"
	ColWidth            = "Width (cm)"
	ColHeight           = "Height (cm)"
	ColID               = "ID"

	ColSyncStatus    = "sync_status"
	ColSyncLog       = "sync_log"
	ColSyncTimestamp = "sync_timestamp"

	// MetaPrefix marks provenance columns, e.g. "meta:_feed_asin".
	MetaPrefix = "meta:"
)

// Rule table columns.
const (
	ColTermName       = "term_name"
	ColParentName     = "parent_name"
	ColWooCatID       = "woo_cat_id"
	ColRuleKeywords   = "rule_keywords"
	ColAmazonKeywords = "amazon_keywords"
	ColLevel          = "level"
)

// AttributeCols returns the name, value(s) and visible columns of slot n (1-based).
func AttributeCols(n int) (name, values, visible string) {
	p := "Attribute " + strconv.Itoa(n)
	return p + " name", p + " value(s)", p + " visible"
}

// Timestamp is the layout of sync_timestamp.
const Timestamp = "2006-01-02 15:04:05"
