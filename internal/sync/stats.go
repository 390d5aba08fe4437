package sync

import "WooFeedSync/internal/feed"

// Stats counts feed rows that carry a SKU by their last sync status.
type Stats struct {
	Total   int
	Synced  int
	Errors  int
	Pending int
}

func SheetStats(t *feed.Table) Stats {
	var st Stats
	for _, rec := range t.Records() {
		if rec.Value(feed.ColSKU) == "" {
			continue
		}
		st.Total++
		switch rec.Value(feed.ColSyncStatus) {
		case StatusOK:
			st.Synced++
		case StatusError:
			st.Errors++
		default:
			st.Pending++
		}
	}
	return st
}
