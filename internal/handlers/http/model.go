package http

import "WooFeedSync/internal/sync"

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	State string      `json:"state"`
	Last  *ReportJSON `json:"last,omitempty"`
}

type ReportJSON struct {
	ID        string  `json:"id,omitempty"`
	State     string  `json:"state"`
	Rows      int     `json:"rows"`
	Created   int     `json:"created"`
	Updated   int     `json:"updated"`
	Skipped   int     `json:"skipped"`
	Errors    int     `json:"errors"`
	StartedAt string  `json:"started_at"`
	Seconds   float64 `json:"seconds"`
}

func NewReportJSON(r *sync.Report) *ReportJSON {
	return &ReportJSON{
		ID:        r.ID,
		State:     string(r.State),
		Rows:      r.Rows,
		Created:   r.Created,
		Updated:   r.Updated,
		Skipped:   r.Skipped,
		Errors:    r.Errors,
		StartedAt: r.StartedAt.Format("2006-01-02 15:04:05"),
		Seconds:   r.Elapsed.Seconds(),
	}
}

type StatsJSON struct {
	Total   int `json:"total"`
	Synced  int `json:"synced"`
	Errors  int `json:"errors"`
	Pending int `json:"pending"`
}

type RefreshJSON struct {
	Categories int `json:"categories,omitempty"`
	Rules      int `json:"rules,omitempty"`
	Brands     int `json:"brands,omitempty"`
}

type CategoriesJSON struct {
	Created  int `json:"created"`
	Existing int `json:"existing"`
	Errors   int `json:"errors"`
}
