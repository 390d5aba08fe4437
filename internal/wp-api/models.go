package wp_api

type Term struct {
	ID     int    `json:"id,omitempty"`
	Name   string `json:"name"`
	Slug   string `json:"slug,omitempty"`
	Parent int    `json:"parent,omitempty"`
	Count  int    `json:"count,omitempty"`
}

type MediaJson struct {
	Id     int    `json:"id"`
	Date   string `json:"date"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
	Type   string `json:"type"`
	Link   string `json:"link"`
	Title  struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	AltText      string `json:"alt_text"`
	MediaType    string `json:"media_type"`
	MimeType     string `json:"mime_type"`
	MediaDetails struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		File   string `json:"file"`
	} `json:"media_details"`
	Post      *int   `json:"post"`
	SourceUrl string `json:"source_url"`
}
