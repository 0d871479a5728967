package models

// Company represents a tracked company as returned by the discovery source.
// ExternalID is the stable upstream identifier and the natural key; the
// first sighting wins, later conflicting inserts are ignored.
type Company struct {
	Name       string    `json:"name"`
	Ticker     string    `json:"ticker"`
	ExternalID string    `json:"external_id"`
	Articles   []Article `json:"articles"`
}

// Article is a discovered article reference for a company
type Article struct {
	URL string `json:"url"`
}
