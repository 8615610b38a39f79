package models

// Listing is a car-for-sale record returned by a search. It is never
// persisted by the client.
type Listing struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Price       string `json:"price"`
	Source      string `json:"source"`
	ImageURL    string `json:"image_url,omitempty"`
	Year        string `json:"year,omitempty"`
	Mileage     string `json:"mileage,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// Source names as they appear in Listing.Source and in search summaries.
const (
	SourceCraigslist = "Craigslist"
	SourceCarsCom    = "Cars.com"
	SourceOfferUp    = "OfferUp"
	SourceAutoTrader = "AutoTrader"
	SourceFacebook   = "Facebook Marketplace"
)

// FilterAll selects every listing regardless of source.
const FilterAll = "all"
