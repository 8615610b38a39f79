package scraper

import (
	"strconv"
	"strings"

	"carfinder/models"
)

// Site IDs as they appear in config/sites.
const (
	SiteCraigslist = "craigslist"
	SiteCarsCom    = "cars_com"
	SiteOfferUp    = "offerup"
	SiteAutoTrader = "autotrader"
	SiteFacebook   = "facebook"
)

// sourceOrder fixes the order results are merged in.
var sourceOrder = []string{SiteCraigslist, SiteCarsCom, SiteOfferUp, SiteAutoTrader, SiteFacebook}

// Query is a normalized search. Zero numeric bounds mean unbounded.
type Query struct {
	Makes              []string
	Model              string
	YearMin            int
	YearMax            int
	PriceMin           int
	PriceMax           int
	Location           string
	MaxResults         int
	PrivateSellersOnly bool
	Sites              []string
}

// NewQuery normalizes a search request. Craigslist, Cars.com and OfferUp
// are searched unless switched off; AutoTrader and Facebook only on request.
func NewQuery(req *models.SearchRequest) Query {
	q := Query{
		Makes:              []string(req.Make),
		Model:              strings.TrimSpace(req.Model),
		YearMin:            req.YearMin.Value(),
		YearMax:            req.YearMax.Value(),
		PriceMin:           req.PriceMin.Value(),
		PriceMax:           req.PriceMax.Value(),
		Location:           strings.TrimSpace(req.Location),
		MaxResults:         req.Limit(),
		PrivateSellersOnly: req.PrivateSellersOnly,
	}

	enabled := func(flag *bool) bool { return flag == nil || *flag }
	if enabled(req.EnableCraigslist) {
		q.Sites = append(q.Sites, SiteCraigslist)
	}
	if enabled(req.EnableCarsCom) {
		q.Sites = append(q.Sites, SiteCarsCom)
	}
	if enabled(req.EnableOfferUp) {
		q.Sites = append(q.Sites, SiteOfferUp)
	}
	if req.EnableAutoTrader {
		q.Sites = append(q.Sites, SiteAutoTrader)
	}
	if req.EnableFacebook {
		q.Sites = append(q.Sites, SiteFacebook)
	}
	return q
}

// Wants reports whether site is selected.
func (q Query) Wants(site string) bool {
	for _, s := range q.Sites {
		if s == site {
			return true
		}
	}
	return false
}

// Terms is the free-text query for one make: make, model and minimum year.
func (q Query) Terms(mk string) string {
	parts := []string{mk}
	if q.Model != "" {
		parts = append(parts, q.Model)
	}
	if q.YearMin > 0 {
		parts = append(parts, strconv.Itoa(q.YearMin))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Keep reports whether l passes the year and price bounds. Listings whose
// year or price cannot be read are kept.
func (q Query) Keep(l models.Listing) bool {
	if q.YearMin > 0 || q.YearMax > 0 {
		if year, ok := ParseYear(l.Year); ok {
			if q.YearMin > 0 && year < q.YearMin {
				return false
			}
			if q.YearMax > 0 && year > q.YearMax {
				return false
			}
		}
	}
	if q.PriceMin > 0 || q.PriceMax > 0 {
		if price, ok := ParsePrice(l.Price); ok {
			if q.PriceMin > 0 && price < q.PriceMin {
				return false
			}
			if q.PriceMax > 0 && price > q.PriceMax {
				return false
			}
		}
	}
	return true
}
