package scraper

import (
	"net/url"
	"strconv"
	"strings"

	"carfinder/config"
	"carfinder/models"

	"github.com/PuerkitoBio/goquery"
)

type facebook struct {
	cfg *config.SiteConfig
}

func (f *facebook) requests(q Query) ([]string, error) {
	endpoint := f.cfg.Endpoints["fallback"]
	if area := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(q.Location)), " ", ""); area != "" && !allDigits(area) {
		endpoint = expand(f.cfg.Endpoints["search"], map[string]string{"location": url.PathEscape(area)})
	}

	var pages []string
	for _, mk := range q.Makes {
		params := url.Values{}
		params.Set("query", q.Terms(mk))
		params.Set("category", "vehicles")
		if q.PriceMin > 0 {
			params.Set("minPrice", strconv.Itoa(q.PriceMin))
		}
		if q.PriceMax > 0 {
			params.Set("maxPrice", strconv.Itoa(q.PriceMax))
		}
		pages = append(pages, withQuery(endpoint, params))
	}
	return pages, nil
}

// Marketplace cards are a link wrapping a stack of spans: price, title,
// location and mileage, in that order but without stable class names.
func (f *facebook) parse(doc *goquery.Document, base *url.URL) []models.Listing {
	var listings []models.Listing
	for _, link := range uniqueLinks(doc, f.cfg.Selectors["link"]) {
		href, _ := link.Attr("href")

		var lines []string
		link.Find("span").Each(func(_ int, s *goquery.Selection) {
			if s.Children().Length() > 0 {
				return
			}
			if text := cleanText(s.Text()); text != "" {
				lines = append(lines, text)
			}
		})

		price := NotAvailable
		var title, location, mileage string
		for _, line := range lines {
			switch {
			case price == NotAvailable && priceRe.MatchString(line):
				price = findPrice(line)
			case location == "" && cityRe.MatchString(line):
				location = cityRe.FindString(line)
			case mileage == "" && findMileage(line) != "":
				mileage = findMileage(line)
			case title == "" && len(line) > 5:
				title = line
			}
		}
		if title == "" {
			title, _ = link.Attr("aria-label")
		}
		if title == "" {
			continue
		}
		if location == "" {
			location = NotAvailable
		}

		listings = append(listings, models.Listing{
			URL:      resolve(base, href),
			Title:    title,
			Price:    price,
			Source:   f.cfg.Name,
			ImageURL: imageURL(link),
			Year:     ExtractYear(title),
			Mileage:  mileage,
			Location: location,
		})
	}
	return listings
}
