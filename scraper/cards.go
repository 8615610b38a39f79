package scraper

import (
	"net/url"
	"regexp"
	"strconv"

	"carfinder/config"
	"carfinder/models"

	"github.com/PuerkitoBio/goquery"
)

var zipRe = regexp.MustCompile(`\b\d{5}\b`)

// parseCards extracts listings from dealer-style result pages where each
// vehicle is a card element. When no card matches, the parents of detail
// links are used instead.
func parseCards(doc *goquery.Document, base *url.URL, sel map[string]string, source string) []models.Listing {
	cards := doc.Find(sel["result"])
	if cards.Length() == 0 {
		cards = doc.Find(sel["link"]).Parent()
	}

	var listings []models.Listing
	seen := make(map[string]bool)
	cards.Each(func(_ int, card *goquery.Selection) {
		link := card.Find(sel["link"]).First()
		if link.Length() == 0 && card.Is("a") {
			link = card
		}
		href, _ := link.Attr("href")
		listingURL := resolve(base, href)
		if listingURL == "" || seen[listingURL] {
			return
		}

		title := cleanText(card.Find(sel["title"]).First().Text())
		if title == "" {
			title = cleanText(link.Text())
		}
		if title == "" {
			return
		}
		seen[listingURL] = true

		price := NotAvailable
		if p := cleanText(card.Find(sel["price"]).First().Text()); p != "" {
			price = CleanPrice(p)
		} else if p := findPrice(card.Text()); p != "" {
			price = p
		}

		location := cleanText(card.Find(sel["location"]).First().Text())
		if location == "" {
			location = NotAvailable
		}

		mileage := cleanText(card.Find(sel["mileage"]).First().Text())
		if mileage == "" {
			mileage = findMileage(card.Text())
		}

		listings = append(listings, models.Listing{
			URL:      listingURL,
			Title:    title,
			Price:    price,
			Source:   source,
			ImageURL: imageURL(card),
			Year:     ExtractYear(title),
			Mileage:  mileage,
			Location: location,
		})
	})
	return listings
}

type carsCom struct {
	cfg *config.SiteConfig
}

func (c *carsCom) requests(q Query) ([]string, error) {
	pageSize := q.MaxResults
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}

	var pages []string
	for _, mk := range q.Makes {
		params := url.Values{}
		params.Set("makes[]", mk)
		params.Set("sort", "relevance")
		params.Set("page_size", strconv.Itoa(pageSize))
		params.Set("seller_type", "all")
		if q.PrivateSellersOnly {
			params.Set("seller_type", "private")
		}
		if q.Model != "" {
			params.Set("models[]", mk+"|"+q.Model)
		}
		if q.PriceMin > 0 {
			params.Set("list_price_min", strconv.Itoa(q.PriceMin))
		}
		if q.PriceMax > 0 {
			params.Set("list_price_max", strconv.Itoa(q.PriceMax))
		}
		if q.YearMin > 0 {
			params.Set("year_min", strconv.Itoa(q.YearMin))
		}
		if q.YearMax > 0 {
			params.Set("year_max", strconv.Itoa(q.YearMax))
		}
		if zip := zipRe.FindString(q.Location); zip != "" {
			params.Set("zip", zip)
		}
		pages = append(pages, withQuery(c.cfg.Endpoints["search"], params))
	}
	return pages, nil
}

func (c *carsCom) parse(doc *goquery.Document, base *url.URL) []models.Listing {
	return parseCards(doc, base, c.cfg.Selectors, c.cfg.Name)
}

type autoTrader struct {
	cfg *config.SiteConfig
}

func (a *autoTrader) requests(q Query) ([]string, error) {
	var pages []string
	for _, mk := range q.Makes {
		params := url.Values{}
		params.Set("makeCode", mk)
		if q.Model != "" {
			params.Set("modelCode", q.Model)
		}
		if q.YearMin > 0 {
			params.Set("startYear", strconv.Itoa(q.YearMin))
		}
		if q.YearMax > 0 {
			params.Set("endYear", strconv.Itoa(q.YearMax))
		}
		if q.PriceMin > 0 {
			params.Set("minPrice", strconv.Itoa(q.PriceMin))
		}
		if q.PriceMax > 0 {
			params.Set("maxPrice", strconv.Itoa(q.PriceMax))
		}
		if q.PrivateSellersOnly {
			params.Set("sellerTypes", "p")
		}
		if zip := zipRe.FindString(q.Location); zip != "" {
			params.Set("zip", zip)
		}
		pages = append(pages, withQuery(a.cfg.Endpoints["search"], params))
	}
	return pages, nil
}

func (a *autoTrader) parse(doc *goquery.Document, base *url.URL) []models.Listing {
	return parseCards(doc, base, a.cfg.Selectors, a.cfg.Name)
}
