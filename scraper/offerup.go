package scraper

import (
	"net/url"
	"strconv"
	"strings"

	"carfinder/config"
	"carfinder/models"

	"github.com/PuerkitoBio/goquery"
)

// offerUpRadius is the search radius in miles.
const offerUpRadius = "25"

type offerUp struct {
	cfg *config.SiteConfig
}

// OfferUp takes one free-text query covering every make.
func (o *offerUp) requests(q Query) ([]string, error) {
	parts := append([]string{}, q.Makes...)
	if q.Model != "" {
		parts = append(parts, q.Model)
	}
	if q.YearMin > 0 {
		parts = append(parts, strconv.Itoa(q.YearMin))
	}
	terms := strings.TrimSpace(strings.Join(parts, " "))

	endpoint := o.cfg.Endpoints["explore"]
	if terms != "" {
		endpoint = expand(o.cfg.Endpoints["search"], map[string]string{"query": url.PathEscape(terms)})
	}

	params := url.Values{}
	params.Set("distance", offerUpRadius)
	params.Set("delivery_param", "p")
	if zip := zipRe.FindString(q.Location); zip != "" {
		params.Set("zip", zip)
	}
	return []string{withQuery(endpoint, params)}, nil
}

func (o *offerUp) parse(doc *goquery.Document, base *url.URL) []models.Listing {
	var listings []models.Listing
	for _, link := range uniqueLinks(doc, o.cfg.Selectors["link"]) {
		href, _ := link.Attr("href")

		title := cleanText(link.Find("span").First().Text())
		if len(title) < 3 {
			title = cleanText(link.Text())
		}
		if len(title) < 5 {
			continue
		}

		container := link.ParentsFiltered("div, li, article").First()
		text := container.Text()
		if container.Length() == 0 {
			text = link.Text()
		}

		price := findPrice(text)
		if price == "" {
			price = NotAvailable
		}
		location := NotAvailable
		if m := cityRe.FindStringSubmatch(text); m != nil {
			location = m[1]
		}

		listings = append(listings, models.Listing{
			URL:      resolve(base, href),
			Title:    title,
			Price:    price,
			Source:   o.cfg.Name,
			ImageURL: imageURL(link),
			Year:     ExtractYear(title),
			Mileage:  findMileage(text),
			Location: location,
		})
	}
	return listings
}
