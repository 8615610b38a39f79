package scraper

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"carfinder/config"
	"carfinder/models"

	"github.com/PuerkitoBio/goquery"
)

// DefaultCraigslistArea is searched when a location cannot be mapped.
const DefaultCraigslistArea = "sfbay"

// zipAreas maps five-digit ZIP ranges onto Craigslist areas.
var zipAreas = []struct {
	lo, hi int
	area   string
}{
	{32000, 34999, "miami"},
	{7000, 8999, "newjersey"},
	{10000, 14999, "newyork"},
	{90000, 96999, "losangeles"},
	{75000, 79999, "dallas"},
}

type craigslist struct {
	cfg *config.SiteConfig
}

// CraigslistArea maps a free-form location onto a Craigslist subdomain:
// ZIP codes by range, known city names through names, anything that already
// looks like an area code as is.
func CraigslistArea(location string, names map[string]string) string {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return DefaultCraigslistArea
	}

	compact := strings.NewReplacer(" ", "", "-", "").Replace(loc)
	if len(compact) == 5 && allDigits(compact) {
		zip, _ := strconv.Atoi(compact)
		for _, r := range zipAreas {
			if zip >= r.lo && zip <= r.hi {
				return r.area
			}
		}
		return DefaultCraigslistArea
	}

	if area, ok := names[loc]; ok {
		return area
	}
	if !strings.Contains(loc, " ") && isAlnum(loc) && !allDigits(loc) {
		return loc
	}
	return compact
}

func (c *craigslist) requests(q Query) ([]string, error) {
	endpoint := c.cfg.Endpoints["all"]
	if q.PrivateSellersOnly {
		endpoint = c.cfg.Endpoints["owner"]
	}
	base := expand(endpoint, map[string]string{"location": CraigslistArea(q.Location, c.cfg.Locations)})

	var pages []string
	for _, mk := range q.Makes {
		params := url.Values{}
		params.Set("query", q.Terms(mk))
		params.Set("sort", "rel")
		if q.PriceMin > 0 {
			params.Set("min_price", strconv.Itoa(q.PriceMin))
		}
		if q.PriceMax > 0 {
			params.Set("max_price", strconv.Itoa(q.PriceMax))
		}
		pages = append(pages, withQuery(base, params))
	}
	return pages, nil
}

func (c *craigslist) parse(doc *goquery.Document, base *url.URL) []models.Listing {
	sel := c.cfg.Selectors
	var listings []models.Listing

	for _, link := range uniqueLinks(doc, sel["link"]) {
		href, _ := link.Attr("href")
		container := link.ParentsFiltered("li, div, p").First()

		title := cleanText(link.Find(sel["title"]).First().Text())
		if title == "" {
			title = cleanText(link.Text())
		}
		if len(title) < 3 && container.Length() > 0 {
			title = craigslistTitle(container)
		}
		if title == "" {
			continue
		}

		price := NotAvailable
		if p := findPrice(container.Text()); p != "" {
			price = p
		} else if p := cleanText(container.Find(sel["price"]).First().Text()); p != "" {
			price = CleanPrice(p)
		}

		location := cleanText(container.Find(sel["location"]).First().Text())
		if location == "" {
			if m := parensRe.FindStringSubmatch(container.Text()); m != nil {
				location = cleanText(m[1])
			}
		}
		if location == "" {
			location = NotAvailable
		}

		year := ExtractYear(title)
		if year == "" {
			year = ExtractYear(container.Text())
		}

		image := imageURL(link)
		if image == "" {
			image = imageURL(container)
		}

		listings = append(listings, models.Listing{
			URL:      resolve(base, href),
			Title:    title,
			Price:    price,
			Source:   c.cfg.Name,
			ImageURL: image,
			Year:     year,
			Location: location,
		})
	}
	return listings
}

// craigslistTitle recovers a title when the result link is an image.
func craigslistTitle(container *goquery.Selection) string {
	var title string
	container.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if text := cleanText(a.Text()); len(text) > 5 {
			title = text
			return false
		}
		return true
	})
	if title != "" {
		return title
	}
	title = cleanText(container.Text())
	if len(title) > 100 {
		title = title[:100] + "..."
	}
	return title
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
