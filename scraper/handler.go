package scraper

import (
	"context"
	"net/http"

	"carfinder/config"
	"carfinder/models"
)

// Handler searches one classifieds site.
type Handler interface {
	ID() string
	Name() string
	Search(ctx context.Context, q Query) ([]models.Listing, error)
}

func NewHandler(siteCfg *config.SiteConfig, client *http.Client) Handler {
	switch siteCfg.Handler {
	case "browser":
		return NewBrowserHandler(siteCfg)
	default:
		return NewHTMLHandler(siteCfg, client)
	}
}
