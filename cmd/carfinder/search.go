package main

import (
	"fmt"

	"carfinder/models"
	"carfinder/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// Request builds the search form from the flags. Zero numeric flags are
// left out.
func (c *SearchCmd) Request() *models.SearchRequest {
	req := &models.SearchRequest{
		Make:               models.ParseMakes(c.Make),
		Model:              c.Model,
		Location:           c.Location,
		MaxResults:         intFlag(c.MaxResults),
		YearMin:            intFlag(c.YearMin),
		YearMax:            intFlag(c.YearMax),
		PriceMin:           intFlag(c.PriceMin),
		PriceMax:           intFlag(c.PriceMax),
		EnableAutoTrader:   c.AutoTrader,
		EnableFacebook:     c.Facebook,
		PrivateSellersOnly: c.Private,
	}
	if c.NoCraigslist {
		req.EnableCraigslist = boolPtr(false)
	}
	if c.NoCarsCom {
		req.EnableCarsCom = boolPtr(false)
	}
	if c.NoOfferUp {
		req.EnableOfferUp = boolPtr(false)
	}
	return req
}

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	s := deps.Session
	if _, err := s.Search(deps.Ctx, c.Request()); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", models.ErrorMessage(err))
		return err
	}

	if c.Interactive {
		s.Filter(c.Source)
		_, err := tea.NewProgram(ui.NewBrowser(s), tea.WithAltScreen(), tea.WithContext(deps.Ctx)).Run()
		return err
	}

	notes, err := s.Notes(deps.Ctx)
	if err != nil {
		// listings are still worth showing without their notes
		fmt.Fprintf(deps.Stderr, "warning: could not load notes: %s\n", models.ErrorMessage(err))
	}

	summary, total := s.Summary()
	fmt.Fprintln(deps.Stdout, ui.RenderSummary(summary, total))
	fmt.Fprintln(deps.Stdout, ui.RenderListings(s.Filter(c.Source), notes, -1))
	return nil
}

func intFlag(n int) *models.FlexInt {
	if n <= 0 {
		return nil
	}
	return models.IntPtr(n)
}

func boolPtr(b bool) *bool {
	return &b
}
