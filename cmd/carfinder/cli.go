package main

import (
	"context"
	"io"

	"carfinder/leads"
	"carfinder/ui"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Store   leads.Store
	Session *ui.Session
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log at LOG_LEVEL instead of warnings only"`

	Search SearchCmd `cmd:"" help:"Search the configured sites for listings"`
	Notes  NotesCmd  `cmd:"" help:"Manage saved notes and lead status"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Make         string `short:"m" help:"Comma-separated makes, e.g. Honda,Toyota"`
	Model        string `help:"Model to search for"`
	YearMin      int    `name:"year-min" help:"Oldest model year"`
	YearMax      int    `name:"year-max" help:"Newest model year"`
	PriceMin     int    `name:"price-min" help:"Minimum price in dollars"`
	PriceMax     int    `name:"price-max" help:"Maximum price in dollars"`
	Location     string `short:"l" help:"City, Craigslist area or ZIP code"`
	MaxResults   int    `name:"max-results" default:"20" help:"Listings kept per source"`
	NoCraigslist bool   `name:"no-craigslist" help:"Skip Craigslist"`
	NoCarsCom    bool   `name:"no-cars-com" help:"Skip Cars.com"`
	NoOfferUp    bool   `name:"no-offerup" help:"Skip OfferUp"`
	AutoTrader   bool   `name:"autotrader" help:"Include AutoTrader"`
	Facebook     bool   `help:"Include Facebook Marketplace"`
	Private      bool   `help:"Private sellers only"`
	Source       string `short:"s" default:"all" help:"Only show listings from this source"`
	Interactive  bool   `short:"i" help:"Browse the results interactively"`
}

// NotesCmd groups the notes subcommands.
type NotesCmd struct {
	List   NotesListCmd   `cmd:"" default:"1" help:"List saved notes"`
	Save   NotesSaveCmd   `cmd:"" help:"Save a note for a listing URL"`
	Status NotesStatusCmd `cmd:"" help:"Set the status of a saved listing"`
	Cycle  NotesCycleCmd  `cmd:"" help:"Advance a note to the next review status"`
	Delete NotesDeleteCmd `cmd:"" help:"Delete the note for a listing URL"`
}

// NotesListCmd is the "notes list" subcommand.
type NotesListCmd struct{}

// NotesSaveCmd is the "notes save" subcommand.
type NotesSaveCmd struct {
	URL    string  `arg:"" help:"Listing URL"`
	Notes  *string `short:"n" help:"Note text; kept as stored when omitted"`
	Phone  *string `short:"p" help:"Seller phone number; kept as stored when omitted"`
	Title  string  `help:"Listing title"`
	Price  string  `help:"Listing price"`
	Source string  `help:"Listing source"`
}

// NotesStatusCmd is the "notes status" subcommand.
type NotesStatusCmd struct {
	URL    string `arg:"" help:"Listing URL"`
	Status string `arg:"" help:"New status, e.g. Pending"`
}

// NotesCycleCmd is the "notes cycle" subcommand.
type NotesCycleCmd struct {
	URL string `arg:"" help:"Listing URL"`
}

// NotesDeleteCmd is the "notes delete" subcommand.
type NotesDeleteCmd struct {
	URL string `arg:"" help:"Listing URL"`
}
