package main

import (
	"fmt"

	"carfinder/models"
	"carfinder/ui"
)

// Run executes the notes list command.
func (c *NotesListCmd) Run(deps *Dependencies) error {
	notes, err := deps.Session.Notes(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", models.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, ui.RenderLeads(notes))
	return nil
}

// Run executes the notes save command.
func (c *NotesSaveCmd) Run(deps *Dependencies) error {
	in := models.LeadInput{
		URL:    c.URL,
		Title:  c.Title,
		Price:  c.Price,
		Source: c.Source,
		Notes:  c.Notes,
		Phone:  c.Phone,
	}
	lead, err := deps.Store.Upsert(deps.Ctx, in)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", models.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Saved note #%d (%s)\n", lead.ID, lead.Status)
	return nil
}

// Run executes the notes status command.
func (c *NotesStatusCmd) Run(deps *Dependencies) error {
	status, ok := models.ParseStatus(c.Status)
	if !ok {
		err := models.Errorf(models.ErrValidation, "unknown status %q", c.Status)
		fmt.Fprintf(deps.Stderr, "error: %s\n", err.Message)
		return err
	}
	if err := deps.Session.SetStatus(deps.Ctx, c.URL, status); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", models.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Status set to %s\n", status)
	return nil
}

// Run executes the notes cycle command.
func (c *NotesCycleCmd) Run(deps *Dependencies) error {
	next, err := deps.Session.Cycle(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", models.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Status changed to %s\n", next)
	return nil
}

// Run executes the notes delete command.
func (c *NotesDeleteCmd) Run(deps *Dependencies) error {
	if err := deps.Session.Delete(deps.Ctx, c.URL); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", models.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, "Note deleted")
	return nil
}
