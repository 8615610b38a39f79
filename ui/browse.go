package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"carfinder/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type view int

const (
	viewListings view = iota
	viewNotes
)

type notesMsg struct {
	notes []models.Lead
	err   error
}

type actionMsg struct {
	message string
	err     error
}

// Browser is an interactive view over a session's last search and its
// leads.
type Browser struct {
	session      *Session
	view         view
	filters      []string
	filterIdx    int
	selected     int
	notes        []models.Lead
	notification string
	alert        string
	width        int
	height       int
}

func NewBrowser(session *Session) Browser {
	filters := append([]string{models.FilterAll}, session.Cache().Sources()...)
	return Browser{session: session, filters: filters}
}

func (b Browser) Init() tea.Cmd {
	return b.loadNotes()
}

func (b Browser) loadNotes() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		notes, err := b.session.Notes(ctx)
		return notesMsg{notes, err}
	}
}

// act runs fn against the session and reloads the notes afterwards.
func (b Browser) act(fn func(ctx context.Context) (string, error)) tea.Cmd {
	return tea.Sequence(func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		msg, err := fn(ctx)
		return actionMsg{msg, err}
	}, b.loadNotes())
}

func (b Browser) current() []models.Listing {
	return b.session.Cache().Current()
}

func (b Browser) selectedURL() string {
	if b.view == viewNotes {
		if b.selected < len(b.notes) {
			return b.notes[b.selected].URL
		}
		return ""
	}
	list := b.current()
	if b.selected < len(list) {
		return list[b.selected].URL
	}
	return ""
}

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height

	case notesMsg:
		if msg.err != nil {
			b.alert = models.ErrorMessage(msg.err)
		} else {
			b.notes = msg.notes
		}

	case actionMsg:
		if msg.err != nil {
			b.alert = models.ErrorMessage(msg.err)
			b.notification = ""
		} else {
			b.notification = msg.message
			b.alert = ""
		}

	case tea.KeyMsg:
		return b.handleKey(msg)
	}
	return b, nil
}

func (b Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(b.current())
	if b.view == viewNotes {
		count = len(b.notes)
	}

	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return b, tea.Quit
	case "n":
		if b.view == viewNotes {
			b.view = viewListings
		} else {
			b.view = viewNotes
		}
		b.selected = 0
	case "tab", "f":
		if b.view == viewListings {
			b.filterIdx = (b.filterIdx + 1) % len(b.filters)
			b.session.Filter(b.filters[b.filterIdx])
			b.selected = 0
		}
	case "up", "k":
		if b.selected > 0 {
			b.selected--
		}
	case "down", "j":
		if b.selected < count-1 {
			b.selected++
		}
	case "1", "2", "3", "4":
		url := b.selectedURL()
		if url == "" || b.view != viewListings {
			return b, nil
		}
		i, _ := strconv.Atoi(key)
		status := models.CardStatuses[i-1]
		return b, b.act(func(ctx context.Context) (string, error) {
			return "Status set to " + string(status), b.session.SetStatus(ctx, url, status)
		})
	case "c":
		url := b.selectedURL()
		if url == "" {
			return b, nil
		}
		return b, b.act(func(ctx context.Context) (string, error) {
			next, err := b.session.Cycle(ctx, url)
			return "Status changed to " + string(next), err
		})
	case "d":
		url := b.selectedURL()
		if url == "" {
			return b, nil
		}
		if b.view == viewNotes && b.selected > 0 && b.selected >= count-1 {
			b.selected--
		}
		return b, b.act(func(ctx context.Context) (string, error) {
			return "Note deleted", b.session.Delete(ctx, url)
		})
	}
	return b, nil
}

func (b Browser) View() string {
	var sections []string

	if b.view == viewNotes {
		sections = append(sections, Title.Render(fmt.Sprintf("Saved notes (%d)", len(b.notes))))
		sections = append(sections, b.window(noteCards(b.notes)))
	} else {
		summary, total := b.session.Summary()
		sections = append(sections, RenderSummary(summary, total))
		sections = append(sections, RenderFilters(b.filters[1:], b.filters[b.filterIdx]))
		list := b.current()
		if len(list) == 0 {
			sections = append(sections, Muted.Render("No listings found."))
		} else {
			sections = append(sections, b.window(Cards(list, b.notes, b.selected)))
		}
	}

	if b.alert != "" {
		sections = append(sections, Alert.Render(b.alert))
	} else if b.notification != "" {
		sections = append(sections, Notification.Render(b.notification))
	}
	sections = append(sections, Muted.Render(helpLine(b.view)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// window keeps the selected card on screen by dropping cards above it.
func (b Browser) window(cards []string) string {
	if len(cards) == 0 {
		return Muted.Render("No notes saved yet.")
	}
	start := b.selected
	if b.height == 0 {
		start = 0
	}
	var out []string
	used := 0
	for i := start; i < len(cards); i++ {
		h := lipgloss.Height(cards[i])
		if b.height > 0 && used+h > b.height-6 && len(out) > 0 {
			break
		}
		out = append(out, cards[i])
		used += h
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

func noteCards(notes []models.Lead) []string {
	cards := make([]string, len(notes))
	for i, n := range notes {
		cards[i] = LeadCard(n)
	}
	return cards
}

func helpLine(v view) string {
	keys := []string{"j/k move", "c cycle status", "d delete", "n listings", "q quit"}
	if v == viewListings {
		statuses := make([]string, len(models.CardStatuses))
		for i, s := range models.CardStatuses {
			statuses[i] = fmt.Sprintf("%d %s", i+1, s)
		}
		keys = []string{"j/k move", "tab filter", strings.Join(statuses, ", "), "c cycle", "d delete", "n notes", "q quit"}
	}
	return strings.Join(keys, " • ")
}
