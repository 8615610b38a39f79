package ui

import (
	"fmt"
	"sort"
	"strings"

	"carfinder/leads"
	"carfinder/models"

	"github.com/charmbracelet/lipgloss"
)

const notAvailable = "N/A"

// SummaryBadges returns one "<source>: <n>" label per source, largest count
// first and ties by name, followed by "Total: <n>".
func SummaryBadges(summary map[string]int, total int) []string {
	sources := make([]string, 0, len(summary))
	for src := range summary {
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool {
		if summary[sources[i]] != summary[sources[j]] {
			return summary[sources[i]] > summary[sources[j]]
		}
		return sources[i] < sources[j]
	})

	badges := make([]string, 0, len(sources)+1)
	for _, src := range sources {
		badges = append(badges, fmt.Sprintf("%s: %d", src, summary[src]))
	}
	return append(badges, fmt.Sprintf("Total: %d", total))
}

func RenderSummary(summary map[string]int, total int) string {
	badges := SummaryBadges(summary, total)
	styled := make([]string, len(badges))
	for i, b := range badges {
		if i == len(badges)-1 {
			styled[i] = TotalBadge.Render(b)
		} else {
			styled[i] = Badge.Render(b)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, styled...)
}

// RenderFilters shows the source filter bar with the active filter
// highlighted.
func RenderFilters(sources []string, active string) string {
	tabs := make([]string, 0, len(sources)+1)
	for _, src := range append([]string{models.FilterAll}, sources...) {
		label := src
		if src == models.FilterAll {
			label = "All"
		}
		if src == active {
			tabs = append(tabs, FilterActive.Render("["+label+"]"))
		} else {
			tabs = append(tabs, FilterInactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// Cards renders one card per listing. A listing that already has a lead
// shows its status.
func Cards(list []models.Listing, notes []models.Lead, selected int) []string {
	cards := make([]string, len(list))
	for i, l := range list {
		cards[i] = ListingCard(l, leads.Find(notes, l.URL), i == selected)
	}
	return cards
}

func ListingCard(l models.Listing, lead *models.Lead, selected bool) string {
	var b strings.Builder
	b.WriteString(Title.Render(orDefault(l.Title, "Untitled")))
	b.WriteString("\n")
	b.WriteString(Price.Render(orDefault(l.Price, notAvailable)))
	b.WriteString("  ")
	b.WriteString(Muted.Render(l.Source))

	var details []string
	for _, d := range []string{l.Year, l.Mileage, l.Location} {
		if d != "" && d != notAvailable {
			details = append(details, d)
		}
	}
	if len(details) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(details, " · "))
	}
	if lead != nil {
		b.WriteString("\n")
		b.WriteString(StatusStyle(lead.Status).Render(string(lead.Status)))
		if lead.Notes != "" {
			b.WriteString("  ")
			b.WriteString(Muted.Render(truncate(lead.Notes, 60)))
		}
	}
	b.WriteString("\n")
	b.WriteString(Muted.Render(l.URL))

	style := CardBorder
	if selected {
		style = CardSelected
	}
	return style.Render(b.String())
}

// RenderListings stacks the cards of list, or a placeholder when empty.
func RenderListings(list []models.Listing, notes []models.Lead, selected int) string {
	if len(list) == 0 {
		return Muted.Render("No listings found.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, Cards(list, notes, selected)...)
}

func LeadCard(l models.Lead) string {
	var b strings.Builder
	b.WriteString(Title.Render(orDefault(l.Title, l.URL)))
	b.WriteString("\n")
	if l.Price != "" {
		b.WriteString(Price.Render(l.Price))
		b.WriteString("  ")
	}
	b.WriteString(Muted.Render(l.Source))
	b.WriteString("\n")
	b.WriteString("Status: ")
	b.WriteString(StatusStyle(l.Status).Render(string(l.Status)))
	if l.Phone != "" {
		b.WriteString("  Phone: " + l.Phone)
	}
	if l.Notes != "" {
		b.WriteString("\n")
		b.WriteString(l.Notes)
	}
	if l.FollowUpDate != nil {
		b.WriteString("\n")
		b.WriteString(Muted.Render("Follow up " + l.FollowUpDate.Format(models.FollowUpLayout)))
	}
	b.WriteString("\n")
	b.WriteString(Muted.Render(fmt.Sprintf("#%d  %s", l.ID, l.URL)))
	return LeadCardBorder.Render(b.String())
}

func RenderLeads(notes []models.Lead) string {
	if len(notes) == 0 {
		return Muted.Render("No notes saved yet.")
	}
	cards := make([]string, len(notes))
	for i, n := range notes {
		cards[i] = LeadCard(n)
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
