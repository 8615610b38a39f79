package models

import "time"

// Lead is a user annotation tied to a Listing through its URL.
type Lead struct {
	ID       int64  `json:"id" db:"id"`
	URL      string `json:"url" db:"url"`
	Title    string `json:"title" db:"title"`
	Price    string `json:"price" db:"price"`
	Source   string `json:"source" db:"source"`
	ImageURL string `json:"image_url" db:"image_url"`
	Notes    string `json:"notes" db:"notes"`
	Phone    string `json:"phone,omitempty" db:"phone"`
	Status   Status `json:"status" db:"status"`

	// CRM fields, only tracked by the server stores
	SellerName   string     `json:"seller_name,omitempty" db:"seller_name"`
	SellerEmail  string     `json:"seller_email,omitempty" db:"seller_email"`
	VIN          string     `json:"vin,omitempty" db:"vin"`
	MyOffer      *float64   `json:"my_offer,omitempty" db:"my_offer"`
	FollowUpDate *time.Time `json:"follow_up_date,omitempty" db:"follow_up_date"`
	ContactedAt  *time.Time `json:"contacted_at,omitempty" db:"contacted_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// LeadInput carries the fields of an upsert. Nil pointers keep the value
// already stored for that URL.
type LeadInput struct {
	URL      string  `json:"url"`
	Title    string  `json:"title,omitempty"`
	Price    string  `json:"price,omitempty"`
	Source   string  `json:"source,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Status   *Status `json:"status,omitempty"`

	SellerName   *string    `json:"seller_name,omitempty"`
	SellerEmail  *string    `json:"seller_email,omitempty"`
	VIN          *string    `json:"vin,omitempty"`
	MyOffer      *float64   `json:"my_offer,omitempty"`
	FollowUpDate *time.Time `json:"follow_up_date,omitempty"`
}

// InputFromListing snapshots the display fields of a listing.
func InputFromListing(l Listing) LeadInput {
	return LeadInput{
		URL:      l.URL,
		Title:    l.Title,
		Price:    l.Price,
		Source:   l.Source,
		ImageURL: l.ImageURL,
	}
}

// Validate checks the fields every store requires.
func (in *LeadInput) Validate() error {
	if in.URL == "" {
		return Errorf(ErrValidation, "URL is required")
	}
	if in.Status != nil && !in.Status.Valid() {
		return Errorf(ErrValidation, "unknown status %q", *in.Status)
	}
	return nil
}

// Apply merges the input into l. Snapshot fields are only overwritten when
// the input carries a value, so a status-only update does not blank the
// title of an existing lead.
func (in *LeadInput) Apply(l *Lead) {
	l.URL = in.URL
	if in.Title != "" {
		l.Title = in.Title
	}
	if in.Price != "" {
		l.Price = in.Price
	}
	if in.Source != "" {
		l.Source = in.Source
	}
	if in.ImageURL != "" {
		l.ImageURL = in.ImageURL
	}
	if in.Notes != nil {
		l.Notes = *in.Notes
	}
	if in.Phone != nil {
		l.Phone = *in.Phone
	}
	if in.Status != nil {
		l.Status = *in.Status
	}
	if in.SellerName != nil {
		l.SellerName = *in.SellerName
	}
	if in.SellerEmail != nil {
		l.SellerEmail = *in.SellerEmail
	}
	if in.VIN != nil {
		l.VIN = *in.VIN
	}
	if in.MyOffer != nil {
		l.MyOffer = in.MyOffer
	}
	if in.FollowUpDate != nil {
		l.FollowUpDate = in.FollowUpDate
	}
}

// LeadStats summarizes a lead collection for the CRM dashboard.
type LeadStats struct {
	ByStatus          map[Status]int `json:"by_status"`
	Total             int            `json:"total"`
	UpcomingFollowUps int            `json:"upcoming_follow_ups"`
	TotalOffersValue  float64        `json:"total_offers_value"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// StatusPtr returns a pointer to s.
func StatusPtr(s Status) *Status {
	return &s
}

// Closed reports whether a lead with status s needs no further work.
func (s Status) Closed() bool {
	switch s {
	case StatusCaptured, StatusSuccessful, StatusRejected:
		return true
	}
	return false
}

// LeadFilter narrows and orders a CRM listing.
type LeadFilter struct {
	Status Status
	SortBy string
	Order  string
}

// LeadSortColumns are the columns a CRM listing may be ordered by.
var LeadSortColumns = []string{"created_at", "updated_at", "follow_up_date", "my_offer", "status", "title"}

// Normalize replaces unknown sort columns and directions with the defaults.
func (f LeadFilter) Normalize() LeadFilter {
	known := false
	for _, c := range LeadSortColumns {
		if f.SortBy == c {
			known = true
			break
		}
	}
	if !known {
		f.SortBy = "created_at"
	}
	if f.Order != "asc" {
		f.Order = "desc"
	}
	return f
}

// Summarize computes dashboard stats. Follow-ups dated today or later count
// as upcoming; offers count only on leads that are still open.
func Summarize(leads []Lead, now time.Time) LeadStats {
	stats := LeadStats{ByStatus: map[Status]int{}, Total: len(leads)}
	today := Day(now)
	for _, l := range leads {
		stats.ByStatus[l.Status]++
		if l.FollowUpDate != nil && !Day(*l.FollowUpDate).Before(today) {
			stats.UpcomingFollowUps++
		}
		if l.MyOffer != nil && !l.Status.Closed() {
			stats.TotalOffersValue += *l.MyOffer
		}
	}
	return stats
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
