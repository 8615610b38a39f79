package models

// Result is the envelope returned by mutating endpoints. Upserts also echo
// the stored lead.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Note    *Lead  `json:"note,omitempty"`
}

// NotesResponse is the body of GET /api/notes.
type NotesResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Notes   []Lead `json:"notes"`
}

// LeadsResponse is the body of GET /api/leads.
type LeadsResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Leads   []Lead `json:"leads"`
}

// StatsResponse is the body of GET /api/leads/stats.
type StatsResponse struct {
	Success bool       `json:"success"`
	Error   string     `json:"error,omitempty"`
	Stats   *LeadStats `json:"stats,omitempty"`
}

// DeleteNoteRequest is the body of DELETE /api/notes.
type DeleteNoteRequest struct {
	URL string `json:"url"`
}

// StatusRequest is the body of PATCH /api/leads/{id}/status.
type StatusRequest struct {
	Status Status `json:"status"`
}

// FollowUpRequest is the body of PATCH /api/leads/{id}/follow-up. An empty
// date clears the follow-up.
type FollowUpRequest struct {
	FollowUpDate string `json:"followUpDate"`
}

// FollowUpLayout is the date format of follow-up dates.
const FollowUpLayout = "2006-01-02"
