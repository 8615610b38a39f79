package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Make               MakeList `json:"make"`
	Model              string   `json:"model,omitempty"`
	YearMin            *FlexInt `json:"year_min,omitempty"`
	YearMax            *FlexInt `json:"year_max,omitempty"`
	PriceMin           *FlexInt `json:"price_min,omitempty"`
	PriceMax           *FlexInt `json:"price_max,omitempty"`
	Location           string   `json:"location"`
	MaxResults         *FlexInt `json:"max_results,omitempty"`
	EnableCraigslist   *bool    `json:"enable_craigslist,omitempty"`
	EnableCarsCom      *bool    `json:"enable_cars_com,omitempty"`
	EnableOfferUp      *bool    `json:"enable_offerup,omitempty"`
	EnableAutoTrader   bool     `json:"enable_autotrader"`
	EnableFacebook     bool     `json:"enable_facebook"`
	PrivateSellersOnly bool     `json:"private_sellers_only"`
}

// DefaultMaxResults applies when max_results is missing or unparsable.
const DefaultMaxResults = 20

// Validate rejects requests the backend cannot run.
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Location) == "" {
		return Errorf(ErrValidation, "Location is required")
	}
	return nil
}

// Limit returns the per-source result cap.
func (r *SearchRequest) Limit() int {
	if n := r.MaxResults.Value(); n > 0 {
		return n
	}
	return DefaultMaxResults
}

// SearchResponse is the body returned by POST /api/search.
type SearchResponse struct {
	Success  bool           `json:"success"`
	Error    string         `json:"error,omitempty"`
	Summary  map[string]int `json:"summary,omitempty"`
	Total    int            `json:"total"`
	Listings []Listing      `json:"listings"`
}

// SearchRun records one executed search.
type SearchRun struct {
	ID         string         `json:"id" db:"id"`
	Makes      string         `json:"makes" db:"makes"`
	Location   string         `json:"location" db:"location"`
	StartedAt  time.Time      `json:"started_at" db:"started_at"`
	FinishedAt *time.Time     `json:"finished_at" db:"finished_at"`
	Total      int            `json:"total" db:"total"`
	Summary    map[string]int `json:"summary" db:"summary"`
	Errors     int            `json:"errors" db:"errors"`
}

// MakeList accepts either a comma-separated string or an array of strings.
type MakeList []string

func (m *MakeList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*m = cleanMakes(list)
		return nil
	}
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return Errorf(ErrValidation, "make must be a string or a list of strings")
	}
	if s == nil {
		*m = nil
		return nil
	}
	*m = ParseMakes(*s)
	return nil
}

// MarshalJSON writes the list back as a comma-separated string.
func (m MakeList) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.Join(m, ","))
}

// ParseMakes splits a comma-separated make list and drops blanks.
func ParseMakes(s string) MakeList {
	return cleanMakes(strings.Split(s, ","))
}

func cleanMakes(in []string) MakeList {
	var out MakeList
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// FlexInt decodes a JSON number or numeric string. Blank or unparsable
// values decode to an absent number rather than an error, matching how the
// search form submits optional fields.
type FlexInt struct {
	N     int
	Valid bool
}

// IntPtr returns a FlexInt holding n.
func IntPtr(n int) *FlexInt {
	return &FlexInt{N: n, Valid: true}
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*f = FlexInt{}
		return nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		*f = FlexInt{N: n, Valid: true}
		return nil
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		*f = FlexInt{N: int(v), Valid: true}
		return nil
	}
	*f = FlexInt{}
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.N)), nil
}

// Value returns the number, or 0 when f is nil or absent.
func (f *FlexInt) Value() int {
	if f == nil || !f.Valid {
		return 0
	}
	return f.N
}

// Set reports whether f holds a number.
func (f *FlexInt) Set() bool {
	return f != nil && f.Valid
}
