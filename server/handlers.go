package server

import (
	"net/http"
	"strconv"

	"carfinder/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": "ok"})
}

// =============================================================================
// Search
// =============================================================================

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := s.search.Search(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type searchRunsResponse struct {
	Success bool               `json:"success"`
	Runs    []models.SearchRun `json:"runs"`
}

func (s *Server) handleSearchRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	runs, err := s.runs.RecentSearchRuns(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []models.SearchRun{}
	}
	writeJSON(w, http.StatusOK, searchRunsResponse{Success: true, Runs: runs})
}

// =============================================================================
// Notes
// =============================================================================

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.leads.Notes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NotesResponse{Success: true, Notes: notes})
}

func (s *Server) handleSaveNote(w http.ResponseWriter, r *http.Request) {
	var in models.LeadInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	lead, err := s.leads.Save(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.Result{Success: true, Note: lead})
}

func (s *Server) handleDeleteNoteByURL(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteNoteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.leads.DeleteByURL(r.Context(), req.URL); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.Result{Success: true})
}

// =============================================================================
// CRM
// =============================================================================

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	leads, err := s.leads.List(r.Context(), models.LeadFilter{
		Status: models.Status(q.Get("status")),
		SortBy: q.Get("sort_by"),
		Order:  q.Get("order"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.LeadsResponse{Success: true, Leads: leads})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.leads.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.StatsResponse{Success: true, Stats: stats})
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req models.StatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.leads.SetStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.Result{Success: true})
}

func (s *Server) handleSetFollowUp(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req models.FollowUpRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.leads.SetFollowUp(r.Context(), id, req.FollowUpDate); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.Result{Success: true})
}

func (s *Server) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.leads.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.Result{Success: true})
}
