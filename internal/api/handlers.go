package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/normalize"
	"github.com/sells-group/intake-cli/internal/review"
	"github.com/sells-group/intake-cli/internal/store"
)

// recordView is a record with its derived projections.
type recordView struct {
	Record         model.Record          `json:"record"`
	Preview        model.PreviewMeta     `json:"preview"`
	Location       model.LocationDetails `json:"location"`
	DisplayAddress string                `json:"display_address"`
	NextStatuses   []model.Status        `json:"next_statuses"`
}

func viewOf(rec *model.Record) recordView {
	next := review.NextStatuses(rec.Status)
	if next == nil {
		next = []model.Status{}
	}
	return recordView{
		Record:         *rec,
		Preview:        normalize.ExtractPreview(rec),
		Location:       normalize.ResolveLocation(rec),
		DisplayAddress: normalize.DisplayAddress(rec),
		NextStatuses:   next,
	}
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := model.Status(q.Get("status"))
	if status == review.StatusAll {
		status = ""
	}
	if status != "" && !status.Valid() {
		badRequest(w, "unknown status "+strconv.Quote(string(status)))
		return
	}

	limit := s.opts.ListLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			badRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	recs, err := s.backend.ListRecords(r.Context(), status, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	recs = review.FilterRecords(recs, review.Filter{Query: q.Get("q")})
	recs = review.SortRecords(recs, review.ParseSort(q.Get("sort"), q.Get("order")))

	writeJSON(w, http.StatusOK, map[string]any{"records": recs, "count": len(recs)})
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.backend.GetRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(rec))
}

func (s *Server) getDraft(w http.ResponseWriter, r *http.Request) {
	rec, err := s.backend.GetRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	draft := normalize.BuildDraft(rec)
	writeJSON(w, http.StatusOK, map[string]any{
		"draft": draft,
		"form":  review.FormFromDraft(draft),
	})
}

type statusRequest struct {
	Status model.Status `json:"status"`
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		badRequest(w, "unknown status "+strconv.Quote(string(req.Status)))
		return
	}

	rec, err := s.backend.GetRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := review.NewWorkflow(s.backend).Transition(r.Context(), rec, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(out))
}

type promoteRequest struct {
	Form      *review.PromotionForm `json:"form"`
	AccountID string                `json:"account_id"`
}

func (s *Server) promote(w http.ResponseWriter, r *http.Request) {
	var req promoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	rec, err := s.backend.GetRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	form := review.FormFromDraft(normalize.BuildDraft(rec))
	if req.Form != nil {
		form = *req.Form
	}
	out, err := review.NewWorkflow(s.backend).Promote(r.Context(), rec, form, req.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(out))
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	rec, err := s.backend.GetRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := review.NewWorkflow(s.backend).Refresh(r.Context(), rec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(out))
}

type bulkRequest struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
}

type bulkItem struct {
	ID     string        `json:"id"`
	OK     bool          `json:"ok"`
	Record *model.Record `json:"record,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func (s *Server) bulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	switch req.Action {
	case review.ActionApprove, review.ActionReject, review.ActionPromote:
	default:
		badRequest(w, "unknown bulk action "+strconv.Quote(req.Action))
		return
	}
	if len(req.IDs) == 0 {
		badRequest(w, "ids are required")
		return
	}

	// Members missing from the working set fail individually.
	recs := make([]model.Record, 0, len(req.IDs))
	for _, id := range req.IDs {
		rec, err := s.backend.GetRecord(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			writeError(w, err)
			return
		}
		recs = append(recs, *rec)
	}
	q := review.NewQueue(s.backend, review.WithBulkLimit(s.opts.BulkLimit))
	q.SetRecords(recs)

	results, err := q.Bulk(r.Context(), req.Action, req.IDs)
	items := make([]bulkItem, len(results))
	failed := 0
	for i, res := range results {
		items[i] = bulkItem{ID: res.ID, OK: res.OK(), Record: res.Record}
		if res.Err != nil {
			items[i].Error = res.Err.Error()
			failed++
		}
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, map[string]any{
		"action":  req.Action,
		"results": items,
		"failed":  failed,
	})
}

type phoneFormats struct {
	Input      string `json:"input"`
	Submission string `json:"submission"`
	Display    string `json:"display"`
	Valid      bool   `json:"valid"`
	Error      string `json:"error,omitempty"`
}

func (s *Server) formatPhone(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("raw")
	out := phoneFormats{
		Input:   normalize.FormatPhoneForInput(raw),
		Display: normalize.FormatPhoneForDisplay(raw),
		Valid:   true,
	}
	sub, err := normalize.FormatPhoneForSubmission(raw)
	if err != nil {
		out.Valid = false
		out.Error = err.Error()
	}
	out.Submission = sub
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.opts.Stats.Collect(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
