package http

import (
	"net/http"
	"time"

	"blackrent-backend/internal/domain"
)

func (h *Handler) stageEmail(w http.ResponseWriter, r *http.Request) {
	if !actor(r).IsAdmin() {
		writeError(w, http.StatusForbidden, "Nemáte oprávnenie na túto operáciu")
		return
	}
	var req domain.EmailRentalRequest
	if !h.decode(w, r, &req) {
		return
	}
	rental, err := h.svc.EmailStaging.StageEmailRental(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: rental, Message: "Objednávka čaká na schválenie"})
}

func (h *Handler) pendingEmails(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.svc.EmailStaging.ListPending(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, rentals)
}

func (h *Handler) emailStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.EmailStaging.Stats(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (h *Handler) approveEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.EmailStaging.Approve(r.Context(), actor(r), pathVar(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Prenájom bol schválený")
}

func (h *Handler) rejectEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.EmailStaging.Reject(r.Context(), actor(r), pathVar(r, "id"), req.Reason); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Prenájom bol zamietnutý")
}

func (h *Handler) spamEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.EmailStaging.MarkSpam(r.Context(), actor(r), pathVar(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Prenájom bol označený ako spam")
}

// calendar defaults to the next 30 days when from/to are omitted
func (h *Handler) calendar(w http.ResponseWriter, r *http.Request) {
	from := time.Now().UTC()
	to := from.AddDate(0, 0, 30)
	if s := r.URL.Query().Get("from"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Neplatný dátum 'from'")
			return
		}
		from = t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Neplatný dátum 'to'")
			return
		}
		to = t
	}
	days, err := h.svc.Availability.Calendar(r.Context(), actor(r), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"calendar": days,
		"from":     from.Format("2006-01-02"),
		"to":       to.Format("2006-01-02"),
	})
}

func (h *Handler) bulkData(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	data, err := h.svc.Bulk.Load(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
		Message: "Načítané za " + time.Since(start).Round(time.Millisecond).String(),
	})
}

func (h *Handler) resetProtocols(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Maintenance.ResetProtocols(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int64{"deletedProtocols": n})
}

func (h *Handler) purgeStorage(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Maintenance.PurgeStorage(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int{"deletedFiles": n})
}
