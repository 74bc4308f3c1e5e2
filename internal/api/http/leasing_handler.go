package http

import (
	"net/http"
	"strconv"
	"time"

	"blackrent-backend/internal/domain"
)

// paymentRequest is the body of the pay endpoints. Both fields are optional
// for a single installment.
type paymentRequest struct {
	InstallmentNumbers []int  `json:"installmentNumbers"`
	PaidDate           string `json:"paidDate"`
}

func (h *Handler) listLeasings(w http.ResponseWriter, r *http.Request) {
	leasings, err := h.svc.Leasings.ListLeasings(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, leasings)
}

func (h *Handler) getLeasing(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.Leasings.GetLeasing(r.Context(), actor(r), pathVar(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, l)
}

func (h *Handler) createLeasing(w http.ResponseWriter, r *http.Request) {
	var l domain.Leasing
	if !h.decode(w, r, &l) {
		return
	}
	l.ID = ""
	if err := h.svc.Leasings.CreateLeasing(r.Context(), actor(r), &l); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, l)
}

func (h *Handler) updateLeasing(w http.ResponseWriter, r *http.Request) {
	var l domain.Leasing
	if !h.decode(w, r, &l) {
		return
	}
	l.ID = pathVar(r, "id")
	if err := h.svc.Leasings.UpdateLeasing(r.Context(), actor(r), &l); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, l)
}

func (h *Handler) deleteLeasing(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Leasings.DeleteLeasing(r.Context(), actor(r), pathVar(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Leasing úspešne vymazaný")
}

func (h *Handler) leasingSchedule(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Leasings.GetSchedule(r.Context(), actor(r), pathVar(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *Handler) payInstallment(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(pathVar(r, "installment"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Neplatné číslo splátky")
		return
	}
	var req paymentRequest
	if r.ContentLength > 0 && !h.decode(w, r, &req) {
		return
	}
	paidDate, ok := paymentDate(w, req.PaidDate)
	if !ok {
		return
	}
	l, err := h.svc.Leasings.MarkPaid(r.Context(), actor(r), pathVar(r, "id"), []int{n}, paidDate)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, l)
}

func (h *Handler) unpayInstallment(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(pathVar(r, "installment"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Neplatné číslo splátky")
		return
	}
	l, err := h.svc.Leasings.UnmarkPaid(r.Context(), actor(r), pathVar(r, "id"), n)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, l)
}

func (h *Handler) bulkPayInstallments(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	paidDate, ok := paymentDate(w, req.PaidDate)
	if !ok {
		return
	}
	l, err := h.svc.Leasings.MarkPaid(r.Context(), actor(r), pathVar(r, "id"), req.InstallmentNumbers, paidDate)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, l)
}

func paymentDate(w http.ResponseWriter, s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	t, err := parseDate(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Neplatný dátum platby")
		return time.Time{}, false
	}
	return t, true
}

func (h *Handler) leasingDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.Leasings.ListDocuments(r.Context(), actor(r), pathVar(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, docs)
}

// addLeasingDocument stores metadata of a file already uploaded through
// /files/upload
func (h *Handler) addLeasingDocument(w http.ResponseWriter, r *http.Request) {
	var doc domain.LeasingDocument
	if !h.decode(w, r, &doc) {
		return
	}
	doc.ID = ""
	doc.LeasingID = pathVar(r, "id")
	if err := h.svc.Leasings.AddDocument(r.Context(), actor(r), &doc); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, doc)
}

func (h *Handler) deleteLeasingDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Leasings.DeleteDocument(r.Context(), actor(r), pathVar(r, "id"), pathVar(r, "docId")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Dokument úspešne vymazaný")
}
