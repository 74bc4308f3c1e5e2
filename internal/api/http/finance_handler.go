package http

import (
	"net/http"
	"time"

	"blackrent-backend/internal/domain"
)

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.Expenses.ListExpenses(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, expenses)
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var e domain.Expense
	if !h.decode(w, r, &e) {
		return
	}
	e.ID = ""
	if err := h.svc.Expenses.CreateExpense(r.Context(), actor(r), &e); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, e)
}

func (h *Handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	var e domain.Expense
	if !h.decode(w, r, &e) {
		return
	}
	e.ID = pathVar(r, "id")
	if err := h.svc.Expenses.UpdateExpense(r.Context(), actor(r), &e); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, e)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Expenses.DeleteExpense(r.Context(), actor(r), pathVar(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Náklad úspešne vymazaný")
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Expenses.ListCategories(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, categories)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var c domain.ExpenseCategory
	if !h.decode(w, r, &c) {
		return
	}
	c.ID = ""
	if err := h.svc.Expenses.CreateCategory(r.Context(), actor(r), &c); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, c)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Expenses.DeleteCategory(r.Context(), actor(r), pathVar(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Kategória úspešne vymazaná")
}

func (h *Handler) listRecurring(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Expenses.ListRecurring(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *Handler) createRecurring(w http.ResponseWriter, r *http.Request) {
	var re domain.RecurringExpense
	if !h.decode(w, r, &re) {
		return
	}
	re.ID = ""
	if err := h.svc.Expenses.CreateRecurring(r.Context(), actor(r), &re); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, re)
}

// generateRecurring is the manual trigger of the daily job, admin only
func (h *Handler) generateRecurring(w http.ResponseWriter, r *http.Request) {
	if !actor(r).IsAdmin() {
		writeError(w, http.StatusForbidden, "Nemáte oprávnenie na túto operáciu")
		return
	}
	n, err := h.svc.Expenses.GenerateRecurring(r.Context(), time.Now().UTC())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int{"generated": n})
}

func (h *Handler) listSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := h.svc.Settlements.ListSettlements(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, settlements)
}

func (h *Handler) getSettlement(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Settlements.GetSettlement(r.Context(), actor(r), pathVar(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, st)
}

func (h *Handler) createSettlement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Company    string `json:"company"`
		PeriodFrom string `json:"periodFrom"`
		PeriodTo   string `json:"periodTo"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	from, err := parseDate(req.PeriodFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Neplatný dátum 'od'")
		return
	}
	to, err := parseDate(req.PeriodTo)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Neplatný dátum 'do'")
		return
	}
	st, err := h.svc.Settlements.CreateSettlement(r.Context(), actor(r), req.Company, from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: st, Message: "Vyúčtovanie úspešne vytvorené"})
}

func (h *Handler) deleteSettlement(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Settlements.DeleteSettlement(r.Context(), actor(r), pathVar(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Vyúčtovanie úspešne vymazané")
}
