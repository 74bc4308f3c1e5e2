package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/service"
	"blackrent-backend/internal/storage"
)

// Response is the envelope of every JSON answer
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, Response{Success: true, Message: message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Error: message})
}

// writeServiceError maps service and repository errors to a status code and
// a Slovak message. Unknown errors are logged and answered with 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Nesprávne prihlasovacie meno alebo heslo")
	case errors.Is(err, service.ErrUserInactive):
		writeError(w, http.StatusForbidden, "Používateľský účet je deaktivovaný")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "Nemáte oprávnenie na túto operáciu")
	case errors.Is(err, service.ErrMaintenanceBlocked):
		logger.WarnContext(r.Context(), "Maintenance request refused in production", "path", r.URL.Path)
		writeError(w, http.StatusForbidden, "Táto operácia nie je povolená v produkčnom prostredí")
	case errors.Is(err, service.ErrNotFound), errors.Is(err, storage.ErrFileNotFound):
		writeError(w, http.StatusNotFound, "Záznam nebol nájdený")
	case errors.Is(err, service.ErrDuplicateLicensePlate):
		writeError(w, http.StatusConflict, "Vozidlo s touto ŠPZ už existuje v databáze")
	case errors.Is(err, service.ErrDuplicate):
		writeError(w, http.StatusConflict, "Záznam už existuje")
	case errors.Is(err, service.ErrVehicleHasActiveRentals):
		writeError(w, http.StatusConflict, "Vozidlo má aktívne alebo potvrdené prenájmy")
	case errors.Is(err, service.ErrAlreadyDecided):
		writeError(w, http.StatusConflict, "Prenájom už bol spracovaný")
	case errors.Is(err, service.ErrEmailAlreadyStaged):
		writeError(w, http.StatusConflict, "Tento e-mail už bol spracovaný")
	case errors.Is(err, service.ErrProtocolExists):
		writeError(w, http.StatusConflict, "Protokol pre tento prenájom už existuje")
	case errors.Is(err, service.ErrProtocolLocked):
		writeError(w, http.StatusConflict, "Protokol je uzamknutý, PDF už bolo vygenerované")
	case errors.Is(err, service.ErrHandoverRequired):
		writeError(w, http.StatusConflict, "Najprv je potrebné vytvoriť odovzdávací protokol")
	case errors.Is(err, service.ErrRangeTooLarge):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Rozsah môže mať najviac %d dní", service.MaxCalendarDays))
	case errors.Is(err, storage.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, "Neplatný názov súboru")
	default:
		logger.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "Interná chyba servera")
	}
}
