package http

import (
	"net/http"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/service"
)

func (h *Handler) listRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.svc.Rentals.ListRentals(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, rentals)
}

func (h *Handler) getRental(w http.ResponseWriter, r *http.Request) {
	rental, err := h.svc.Rentals.GetRental(r.Context(), actor(r), pathVar(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, rental)
}

func (h *Handler) createRental(w http.ResponseWriter, r *http.Request) {
	var rental domain.Rental
	if !h.decode(w, r, &rental) {
		return
	}
	rental.ID = ""
	if err := h.svc.Rentals.CreateRental(r.Context(), actor(r), &rental); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: rental, Message: "Prenájom úspešne vytvorený"})
}

func (h *Handler) updateRental(w http.ResponseWriter, r *http.Request) {
	var rental domain.Rental
	if !h.decode(w, r, &rental) {
		return
	}
	rental.ID = pathVar(r, "id")
	if err := h.svc.Rentals.UpdateRental(r.Context(), actor(r), &rental); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: rental, Message: "Prenájom úspešne aktualizovaný"})
}

func (h *Handler) deleteRental(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Rentals.DeleteRental(r.Context(), actor(r), pathVar(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Prenájom úspešne vymazaný")
}

func (h *Handler) calculatePrice(w http.ResponseWriter, r *http.Request) {
	var quote service.PriceQuote
	if !h.decode(w, r, &quote) {
		return
	}
	price, err := h.svc.Rentals.CalculatePrice(r.Context(), actor(r), quote)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"days":        price.Days,
		"pricePerDay": price.PricePerDay,
		"basePrice":   price.BasePrice,
		"discount":    price.Discount,
		"extraKm":     price.ExtraKm,
		"totalPrice":  price.TotalPrice,
		"commission":  price.Commission,
	})
}
