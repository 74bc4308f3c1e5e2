package http

import (
	"errors"
	"fmt"
	"net/http"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/service"
)

func (h *Handler) listVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.svc.Vehicles.ListVehicles(r.Context(), actor(r), queryBool(r, "includeRemoved"), queryBool(r, "includePrivate"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, vehicles)
}

type vehiclePage struct {
	Vehicles []domain.Vehicle `json:"vehicles"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

func (h *Handler) searchVehicles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.VehicleFilter{
		Search:         q.Get("search"),
		Status:         domain.VehicleStatus(q.Get("status")),
		Company:        q.Get("company"),
		Category:       q.Get("category"),
		IncludeRemoved: queryBool(r, "includeRemoved"),
		IncludePrivate: queryBool(r, "includePrivate"),
		Page:           queryInt(r, "page", 1),
		PageSize:       queryInt(r, "limit", 50),
	}
	vehicles, total, err := h.svc.Vehicles.SearchVehicles(r.Context(), actor(r), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, vehiclePage{Vehicles: vehicles, Total: total, Page: filter.Page, PageSize: filter.PageSize})
}

func (h *Handler) getVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Vehicles.GetVehicle(r.Context(), actor(r), pathVar(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, v)
}

func (h *Handler) createVehicle(w http.ResponseWriter, r *http.Request) {
	var v domain.Vehicle
	if !h.decode(w, r, &v) {
		return
	}
	v.ID = ""
	if err := h.svc.Vehicles.CreateVehicle(r.Context(), actor(r), &v); err != nil {
		h.vehicleError(w, r, err, v.LicensePlate)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: v, Message: "Vozidlo úspešne vytvorené"})
}

func (h *Handler) updateVehicle(w http.ResponseWriter, r *http.Request) {
	var v domain.Vehicle
	if !h.decode(w, r, &v) {
		return
	}
	v.ID = pathVar(r, "id")
	if err := h.svc.Vehicles.UpdateVehicle(r.Context(), actor(r), &v); err != nil {
		h.vehicleError(w, r, err, v.LicensePlate)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: v, Message: "Vozidlo úspešne aktualizované"})
}

func (h *Handler) deleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Vehicles.DeleteVehicle(r.Context(), actor(r), pathVar(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Vozidlo úspešne vymazané")
}

func (h *Handler) vehicleError(w http.ResponseWriter, r *http.Request, err error, plate string) {
	if errors.Is(err, service.ErrDuplicateLicensePlate) {
		writeError(w, http.StatusConflict, fmt.Sprintf("Vozidlo s ŠPZ %s už existuje v databáze", plate))
		return
	}
	writeServiceError(w, r, err)
}
