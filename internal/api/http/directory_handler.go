package http

import (
	"net/http"

	"blackrent-backend/internal/domain"
)

// customers

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.Customers.ListCustomers(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, customers)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Customers.GetCustomer(r.Context(), actor(r), pathVar(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var c domain.Customer
	if !h.decode(w, r, &c) {
		return
	}
	c.ID = ""
	if err := h.svc.Customers.CreateCustomer(r.Context(), actor(r), &c); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, c)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var c domain.Customer
	if !h.decode(w, r, &c) {
		return
	}
	c.ID = pathVar(r, "id")
	if err := h.svc.Customers.UpdateCustomer(r.Context(), actor(r), &c); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Customers.DeleteCustomer(r.Context(), actor(r), pathVar(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Zákazník úspešne vymazaný")
}

// companies

func (h *Handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.svc.Companies.ListCompanies(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, companies)
}

func (h *Handler) getCompany(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Companies.GetCompany(r.Context(), actor(r), pathVar(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *Handler) createCompany(w http.ResponseWriter, r *http.Request) {
	var c domain.Company
	if !h.decode(w, r, &c) {
		return
	}
	c.ID = ""
	if err := h.svc.Companies.CreateCompany(r.Context(), actor(r), &c); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, c)
}

func (h *Handler) updateCompany(w http.ResponseWriter, r *http.Request) {
	var c domain.Company
	if !h.decode(w, r, &c) {
		return
	}
	c.ID = pathVar(r, "id")
	if err := h.svc.Companies.UpdateCompany(r.Context(), actor(r), &c); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *Handler) deleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Companies.DeleteCompany(r.Context(), actor(r), pathVar(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Firma úspešne vymazaná")
}

// insurers and insurances

func (h *Handler) listInsurers(w http.ResponseWriter, r *http.Request) {
	insurers, err := h.svc.Insurances.ListInsurers(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, insurers)
}

func (h *Handler) createInsurer(w http.ResponseWriter, r *http.Request) {
	var ins domain.Insurer
	if !h.decode(w, r, &ins) {
		return
	}
	ins.ID = ""
	if err := h.svc.Insurances.CreateInsurer(r.Context(), actor(r), &ins); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, ins)
}

func (h *Handler) deleteInsurer(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Insurances.DeleteInsurer(r.Context(), actor(r), pathVar(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Poisťovňa úspešne vymazaná")
}

func (h *Handler) listInsurances(w http.ResponseWriter, r *http.Request) {
	insurances, err := h.svc.Insurances.ListInsurances(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, insurances)
}

func (h *Handler) createInsurance(w http.ResponseWriter, r *http.Request) {
	var ins domain.Insurance
	if !h.decode(w, r, &ins) {
		return
	}
	ins.ID = ""
	if err := h.svc.Insurances.CreateInsurance(r.Context(), actor(r), &ins); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, ins)
}

func (h *Handler) updateInsurance(w http.ResponseWriter, r *http.Request) {
	var ins domain.Insurance
	if !h.decode(w, r, &ins) {
		return
	}
	ins.ID = pathVar(r, "id")
	if err := h.svc.Insurances.UpdateInsurance(r.Context(), actor(r), &ins); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, ins)
}

func (h *Handler) deleteInsurance(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Insurances.DeleteInsurance(r.Context(), actor(r), pathVar(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Poistka úspešne vymazaná")
}
