package http

import (
	"net/http"

	"blackrent-backend/internal/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Používateľské meno a heslo sú povinné")
		return
	}
	user, token, err := h.svc.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    loginResponse{User: user, Token: token},
		Message: "Prihlásenie úspešné",
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Auth.GetCurrentUser(r.Context(), actor(r).UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.Auth.ChangePassword(r.Context(), actor(r).UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Heslo bolo zmenené")
}

type userRequest struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	Role      domain.Role `json:"role"`
	CompanyID *string     `json:"companyId"`
	IsActive  *bool       `json:"isActive"`
}

func (req userRequest) user(id string) *domain.User {
	u := &domain.User{
		ID:        id,
		Username:  req.Username,
		Email:     req.Email,
		Role:      req.Role,
		CompanyID: req.CompanyID,
		IsActive:  true,
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	return u
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users.ListUsers(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, users)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !h.decode(w, r, &req) {
		return
	}
	user := req.user("")
	if err := h.svc.Users.CreateUser(r.Context(), actor(r), user, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !h.decode(w, r, &req) {
		return
	}
	user := req.user(pathVar(r, "id"))
	if err := h.svc.Users.UpdateUser(r.Context(), actor(r), user, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Users.DeleteUser(r.Context(), actor(r), pathVar(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Používateľ bol odstránený")
}

func (h *Handler) getPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.svc.Users.GetPermissions(r.Context(), actor(r), pathVar(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, perms)
}

func (h *Handler) setPermission(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyID   string                    `json:"companyId"`
		Permissions domain.CompanyPermissions `json:"permissions"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.CompanyID == "" {
		writeError(w, http.StatusBadRequest, "Firma je povinná")
		return
	}
	if err := h.svc.Users.SetPermission(r.Context(), actor(r), pathVar(r, "id"), req.CompanyID, req.Permissions); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Oprávnenia boli uložené")
}

func (h *Handler) removePermission(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Users.RemovePermission(r.Context(), actor(r), pathVar(r, "id"), pathVar(r, "companyId")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, "Oprávnenia boli odobraté")
}
