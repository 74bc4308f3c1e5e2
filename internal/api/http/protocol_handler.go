package http

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/google/uuid"

	"blackrent-backend/internal/domain"
)

func (h *Handler) createHandover(w http.ResponseWriter, r *http.Request) {
	var p domain.HandoverProtocol
	if !h.decode(w, r, &p) {
		return
	}
	p.ID = ""
	if err := h.svc.Protocols.CreateHandover(r.Context(), actor(r), &p); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: p, Message: "Odovzdávací protokol vytvorený"})
}

func (h *Handler) updateHandover(w http.ResponseWriter, r *http.Request) {
	var p domain.HandoverProtocol
	if !h.decode(w, r, &p) {
		return
	}
	p.ID = pathVar(r, "id")
	if err := h.svc.Protocols.UpdateHandover(r.Context(), actor(r), &p); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *Handler) createReturn(w http.ResponseWriter, r *http.Request) {
	var p domain.ReturnProtocol
	if !h.decode(w, r, &p) {
		return
	}
	p.ID = ""
	if err := h.svc.Protocols.CreateReturn(r.Context(), actor(r), &p); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: p, Message: "Preberací protokol vytvorený"})
}

func (h *Handler) updateReturn(w http.ResponseWriter, r *http.Request) {
	var p domain.ReturnProtocol
	if !h.decode(w, r, &p) {
		return
	}
	p.ID = pathVar(r, "id")
	if err := h.svc.Protocols.UpdateReturn(r.Context(), actor(r), &p); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *Handler) rentalProtocols(w http.ResponseWriter, r *http.Request) {
	protocols, err := h.svc.Protocols.GetRentalProtocols(r.Context(), actor(r), pathVar(r, "rentalId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, protocols)
}

type uploadResponse struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// uploadFile stores one multipart "file" part. The key is either given or
// built from rentalId and type (handover, return, pdf).
func (h *Handler) uploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Chýba súbor alebo je príliš veľký")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if len(h.opts.AllowedTypes) > 0 && !slices.Contains(h.opts.AllowedTypes, contentType) {
		writeError(w, http.StatusBadRequest, "Nepodporovaný typ súboru")
		return
	}

	key := strings.TrimSpace(r.FormValue("key"))
	if key == "" {
		rentalID := strings.TrimSpace(r.FormValue("rentalId"))
		kind := strings.TrimSpace(r.FormValue("type"))
		if rentalID == "" || kind == "" {
			writeError(w, http.StatusBadRequest, "Chýba kľúč súboru alebo prenájom a typ")
			return
		}
		key = fmt.Sprintf("protocols/%s/%s/%s%s", rentalID, kind, uuid.NewString(), strings.ToLower(path.Ext(header.Filename)))
	}

	url, n, err := h.svc.Protocols.UploadFile(r.Context(), actor(r), key, file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, uploadResponse{Key: key, URL: url, Size: n})
}

func (h *Handler) downloadFile(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "Chýba kľúč súboru")
		return
	}
	rc, err := h.svc.Protocols.OpenFile(r.Context(), actor(r), key)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, _ = io.Copy(w, rc)
}
