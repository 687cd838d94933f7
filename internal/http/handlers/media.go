package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"calshop/internal/domain"
)

// Thumbnail serves the stored thumbnail for one reference photo.
func (a *App) Thumbnail(w http.ResponseWriter, r *http.Request) {
	project, ok := a.requireProject(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image id must be numeric")
		return
	}
	img, err := a.Store.GetReferenceImage(r.Context(), project.Token, id)
	if err != nil {
		a.domainError(w, err)
		return
	}
	serveJPEG(w, img.Thumbnail)
}

// MonthImage serves the generated image for a completed month.
func (a *App) MonthImage(w http.ResponseWriter, r *http.Request) {
	project, ok := a.requireProject(w, r)
	if !ok {
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "month must be numeric")
		return
	}
	unit, err := a.Store.GetMonth(r.Context(), project.Token, month)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if unit.Status != domain.MonthStatusCompleted || len(unit.ImageData) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "month has no generated image")
		return
	}
	serveJPEG(w, unit.ImageData)
}

func serveJPEG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
