package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"calshop/internal/domain"
	"calshop/internal/imaging"
	"calshop/internal/themes"
)

const (
	// minReferenceImages is how many likeness photos a project needs before
	// themes can be confirmed.
	minReferenceImages = 3
	maxUploadBytes     = 10 << 20
)

// StartProject creates a fresh project session and sets the session cookie.
func (a *App) StartProject(w http.ResponseWriter, r *http.Request) {
	project, err := a.Store.CreateProject(r.Context())
	if err != nil {
		a.domainError(w, err)
		return
	}
	if err := a.Store.UpdateProjectStatus(r.Context(), project.Token, domain.ProjectStatusUploading); err != nil {
		a.domainError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    project.Token,
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	a.json(w, http.StatusCreated, map[string]any{
		"token":  project.Token,
		"status": string(domain.ProjectStatusUploading),
	})
}

type uploadedImage struct {
	ID       int    `json:"id"`
	Filename string `json:"filename"`
}

// UploadImages accepts multipart reference photos, normalizes each to JPEG
// and stores it with a thumbnail.
func (a *App) UploadImages(w http.ResponseWriter, r *http.Request) {
	project, ok := a.requireProject(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		files = r.MultipartForm.File["photo"]
	}
	if len(files) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "no photos provided")
		return
	}

	var stored []uploadedImage
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "unreadable upload")
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		f.Close()
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "unreadable upload")
			return
		}

		normalized, err := imaging.Normalize(data)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "unsupported image format: "+fh.Filename)
			return
		}
		thumb, err := imaging.Thumbnail(normalized)
		if err != nil {
			a.domainError(w, err)
			return
		}

		id, err := a.Store.AddReferenceImage(r.Context(), project.Token, fh.Filename, normalized, thumb)
		if err != nil {
			a.domainError(w, err)
			return
		}
		stored = append(stored, uploadedImage{ID: id, Filename: fh.Filename})
	}

	images, err := a.Store.ListReferenceImages(r.Context(), project.Token)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"uploaded":         stored,
		"count":            len(images),
		"ready_for_themes": len(images) >= minReferenceImages,
	})
}

// ListImages returns reference image metadata; bytes are served by the
// thumbnail endpoint.
func (a *App) ListImages(w http.ResponseWriter, r *http.Request) {
	project, ok := a.requireProject(w, r)
	if !ok {
		return
	}
	images, err := a.Store.ListReferenceImages(r.Context(), project.Token)
	if err != nil {
		a.domainError(w, err)
		return
	}
	items := make([]map[string]any, 0, len(images))
	for _, img := range images {
		items = append(items, map[string]any{
			"id":          img.ID,
			"filename":    img.Filename,
			"uploaded_at": img.UploadedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{
		"images":           items,
		"count":            len(items),
		"ready_for_themes": len(items) >= minReferenceImages,
	})
}

// DeleteImage removes one reference photo. Unknown ids are a no-op.
func (a *App) DeleteImage(w http.ResponseWriter, r *http.Request) {
	project, ok := a.requireProject(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image id must be numeric")
		return
	}
	if err := a.Store.DeleteReferenceImage(r.Context(), project.Token, id); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"deleted": id})
}

// CustomizationOptions lists the preference axes and their choices.
func (a *App) CustomizationOptions(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"options":  themes.Options(),
		"defaults": themes.DefaultPreferences(),
	})
}

// SetPreferences validates and persists the four customization axes.
func (a *App) SetPreferences(w http.ResponseWriter, r *http.Request) {
	project, ok := a.requireProject(w, r)
	if !ok {
		return
	}
	var prefs domain.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	prefs = themes.ValidatePreferences(prefs)
	if err := a.Store.SetPreferences(r.Context(), project.Token, prefs); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"preferences": prefs})
}

// ConfirmThemes builds the twelve month prompts and initializes the month
// units. Any previous set, including completed images, is discarded.
func (a *App) ConfirmThemes(w http.ResponseWriter, r *http.Request) {
	project, ok := a.requireProject(w, r)
	if !ok {
		return
	}
	images, err := a.Store.ListReferenceImages(r.Context(), project.Token)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if len(images) < minReferenceImages {
		a.error(w, http.StatusBadRequest, "bad_request",
			"at least "+strconv.Itoa(minReferenceImages)+" reference photos are required")
		return
	}

	prefs, err := a.Store.GetPreferences(r.Context(), project.Token)
	if err != nil {
		a.domainError(w, err)
		return
	}

	prompts := make(map[int]string, domain.MonthCount)
	months := make([]map[string]any, 0, domain.MonthCount)
	for m := 1; m <= domain.MonthCount; m++ {
		var req themes.PromptRequest = themes.BaseRequest{}
		if prefs != nil {
			req = themes.CustomizedRequest{Preferences: *prefs, Tier: themes.TierSoftened}
		}
		prompt, err := themes.BuildPrompt(m, req)
		if err != nil {
			a.domainError(w, err)
			return
		}
		prompts[m] = prompt

		theme, _ := themes.Get(m)
		months = append(months, map[string]any{
			"month": m,
			"name":  theme.Month,
			"title": theme.Title,
		})
	}

	if err := a.Store.InitializeMonths(r.Context(), project.Token, prompts); err != nil {
		a.domainError(w, err)
		return
	}
	if err := a.Store.UpdateProjectStatus(r.Context(), project.Token, domain.ProjectStatusPrompts); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"status": string(domain.ProjectStatusPrompts),
		"months": months,
	})
}

// Status reports the project, every month unit and the completion count.
// Image bytes are never inlined here.
func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	project, ok := a.requireProject(w, r)
	if !ok {
		return
	}
	months, err := a.Store.ListMonths(r.Context(), project.Token)
	if err != nil {
		a.domainError(w, err)
		return
	}
	completed, err := a.Store.CompletionCount(r.Context(), project.Token)
	if err != nil {
		a.domainError(w, err)
		return
	}

	items := make([]map[string]any, 0, len(months))
	for _, m := range months {
		item := map[string]any{
			"month":  m.MonthNumber,
			"status": string(m.Status),
			"prompt": m.Prompt,
		}
		if m.Status == domain.MonthStatusCompleted {
			item["tier"] = m.Tier
			item["generated_at"] = m.GeneratedAt
			item["image_url"] = "/api/image/month/" + strconv.Itoa(m.MonthNumber)
		}
		if m.ErrorMessage != "" {
			item["error"] = m.ErrorMessage
		}
		items = append(items, item)
	}

	a.json(w, http.StatusOK, map[string]any{
		"status":    string(project.Status),
		"completed": completed,
		"total":     domain.MonthCount,
		"months":    items,
	})
}
