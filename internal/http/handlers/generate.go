package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"calshop/internal/domain"
)

// GenerateAll drives every month of the project through generation and
// answers with the batch tally. The request stays open for the whole pass.
func (a *App) GenerateAll(w http.ResponseWriter, r *http.Request) {
	project, ok := a.requireProject(w, r)
	if !ok {
		return
	}
	result, err := a.Orchestrator.GenerateAll(r.Context(), project.Token)
	if err != nil {
		a.domainError(w, err)
		return
	}
	updated, err := a.Store.GetProject(r.Context(), project.Token)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"status":    string(updated.Status),
		"completed": result.Completed,
		"failed":    result.Failed,
		"total":     result.Total,
	})
}

// GenerateMonth drives one month unit; completed months are returned as-is
// without another provider call.
func (a *App) GenerateMonth(w http.ResponseWriter, r *http.Request) {
	project, ok := a.requireProject(w, r)
	if !ok {
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "month must be numeric")
		return
	}
	unit, err := a.Orchestrator.GenerateMonth(r.Context(), project.Token, month)
	if err != nil {
		a.domainError(w, err)
		return
	}
	resp := map[string]any{
		"month":  unit.MonthNumber,
		"status": string(unit.Status),
	}
	if unit.Status == domain.MonthStatusCompleted {
		resp["tier"] = unit.Tier
		resp["generated_at"] = unit.GeneratedAt
		resp["image_url"] = "/api/image/month/" + strconv.Itoa(unit.MonthNumber)
	}
	if unit.ErrorMessage != "" {
		resp["error"] = unit.ErrorMessage
	}
	a.json(w, http.StatusOK, resp)
}
