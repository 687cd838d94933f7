// Package handlers implements the HTTP surface of the calendar service.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"calshop/internal/domain"
	"calshop/internal/fulfillment"
	"calshop/internal/generation"
	"calshop/internal/infra"
	"calshop/internal/payments"
)

// sessionCookie carries the project token between requests.
const sessionCookie = "calshop_token"

type App struct {
	Store        domain.Store
	Orchestrator *generation.Orchestrator
	Fulfiller    fulfillment.Fulfiller
	Verifier     *payments.Verifier
	Config       *infra.Config
	Logger       infra.Logger
}

func NewApp(store domain.Store, orch *generation.Orchestrator, fulfiller fulfillment.Fulfiller, verifier *payments.Verifier, cfg *infra.Config, logger infra.Logger) *App {
	return &App{
		Store:        store,
		Orchestrator: orch,
		Fulfiller:    fulfiller,
		Verifier:     verifier,
		Config:       cfg,
		Logger:       logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, map[string]string{"error": errCode, "message": msg})
}

// domainError maps store and domain sentinels onto HTTP responses.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrInput):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrBadSignature):
		a.error(w, http.StatusBadRequest, "bad_signature", "invalid signature")
	default:
		a.Logger.Error().Err(err).Msg("internal error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// projectToken resolves the caller's project from the session cookie or the
// X-Project-Token header.
func (a *App) projectToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get("X-Project-Token")
}

// requireProject loads the caller's project or answers the request itself.
func (a *App) requireProject(w http.ResponseWriter, r *http.Request) (*domain.Project, bool) {
	token := a.projectToken(r)
	if token == "" {
		a.error(w, http.StatusUnauthorized, "no_session", "no active project session")
		return nil, false
	}
	project, err := a.Store.GetProject(r.Context(), token)
	if err != nil {
		a.domainError(w, err)
		return nil, false
	}
	return project, true
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
