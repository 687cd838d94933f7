package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"calshop/internal/domain"
	"calshop/internal/fulfillment"
)

type checkoutRequest struct {
	Email       string `json:"email"`
	ProductType string `json:"product_type"`
}

// Checkout records a pending order for a fully previewed calendar and moves
// the project to checkout. Payment confirmation arrives on the webhook.
func (a *App) Checkout(w http.ResponseWriter, r *http.Request) {
	project, ok := a.requireProject(w, r)
	if !ok {
		return
	}
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		a.error(w, http.StatusBadRequest, "bad_request", "a valid email is required")
		return
	}
	if req.ProductType == "" {
		req.ProductType = "calendar_2026"
	}
	if _, err := fulfillment.ProductFor(req.ProductType); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	completed, err := a.Store.CompletionCount(r.Context(), project.Token)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if completed < domain.MonthCount {
		a.error(w, http.StatusBadRequest, "bad_request", "all twelve months must be completed before checkout")
		return
	}

	// The transition is the gate: it fails before anything is written, so a
	// rejected checkout leaves no order row behind.
	if err := a.Store.UpdateProjectStatus(r.Context(), project.Token, domain.ProjectStatusCheckout); err != nil {
		a.domainError(w, err)
		return
	}
	if err := a.Store.SetCalendarFormat(r.Context(), project.Token, req.ProductType); err != nil {
		a.domainError(w, err)
		return
	}

	// Re-posting checkout before payment reuses the pending order rather
	// than tripping the one-order-per-project constraint.
	order, err := a.Store.GetOrderByProject(r.Context(), project.Token)
	if errors.Is(err, domain.ErrNotFound) {
		order = &domain.Order{
			ID:           uuid.NewString(),
			ProjectToken: project.Token,
			Email:        req.Email,
			ProductType:  req.ProductType,
			Status:       domain.OrderStatusPending,
		}
		if err := a.Store.CreateOrder(r.Context(), order); err != nil {
			a.domainError(w, err)
			return
		}
	} else if err != nil {
		a.domainError(w, err)
		return
	}

	a.json(w, http.StatusCreated, map[string]any{
		"order_id":     order.ID,
		"status":       string(order.Status),
		"product_type": order.ProductType,
	})
}
