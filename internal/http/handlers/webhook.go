package handlers

import (
	"errors"
	"io"
	"net/http"

	"calshop/internal/domain"
	"calshop/internal/fulfillment"
	"calshop/internal/payments"
)

const maxWebhookBytes = 1 << 20

// StripeWebhook verifies and processes payment events. Only
// checkout.session.completed triggers fulfillment; everything else is
// acknowledged and dropped. Nothing runs before the signature checks out.
func (a *App) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable payload")
		return
	}

	if err := a.Verifier.Verify(payload, r.Header.Get("Stripe-Signature")); err != nil {
		a.Logger.Warn().Err(err).Msg("webhook signature rejected")
		a.domainError(w, err)
		return
	}

	event, err := payments.ParseEvent(payload)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if event.Type != payments.CheckoutSessionCompleted {
		a.json(w, http.StatusOK, map[string]any{"received": true})
		return
	}

	session, err := payments.ParseCheckoutSession(event)
	if err != nil {
		a.domainError(w, err)
		return
	}
	token := session.ProjectToken()
	if token == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "session metadata missing project_token")
		return
	}

	order, err := a.Store.GetOrderByProject(r.Context(), token)
	if errors.Is(err, domain.ErrNotFound) {
		// Checkout can complete without the order endpoint having been hit,
		// e.g. a payment link shared out of band.
		order = &domain.Order{
			ID:           event.ID,
			ProjectToken: token,
			Email:        session.CustomerDetails.Email,
			ProductType:  session.ProductType(),
			Status:       domain.OrderStatusPending,
		}
		if cerr := a.Store.CreateOrder(r.Context(), order); cerr != nil {
			a.domainError(w, cerr)
			return
		}
		if terr := a.Store.UpdateProjectStatus(r.Context(), token, domain.ProjectStatusCheckout); terr != nil {
			a.Logger.Warn().Err(terr).Str("project", token).Msg("project not in a checkout-able state")
		}
	} else if err != nil {
		a.domainError(w, err)
		return
	}

	shipping := session.ShippingAddress()
	address := fulfillment.OrderAddress{
		FirstName: shipping.FirstName,
		LastName:  shipping.LastName,
		Email:     order.Email,
		Phone:     shipping.Phone,
		Country:   shipping.Country,
		Region:    shipping.Region,
		Address1:  shipping.Address1,
		Address2:  shipping.Address2,
		City:      shipping.City,
		Zip:       shipping.Zip,
	}

	printOrderID, err := a.Fulfiller.Fulfill(r.Context(), order, address)
	if err != nil {
		// The payment is captured; acknowledge the event so the provider
		// stops retrying and leave the failed order for operator retry.
		a.Logger.Error().Err(err).Str("order", order.ID).Msg("fulfillment failed")
		a.json(w, http.StatusOK, map[string]any{"received": true, "fulfilled": false})
		return
	}

	if err := a.Store.UpdateProjectStatus(r.Context(), token, domain.ProjectStatusCompleted); err != nil {
		a.Logger.Error().Err(err).Str("project", token).Msg("mark project completed")
	}
	a.json(w, http.StatusOK, map[string]any{
		"received":       true,
		"fulfilled":      true,
		"print_order_id": printOrderID,
	})
}
