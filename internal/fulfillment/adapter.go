package fulfillment

import (
	"context"
	"fmt"

	"calshop/internal/domain"
	"calshop/internal/infra"
)

// Fulfiller turns a paid project into a submitted print order.
type Fulfiller interface {
	Fulfill(ctx context.Context, order *domain.Order, address OrderAddress) (string, error)
}

// Service implements the full fulfillment pipeline against the print
// provider: verify twelve completed months, upload, assemble the product,
// publish, order, send to production. Nothing is uploaded unless the whole
// calendar is present.
type Service struct {
	store  domain.Store
	client *PrintifyClient
	logger infra.Logger
}

func NewService(store domain.Store, client *PrintifyClient, logger infra.Logger) *Service {
	return &Service{store: store, client: client, logger: logger}
}

var _ Fulfiller = (*Service)(nil)

// Fulfill runs the pipeline for one order and returns the provider's order
// ID. The order row is advanced to submitted on success and failed on any
// error, so operators can retry from the order table.
func (s *Service) Fulfill(ctx context.Context, order *domain.Order, address OrderAddress) (string, error) {
	printOrderID, err := s.fulfill(ctx, order, address)
	if err != nil {
		if uerr := s.store.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusFailed, ""); uerr != nil {
			s.logger.Error().Err(uerr).Str("order", order.ID).Msg("fulfillment: record failure")
		}
		return "", err
	}
	if err := s.store.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusSubmitted, printOrderID); err != nil {
		return "", err
	}
	return printOrderID, nil
}

func (s *Service) fulfill(ctx context.Context, order *domain.Order, address OrderAddress) (string, error) {
	cfg, err := ProductFor(order.ProductType)
	if err != nil {
		return "", err
	}

	months, err := s.store.ListMonths(ctx, order.ProjectToken)
	if err != nil {
		return "", err
	}

	// Collect all twelve images before touching the provider; a missing
	// month aborts with zero uploads made.
	images := make(map[int][]byte, domain.MonthCount)
	for _, m := range months {
		if m.Status == domain.MonthStatusCompleted && len(m.ImageData) > 0 {
			images[m.MonthNumber] = m.ImageData
		}
	}
	for month := 1; month <= domain.MonthCount; month++ {
		if _, ok := images[month]; !ok {
			return "", fmt.Errorf("fulfillment: month %d has no completed image", month)
		}
	}

	uploadIDs := make(map[int]string, domain.MonthCount)
	for month := 1; month <= domain.MonthCount; month++ {
		id, err := s.client.UploadImage(ctx, images[month], fmt.Sprintf("%s.jpg", monthNames[month-1]))
		if err != nil {
			return "", fmt.Errorf("fulfillment: upload month %d: %w", month, err)
		}
		uploadIDs[month] = id
	}
	s.logger.Info().Str("order", order.ID).Int("uploads", len(uploadIDs)).Msg("fulfillment: images uploaded")

	title := fmt.Sprintf("Custom Calendar for %s", order.Email)
	productID, err := s.client.CreateProduct(ctx, cfg, uploadIDs, title)
	if err != nil {
		return "", fmt.Errorf("fulfillment: create product: %w", err)
	}
	if err := s.client.PublishProduct(ctx, productID); err != nil {
		return "", fmt.Errorf("fulfillment: publish product: %w", err)
	}

	externalID := fmt.Sprintf("cal_%s", order.ID)
	printOrderID, err := s.client.CreateOrder(ctx, productID, cfg.VariantID, 1, address, externalID)
	if err != nil {
		return "", fmt.Errorf("fulfillment: create order: %w", err)
	}
	if err := s.client.SubmitOrder(ctx, printOrderID); err != nil {
		return "", fmt.Errorf("fulfillment: submit order: %w", err)
	}

	s.logger.Info().Str("order", order.ID).Str("print_order", printOrderID).
		Str("product", productID).Msg("fulfillment: order sent to production")
	return printOrderID, nil
}
