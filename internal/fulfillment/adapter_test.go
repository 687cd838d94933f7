package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calshop/internal/adapter/repo"
	"calshop/internal/domain"
)

type fakePrintify struct {
	uploads     int32
	requests    int32
	failUploads bool
	lastProduct map[string]any
}

func (f *fakePrintify) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /shops.json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.requests, 1)
		fmt.Fprint(w, `[{"id": 777}]`)
	})
	mux.HandleFunc("POST /uploads/images.json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.requests, 1)
		if f.failUploads {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"message": "upload rejected"}`)
			return
		}
		n := atomic.AddInt32(&f.uploads, 1)
		fmt.Fprintf(w, `{"id": "up-%d"}`, n)
	})
	mux.HandleFunc("POST /shops/777/products.json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.requests, 1)
		_ = json.NewDecoder(r.Body).Decode(&f.lastProduct)
		fmt.Fprint(w, `{"id": "prod-1"}`)
	})
	mux.HandleFunc("POST /shops/777/products/prod-1/publish.json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.requests, 1)
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("POST /shops/777/orders.json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.requests, 1)
		fmt.Fprint(w, `{"id": "porder-1"}`)
	})
	mux.HandleFunc("POST /shops/777/orders/porder-1/send_to_production.json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.requests, 1)
		fmt.Fprint(w, `{}`)
	})
	return mux
}

func seedProject(t *testing.T, store *repo.MemoryStore, completedMonths int) *domain.Order {
	t.Helper()
	ctx := context.Background()
	p, err := store.CreateProject(ctx)
	require.NoError(t, err)

	prompts := make(map[int]string, domain.MonthCount)
	for m := 1; m <= domain.MonthCount; m++ {
		prompts[m] = "prompt"
	}
	require.NoError(t, store.InitializeMonths(ctx, p.Token, prompts))
	for m := 1; m <= completedMonths; m++ {
		require.NoError(t, store.UpdateMonthStatus(ctx, p.Token, m, domain.MonthUpdate{
			Status:    domain.MonthStatusCompleted,
			ImageData: []byte{0xff, 0xd8, byte(m)},
		}))
	}

	order := &domain.Order{
		ID:           "ord-1",
		ProjectToken: p.Token,
		Email:        "buyer@example.com",
		ProductType:  "calendar_2026",
		Status:       domain.OrderStatusPending,
	}
	require.NoError(t, store.CreateOrder(ctx, order))
	return order
}

func testAddress() OrderAddress {
	return OrderAddress{
		FirstName: "Ada", LastName: "Lovelace", Email: "buyer@example.com",
		Country: "US", Region: "NY", Address1: "1 Main St", City: "New York", Zip: "10001",
	}
}

func TestFulfillSubmitsCompleteCalendar(t *testing.T) {
	fake := &fakePrintify{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	store := repo.NewMemoryStore()
	order := seedProject(t, store, 12)

	client := NewPrintifyClient(PrintifyOptions{BaseURL: srv.URL, APIToken: "tok"})
	svc := NewService(store, client, zerolog.Nop())

	printOrderID, err := svc.Fulfill(context.Background(), order, testAddress())
	require.NoError(t, err)
	assert.Equal(t, "porder-1", printOrderID)

	got, err := store.GetOrderByProject(context.Background(), order.ProjectToken)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusSubmitted, got.Status)
	assert.Equal(t, "porder-1", got.PrintOrderID)

	// front_cover plus twelve month placeholders.
	areas := fake.lastProduct["print_areas"].([]any)
	require.Len(t, areas, 1)
	placeholders := areas[0].(map[string]any)["placeholders"].([]any)
	assert.Len(t, placeholders, 13)
	assert.Equal(t, "front_cover", placeholders[0].(map[string]any)["position"])
}

func TestFulfillRejectsIncompleteCalendarBeforeAnyUpload(t *testing.T) {
	fake := &fakePrintify{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	store := repo.NewMemoryStore()
	order := seedProject(t, store, 11)

	client := NewPrintifyClient(PrintifyOptions{BaseURL: srv.URL, APIToken: "tok"})
	svc := NewService(store, client, zerolog.Nop())

	_, err := svc.Fulfill(context.Background(), order, testAddress())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "month 12")
	assert.Zero(t, atomic.LoadInt32(&fake.requests), "no provider call may happen with an incomplete calendar")

	got, err := store.GetOrderByProject(context.Background(), order.ProjectToken)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusFailed, got.Status)
}

func TestFulfillMarksOrderFailedOnProviderError(t *testing.T) {
	fake := &fakePrintify{failUploads: true}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	store := repo.NewMemoryStore()
	order := seedProject(t, store, 12)

	client := NewPrintifyClient(PrintifyOptions{BaseURL: srv.URL, APIToken: "tok"})
	svc := NewService(store, client, zerolog.Nop())

	_, err := svc.Fulfill(context.Background(), order, testAddress())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload rejected")

	got, err := store.GetOrderByProject(context.Background(), order.ProjectToken)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusFailed, got.Status)
}

func TestFulfillRejectsUnknownProductType(t *testing.T) {
	store := repo.NewMemoryStore()
	order := seedProject(t, store, 12)
	order.ProductType = "mug"

	svc := NewService(store, NewPrintifyClient(PrintifyOptions{APIToken: "tok"}), zerolog.Nop())
	_, err := svc.Fulfill(context.Background(), order, testAddress())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown product type"))
}
