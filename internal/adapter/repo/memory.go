package repo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"calshop/internal/domain"
)

// MemoryStore keeps all project state in process memory behind one mutex.
// It backs tests and single-instance deployments without a database. Month
// updates are applied whole under the lock, so concurrent updates to
// different months never interleave and same-month races resolve
// last-write-wins.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]*projectRecord
	orders   map[string]*domain.Order
}

type projectRecord struct {
	project     domain.Project
	preferences *domain.Preferences
	images      []domain.ReferenceImage
	nextImageID int
	months      map[int]*domain.MonthUnit
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[string]*projectRecord),
		orders:   make(map[string]*domain.Order),
	}
}

func (s *MemoryStore) CreateProject(_ context.Context) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p := domain.Project{
		Token:     uuid.NewString(),
		Status:    domain.ProjectStatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.projects[p.Token] = &projectRecord{
		project:     p,
		nextImageID: 1,
		months:      make(map[int]*domain.MonthUnit),
	}
	out := p
	return &out, nil
}

func (s *MemoryStore) GetProject(_ context.Context, token string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.projects[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := rec.project
	return &out, nil
}

func (s *MemoryStore) UpdateProjectStatus(_ context.Context, token string, status domain.ProjectStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.projects[token]
	if !ok {
		return domain.ErrNotFound
	}
	if !domain.CanTransition(rec.project.Status, status) {
		return fmt.Errorf("%w: project cannot move from %s to %s", domain.ErrInput, rec.project.Status, status)
	}
	rec.project.Status = status
	rec.project.UpdatedAt = time.Now().UTC()
	if status == domain.ProjectStatusCompleted {
		now := time.Now().UTC()
		rec.project.CompletedAt = &now
	}
	return nil
}

func (s *MemoryStore) SetCalendarFormat(_ context.Context, token, format string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.projects[token]
	if !ok {
		return domain.ErrNotFound
	}
	rec.project.CalendarFormat = format
	rec.project.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) SetPreferences(_ context.Context, token string, prefs domain.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.projects[token]
	if !ok {
		return domain.ErrNotFound
	}
	p := prefs
	rec.preferences = &p
	return nil
}

func (s *MemoryStore) GetPreferences(_ context.Context, token string) (*domain.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.projects[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if rec.preferences == nil {
		return nil, nil
	}
	out := *rec.preferences
	return &out, nil
}

func (s *MemoryStore) AddReferenceImage(_ context.Context, token, filename string, data, thumbnail []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.projects[token]
	if !ok {
		return 0, domain.ErrNotFound
	}
	id := rec.nextImageID
	rec.nextImageID++
	rec.images = append(rec.images, domain.ReferenceImage{
		ID:         id,
		Filename:   filename,
		Data:       data,
		Thumbnail:  thumbnail,
		UploadedAt: time.Now().UTC(),
	})
	return id, nil
}

func (s *MemoryStore) ListReferenceImages(_ context.Context, token string) ([]domain.ReferenceImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.projects[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.ReferenceImage, len(rec.images))
	copy(out, rec.images)
	return out, nil
}

func (s *MemoryStore) GetReferenceImage(_ context.Context, token string, id int) (*domain.ReferenceImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.projects[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, img := range rec.images {
		if img.ID == id {
			out := img
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *MemoryStore) DeleteReferenceImage(_ context.Context, token string, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.projects[token]
	if !ok {
		return domain.ErrNotFound
	}
	// Unknown ids are a no-op.
	kept := rec.images[:0]
	for _, img := range rec.images {
		if img.ID != id {
			kept = append(kept, img)
		}
	}
	rec.images = kept
	return nil
}

func (s *MemoryStore) InitializeMonths(_ context.Context, token string, prompts map[int]string) error {
	if err := validateMonthPrompts(prompts); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.projects[token]
	if !ok {
		return domain.ErrNotFound
	}
	// Full reset: prior month units, completed images included, are dropped.
	rec.months = make(map[int]*domain.MonthUnit, domain.MonthCount)
	for n := 1; n <= domain.MonthCount; n++ {
		rec.months[n] = &domain.MonthUnit{
			MonthNumber: n,
			Prompt:      prompts[n],
			Status:      domain.MonthStatusPending,
		}
	}
	return nil
}

func (s *MemoryStore) ListMonths(_ context.Context, token string) ([]domain.MonthUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.projects[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.MonthUnit, 0, len(rec.months))
	for n := 1; n <= domain.MonthCount; n++ {
		if m, ok := rec.months[n]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetMonth(_ context.Context, token string, month int) (*domain.MonthUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.projects[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	m, ok := rec.months[month]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *m
	return &out, nil
}

func (s *MemoryStore) UpdateMonthStatus(_ context.Context, token string, month int, update domain.MonthUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.projects[token]
	if !ok {
		return domain.ErrNotFound
	}
	m, ok := rec.months[month]
	if !ok {
		return domain.ErrNotFound
	}
	m.Status = update.Status
	switch update.Status {
	case domain.MonthStatusCompleted:
		now := time.Now().UTC()
		m.ImageData = update.ImageData
		m.GeneratedAt = &now
		m.Tier = update.Tier
		m.ErrorMessage = ""
	case domain.MonthStatusFailed:
		m.ErrorMessage = update.ErrorMessage
	case domain.MonthStatusProcessing, domain.MonthStatusPending:
		// Prior image and error are preserved until a terminal result
		// overwrites them.
	}
	return nil
}

func (s *MemoryStore) CompletionCount(_ context.Context, token string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.projects[token]
	if !ok {
		return 0, domain.ErrNotFound
	}
	count := 0
	for _, m := range rec.months {
		if m.Status == domain.MonthStatusCompleted {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CreateOrder(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[order.ProjectToken]; !ok {
		return domain.ErrNotFound
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	stored := *order
	s.orders[order.ID] = &stored
	return nil
}

func (s *MemoryStore) GetOrderByProject(_ context.Context, token string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ProjectToken == token {
			out := *o
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *MemoryStore) UpdateOrderStatus(_ context.Context, orderID string, status domain.OrderStatus, printOrderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	if printOrderID != "" {
		o.PrintOrderID = printOrderID
	}
	return nil
}

func validateMonthPrompts(prompts map[int]string) error {
	if len(prompts) != domain.MonthCount {
		return fmt.Errorf("%w: expected %d month prompts, got %d", domain.ErrInput, domain.MonthCount, len(prompts))
	}
	for n := 1; n <= domain.MonthCount; n++ {
		if _, ok := prompts[n]; !ok {
			return fmt.Errorf("%w: missing prompt for month %d", domain.ErrInput, n)
		}
	}
	return nil
}

var _ domain.Store = (*MemoryStore)(nil)
