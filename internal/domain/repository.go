package domain

import "context"

// Store is the single shared mutable resource of the service: project,
// reference image, month unit and order persistence keyed by the opaque
// project token. Implementations must apply each month update atomically and
// independently of sibling months; concurrent updates to the same month
// resolve last-write-wins.
type Store interface {
	// CreateProject initializes a project in the new status and returns it
	// with a freshly assigned token.
	CreateProject(ctx context.Context) (*Project, error)
	GetProject(ctx context.Context, token string) (*Project, error)
	// UpdateProjectStatus applies a lifecycle transition, rejecting moves the
	// transition table does not permit.
	UpdateProjectStatus(ctx context.Context, token string, status ProjectStatus) error
	SetCalendarFormat(ctx context.Context, token, format string) error

	SetPreferences(ctx context.Context, token string, prefs Preferences) error
	// GetPreferences returns nil without error when the project has none.
	GetPreferences(ctx context.Context, token string) (*Preferences, error)

	AddReferenceImage(ctx context.Context, token, filename string, data, thumbnail []byte) (int, error)
	ListReferenceImages(ctx context.Context, token string) ([]ReferenceImage, error)
	GetReferenceImage(ctx context.Context, token string, id int) (*ReferenceImage, error)
	// DeleteReferenceImage is idempotent: deleting an unknown id is a no-op.
	DeleteReferenceImage(ctx context.Context, token string, id int) error

	// InitializeMonths creates exactly twelve month units in pending status,
	// discarding any prior set including completed images.
	InitializeMonths(ctx context.Context, token string, prompts map[int]string) error
	ListMonths(ctx context.Context, token string) ([]MonthUnit, error)
	GetMonth(ctx context.Context, token string, month int) (*MonthUnit, error)
	UpdateMonthStatus(ctx context.Context, token string, month int, update MonthUpdate) error
	CompletionCount(ctx context.Context, token string) (int, error)

	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByProject(ctx context.Context, token string) (*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus, printOrderID string) error
}
