package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"calshop/internal/domain"
)

// PostgresStore implements domain.Store on top of pgx. Month rows are
// updated one row at a time, so sibling months never see each other's
// writes and same-month races resolve to whichever update commits last.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS calendar_projects (
	token           TEXT PRIMARY KEY,
	status          TEXT NOT NULL,
	calendar_format TEXT NOT NULL DEFAULT '',
	preferences     JSONB,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at    TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS uploaded_images (
	project_token  TEXT NOT NULL REFERENCES calendar_projects(token) ON DELETE CASCADE,
	id             INT NOT NULL,
	filename       TEXT NOT NULL,
	file_data      BYTEA NOT NULL,
	thumbnail_data BYTEA NOT NULL,
	uploaded_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (project_token, id)
);

CREATE TABLE IF NOT EXISTS calendar_months (
	project_token TEXT NOT NULL REFERENCES calendar_projects(token) ON DELETE CASCADE,
	month_number  INT NOT NULL CHECK (month_number BETWEEN 1 AND 12),
	prompt        TEXT NOT NULL,
	status        TEXT NOT NULL,
	image_data    BYTEA,
	error_message TEXT NOT NULL DEFAULT '',
	tier          INT NOT NULL DEFAULT 0,
	generated_at  TIMESTAMPTZ,
	PRIMARY KEY (project_token, month_number)
);

CREATE TABLE IF NOT EXISTS orders (
	id             TEXT PRIMARY KEY,
	project_token  TEXT NOT NULL UNIQUE REFERENCES calendar_projects(token) ON DELETE CASCADE,
	email          TEXT NOT NULL,
	product_type   TEXT NOT NULL,
	print_order_id TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate applies the schema. Statements are idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateProject(ctx context.Context) (*domain.Project, error) {
	p := domain.Project{Token: uuid.NewString(), Status: domain.ProjectStatusNew}
	row := s.pool.QueryRow(ctx, `
INSERT INTO calendar_projects (token, status)
VALUES ($1, $2)
RETURNING created_at, updated_at;
`, p.Token, p.Status)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) GetProject(ctx context.Context, token string) (*domain.Project, error) {
	row := s.pool.QueryRow(ctx, `
SELECT token, status, calendar_format, created_at, updated_at, completed_at
FROM calendar_projects WHERE token = $1;
`, token)
	var p domain.Project
	if err := row.Scan(&p.Token, &p.Status, &p.CalendarFormat, &p.CreatedAt, &p.UpdatedAt, &p.CompletedAt); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// UpdateProjectStatus reads the current status under a row lock so the
// transition check and the write are one atomic step.
func (s *PostgresStore) UpdateProjectStatus(ctx context.Context, token string, status domain.ProjectStatus) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var current domain.ProjectStatus
	row := tx.QueryRow(ctx, `SELECT status FROM calendar_projects WHERE token = $1 FOR UPDATE;`, token)
	if err := row.Scan(&current); err != nil {
		return notFound(err)
	}
	if !domain.CanTransition(current, status) {
		return fmt.Errorf("%w: project cannot move from %s to %s", domain.ErrInput, current, status)
	}

	var completedAt *time.Time
	if status == domain.ProjectStatusCompleted {
		now := time.Now().UTC()
		completedAt = &now
	}
	if _, err := tx.Exec(ctx, `
UPDATE calendar_projects
SET status = $2, updated_at = NOW(), completed_at = COALESCE($3, completed_at)
WHERE token = $1;
`, token, status, completedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) SetCalendarFormat(ctx context.Context, token, format string) error {
	tag, err := s.pool.Exec(ctx, `
UPDATE calendar_projects SET calendar_format = $2, updated_at = NOW() WHERE token = $1;
`, token, format)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetPreferences(ctx context.Context, token string, prefs domain.Preferences) error {
	payload, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
UPDATE calendar_projects SET preferences = $2, updated_at = NOW() WHERE token = $1;
`, token, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetPreferences(ctx context.Context, token string) (*domain.Preferences, error) {
	row := s.pool.QueryRow(ctx, `SELECT preferences FROM calendar_projects WHERE token = $1;`, token)
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		return nil, notFound(err)
	}
	if len(payload) == 0 {
		return nil, nil
	}
	var prefs domain.Preferences
	if err := json.Unmarshal(payload, &prefs); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	return &prefs, nil
}

func (s *PostgresStore) AddReferenceImage(ctx context.Context, token, filename string, data, thumbnail []byte) (int, error) {
	row := s.pool.QueryRow(ctx, `
INSERT INTO uploaded_images (project_token, id, filename, file_data, thumbnail_data)
SELECT token, COALESCE((SELECT MAX(id) FROM uploaded_images WHERE project_token = $1), 0) + 1, $2, $3, $4
FROM calendar_projects WHERE token = $1
RETURNING id;
`, token, filename, data, thumbnail)
	var id int
	if err := row.Scan(&id); err != nil {
		return 0, notFound(err)
	}
	return id, nil
}

func (s *PostgresStore) ListReferenceImages(ctx context.Context, token string) ([]domain.ReferenceImage, error) {
	if err := s.ensureProject(ctx, token); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
SELECT id, filename, file_data, thumbnail_data, uploaded_at
FROM uploaded_images WHERE project_token = $1 ORDER BY id;
`, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.ReferenceImage
	for rows.Next() {
		var img domain.ReferenceImage
		if err := rows.Scan(&img.ID, &img.Filename, &img.Data, &img.Thumbnail, &img.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetReferenceImage(ctx context.Context, token string, id int) (*domain.ReferenceImage, error) {
	row := s.pool.QueryRow(ctx, `
SELECT id, filename, file_data, thumbnail_data, uploaded_at
FROM uploaded_images WHERE project_token = $1 AND id = $2;
`, token, id)
	var img domain.ReferenceImage
	if err := row.Scan(&img.ID, &img.Filename, &img.Data, &img.Thumbnail, &img.UploadedAt); err != nil {
		return nil, notFound(err)
	}
	return &img, nil
}

func (s *PostgresStore) DeleteReferenceImage(ctx context.Context, token string, id int) error {
	if err := s.ensureProject(ctx, token); err != nil {
		return err
	}
	// Deleting an unknown id is a no-op.
	_, err := s.pool.Exec(ctx, `
DELETE FROM uploaded_images WHERE project_token = $1 AND id = $2;
`, token, id)
	return err
}

func (s *PostgresStore) InitializeMonths(ctx context.Context, token string, prompts map[int]string) error {
	if err := validateMonthPrompts(prompts); err != nil {
		return err
	}
	if err := s.ensureProject(ctx, token); err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM calendar_months WHERE project_token = $1;`, token); err != nil {
		return err
	}
	for n := 1; n <= domain.MonthCount; n++ {
		if _, err := tx.Exec(ctx, `
INSERT INTO calendar_months (project_token, month_number, prompt, status)
VALUES ($1, $2, $3, $4);
`, token, n, prompts[n], domain.MonthStatusPending); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) ListMonths(ctx context.Context, token string) ([]domain.MonthUnit, error) {
	if err := s.ensureProject(ctx, token); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
SELECT month_number, prompt, status, image_data, error_message, tier, generated_at
FROM calendar_months WHERE project_token = $1 ORDER BY month_number;
`, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.MonthUnit
	for rows.Next() {
		var m domain.MonthUnit
		if err := rows.Scan(&m.MonthNumber, &m.Prompt, &m.Status, &m.ImageData, &m.ErrorMessage, &m.Tier, &m.GeneratedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetMonth(ctx context.Context, token string, month int) (*domain.MonthUnit, error) {
	row := s.pool.QueryRow(ctx, `
SELECT month_number, prompt, status, image_data, error_message, tier, generated_at
FROM calendar_months WHERE project_token = $1 AND month_number = $2;
`, token, month)
	var m domain.MonthUnit
	if err := row.Scan(&m.MonthNumber, &m.Prompt, &m.Status, &m.ImageData, &m.ErrorMessage, &m.Tier, &m.GeneratedAt); err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *PostgresStore) UpdateMonthStatus(ctx context.Context, token string, month int, update domain.MonthUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}
	var tag interface{ RowsAffected() int64 }
	var err error
	switch update.Status {
	case domain.MonthStatusCompleted:
		tag, err = s.pool.Exec(ctx, `
UPDATE calendar_months
SET status = $3, image_data = $4, tier = $5, error_message = '', generated_at = NOW()
WHERE project_token = $1 AND month_number = $2;
`, token, month, update.Status, update.ImageData, update.Tier)
	case domain.MonthStatusFailed:
		tag, err = s.pool.Exec(ctx, `
UPDATE calendar_months
SET status = $3, error_message = $4
WHERE project_token = $1 AND month_number = $2;
`, token, month, update.Status, update.ErrorMessage)
	default:
		// processing/pending keep the previous attempt's image and error.
		tag, err = s.pool.Exec(ctx, `
UPDATE calendar_months SET status = $3
WHERE project_token = $1 AND month_number = $2;
`, token, month, update.Status)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CompletionCount(ctx context.Context, token string) (int, error) {
	if err := s.ensureProject(ctx, token); err != nil {
		return 0, err
	}
	row := s.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM calendar_months WHERE project_token = $1 AND status = $2;
`, token, domain.MonthStatusCompleted)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *PostgresStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	row := s.pool.QueryRow(ctx, `
INSERT INTO orders (id, project_token, email, product_type, print_order_id, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at;
`, order.ID, order.ProjectToken, order.Email, order.ProductType, order.PrintOrderID, order.Status)
	return row.Scan(&order.CreatedAt)
}

func (s *PostgresStore) GetOrderByProject(ctx context.Context, token string) (*domain.Order, error) {
	row := s.pool.QueryRow(ctx, `
SELECT id, project_token, email, product_type, print_order_id, status, created_at
FROM orders WHERE project_token = $1;
`, token)
	var o domain.Order
	if err := row.Scan(&o.ID, &o.ProjectToken, &o.Email, &o.ProductType, &o.PrintOrderID, &o.Status, &o.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, printOrderID string) error {
	tag, err := s.pool.Exec(ctx, `
UPDATE orders
SET status = $2, print_order_id = CASE WHEN $3 <> '' THEN $3 ELSE print_order_id END
WHERE id = $1;
`, orderID, status, printOrderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ensureProject(ctx context.Context, token string) error {
	row := s.pool.QueryRow(ctx, `SELECT 1 FROM calendar_projects WHERE token = $1;`, token)
	var one int
	if err := row.Scan(&one); err != nil {
		return notFound(err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

var _ domain.Store = (*PostgresStore)(nil)

// StaleProcessingProjects returns tokens of projects that entered processing
// before the cutoff and still carry unfinished months. The background worker
// uses it to resume batches abandoned by a dead API process.
func (s *PostgresStore) StaleProcessingProjects(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
SELECT p.token
FROM calendar_projects p
WHERE p.status = 'processing'
  AND p.updated_at < $1
  AND EXISTS (
    SELECT 1 FROM calendar_months m
    WHERE m.project_token = p.token AND m.status IN ('pending', 'processing')
  )
ORDER BY p.updated_at
LIMIT $2;
`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
