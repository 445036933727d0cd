// Package repository provides PostgreSQL persistence for quotes.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agency_portal_backend/internal/catalog"
	"agency_portal_backend/internal/pricing"
)

// ErrNotFound is returned when a quote does not exist.
var ErrNotFound = errors.New("quote not found")

// Status is the quote lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusConverted Status = "CONVERTED"
)

// Quote is a priced request for services. The price breakdown is frozen at
// submission time; catalog changes never reprice stored quotes.
type Quote struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Name         string
	Email        string
	Phone        *string
	Company      *string
	ServiceType  catalog.ServiceType
	PackageType  catalog.PackageType
	Currency     catalog.Currency
	BasePrice    int64
	AddonsPrice  int64
	TotalPrice   int64
	TimelineDays int
	Features     []string
	Addons       []pricing.AppliedAddon
	Message      *string
	AdminNotes   *string
	Status       Status
	ValidUntil   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListParams filters and paginates admin quote listings.
type ListParams struct {
	Status      Status
	ServiceType catalog.ServiceType
	Limit       int
	Offset      int
}

type Repository struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const quoteColumns = `id, user_id, name, email, phone, company, service_type, package_type, currency,
	base_price, addons_price, total_price, timeline_days, features, addons,
	message, admin_notes, status, valid_until, created_at, updated_at`

const selectQuote = `SELECT ` + quoteColumns + ` FROM quotes`

func (r *Repository) Create(ctx context.Context, q *Quote) (*Quote, error) {
	features, addons, err := encodeJSONFields(q)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO quotes (user_id, name, email, phone, company, service_type, package_type, currency,
			base_price, addons_price, total_price, timeline_days, features, addons, message, status, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		q.UserID, q.Name, q.Email, q.Phone, q.Company, q.ServiceType, q.PackageType, q.Currency,
		q.BasePrice, q.AddonsPrice, q.TotalPrice, q.TimelineDays, features, addons,
		q.Message, q.Status, q.ValidUntil,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	return scanQuote(r.db.QueryRow(ctx, selectQuote+` WHERE id = $1`, id))
}

// List returns quotes newest first with optional status and service filters.
func (r *Repository) List(ctx context.Context, params ListParams) ([]*Quote, int64, error) {
	where := ""
	args := []interface{}{}
	if params.Status != "" {
		args = append(args, params.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if params.ServiceType != "" {
		args = append(args, params.ServiceType)
		where += fmt.Sprintf(" AND service_type = $%d", len(args))
	}
	if where != "" {
		where = " WHERE" + where[4:]
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quotes`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := selectQuote + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	quotes, err := scanQuotes(rows)
	if err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

// ListByUser returns a client's own quotes, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Quote, error) {
	rows, err := r.db.Query(ctx, selectQuote+` WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuotes(rows)
}

// UpdateParams patches a quote alongside a lifecycle transition. Nil fields
// are left untouched, never nulled.
type UpdateParams struct {
	Status       *Status
	AdminNotes   *string
	Message      *string
	TotalPrice   *int64
	ValidUntil   *time.Time
	ServiceType  *catalog.ServiceType
	PackageType  *catalog.PackageType
	TimelineDays *int
	Currency     *catalog.Currency
}

// Update applies a partial update decided by the lifecycle and returns the
// updated row. Last write wins.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Quote, error) {
	query := `
		UPDATE quotes SET
			status = COALESCE($2, status),
			admin_notes = COALESCE($3, admin_notes),
			message = COALESCE($4, message),
			total_price = COALESCE($5, total_price),
			valid_until = COALESCE($6, valid_until),
			service_type = COALESCE($7, service_type),
			package_type = COALESCE($8, package_type),
			timeline_days = COALESCE($9, timeline_days),
			currency = COALESCE($10, currency),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + quoteColumns
	return scanQuote(r.db.QueryRow(ctx, query,
		id, params.Status, params.AdminNotes, params.Message, params.TotalPrice,
		params.ValidUntil, params.ServiceType, params.PackageType,
		params.TimelineDays, params.Currency))
}

// Delete removes a quote. The caller has already verified no project exists.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus returns quote totals grouped by status.
func (r *Repository) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM quotes GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int64)
	for rows.Next() {
		var status Status
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// SumTotalByStatus sums total_price over quotes in a status, per currency.
func (r *Repository) SumTotalByStatus(ctx context.Context, status Status) (map[string]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT currency, COALESCE(SUM(total_price), 0) FROM quotes WHERE status = $1 GROUP BY currency`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[string]int64)
	for rows.Next() {
		var currency string
		var sum int64
		if err := rows.Scan(&currency, &sum); err != nil {
			return nil, err
		}
		sums[currency] = sum
	}
	return sums, rows.Err()
}

func encodeJSONFields(q *Quote) (features, addons []byte, err error) {
	if q.Features == nil {
		q.Features = []string{}
	}
	if q.Addons == nil {
		q.Addons = []pricing.AppliedAddon{}
	}
	features, err = json.Marshal(q.Features)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal features: %w", err)
	}
	addons, err = json.Marshal(q.Addons)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal addons: %w", err)
	}
	return features, addons, nil
}

func scanQuote(row pgx.Row) (*Quote, error) {
	var q Quote
	var features, addons []byte
	err := row.Scan(&q.ID, &q.UserID, &q.Name, &q.Email, &q.Phone, &q.Company,
		&q.ServiceType, &q.PackageType, &q.Currency,
		&q.BasePrice, &q.AddonsPrice, &q.TotalPrice, &q.TimelineDays, &features, &addons,
		&q.Message, &q.AdminNotes, &q.Status, &q.ValidUntil, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := decodeJSONFields(&q, features, addons); err != nil {
		return nil, err
	}
	return &q, nil
}

func scanQuotes(rows pgx.Rows) ([]*Quote, error) {
	var quotes []*Quote
	for rows.Next() {
		var q Quote
		var features, addons []byte
		if err := rows.Scan(&q.ID, &q.UserID, &q.Name, &q.Email, &q.Phone, &q.Company,
			&q.ServiceType, &q.PackageType, &q.Currency,
			&q.BasePrice, &q.AddonsPrice, &q.TotalPrice, &q.TimelineDays, &features, &addons,
			&q.Message, &q.AdminNotes, &q.Status, &q.ValidUntil, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		if err := decodeJSONFields(&q, features, addons); err != nil {
			return nil, err
		}
		quotes = append(quotes, &q)
	}
	return quotes, rows.Err()
}

func decodeJSONFields(q *Quote, features, addons []byte) error {
	if len(features) > 0 {
		if err := json.Unmarshal(features, &q.Features); err != nil {
			return fmt.Errorf("unmarshal features: %w", err)
		}
	}
	if len(addons) > 0 {
		if err := json.Unmarshal(addons, &q.Addons); err != nil {
			return fmt.Errorf("unmarshal addons: %w", err)
		}
	}
	return nil
}
