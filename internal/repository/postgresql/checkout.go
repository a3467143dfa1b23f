package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/checkout"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type checkoutRepository struct {
	db *database.DB
	// tz is the zone passed to AT TIME ZONE to derive the calendar date of attendance_time
	tz string
}

func NewCheckoutRepository(db *database.DB, loc *time.Location) checkout.CheckoutRepository {
	return &checkoutRepository{db: db, tz: sqlTimeZone(loc, time.Now())}
}

// sqlTimeZone names loc the way PostgreSQL understands it. Zones without a
// loadable IANA name (Local, fixed zones) fall back to their offset at now,
// written POSIX style so "UTC-07:00" is seven hours east of Greenwich.
func sqlTimeZone(loc *time.Location, now time.Time) string {
	if loc == nil {
		return "UTC"
	}
	if name := loc.String(); name != "" && name != "Local" {
		if _, err := time.LoadLocation(name); err == nil {
			return name
		}
	}

	_, offset := now.In(loc).Zone()
	sign := "-"
	if offset < 0 {
		sign = "+"
		offset = -offset
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, offset/3600, offset%3600/60)
}

const selectCheckout = `
	SELECT
		c.id, c.user_id, c.latitude, c.longitude, c.photo_path, c.description,
		c.attendance_time, c.created_at, c.updated_at, c.deleted_at,
		u.name AS user_name
	FROM checkout_records c
	LEFT JOIN users u ON u.id = c.user_id
`

// Create implements checkout.CheckoutRepository.
func (r *checkoutRepository) Create(ctx context.Context, record checkout.Record) (checkout.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO checkout_records (
			id, user_id, latitude, longitude, photo_path, description, attendance_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.ID,
		record.UserID,
		record.Latitude,
		record.Longitude,
		record.PhotoPath,
		record.Description,
		record.AttendanceTime,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return checkout.Record{}, fmt.Errorf("failed to insert check-out: %w", err)
	}

	return record, nil
}

// GetByID implements checkout.CheckoutRepository.
func (r *checkoutRepository) GetByID(ctx context.Context, id string, scope checkout.Scope) (checkout.Record, error) {
	q := GetQuerier(ctx, r.db)

	where, args := scopeWhere(scope, []any{id}, "c.id = $1")
	query := selectCheckout + " WHERE " + where
	if inTransaction(ctx) {
		query += " FOR UPDATE OF c"
	}

	record, err := scanCheckout(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return checkout.Record{}, checkout.ErrRecordNotFound
		}
		return checkout.Record{}, fmt.Errorf("failed to get check-out: %w", err)
	}
	return record, nil
}

// WithinTransaction implements checkout.CheckoutRepository.
func (r *checkoutRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTransaction(ctx) {
		return fn(ctx)
	}
	return WithTransaction(ctx, r.db, fn)
}

// Update implements checkout.CheckoutRepository.
func (r *checkoutRepository) Update(ctx context.Context, record checkout.Record, scope checkout.Scope) error {
	q := GetQuerier(ctx, r.db)

	args := []any{record.Latitude, record.Longitude, record.Description, record.PhotoPath, record.ID}
	where, args := scopeWhere(scope, args, "id = $5")
	where = strings.ReplaceAll(where, "c.user_id", "user_id")

	query := `
		UPDATE checkout_records
		SET latitude = $1, longitude = $2, description = $3, photo_path = $4, updated_at = NOW()
		WHERE ` + where

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update check-out: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return checkout.ErrRecordNotFound
	}
	return nil
}

// List implements checkout.CheckoutRepository.
func (r *checkoutRepository) List(ctx context.Context, filter checkout.CheckoutFilter, scope checkout.Scope) ([]checkout.Record, int64, error) {
	q := GetQuerier(ctx, r.db)

	where, args, err := r.filterWhere(filter, scope)
	if err != nil {
		return nil, 0, err
	}

	countQuery := `
		SELECT COUNT(*)
		FROM checkout_records c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE ` + where
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count check-outs: %w", err)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := max(filter.Page, 1)
	argIdx := len(args) + 1
	args = append(args, limit, (page-1)*limit)

	query := fmt.Sprintf("%s WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		selectCheckout, where, orderBy(filter), argIdx, argIdx+1)

	records, err := r.query(ctx, q, query, args)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListAll implements checkout.CheckoutRepository.
func (r *checkoutRepository) ListAll(ctx context.Context, filter checkout.CheckoutFilter, scope checkout.Scope) ([]checkout.Record, error) {
	q := GetQuerier(ctx, r.db)

	where, args, err := r.filterWhere(filter, scope)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY %s", selectCheckout, where, orderBy(filter))
	return r.query(ctx, q, query, args)
}

// SoftDelete implements checkout.CheckoutRepository.
func (r *checkoutRepository) SoftDelete(ctx context.Context, ids []string, scope checkout.Scope) (int64, error) {
	q := GetQuerier(ctx, r.db)

	where, args := scopeWhere(scope, []any{ids}, "id = ANY($1) AND deleted_at IS NULL")
	where = strings.ReplaceAll(where, "c.user_id", "user_id")

	tag, err := q.Exec(ctx, `UPDATE checkout_records SET deleted_at = NOW(), updated_at = NOW() WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete check-outs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// filterWhere builds the WHERE clause shared by List and ListAll.
// Soft-deleted rows are never excluded.
func (r *checkoutRepository) filterWhere(filter checkout.CheckoutFilter, scope checkout.Scope) (string, []any, error) {
	dateRange, err := filter.DateRange()
	if err != nil {
		return "", nil, err
	}

	where, args := scopeWhere(scope, nil, "TRUE")
	argIdx := len(args) + 1

	if filter.UserName != nil && *filter.UserName != "" {
		where += fmt.Sprintf(" AND u.name ILIKE $%d", argIdx)
		args = append(args, "%"+*filter.UserName+"%")
		argIdx++
	}

	if dateRange.From != nil || dateRange.To != nil {
		localDate := fmt.Sprintf("(c.attendance_time AT TIME ZONE $%d)::date", argIdx)
		args = append(args, r.tz)
		argIdx++

		if dateRange.From != nil {
			where += fmt.Sprintf(" AND %s >= $%d::date", localDate, argIdx)
			args = append(args, dateRange.From.Format(checkout.DateLayout))
			argIdx++
		}
		if dateRange.To != nil {
			where += fmt.Sprintf(" AND %s <= $%d::date", localDate, argIdx)
			args = append(args, dateRange.To.Format(checkout.DateLayout))
		}
	}

	return where, args, nil
}

// scopeWhere appends the row visibility predicate to base.
func scopeWhere(scope checkout.Scope, args []any, base string) (string, []any) {
	if scope.All() {
		return base, args
	}
	args = append(args, *scope.UserID)
	return fmt.Sprintf("%s AND c.user_id = $%d", base, len(args)), args
}

func orderBy(filter checkout.CheckoutFilter) string {
	field := "c.attendance_time"
	if filter.SortBy == "user_name" {
		field = "u.name"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}
	return fmt.Sprintf("%s %s, c.id %s", field, sortOrder, sortOrder)
}

func (r *checkoutRepository) query(ctx context.Context, q database.Querier, query string, args []any) ([]checkout.Record, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query check-outs: %w", err)
	}
	defer rows.Close()

	var records []checkout.Record
	for rows.Next() {
		record, err := scanCheckout(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-out: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate check-outs: %w", err)
	}

	return records, nil
}

func scanCheckout(row pgx.Row) (checkout.Record, error) {
	var record checkout.Record
	err := row.Scan(
		&record.ID, &record.UserID, &record.Latitude, &record.Longitude, &record.PhotoPath, &record.Description,
		&record.AttendanceTime, &record.CreatedAt, &record.UpdatedAt, &record.DeletedAt,
		&record.UserName,
	)
	return record, err
}
