package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/procurehq/console/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// ReplaceNotifications mirrors a poll result by replacing the cached
// notification list wholesale inside a transaction.
func (s *SQLiteStore) ReplaceNotifications(
	ctx context.Context,
	notifications []model.Notification,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		return fmt.Errorf("clearing notifications: %w", err)
	}

	for _, n := range notifications {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}

		metadata := "{}"
		if len(n.Metadata) > 0 {
			data, err := json.Marshal(n.Metadata)
			if err != nil {
				return fmt.Errorf("marshaling notification metadata: %w", err)
			}
			metadata = string(data)
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO notifications (id, type, title, message, metadata, read, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			n.ID, string(n.Type), n.Title, n.Message, metadata,
			boolToInt(n.Read), n.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting notification %s: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing notifications: %w", err)
	}
	return nil
}

// Notifications retrieves cached notifications ordered by creation
// time descending, optionally limited to unread ones.
func (s *SQLiteStore) Notifications(
	ctx context.Context,
	unreadOnly bool,
) ([]model.Notification, error) {
	query := "SELECT * FROM notifications"
	if unreadOnly {
		query += " WHERE read = 0"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkNotificationRead marks a single cached notification as read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return nil
}

// MarkAllNotificationsRead marks every cached notification as read.
func (s *SQLiteStore) MarkAllNotificationsRead(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1")
	if err != nil {
		return fmt.Errorf("marking all notifications as read: %w", err)
	}
	return nil
}

// DeleteNotification removes a cached notification by id.
func (s *SQLiteStore) DeleteNotification(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM notifications WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting notification %s: %w", id, err)
	}
	return nil
}

// UnreadNotificationCount returns the number of cached unread
// notifications.
func (s *SQLiteStore) UnreadNotificationCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM notifications WHERE read = 0",
	)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

// UpsertRequests inserts or replaces a batch of cached purchase requests.
func (s *SQLiteStore) UpsertRequests(
	ctx context.Context,
	requests []model.PurchaseRequest,
) error {
	if len(requests) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range requests {
		items := "[]"
		if len(r.Items) > 0 {
			data, err := json.Marshal(r.Items)
			if err != nil {
				return fmt.Errorf("marshaling request items: %w", err)
			}
			items = string(data)
		}

		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO requests
				(id, number, title, description, status, priority,
				 department, category, items, total, requester,
				 created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Number, r.Title, r.Description, r.Status, r.Priority,
			r.Department, r.Category, items, r.Total, r.Requester,
			r.CreatedAt.UTC(), r.UpdatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("upserting request %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing requests: %w", err)
	}
	return nil
}

// requestSortColumns whitelists the sortable columns for Requests.
var requestSortColumns = map[string]bool{
	"updated_at": true,
	"created_at": true,
	"priority":   true,
	"total":      true,
	"title":      true,
}

// Requests retrieves cached purchase requests matching the filter.
func (s *SQLiteStore) Requests(
	ctx context.Context,
	filter RequestFilter,
) ([]model.PurchaseRequest, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Department != nil {
		conditions = append(conditions, "department = ?")
		args = append(args, *filter.Department)
	}
	if filter.Query != nil {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ? OR number LIKE ?)")
		pattern := "%" + *filter.Query + "%"
		args = append(args, pattern, pattern, pattern)
	}

	query := "SELECT * FROM requests"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if !requestSortColumns[sortBy] {
		sortBy = "updated_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying requests: %w", err)
	}
	defer rows.Close()

	var requests []model.PurchaseRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}

	return requests, rows.Err()
}

// RequestByID retrieves a single cached purchase request, or nil if it
// is not cached.
func (s *SQLiteStore) RequestByID(
	ctx context.Context,
	id string,
) (*model.PurchaseRequest, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM requests WHERE id = ?", id,
	)
	if err != nil {
		return nil, fmt.Errorf("querying request %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	r, err := scanRequest(rows)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpsertOrders inserts or replaces a batch of cached purchase orders.
func (s *SQLiteStore) UpsertOrders(
	ctx context.Context,
	orders []model.PurchaseOrder,
) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, o := range orders {
		var expectedAt interface{}
		if o.ExpectedAt != nil {
			expectedAt = o.ExpectedAt.UTC()
		}

		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO orders
				(id, number, request_id, supplier_id, supplier_name,
				 status, total, expected_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.Number, o.RequestID, o.SupplierID, o.SupplierName,
			o.Status, o.Total, expectedAt,
			o.CreatedAt.UTC(), o.UpdatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("upserting order %s: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing orders: %w", err)
	}
	return nil
}

// Orders retrieves cached purchase orders, optionally filtered by
// status, newest first.
func (s *SQLiteStore) Orders(
	ctx context.Context,
	status string,
) ([]model.PurchaseOrder, error) {
	query := "SELECT * FROM orders"
	var args []interface{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var orders []model.PurchaseOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

// scanNotification scans a notification row from a sqlx.Rows result set.
func scanNotification(rows *sqlx.Rows) (model.Notification, error) {
	var (
		n         model.Notification
		nType     string
		metadata  string
		read      int
		createdAt time.Time
	)

	err := rows.Scan(
		&n.ID, &nType, &n.Title, &n.Message, &metadata, &read, &createdAt,
	)
	if err != nil {
		return model.Notification{}, fmt.Errorf("scanning notification row: %w", err)
	}

	n.Type = model.NotificationType(nType)
	n.Read = read != 0
	n.CreatedAt = createdAt

	if metadata != "" && metadata != "{}" {
		if err := json.Unmarshal([]byte(metadata), &n.Metadata); err != nil {
			return model.Notification{}, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return n, nil
}

// scanRequest scans a purchase request row from a sqlx.Rows result set.
func scanRequest(rows *sqlx.Rows) (model.PurchaseRequest, error) {
	var (
		r         model.PurchaseRequest
		items     string
		createdAt time.Time
		updatedAt time.Time
	)

	err := rows.Scan(
		&r.ID, &r.Number, &r.Title, &r.Description, &r.Status, &r.Priority,
		&r.Department, &r.Category, &items, &r.Total, &r.Requester,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return model.PurchaseRequest{}, fmt.Errorf("scanning request row: %w", err)
	}

	r.CreatedAt = createdAt
	r.UpdatedAt = updatedAt

	if items != "" && items != "[]" {
		if err := json.Unmarshal([]byte(items), &r.Items); err != nil {
			return model.PurchaseRequest{}, fmt.Errorf("unmarshaling items: %w", err)
		}
	}

	return r, nil
}

// scanOrder scans a purchase order row from a sqlx.Rows result set.
func scanOrder(rows *sqlx.Rows) (model.PurchaseOrder, error) {
	var (
		o          model.PurchaseOrder
		expectedAt sql.NullTime
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := rows.Scan(
		&o.ID, &o.Number, &o.RequestID, &o.SupplierID, &o.SupplierName,
		&o.Status, &o.Total, &expectedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.PurchaseOrder{}, fmt.Errorf("scanning order row: %w", err)
	}

	if expectedAt.Valid {
		t := expectedAt.Time
		o.ExpectedAt = &t
	}
	o.CreatedAt = createdAt
	o.UpdatedAt = updatedAt

	return o, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
