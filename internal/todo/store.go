package todo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB defines the database operations the store needs.
// Following Go best practices: interfaces are defined by the consumer, not the provider.
// *pgxpool.Pool satisfies this interface.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store manages user, category, and order persistence with a PostgreSQL backend.
//
// Store is safe for concurrent use by multiple goroutines: it holds no mutable
// state, and the underlying pool serializes statement execution per connection.
type Store struct {
	db     DB
	logger *slog.Logger
}

// New creates a new Store instance. logger may be nil (slog.Default() is used).
func New(db DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// ResolveAPIKey maps an API key to the owning user id.
// Returns ErrInvalidAPIKey when the key matches no user. Every call issues a
// fresh lookup; resolutions are never cached.
func (s *Store) ResolveAPIKey(ctx context.Context, apiKey string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `SELECT id FROM jonnen WHERE api_key = $1`, apiKey).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrInvalidAPIKey
		}
		return 0, fmt.Errorf("resolving api key: %w", err)
	}
	return id, nil
}

// UserName returns the name of the user with the given id.
// Returns ErrNotFound when the row does not exist.
func (s *Store) UserName(ctx context.Context, userID int64) (string, error) {
	var name string
	err := s.db.QueryRow(ctx, `SELECT name FROM jonnen WHERE id = $1`, userID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("getting user %d: %w", userID, err)
	}
	return name, nil
}

// OrdersForUser returns every order owned by userID joined with its category,
// ordered by due date ascending. Includes the completion timestamp.
func (s *Store) OrdersForUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT
			b.id,
			b.order_title,
			b.jonne_id,
			b.category_id,
			b.due_at::varchar,
			c.category_name,
			b.completed::varchar
		FROM orders b
		INNER JOIN jonnen g ON g.id = b.jonne_id
		INNER JOIN category c ON c.id = b.category_id
		WHERE g.id = $1
		ORDER BY b.due_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %d: %w", userID, err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.OrderTitle, &o.JonneID, &o.CategoryID,
			&o.DueAt, &o.CategoryName, &o.Completed); err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing orders for user %d: %w", userID, err)
	}

	s.logger.Debug("listed orders", "user_id", userID, "count", len(orders))
	return orders, nil
}

// OrdersByCategory returns the orders owned by userID within the given
// category, ordered by due date ascending. The completion timestamp is not
// part of this projection.
func (s *Store) OrdersByCategory(ctx context.Context, userID, categoryID int64) ([]Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT
			b.id,
			b.order_title,
			b.jonne_id,
			b.category_id,
			b.due_at::varchar,
			c.category_name
		FROM orders b
		INNER JOIN jonnen g ON g.id = b.jonne_id
		INNER JOIN category c ON c.id = b.category_id
		WHERE g.id = $1 AND c.id = $2
		ORDER BY b.due_at ASC`, userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %d category %d: %w", userID, categoryID, err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.OrderTitle, &o.JonneID, &o.CategoryID,
			&o.DueAt, &o.CategoryName); err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing orders for user %d category %d: %w", userID, categoryID, err)
	}

	s.logger.Debug("listed orders by category",
		"user_id", userID, "category_id", categoryID, "count", len(orders))
	return orders, nil
}

// CreateOrder inserts a new order owned by userID and returns the generated id.
// The title is stored as given; the handler layer escapes it first.
func (s *Store) CreateOrder(ctx context.Context, userID int64, title string, categoryID int64, dueAt string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO orders (order_title, jonne_id, category_id, due_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		title, userID, categoryID, dueAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating order: %w", err)
	}

	s.logger.Debug("created order", "id", id, "user_id", userID)
	return id, nil
}

// UpdateOrderUnscoped updates an order's category, title, and due date by id
// alone. No owner filter is applied: any caller that knows an order id can
// rewrite it. Kept byte-compatible with the historical PUT /orders behavior;
// owner-checked updates go through UpdateOrder.
func (s *Store) UpdateOrderUnscoped(ctx context.Context, orderID, categoryID int64, title, dueAt string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE orders SET
			category_id = $1,
			order_title = $2,
			due_at = $3
		WHERE id = $4`,
		categoryID, title, dueAt, orderID)
	if err != nil {
		return fmt.Errorf("updating order %d: %w", orderID, err)
	}

	s.logger.Debug("updated order (unscoped)", "id", orderID)
	return nil
}

// UpdateOrder updates an order's category, title, and due date, restricted to
// rows owned by userID. Updating someone else's order affects zero rows.
func (s *Store) UpdateOrder(ctx context.Context, orderID, userID, categoryID int64, title, dueAt string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE orders SET
			category_id = $1,
			order_title = $2,
			due_at = $3
		WHERE id = $4 AND jonne_id = $5`,
		categoryID, title, dueAt, orderID, userID)
	if err != nil {
		return fmt.Errorf("updating order %d for user %d: %w", orderID, userID, err)
	}

	s.logger.Debug("updated order", "id", orderID, "user_id", userID)
	return nil
}

// DeleteOrder deletes the order iff it is owned by userID and returns the
// number of rows removed. A missing or non-owned id deletes zero rows and is
// not an error.
func (s *Store) DeleteOrder(ctx context.Context, orderID, userID int64) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM orders
		WHERE id = $1 AND jonne_id = $2`, orderID, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting order %d for user %d: %w", orderID, userID, err)
	}

	s.logger.Debug("deleted order", "id", orderID, "user_id", userID, "rows", tag.RowsAffected())
	return tag.RowsAffected(), nil
}

// CompleteOrder stamps the order's completed column with the current server
// time, restricted to rows owned by userID, and returns the number of rows
// updated. Repeat calls re-stamp; there is no uncomplete operation.
func (s *Store) CompleteOrder(ctx context.Context, orderID, userID int64) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE orders SET
			completed = CURRENT_TIMESTAMP
		WHERE id = $1 AND jonne_id = $2`, orderID, userID)
	if err != nil {
		return 0, fmt.Errorf("completing order %d for user %d: %w", orderID, userID, err)
	}

	s.logger.Debug("completed order", "id", orderID, "user_id", userID, "rows", tag.RowsAffected())
	return tag.RowsAffected(), nil
}

// CreateUser inserts a user row with the given name and API key and returns
// the generated id. Used by out-of-band provisioning only; the HTTP API never
// creates users.
func (s *Store) CreateUser(ctx context.Context, name, apiKey string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO jonnen (name, api_key)
		VALUES ($1, $2)
		RETURNING id`, name, apiKey).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Debug("created user", "id", id, "name", name)
	return id, nil
}

// CreateCategory inserts a category row and returns the generated id.
// Out-of-band provisioning only.
func (s *Store) CreateCategory(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO category (category_name)
		VALUES ($1)
		RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating category: %w", err)
	}

	s.logger.Debug("created category", "id", id, "name", name)
	return id, nil
}
