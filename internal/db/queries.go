package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the item queries.
type Queries struct {
	db DBTX
}

// New creates Queries bound to a connection or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Item is a stored item with its labels.
type Item struct {
	ID        int64
	Body      string
	Source    string
	CreatedAt time.Time
	Labels    []string
}

// CreateItemParams holds the columns for a new item.
type CreateItemParams struct {
	Body      string
	Source    string
	CreatedAt time.Time
}

const createItem = `INSERT INTO items (body, source, created_at) VALUES (?, ?, ?)`

// CreateItem inserts an item and returns its id.
func (q *Queries) CreateItem(ctx context.Context, arg CreateItemParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createItem, arg.Body, arg.Source, arg.CreatedAt.UnixNano())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const addItemLabel = `INSERT OR IGNORE INTO item_labels (item_id, label) VALUES (?, ?)`

// AddItemLabel attaches a label to an item. Re-adding a label is a no-op.
func (q *Queries) AddItemLabel(ctx context.Context, itemID int64, label string) error {
	_, err := q.db.ExecContext(ctx, addItemLabel, itemID, label)
	return err
}

const listItemsSince = `
SELECT i.id, i.body, i.source, i.created_at, l.label
FROM items i
LEFT JOIN item_labels l ON l.item_id = i.id
WHERE i.created_at >= ?
ORDER BY i.created_at, i.id, l.label
`

// ListItemsSince returns items created at or after cutoff, oldest first.
func (q *Queries) ListItemsSince(ctx context.Context, cutoff time.Time) ([]*Item, error) {
	rows, err := q.db.QueryContext(ctx, listItemsSince, cutoff.UnixNano())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Item
	var current *Item
	for rows.Next() {
		var (
			id        int64
			body      string
			source    string
			createdAt int64
			label     sql.NullString
		)
		if err := rows.Scan(&id, &body, &source, &createdAt, &label); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}

		if current == nil || current.ID != id {
			current = &Item{
				ID:        id,
				Body:      body,
				Source:    source,
				CreatedAt: time.Unix(0, createdAt).UTC(),
			}
			items = append(items, current)
		}
		if label.Valid {
			current.Labels = append(current.Labels, label.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

const countItems = `SELECT COUNT(*) FROM items`

// CountItems returns the total number of items.
func (q *Queries) CountItems(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countItems).Scan(&count)
	return count, err
}

const countItemsSince = `SELECT COUNT(*) FROM items WHERE created_at >= ?`

// CountItemsSince returns the number of items created at or after cutoff.
func (q *Queries) CountItemsSince(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countItemsSince, cutoff.UnixNano()).Scan(&count)
	return count, err
}

const countDistinctLabels = `SELECT COUNT(DISTINCT label) FROM item_labels`

// CountDistinctLabels returns the number of distinct labels ever stored.
func (q *Queries) CountDistinctLabels(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countDistinctLabels).Scan(&count)
	return count, err
}

const deleteItemsBefore = `DELETE FROM items WHERE created_at < ?`

// DeleteItemsBefore removes items older than cutoff and returns how many
// were deleted. Their labels go with them.
func (q *Queries) DeleteItemsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteItemsBefore, cutoff.UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
