package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/itemmanager/apiserver/internal/db"
	"github.com/itemmanager/apiserver/types"
)

// ItemRepository handles persistence for items.
type ItemRepository struct {
	db *db.DB
}

func NewItemRepository(db *db.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// List returns every item ordered by id.
func (r *ItemRepository) List(ctx context.Context) ([]types.Item, error) {
	const query = `
		SELECT id, name, description, price
		FROM items
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]types.Item, 0)
	for rows.Next() {
		var item types.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ItemRepository) Get(ctx context.Context, id int64) (types.Item, error) {
	const query = `
		SELECT id, name, description, price
		FROM items
		WHERE id = $1`
	var item types.Item
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), id).Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Item{}, ErrNotFound
		}
		return types.Item{}, err
	}
	return item, nil
}

func (r *ItemRepository) Create(ctx context.Context, item types.Item) (types.Item, error) {
	const query = `
		INSERT INTO items (name, description, price)
		VALUES ($1, $2, $3)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		r.db.Rebind(query),
		item.Name,
		item.Description,
		item.Price,
	).Scan(&item.ID); err != nil {
		return types.Item{}, err
	}
	return item, nil
}

// Update replaces the fields present in patch and returns the stored row.
// An empty patch returns the current row unchanged. A missing id yields
// ErrNotFound.
func (r *ItemRepository) Update(ctx context.Context, id int64, patch types.ItemPatch) (types.Item, error) {
	if patch.Empty() {
		return r.Get(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	if patch.Name.Set {
		args = append(args, patch.Name.Value)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if patch.Description.Set {
		args = append(args, patch.Description.Value)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if patch.Price.Set {
		args = append(args, patch.Price.Value)
		sets = append(sets, fmt.Sprintf("price = $%d", len(args)))
	}
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE items
		SET %s
		WHERE id = $%d
		RETURNING id, name, description, price`, strings.Join(sets, ", "), len(args))

	var item types.Item
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), args...).Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Item{}, ErrNotFound
		}
		return types.Item{}, err
	}
	return item, nil
}

// Delete removes the item and reports whether a row existed.
func (r *ItemRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const query = `DELETE FROM items WHERE id = $1`
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DeleteAll empties the table and returns the number of rows removed.
func (r *ItemRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
