package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealkart/mealkart/internal/domain/kit"
)

var _ kit.Repository = (*KitRepository)(nil)

// KitRepository implements kit.Repository backed by PostgreSQL.
type KitRepository struct {
	pool *pgxpool.Pool
}

// NewKitRepository returns a KitRepository that uses the given pool.
func NewKitRepository(pool *pgxpool.Pool) *KitRepository {
	return &KitRepository{pool: pool}
}

const kitColumns = `id, name, description, base_price, category, supplier_id, serves,
	image_thumbnail, image_mobile, image_tablet, image_desktop`

// List returns the full kit catalog with ingredient line items attached.
func (r *KitRepository) List(ctx context.Context) ([]kit.Kit, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+kitColumns+` FROM kits ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing kits: %w", err)
	}

	kits, err := scanKits(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning kits: %w", err)
	}

	if err := r.attachItems(ctx, kits); err != nil {
		return nil, err
	}
	return kits, nil
}

// GetByID fetches a single kit with its line items.
// Returns kit.ErrNotFound when no such kit exists.
func (r *KitRepository) GetByID(ctx context.Context, id string) (*kit.Kit, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+kitColumns+` FROM kits WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("getting kit %q: %w", id, err)
	}

	kits, err := scanKits(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning kit %q: %w", id, err)
	}
	if len(kits) == 0 {
		return nil, kit.ErrNotFound
	}

	if err := r.attachItems(ctx, kits); err != nil {
		return nil, err
	}
	return &kits[0], nil
}

// GetByIDs fetches all kits matching the given ids in a single query.
// Missing ids are simply absent from the result; the caller decides whether
// that is an error.
func (r *KitRepository) GetByIDs(ctx context.Context, ids []string) ([]kit.Kit, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+kitColumns+` FROM kits WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("getting kits by ids: %w", err)
	}

	kits, err := scanKits(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning kits by ids: %w", err)
	}

	if err := r.attachItems(ctx, kits); err != nil {
		return nil, err
	}
	return kits, nil
}

// Upsert inserts or updates a kit and replaces its line items.
// Used by seeding tools.
func (r *KitRepository) Upsert(ctx context.Context, k kit.Kit) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning upsert for kit %q: %w", k.ID, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO kits (id, name, description, base_price, category, supplier_id, serves,
			image_thumbnail, image_mobile, image_tablet, image_desktop)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, description = EXCLUDED.description,
		    base_price = EXCLUDED.base_price, category = EXCLUDED.category,
		    supplier_id = EXCLUDED.supplier_id, serves = EXCLUDED.serves,
		    image_thumbnail = EXCLUDED.image_thumbnail, image_mobile = EXCLUDED.image_mobile,
		    image_tablet = EXCLUDED.image_tablet, image_desktop = EXCLUDED.image_desktop`,
		k.ID, k.Name, k.Description, k.BasePrice, k.Category, k.SupplierID, k.Serves,
		k.Image.Thumbnail, k.Image.Mobile, k.Image.Tablet, k.Image.Desktop,
	)
	if err != nil {
		return fmt.Errorf("upserting kit %q: %w", k.ID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM kit_items WHERE kit_id = $1`, k.ID); err != nil {
		return fmt.Errorf("clearing items for kit %q: %w", k.ID, err)
	}
	for i, item := range k.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO kit_items (id, kit_id, name, unit_price, quantity, required, unit, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			item.ID, k.ID, item.Name, item.UnitPrice, item.Quantity, item.Required, item.Unit, i,
		)
		if err != nil {
			return fmt.Errorf("inserting item %q for kit %q: %w", item.ID, k.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func scanKits(rows pgx.Rows) ([]kit.Kit, error) {
	defer rows.Close()

	var kits []kit.Kit
	for rows.Next() {
		var k kit.Kit
		if err := rows.Scan(
			&k.ID, &k.Name, &k.Description, &k.BasePrice, &k.Category, &k.SupplierID, &k.Serves,
			&k.Image.Thumbnail, &k.Image.Mobile, &k.Image.Tablet, &k.Image.Desktop,
		); err != nil {
			return nil, err
		}
		kits = append(kits, k)
	}
	return kits, rows.Err()
}

// attachItems loads the ingredient line items for all given kits at once.
func (r *KitRepository) attachItems(ctx context.Context, kits []kit.Kit) error {
	if len(kits) == 0 {
		return nil
	}

	ids := make([]string, len(kits))
	index := make(map[string]int, len(kits))
	for i, k := range kits {
		ids[i] = k.ID
		index[k.ID] = i
	}

	rows, err := r.pool.Query(ctx, `
		SELECT kit_id, id, name, unit_price, quantity, required, unit
		FROM kit_items
		WHERE kit_id = ANY($1)
		ORDER BY kit_id, position`, ids)
	if err != nil {
		return fmt.Errorf("listing kit items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kitID string
			item  kit.LineItem
		)
		if err := rows.Scan(&kitID, &item.ID, &item.Name, &item.UnitPrice, &item.Quantity, &item.Required, &item.Unit); err != nil {
			return fmt.Errorf("scanning kit item: %w", err)
		}
		if i, ok := index[kitID]; ok {
			kits[i].Items = append(kits[i].Items, item)
		}
	}
	return rows.Err()
}
