package sqlstore

import (
	"context"

	"github.com/uptrace/bun"

	"salonbook/internal/domain"
)

type CatalogRepo struct {
	db *bun.DB
}

func NewCatalogRepo(db *bun.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) Catalog(ctx context.Context) (domain.Catalog, error) {
	var c domain.Catalog
	if err := r.db.NewSelect().Model(&c.Employees).OrderExpr("? ASC", bun.Ident("id")).Scan(ctx); err != nil {
		return domain.Catalog{}, err
	}
	if err := r.db.NewSelect().Model(&c.Services).OrderExpr("? ASC", bun.Ident("id")).Scan(ctx); err != nil {
		return domain.Catalog{}, err
	}
	return c, nil
}

// SaveCatalog upserts every employee and service by id. Rows missing from c are
// left in place so appointments keep resolving their references.
func (r *CatalogRepo) SaveCatalog(ctx context.Context, c domain.Catalog) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(c.Employees) > 0 {
			employees := append([]domain.Employee(nil), c.Employees...)
			_, err := tx.NewInsert().
				Model(&employees).
				On("CONFLICT (id) DO UPDATE").
				Set("name = EXCLUDED.name").
				Set("work_start = EXCLUDED.work_start").
				Set("work_end = EXCLUDED.work_end").
				Set("daily_limit = EXCLUDED.daily_limit").
				Exec(ctx)
			if err != nil {
				return err
			}
		}
		if len(c.Services) > 0 {
			services := append([]domain.Service(nil), c.Services...)
			_, err := tx.NewInsert().
				Model(&services).
				On("CONFLICT (id) DO UPDATE").
				Set("name = EXCLUDED.name").
				Set("duration_minutes = EXCLUDED.duration_minutes").
				Set("price = EXCLUDED.price").
				Exec(ctx)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
