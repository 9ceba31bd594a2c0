package repository

import (
	"context"

	"gorm.io/gorm"

	"signage/internal/model"
)

// orderClause is the list ordering shared by every tenant-ordered table.
const orderClause = "sort_order ASC, id ASC"

// affected converts a write result into gorm.ErrRecordNotFound when no row
// matched the predicate.
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// nextOrder returns max(sort_order)+1 within tenant, or 1 when the tenant has no rows.
func nextOrder(ctx context.Context, db *gorm.DB, table interface{}, tenant string) (int, error) {
	var max int
	row := db.WithContext(ctx).Model(table).
		Where("tenant = ?", tenant).
		Select("COALESCE(MAX(sort_order), 0)").
		Row()
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return max + 1, nil
}

// applyOrder writes a reorder batch inside tx. Every id must belong to tenant;
// otherwise gorm.ErrRecordNotFound is returned and the caller's transaction
// rolls back.
func applyOrder(ctx context.Context, tx *gorm.DB, table interface{}, tenant string, updates []model.OrderUpdate) error {
	ids := make([]uint, 0, len(updates))
	for _, u := range updates {
		ids = append(ids, u.ID)
	}

	var owned int64
	if err := tx.WithContext(ctx).Model(table).
		Where("tenant = ? AND id IN ?", tenant, ids).
		Count(&owned).Error; err != nil {
		return err
	}
	if owned != int64(len(ids)) {
		return gorm.ErrRecordNotFound
	}

	for _, u := range updates {
		res := tx.WithContext(ctx).Model(table).
			Where("id = ? AND tenant = ?", u.ID, tenant).
			Update("sort_order", u.Order)
		if err := affected(res); err != nil {
			return err
		}
	}
	return nil
}
