package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/expense-tracker/internal/category"
	categoryDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *category.Category) error {
	row := category.ToDataModel(c)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return category.ErrDuplicate
		}
		return fmt.Errorf("create category: %w", err)
	}
	c.CreatedAt = row.CreatedAt
	c.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*category.Category, error) {
	var row categoryDatamodel.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return category.FromDataModel(&row), nil
}

func (r *CategoryRepository) FindAllByOwner(ctx context.Context, userID string, categoryType *category.Type) ([]*category.Category, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if categoryType != nil {
		q = q.Where("type = ?", string(*categoryType))
	}

	var rows []*categoryDatamodel.Category
	if err := q.Order("type ASC").Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return fromRows(rows), nil
}

func (r *CategoryRepository) FindByIDsForOwner(ctx context.Context, userID string, ids []string) ([]*category.Category, error) {
	if len(ids) == 0 {
		return []*category.Category{}, nil
	}

	var rows []*categoryDatamodel.Category
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find categories by ids: %w", err)
	}
	return fromRows(rows), nil
}

func (r *CategoryRepository) ExistsByOwnerNameType(ctx context.Context, userID, name string, categoryType category.Type, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&categoryDatamodel.Category{}).
		Where("user_id = ? AND name = ? AND type = ?", userID, name, string(categoryType))
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check category uniqueness: %w", err)
	}
	return count > 0, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *category.Category) error {
	c.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Model(&categoryDatamodel.Category{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"name":       c.Name,
			"type":       string(c.Type),
			"updated_at": c.UpdatedAt,
		}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return category.ErrDuplicate
		}
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&categoryDatamodel.Category{}).Error; err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) CountExpenses(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count category expenses: %w", err)
	}
	return count, nil
}

func (r *CategoryRepository) CountByOwner(ctx context.Context, userID string, categoryType *category.Type) (int64, error) {
	q := r.db.WithContext(ctx).Model(&categoryDatamodel.Category{}).Where("user_id = ?", userID)
	if categoryType != nil {
		q = q.Where("type = ?", string(*categoryType))
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return count, nil
}

func fromRows(rows []*categoryDatamodel.Category) []*category.Category {
	out := make([]*category.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, category.FromDataModel(row))
	}
	return out
}
