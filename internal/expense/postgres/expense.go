package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const sumCents = "CAST(COALESCE(SUM(expenses.amount_cents), 0) AS BIGINT) AS sum_cents"

var sortColumns = map[expense.SortField]string{
	expense.SortByDate:      "date",
	expense.SortByAmount:    "amount_cents",
	expense.SortByCreatedAt: "created_at",
	expense.SortByUpdatedAt: "updated_at",
}

// ExpenseRepository implements expense.RepositoryAPI using GORM
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	row := expense.ToDataModel(e)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	e.Date = row.Date
	e.CreatedAt = row.CreatedAt
	e.UpdatedAt = row.UpdatedAt
	return nil
}

// FindByID returns the expense with its category, or nil when there is none.
func (r *ExpenseRepository) FindByID(ctx context.Context, id string) (*expense.Expense, error) {
	var row expenseDatamodel.Expense
	err := r.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find expense: %w", err)
	}
	return expense.FromDataModel(&row), nil
}

func (r *ExpenseRepository) FindByOwnerAndFilters(ctx context.Context, filter expense.Filter, sort expense.Sort, page expense.PageRequest) ([]*expense.Expense, error) {
	column, ok := sortColumns[sort.Field]
	if !ok {
		column = sortColumns[expense.SortByDate]
	}

	var rows []*expenseDatamodel.Expense
	err := r.db.WithContext(ctx).
		Scopes(filtered(filter)).
		Preload("Category").
		Order(clause.OrderByColumn{Column: clause.Column{Table: "expenses", Name: column}, Desc: sort.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "expenses", Name: "id"}}).
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	out := make([]*expense.Expense, 0, len(rows))
	for _, row := range rows {
		out = append(out, expense.FromDataModel(row))
	}
	return out, nil
}

func (r *ExpenseRepository) CountByOwnerAndFilters(ctx context.Context, filter expense.Filter) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{}).
		Scopes(filtered(filter)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return count, nil
}

// AggregateByOwnerAndFilters returns COUNT and SUM; an empty set gives zeros.
func (r *ExpenseRepository) AggregateByOwnerAndFilters(ctx context.Context, filter expense.Filter) (expense.Aggregate, error) {
	var row expenseDatamodel.Aggregate
	err := r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{}).
		Scopes(filtered(filter)).
		Select("COUNT(*) AS count, " + sumCents).
		Scan(&row).Error
	if err != nil {
		return expense.Aggregate{}, fmt.Errorf("aggregate expenses: %w", err)
	}
	return expense.Aggregate{Count: row.Count, Sum: expense.FromCents(row.SumCents)}, nil
}

// GroupByCategory sums per category, highest sum first and category id on ties.
func (r *ExpenseRepository) GroupByCategory(ctx context.Context, filter expense.Filter) ([]expense.CategoryTotal, error) {
	var rows []expenseDatamodel.CategoryTotal
	err := r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{}).
		Scopes(filtered(filter)).
		Select("expenses.category_id AS category_id, COUNT(*) AS count, " + sumCents).
		Group("expenses.category_id").
		Order("sum_cents DESC").
		Order("expenses.category_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("group expenses by category: %w", err)
	}

	out := make([]expense.CategoryTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, expense.CategoryTotal{
			CategoryID: row.CategoryID,
			Sum:        expense.FromCents(row.SumCents),
			Count:      row.Count,
		})
	}
	return out, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, e *expense.Expense) error {
	e.UpdatedAt = time.Now()
	row := expense.ToDataModel(e)
	err := r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{}).
		Where("id = ?", e.ID).
		Updates(map[string]interface{}{
			"amount_cents": row.AmountCents,
			"note":         row.Note,
			"date":         row.Date,
			"category_id":  row.CategoryID,
			"updated_at":   e.UpdatedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	e.Date = row.Date
	return nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&expenseDatamodel.Expense{}).Error; err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// filtered applies every predicate of f. The owner predicate is always set.
func filtered(f expense.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("expenses.user_id = ?", f.UserID)
		if f.CategoryID != "" {
			db = db.Where("expenses.category_id = ?", f.CategoryID)
		}
		if f.StartDate != nil {
			db = db.Where("expenses.date >= ?", *f.StartDate)
		}
		if f.EndDate != nil {
			db = db.Where("expenses.date <= ?", *f.EndDate)
		}
		if f.Search != "" {
			db = db.Where(`LOWER(COALESCE(expenses.note, '')) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(f.Search))+"%")
		}
		if f.CategoryType != nil {
			db = db.Joins("JOIN categories ON categories.id = expenses.category_id").
				Where("categories.type = ?", string(*f.CategoryType))
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
