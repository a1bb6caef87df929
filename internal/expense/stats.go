package expense

import (
	"time"

	"github.com/frahmantamala/expense-tracker/internal/category"
	"github.com/shopspring/decimal"
)

// Aggregate is COUNT and SUM over one filtered set of expenses.
type Aggregate struct {
	Count int64
	Sum   decimal.Decimal
}

// Average is Sum/Count rounded to cents, or zero for an empty set.
func (a Aggregate) Average() decimal.Decimal {
	if a.Count == 0 {
		return decimal.Zero
	}
	return a.Sum.DivRound(decimal.NewFromInt(a.Count), 2)
}

// CategoryTotal is the per-category sum produced by GroupByCategory.
type CategoryTotal struct {
	CategoryID string
	Sum        decimal.Decimal
	Count      int64
}

type Stats struct {
	TotalIncome             int64           `json:"total_income"`
	TotalExpense            int64           `json:"total_expense"`
	TotalIncomeAmount       decimal.Decimal `json:"total_income_amount"`
	TotalExpenseAmount      decimal.Decimal `json:"total_expense_amount"`
	AverageIncome           decimal.Decimal `json:"average_income"`
	AverageExpense          decimal.Decimal `json:"average_expense"`
	NetAmount               decimal.Decimal `json:"net_amount"`
	ThisMonthIncome         int64           `json:"this_month_income"`
	ThisMonthExpense        int64           `json:"this_month_expense"`
	ThisMonthIncomeAmount   decimal.Decimal `json:"this_month_income_amount"`
	ThisMonthExpenseAmount  decimal.Decimal `json:"this_month_expense_amount"`
	ThisMonthAverageIncome  decimal.Decimal `json:"this_month_average_income"`
	ThisMonthAverageExpense decimal.Decimal `json:"this_month_average_expense"`
	ThisMonthNetAmount      decimal.Decimal `json:"this_month_net_amount"`
}

// StatsInput holds the four aggregates getStats reads.
type StatsInput struct {
	Income           Aggregate
	Expense          Aggregate
	ThisMonthIncome  Aggregate
	ThisMonthExpense Aggregate
}

// BuildStats combines the aggregates. Net amounts are income minus expense.
func BuildStats(in StatsInput) Stats {
	return Stats{
		TotalIncome:             in.Income.Count,
		TotalExpense:            in.Expense.Count,
		TotalIncomeAmount:       in.Income.Sum,
		TotalExpenseAmount:      in.Expense.Sum,
		AverageIncome:           in.Income.Average(),
		AverageExpense:          in.Expense.Average(),
		NetAmount:               in.Income.Sum.Sub(in.Expense.Sum),
		ThisMonthIncome:         in.ThisMonthIncome.Count,
		ThisMonthExpense:        in.ThisMonthExpense.Count,
		ThisMonthIncomeAmount:   in.ThisMonthIncome.Sum,
		ThisMonthExpenseAmount:  in.ThisMonthExpense.Sum,
		ThisMonthAverageIncome:  in.ThisMonthIncome.Average(),
		ThisMonthAverageExpense: in.ThisMonthExpense.Average(),
		ThisMonthNetAmount:      in.ThisMonthIncome.Sum.Sub(in.ThisMonthExpense.Sum),
	}
}

// MonthWindow returns the first and last calendar day of the month that now
// falls in when seen from loc.
func MonthWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	y, m, _ := now.In(loc).Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}

const (
	UnknownCategoryName = "Unknown"
	UnknownCategoryType = "UNKNOWN"
)

type CategoryBreakdown struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	CategoryType string          `json:"category_type"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Count        int64           `json:"count"`
}

// BuildBreakdown joins grouped totals with the categories that could be
// resolved, keeping the order of totals.
func BuildBreakdown(totals []CategoryTotal, categories []*category.Category) []CategoryBreakdown {
	byID := make(map[string]*category.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	out := make([]CategoryBreakdown, 0, len(totals))
	for _, t := range totals {
		row := CategoryBreakdown{
			CategoryID:   t.CategoryID,
			CategoryName: UnknownCategoryName,
			CategoryType: UnknownCategoryType,
			TotalAmount:  t.Sum,
			Count:        t.Count,
		}
		if c, ok := byID[t.CategoryID]; ok {
			row.CategoryName = c.Name
			row.CategoryType = string(c.Type)
		}
		out = append(out, row)
	}
	return out
}
