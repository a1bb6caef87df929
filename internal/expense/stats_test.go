package expense_test

import (
	"time"

	"github.com/frahmantamala/expense-tracker/internal/category"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var _ = Describe("Stats", func() {
	Describe("Aggregate.Average", func() {
		It("is zero for an empty set", func() {
			Expect(expense.Aggregate{}.Average().IsZero()).To(BeTrue())
		})

		It("rounds to cents", func() {
			avg := expense.Aggregate{Count: 3, Sum: dec("10.00")}.Average()
			Expect(avg.Equal(dec("3.33"))).To(BeTrue(), avg.String())
		})
	})

	Describe("BuildStats", func() {
		It("derives averages and net amounts", func() {
			stats := expense.BuildStats(expense.StatsInput{
				Income:           expense.Aggregate{Count: 2, Sum: dec("1000.00")},
				Expense:          expense.Aggregate{Count: 4, Sum: dec("250.50")},
				ThisMonthIncome:  expense.Aggregate{Count: 1, Sum: dec("500.00")},
				ThisMonthExpense: expense.Aggregate{},
			})

			Expect(stats.TotalIncome).To(Equal(int64(2)))
			Expect(stats.TotalExpense).To(Equal(int64(4)))
			Expect(stats.AverageIncome.Equal(dec("500"))).To(BeTrue())
			Expect(stats.AverageExpense.Equal(dec("62.63"))).To(BeTrue(), stats.AverageExpense.String())
			Expect(stats.NetAmount.Equal(dec("749.50"))).To(BeTrue())
			Expect(stats.ThisMonthNetAmount.Equal(dec("500"))).To(BeTrue())
			Expect(stats.ThisMonthAverageExpense.IsZero()).To(BeTrue())
		})

		It("goes negative when expenses exceed income", func() {
			stats := expense.BuildStats(expense.StatsInput{
				Expense: expense.Aggregate{Count: 1, Sum: dec("12.50")},
			})
			Expect(stats.NetAmount.Equal(dec("-12.50"))).To(BeTrue())
		})
	})

	Describe("MonthWindow", func() {
		It("spans the whole month in UTC", func() {
			first, last := expense.MonthWindow(time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC), nil)
			Expect(first).To(Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
			Expect(last).To(Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
		})

		It("uses the configured zone to decide the month", func() {
			loc := time.FixedZone("UTC+7", 7*60*60)
			// still January in UTC, already February at UTC+7
			now := time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC)

			first, last := expense.MonthWindow(now, loc)
			Expect(first).To(Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
			Expect(last).To(Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
		})

		It("handles December", func() {
			first, last := expense.MonthWindow(time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC), time.UTC)
			Expect(first).To(Equal(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)))
			Expect(last).To(Equal(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
		})
	})

	Describe("BuildBreakdown", func() {
		It("keeps the order of totals and falls back for unknown categories", func() {
			totals := []expense.CategoryTotal{
				{CategoryID: "food", Sum: dec("30.00"), Count: 2},
				{CategoryID: "gone", Sum: dec("20.00"), Count: 1},
				{CategoryID: "salary", Sum: dec("10.00"), Count: 1},
			}
			categories := []*category.Category{
				{ID: "salary", Name: "Salary", Type: category.TypeIncome},
				{ID: "food", Name: "Food", Type: category.TypeExpense},
			}

			rows := expense.BuildBreakdown(totals, categories)
			Expect(rows).To(HaveLen(3))
			Expect(rows[0].CategoryName).To(Equal("Food"))
			Expect(rows[0].CategoryType).To(Equal("EXPENSE"))
			Expect(rows[1].CategoryName).To(Equal(expense.UnknownCategoryName))
			Expect(rows[1].CategoryType).To(Equal(expense.UnknownCategoryType))
			Expect(rows[1].Count).To(Equal(int64(1)))
			Expect(rows[2].CategoryType).To(Equal("INCOME"))
		})

		It("returns an empty slice for no totals", func() {
			Expect(expense.BuildBreakdown(nil, nil)).To(BeEmpty())
		})
	})
})
