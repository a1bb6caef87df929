package expense_test

import (
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func hasDetailCode(appErr *internal.AppError, code internal.ErrorCode) bool {
	details, ok := appErr.Details.(internal.ValidationErrors)
	if !ok {
		return appErr.Code == code
	}
	for _, d := range details.Errors {
		if d.Code == string(code) {
			return true
		}
	}
	return false
}

var _ = Describe("Expense DTOs", func() {
	Describe("ParseDate", func() {
		It("accepts a calendar date", func() {
			d, err := expense.ParseDate("2024-01-10")
			Expect(err).NotTo(HaveOccurred())
			Expect(d).To(Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
		})

		It("keeps the calendar date of an RFC 3339 timestamp as written", func() {
			d, err := expense.ParseDate("2024-01-10T23:30:00-05:00")
			Expect(err).NotTo(HaveOccurred())
			Expect(d).To(Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
		})

		It("rejects anything else", func() {
			_, err := expense.ParseDate("10/01/2024")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("CreateExpenseDTO.Validate", func() {
		It("rounds the amount to cents and trims the note", func() {
			note := "  lunch  "
			e, appErr := expense.CreateExpenseDTO{
				Amount:     dec("12.505"),
				Note:       &note,
				Date:       "2024-01-10",
				CategoryID: "cat-1",
			}.Validate()

			Expect(appErr).To(BeNil())
			Expect(e.Amount.Equal(dec("12.51"))).To(BeTrue(), e.Amount.String())
			Expect(*e.Note).To(Equal("lunch"))
			Expect(e.Date).To(Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
		})

		DescribeTable("rejects",
			func(dto expense.CreateExpenseDTO, code internal.ErrorCode) {
				_, appErr := dto.Validate()
				Expect(appErr).NotTo(BeNil())
				Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
				Expect(hasDetailCode(appErr, code)).To(BeTrue(), "%+v", appErr.Details)
			},
			Entry("a zero amount", expense.CreateExpenseDTO{Amount: dec("0"), Date: "2024-01-10", CategoryID: "c"}, internal.ErrCodeInvalidAmount),
			Entry("an amount that rounds to zero", expense.CreateExpenseDTO{Amount: dec("0.004"), Date: "2024-01-10", CategoryID: "c"}, internal.ErrCodeInvalidAmount),
			Entry("a negative amount", expense.CreateExpenseDTO{Amount: dec("-5"), Date: "2024-01-10", CategoryID: "c"}, internal.ErrCodeInvalidAmount),
			Entry("an amount too large for the cents column", expense.CreateExpenseDTO{Amount: dec("184467440737095516.17"), Date: "2024-01-10", CategoryID: "c"}, internal.ErrCodeInvalidAmount),
			Entry("an amount one cent over the maximum", expense.CreateExpenseDTO{Amount: dec("1000000000000.00"), Date: "2024-01-10", CategoryID: "c"}, internal.ErrCodeInvalidAmount),
			Entry("a bad date", expense.CreateExpenseDTO{Amount: dec("5"), Date: "yesterday", CategoryID: "c"}, internal.ErrCodeInvalidDate),
			Entry("a missing date", expense.CreateExpenseDTO{Amount: dec("5"), CategoryID: "c"}, internal.ErrCodeValidationFailed),
			Entry("a missing category", expense.CreateExpenseDTO{Amount: dec("5"), Date: "2024-01-10"}, internal.ErrCodeValidationFailed),
		)

		It("accepts the maximum amount exactly", func() {
			e, appErr := expense.CreateExpenseDTO{Amount: expense.MaxAmount, Date: "2024-01-10", CategoryID: "c"}.Validate()
			Expect(appErr).To(BeNil())
			Expect(e.Amount.Equal(expense.MaxAmount)).To(BeTrue())
			Expect(expense.ToCents(e.Amount)).To(Equal(int64(99999999999999)))
		})

		It("rejects a note over the limit", func() {
			note := strings.Repeat("n", expense.MaxNoteLen+1)
			_, appErr := expense.CreateExpenseDTO{Amount: dec("5"), Date: "2024-01-10", CategoryID: "c", Note: &note}.Validate()
			Expect(appErr).NotTo(BeNil())
		})
	})

	Describe("UpdateExpenseDTO.Validate", func() {
		It("treats an empty note as clearing it", func() {
			empty := " "
			patch, appErr := expense.UpdateExpenseDTO{Note: &empty}.Validate()
			Expect(appErr).To(BeNil())
			Expect(patch.ClearNote).To(BeTrue())
			Expect(patch.Note).To(BeNil())
		})

		It("leaves absent fields alone", func() {
			patch, appErr := expense.UpdateExpenseDTO{}.Validate()
			Expect(appErr).To(BeNil())
			Expect(patch.Amount).To(BeNil())
			Expect(patch.Date).To(BeNil())
			Expect(patch.ClearNote).To(BeFalse())
		})

		It("rejects an amount over the maximum", func() {
			huge := dec("184467440737095516.17")
			_, appErr := expense.UpdateExpenseDTO{Amount: &huge}.Validate()
			Expect(appErr).NotTo(BeNil())
			Expect(hasDetailCode(appErr, internal.ErrCodeInvalidAmount)).To(BeTrue())
		})

		It("rejects a non-positive amount", func() {
			zero := dec("0")
			_, appErr := expense.UpdateExpenseDTO{Amount: &zero}.Validate()
			Expect(appErr).NotTo(BeNil())
			Expect(hasDetailCode(appErr, internal.ErrCodeInvalidAmount)).To(BeTrue())
		})
	})

	Describe("ListQuery.Normalize", func() {
		It("applies defaults", func() {
			filter, sort, page, appErr := expense.ListQuery{Search: "  coffee "}.Normalize("user-1")
			Expect(appErr).To(BeNil())
			Expect(filter.UserID).To(Equal("user-1"))
			Expect(filter.Search).To(Equal("coffee"))
			Expect(sort).To(Equal(expense.Sort{Field: expense.SortByDate, Desc: true}))
			Expect(page).To(Equal(expense.PageRequest{Page: 1, Limit: expense.DefaultLimit, Offset: 0}))
		})

		It("keeps the offset of the last allowed page positive", func() {
			_, _, page, appErr := expense.ListQuery{Page: expense.MaxPage, Limit: expense.MaxLimit}.Normalize("user-1")
			Expect(appErr).To(BeNil())
			Expect(page.Page).To(Equal(expense.MaxPage))
			Expect(page.Offset).To(Equal((expense.MaxPage - 1) * expense.MaxLimit))
		})

		It("computes the offset", func() {
			_, sort, page, appErr := expense.ListQuery{Page: 3, Limit: 20, SortBy: "created_at", SortOrder: "ASC"}.Normalize("user-1")
			Expect(appErr).To(BeNil())
			Expect(page).To(Equal(expense.PageRequest{Page: 3, Limit: 20, Offset: 40}))
			Expect(sort).To(Equal(expense.Sort{Field: expense.SortByCreatedAt, Desc: false}))
		})

		DescribeTable("rejects",
			func(q expense.ListQuery, code internal.ErrorCode) {
				_, _, _, appErr := q.Normalize("user-1")
				Expect(appErr).NotTo(BeNil())
				Expect(hasDetailCode(appErr, code)).To(BeTrue(), "%+v", appErr.Details)
			},
			Entry("a negative page", expense.ListQuery{Page: -1}, internal.ErrCodeInvalidPagination),
			Entry("a page past the maximum", expense.ListQuery{Page: expense.MaxPage + 1}, internal.ErrCodeInvalidPagination),
			Entry("a page whose offset would overflow", expense.ListQuery{Page: 1 << 62, Limit: expense.MaxLimit}, internal.ErrCodeInvalidPagination),
			Entry("a limit over the maximum", expense.ListQuery{Limit: expense.MaxLimit + 1}, internal.ErrCodeInvalidPagination),
			Entry("an unknown sort field", expense.ListQuery{SortBy: "note"}, internal.ErrCodeInvalidSort),
			Entry("an unknown sort order", expense.ListQuery{SortOrder: "sideways"}, internal.ErrCodeInvalidSort),
			Entry("an inverted date range", expense.ListQuery{
				StartDate: ptrTime(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
				EndDate:   ptrTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			}, internal.ErrCodeInvalidDateRange),
		)
	})

	Describe("ListQueryFromValues", func() {
		It("accepts camelCase and snake_case names", func() {
			q, appErr := expense.ListQueryFromValues(url.Values{
				"page":       {"2"},
				"limit":      {"5"},
				"categoryId": {"cat-1"},
				"start_date": {"2024-01-01"},
				"endDate":    {"2024-01-31"},
				"sort_by":    {"amount"},
				"sortOrder":  {"asc"},
			})
			Expect(appErr).To(BeNil())
			Expect(q.Page).To(Equal(2))
			Expect(q.Limit).To(Equal(5))
			Expect(q.CategoryID).To(Equal("cat-1"))
			Expect(*q.StartDate).To(Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
			Expect(*q.EndDate).To(Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)))
			Expect(q.SortBy).To(Equal("amount"))
			Expect(q.SortOrder).To(Equal("asc"))
		})

		It("rejects non-numeric pagination and bad dates", func() {
			_, appErr := expense.ListQueryFromValues(url.Values{"page": {"two"}, "startDate": {"soon"}})
			Expect(appErr).NotTo(BeNil())
			Expect(hasDetailCode(appErr, internal.ErrCodeInvalidPagination)).To(BeTrue())
			Expect(hasDetailCode(appErr, internal.ErrCodeInvalidDate)).To(BeTrue())
		})
	})

	Describe("NewPagination", func() {
		DescribeTable("derives page counts",
			func(page, limit int, total int64, want expense.Pagination) {
				Expect(expense.NewPagination(page, limit, total)).To(Equal(want))
			},
			Entry("empty", 1, 10, int64(0), expense.Pagination{Page: 1, Limit: 10}),
			Entry("exact fit", 1, 10, int64(10), expense.Pagination{Page: 1, Limit: 10, Total: 10, TotalPages: 1}),
			Entry("middle page", 2, 10, int64(25), expense.Pagination{Page: 2, Limit: 10, Total: 25, TotalPages: 3, HasNext: true, HasPrev: true}),
			Entry("past the end", 5, 10, int64(25), expense.Pagination{Page: 5, Limit: 10, Total: 25, TotalPages: 3, HasPrev: true}),
		)
	})
})

func ptrTime(t time.Time) *time.Time {
	return &t
}
