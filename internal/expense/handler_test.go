package expense_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// stubService records what the handler passes in and answers with canned values.
type stubService struct {
	userID    string
	id        string
	query     expense.ListQuery
	create    expense.CreateExpenseDTO
	update    expense.UpdateExpenseDTO
	start     *time.Time
	end       *time.Time
	err       error
	listTotal int64
}

func (s *stubService) Create(ctx context.Context, userID string, dto expense.CreateExpenseDTO) (*expense.Expense, error) {
	s.userID, s.create = userID, dto
	if s.err != nil {
		return nil, s.err
	}
	return &expense.Expense{ID: "exp-1", Amount: dto.Amount, UserID: userID}, nil
}

func (s *stubService) FindAll(ctx context.Context, userID string, query expense.ListQuery) (*expense.ListResult, error) {
	s.userID, s.query = userID, query
	if s.err != nil {
		return nil, s.err
	}
	return &expense.ListResult{
		Data:       []*expense.Expense{},
		Pagination: expense.NewPagination(2, 5, s.listTotal),
	}, nil
}

func (s *stubService) FindOne(ctx context.Context, id, userID string) (*expense.Expense, error) {
	s.userID, s.id = userID, id
	if s.err != nil {
		return nil, s.err
	}
	return &expense.Expense{ID: id, UserID: userID}, nil
}

func (s *stubService) Update(ctx context.Context, id, userID string, dto expense.UpdateExpenseDTO) (*expense.Expense, error) {
	s.userID, s.id, s.update = userID, id, dto
	if s.err != nil {
		return nil, s.err
	}
	return &expense.Expense{ID: id, UserID: userID}, nil
}

func (s *stubService) Remove(ctx context.Context, id, userID string) (*expense.DeleteResult, error) {
	s.userID, s.id = userID, id
	if s.err != nil {
		return nil, s.err
	}
	return &expense.DeleteResult{Message: "Expense deleted successfully"}, nil
}

func (s *stubService) GetStats(ctx context.Context, userID string, start, end *time.Time) (*expense.Stats, error) {
	s.userID, s.start, s.end = userID, start, end
	if s.err != nil {
		return nil, s.err
	}
	stats := expense.BuildStats(expense.StatsInput{Expense: expense.Aggregate{Count: 1, Sum: dec("12.50")}})
	return &stats, nil
}

func (s *stubService) GetByCategory(ctx context.Context, userID string, start, end *time.Time) ([]expense.CategoryBreakdown, error) {
	s.userID, s.start, s.end = userID, start, end
	if s.err != nil {
		return nil, s.err
	}
	return []expense.CategoryBreakdown{}, nil
}

var _ = Describe("Expense Handler", func() {
	var (
		stub   *stubService
		router *chi.Mux
	)

	do := func(method, path, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		req = req.WithContext(internal.ContextWithUser(req.Context(), internal.AuthenticatedUser{ID: "user-1"}))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var env map[string]json.RawMessage
		Expect(json.Unmarshal(w.Body.Bytes(), &env)).To(Succeed())
		return w, env
	}

	BeforeEach(func() {
		stub = &stubService{}
		handler := expense.NewHandler(transport.NewBaseHandler(logger.Discard(), false), stub)

		router = chi.NewRouter()
		router.Post("/expenses", handler.CreateExpense)
		router.Get("/expenses", handler.GetExpenses)
		router.Get("/expenses/stats", handler.GetStats)
		router.Get("/expenses/by-category", handler.GetByCategory)
		router.Get("/expenses/{id}", handler.GetExpense)
		router.Patch("/expenses/{id}", handler.UpdateExpense)
		router.Delete("/expenses/{id}", handler.DeleteExpense)
	})

	It("decodes a decimal amount and answers 201", func() {
		w, env := do(http.MethodPost, "/expenses", `{"amount":12.5,"date":"2024-01-10","category_id":"cat-1"}`)

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(stub.userID).To(Equal("user-1"))
		Expect(stub.create.Amount.Equal(dec("12.5"))).To(BeTrue())
		Expect(stub.create.CategoryID).To(Equal("cat-1"))
		Expect(string(env["success"])).To(Equal("true"))
	})

	It("passes list parameters through and writes pagination", func() {
		stub.listTotal = 12
		w, env := do(http.MethodGet, "/expenses?page=2&limit=5&search=coffee&sortBy=amount&sort_order=asc", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(stub.query.Page).To(Equal(2))
		Expect(stub.query.Limit).To(Equal(5))
		Expect(stub.query.Search).To(Equal("coffee"))
		Expect(stub.query.SortBy).To(Equal("amount"))
		Expect(stub.query.SortOrder).To(Equal("asc"))

		Expect(string(env["data"])).To(Equal("[]"))
		var pagination expense.Pagination
		Expect(json.Unmarshal(env["pagination"], &pagination)).To(Succeed())
		Expect(pagination).To(Equal(expense.Pagination{Page: 2, Limit: 5, Total: 12, TotalPages: 3, HasNext: true, HasPrev: true}))
	})

	It("rejects a malformed query before calling the service", func() {
		w, _ := do(http.MethodGet, "/expenses?limit=abc", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(stub.userID).To(BeEmpty())
	})

	It("routes stats and by-category ahead of the id route", func() {
		w, env := do(http.MethodGet, "/expenses/stats?startDate=2024-01-01", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(*stub.start).To(Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
		Expect(stub.end).To(BeNil())

		var stats map[string]interface{}
		Expect(json.Unmarshal(env["data"], &stats)).To(Succeed())
		Expect(stats["total_expense"]).To(BeNumerically("==", 1))
		Expect(stats["net_amount"]).To(Equal("-12.5"))

		w, _ = do(http.MethodGet, "/expenses/by-category", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(stub.id).To(BeEmpty())
	})

	It("maps service errors to their status", func() {
		stub.err = internal.ErrExpenseForbidden
		w, env := do(http.MethodGet, "/expenses/exp-9", "")
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(stub.id).To(Equal("exp-9"))
		Expect(string(env["error"])).To(ContainSubstring(string(internal.ErrCodeExpenseForbidden)))
	})

	It("updates and deletes by id", func() {
		w, _ := do(http.MethodPatch, "/expenses/exp-1", `{"note":""}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(*stub.update.Note).To(Equal(""))

		w, env := do(http.MethodDelete, "/expenses/exp-1", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(string(env["message"])).To(Equal(`"Expense deleted successfully"`))
	})

	It("hides internal causes outside debug", func() {
		stub.err = internal.NewInternalError("failed to list expenses", context.DeadlineExceeded)
		w, env := do(http.MethodGet, "/expenses", "")
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(string(env["error"])).NotTo(ContainSubstring("deadline"))
	})
})
