package expense

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, userID string, dto CreateExpenseDTO) (*Expense, error)
	FindAll(ctx context.Context, userID string, query ListQuery) (*ListResult, error)
	FindOne(ctx context.Context, id, userID string) (*Expense, error)
	Update(ctx context.Context, id, userID string, dto UpdateExpenseDTO) (*Expense, error)
	Remove(ctx context.Context, id, userID string) (*DeleteResult, error)
	GetStats(ctx context.Context, userID string, startDate, endDate *time.Time) (*Stats, error)
	GetByCategory(ctx context.Context, userID string, startDate, endDate *time.Time) ([]CategoryBreakdown, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// CreateExpense handles POST /expenses
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.RequireUser(w, r)
	if !ok {
		return
	}

	var dto CreateExpenseDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	e, err := h.Service.Create(r.Context(), userID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, e, "Expense created successfully")
}

// GetExpenses handles GET /expenses
func (h *Handler) GetExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.RequireUser(w, r)
	if !ok {
		return
	}

	query, appErr := ListQueryFromValues(r.URL.Query())
	if appErr != nil {
		h.WriteError(w, appErr)
		return
	}

	result, err := h.Service.FindAll(r.Context(), userID, query)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WritePaginated(w, result.Data, result.Pagination, "")
}

// GetStats handles GET /expenses/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.RequireUser(w, r)
	if !ok {
		return
	}

	start, end, appErr := DateRangeFromValues(r.URL.Query())
	if appErr != nil {
		h.WriteError(w, appErr)
		return
	}

	stats, err := h.Service.GetStats(r.Context(), userID, start, end)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, stats, "")
}

// GetByCategory handles GET /expenses/by-category
func (h *Handler) GetByCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.RequireUser(w, r)
	if !ok {
		return
	}

	start, end, appErr := DateRangeFromValues(r.URL.Query())
	if appErr != nil {
		h.WriteError(w, appErr)
		return
	}

	rows, err := h.Service.GetByCategory(r.Context(), userID, start, end)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, rows, "")
}

// GetExpense handles GET /expenses/{id}
func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.RequireUser(w, r)
	if !ok {
		return
	}

	e, err := h.Service.FindOne(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, e, "")
}

// UpdateExpense handles PATCH /expenses/{id}
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.RequireUser(w, r)
	if !ok {
		return
	}

	var dto UpdateExpenseDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	e, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), userID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, e, "Expense updated successfully")
}

// DeleteExpense handles DELETE /expenses/{id}
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.RequireUser(w, r)
	if !ok {
		return
	}

	result, err := h.Service.Remove(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, result, result.Message)
}
