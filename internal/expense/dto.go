package expense

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	errors "github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/category"
	"github.com/frahmantamala/expense-tracker/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxNoteLen   = 500
	// MaxPage keeps (page-1)*limit well inside int.
	MaxPage = 10_000_000
)

// MaxAmount is the largest accepted amount. Anything above it would not fit
// the cents column.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// roundAmount rounds raw to cents and adds its rules to v. Rejected input
// comes back as zero.
func roundAmount(v *validation.ValidationBuilder, raw decimal.Decimal) decimal.Decimal {
	rounded := raw.Round(2)
	if rounded.GreaterThan(MaxAmount) {
		v.Include(errors.NewValidationFieldError("amount", "amount must not exceed 999999999999.99", errors.ErrCodeInvalidAmount))
		return decimal.Zero
	}
	v.Field("amount", rounded).Positive(errors.ErrCodeInvalidAmount)
	if !rounded.IsPositive() {
		return decimal.Zero
	}
	return FromCents(ToCents(rounded))
}

// CreateExpenseDTO represents the request payload for creating an expense
type CreateExpenseDTO struct {
	Amount     decimal.Decimal `json:"amount"`
	Note       *string         `json:"note,omitempty" validate:"omitempty,max=500"`
	Date       string          `json:"date" validate:"required"`
	CategoryID string          `json:"category_id" validate:"required"`
}

// Validate checks the payload and returns the expense it describes, with the
// amount rounded to cents and the date reduced to a calendar date.
func (d CreateExpenseDTO) Validate() (*Expense, *errors.AppError) {
	v := validation.NewValidator().Include(validation.Struct(d))
	amount := roundAmount(v, d.Amount)

	var date time.Time
	if d.Date != "" {
		v.Field("date", d.Date).Custom(func(interface{}) *errors.AppError {
			parsed, err := ParseDate(d.Date)
			if err != nil {
				return errors.NewValidationFieldError("date", "date must be a valid date (YYYY-MM-DD)", errors.ErrCodeInvalidDate)
			}
			date = parsed
			return nil
		})
	}

	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}

	return &Expense{
		Amount:     amount,
		Note:       normalizeNote(d.Note),
		Date:       date,
		CategoryID: d.CategoryID,
	}, nil
}

// UpdateExpenseDTO is a partial update; nil fields are left alone. An empty
// note clears the stored note.
type UpdateExpenseDTO struct {
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Note       *string          `json:"note,omitempty" validate:"omitempty,max=500"`
	Date       *string          `json:"date,omitempty"`
	CategoryID *string          `json:"category_id,omitempty" validate:"omitempty,min=1"`
}

// Patch is a validated UpdateExpenseDTO.
type Patch struct {
	Amount     *decimal.Decimal
	Note       *string
	ClearNote  bool
	Date       *time.Time
	CategoryID *string
}

func (d UpdateExpenseDTO) Validate() (*Patch, *errors.AppError) {
	p := &Patch{CategoryID: d.CategoryID}

	v := validation.NewValidator().Include(validation.Struct(d))

	if d.Amount != nil {
		amount := roundAmount(v, *d.Amount)
		p.Amount = &amount
	}

	if d.Date != nil {
		v.Field("date", *d.Date).Custom(func(interface{}) *errors.AppError {
			parsed, err := ParseDate(*d.Date)
			if err != nil {
				return errors.NewValidationFieldError("date", "date must be a valid date (YYYY-MM-DD)", errors.ErrCodeInvalidDate)
			}
			p.Date = &parsed
			return nil
		})
	}

	if d.Note != nil {
		p.Note = normalizeNote(d.Note)
		p.ClearNote = p.Note == nil
	}

	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}
	return p, nil
}

func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type SortField string

const (
	SortByDate      SortField = "date"
	SortByAmount    SortField = "amount"
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
)

var sortAliases = map[string]SortField{
	"date":       SortByDate,
	"amount":     SortByAmount,
	"createdAt":  SortByCreatedAt,
	"created_at": SortByCreatedAt,
	"updatedAt":  SortByUpdatedAt,
	"updated_at": SortByUpdatedAt,
}

// ListQuery is the list request. Zero Page/Limit and empty strings mean
// "use the default".
type ListQuery struct {
	Page       int
	Limit      int
	CategoryID string
	StartDate  *time.Time
	EndDate    *time.Time
	Search     string
	SortBy     string
	SortOrder  string
}

// Filter is the conjunctive predicate repositories apply. UserID is always set.
type Filter struct {
	UserID       string
	CategoryID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Search       string
	CategoryType *category.Type
}

type Sort struct {
	Field SortField
	Desc  bool
}

type PageRequest struct {
	Page   int
	Limit  int
	Offset int
}

// Normalize applies defaults and checks bounds.
func (q ListQuery) Normalize(userID string) (Filter, Sort, PageRequest, *errors.AppError) {
	if q.Page == 0 {
		q.Page = DefaultPage
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}

	v := validation.NewValidator()
	v.Field("page", q.Page).Custom(func(interface{}) *errors.AppError {
		if q.Page < 1 || q.Page > MaxPage {
			return errors.NewValidationFieldError("page", "page must be between 1 and 10000000", errors.ErrCodeInvalidPagination)
		}
		return nil
	})
	v.Field("limit", q.Limit).Custom(func(interface{}) *errors.AppError {
		if q.Limit < 1 || q.Limit > MaxLimit {
			return errors.NewValidationFieldError("limit", "limit must be between 1 and 100", errors.ErrCodeInvalidPagination)
		}
		return nil
	})

	sortField := SortByDate
	if q.SortBy != "" {
		f, ok := sortAliases[q.SortBy]
		if !ok {
			v.Include(errors.NewValidationFieldError("sort_by", "sort_by must be one of: date, amount, createdAt, updatedAt", errors.ErrCodeInvalidSort))
		}
		sortField = f
	}

	desc := true
	switch strings.ToLower(q.SortOrder) {
	case "", "desc":
	case "asc":
		desc = false
	default:
		v.Include(errors.NewValidationFieldError("sort_order", "sort_order must be asc or desc", errors.ErrCodeInvalidSort))
	}

	v.Include(validation.DateRange(q.StartDate, q.EndDate))

	if appErr := v.Validate(); appErr != nil {
		return Filter{}, Sort{}, PageRequest{}, appErr
	}

	filter := Filter{
		UserID:     userID,
		CategoryID: q.CategoryID,
		StartDate:  dateOnly(q.StartDate),
		EndDate:    dateOnly(q.EndDate),
		Search:     strings.TrimSpace(q.Search),
	}
	page := PageRequest{Page: q.Page, Limit: q.Limit, Offset: (q.Page - 1) * q.Limit}
	return filter, Sort{Field: sortField, Desc: desc}, page, nil
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := CalendarDate(*t)
	return &d
}

// ListQueryFromValues reads a ListQuery from URL query parameters. Both
// camelCase and snake_case parameter names are accepted.
func ListQueryFromValues(values url.Values) (ListQuery, *errors.AppError) {
	var q ListQuery
	v := validation.NewValidator()

	q.Page = intParam(v, values, "page")
	q.Limit = intParam(v, values, "limit")
	q.CategoryID = param(values, "categoryId", "category_id")
	q.Search = param(values, "search")
	q.SortBy = param(values, "sortBy", "sort_by")
	q.SortOrder = param(values, "sortOrder", "sort_order")

	var dateErr *errors.AppError
	q.StartDate, q.EndDate, dateErr = DateRangeFromValues(values)
	v.Include(dateErr)

	if appErr := v.Validate(); appErr != nil {
		return ListQuery{}, appErr
	}
	return q, nil
}

// DateRangeFromValues reads optional startDate/endDate query parameters.
func DateRangeFromValues(values url.Values) (*time.Time, *time.Time, *errors.AppError) {
	v := validation.NewValidator()
	start := dateParam(v, "start_date", param(values, "startDate", "start_date"))
	end := dateParam(v, "end_date", param(values, "endDate", "end_date"))
	if appErr := v.Validate(); appErr != nil {
		return nil, nil, appErr
	}
	return start, end, nil
}

func param(values url.Values, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(values.Get(name)); v != "" {
			return v
		}
	}
	return ""
}

func intParam(v *validation.ValidationBuilder, values url.Values, name string) int {
	raw := param(values, name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n == 0 {
		v.Include(errors.NewValidationFieldError(name, name+" must be a positive integer", errors.ErrCodeInvalidPagination))
		return 0
	}
	return n
}

func dateParam(v *validation.ValidationBuilder, name, raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		v.Include(errors.NewValidationFieldError(name, name+" must be a valid date (YYYY-MM-DD)", errors.ErrCodeInvalidDate))
		return nil
	}
	return &t
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

type ListResult struct {
	Data       []*Expense `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type DeleteResult struct {
	Message string `json:"message"`
}
