package expense

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/expense-tracker/internal/category"
	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"github.com/shopspring/decimal"
)

// Expense is a dated money movement. Whether it counts as income or expense
// depends on the type of its category.
type Expense struct {
	ID         string             `json:"id"`
	Amount     decimal.Decimal    `json:"amount"`
	Note       *string            `json:"note"`
	Date       time.Time          `json:"date"`
	CategoryID string             `json:"category_id"`
	UserID     string             `json:"user_id"`
	Category   *category.Category `json:"category,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func (e *Expense) OwnedBy(userID string) bool {
	return e.UserID == userID
}

const dateLayout = "2006-01-02"

var errInvalidDate = errors.New("date must be YYYY-MM-DD or RFC 3339")

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and keeps only the
// calendar date as written, returned as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", errInvalidDate, s)
	}
	return CalendarDate(t), nil
}

// CalendarDate drops the time of day, keeping t's own year, month and day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ToCents rounds half away from zero to two decimals and returns minor units.
func ToCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:          e.ID,
		AmountCents: ToCents(e.Amount),
		Note:        e.Note,
		Date:        CalendarDate(e.Date),
		CategoryID:  e.CategoryID,
		UserID:      e.UserID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	out := &Expense{
		ID:         e.ID,
		Amount:     FromCents(e.AmountCents),
		Note:       e.Note,
		Date:       CalendarDate(e.Date),
		CategoryID: e.CategoryID,
		UserID:     e.UserID,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
	if e.Category != nil {
		out.Category = category.FromDataModel(e.Category)
	}
	return out
}
