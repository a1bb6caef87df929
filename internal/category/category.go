package category

import (
	"errors"
	"time"

	categoryDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/category"
)

type Type string

const (
	TypeExpense Type = "EXPENSE"
	TypeIncome  Type = "INCOME"
)

func (t Type) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnedBy reports whether userID owns the category.
func (c *Category) OwnedBy(userID string) bool {
	return c.UserID == userID
}

// ErrDuplicate is returned by repositories when the (user, name, type)
// unique index rejects a write.
var ErrDuplicate = errors.New("category already exists")

func ToDataModel(c *Category) *categoryDatamodel.Category {
	return &categoryDatamodel.Category{
		ID:        c.ID,
		Name:      c.Name,
		Type:      string(c.Type),
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromDataModel(c *categoryDatamodel.Category) *Category {
	return &Category{
		ID:        c.ID,
		Name:      c.Name,
		Type:      Type(c.Type),
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
