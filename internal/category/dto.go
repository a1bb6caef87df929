package category

import (
	"strings"

	errors "github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/core/common/validation"
)

type CreateCategoryDTO struct {
	Name string `json:"name" validate:"required,notblank,max=50"`
	Type string `json:"type" validate:"required,oneof=EXPENSE INCOME"`
}

func (d *CreateCategoryDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
}

func (d CreateCategoryDTO) Validate() *errors.AppError {
	return validation.Struct(d)
}

// UpdateCategoryDTO is a partial update; nil fields are left alone.
type UpdateCategoryDTO struct {
	Name *string `json:"name,omitempty" validate:"omitempty,notblank,max=50"`
	Type *string `json:"type,omitempty" validate:"omitempty,oneof=EXPENSE INCOME"`
}

func (d *UpdateCategoryDTO) Normalize() {
	if d.Name != nil {
		trimmed := strings.TrimSpace(*d.Name)
		d.Name = &trimmed
	}
}

func (d UpdateCategoryDTO) Validate() *errors.AppError {
	return validation.Struct(d)
}

func (d UpdateCategoryDTO) TouchesIdentity() bool {
	return d.Name != nil || d.Type != nil
}

type Stats struct {
	Total   int64 `json:"total"`
	Expense int64 `json:"expense"`
	Income  int64 `json:"income"`
}

type DeleteResult struct {
	Message string `json:"message"`
}
