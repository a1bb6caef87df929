package auth

import (
	errors "github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/core/common/validation"
)

type RegisterDTO struct {
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=8,max=72,maxbytes=72,strongpassword"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Validate checks a registration. A password mismatch wins over every other
// rule so the caller always learns about it first.
func (d RegisterDTO) Validate() *errors.AppError {
	if d.Password != d.ConfirmPassword {
		return errors.ErrPasswordMismatch
	}
	return validation.Struct(d)
}

func (d LoginDTO) Validate() *errors.AppError {
	return validation.Struct(d)
}

func (d RefreshTokenDTO) Validate() *errors.AppError {
	return validation.Struct(d)
}
