package internal_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/frahmantamala/expense-tracker/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("maps each type to its status code", func() {
		Expect(internal.ErrInvalidRequestBody.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(internal.ErrInvalidCredentials.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(internal.ErrExpenseForbidden.StatusCode).To(Equal(http.StatusForbidden))
		Expect(internal.ErrCategoryNotFound.StatusCode).To(Equal(http.StatusNotFound))
		Expect(internal.ErrEmailTaken.StatusCode).To(Equal(http.StatusConflict))
		Expect(internal.NewInternalError("boom", nil).StatusCode).To(Equal(http.StatusInternalServerError))
	})

	It("matches on type and code through wrapping", func() {
		wrapped := fmt.Errorf("register: %w", internal.ErrEmailTaken.WithCause(errors.New("duplicate key")))

		Expect(errors.Is(wrapped, internal.ErrEmailTaken)).To(BeTrue())
		Expect(errors.Is(wrapped, internal.ErrCategoryExists)).To(BeFalse())

		appErr, ok := internal.IsAppError(wrapped)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeEmailTaken))
	})

	It("leaves sentinels untouched by WithCause", func() {
		_ = internal.ErrExpenseNotFound.WithCause(errors.New("x"))
		Expect(internal.ErrExpenseNotFound.Cause).To(BeNil())
	})

	It("exposes the cause to errors.Unwrap", func() {
		cause := errors.New("connection reset")
		err := internal.NewInternalError("failed", cause)
		Expect(errors.Is(err, cause)).To(BeTrue())
	})

	It("does not serialize the cause", func() {
		out, err := json.Marshal(internal.NewInternalError("failed", errors.New("secret dsn")))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).NotTo(ContainSubstring("secret dsn"))
		Expect(string(out)).To(ContainSubstring(`"INTERNAL_ERROR"`))
	})

	It("is not found for plain errors", func() {
		_, ok := internal.IsAppError(errors.New("plain"))
		Expect(ok).To(BeFalse())
	})
})
