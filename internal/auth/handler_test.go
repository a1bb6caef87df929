package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Success bool `json:"success"`
	Data    struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	} `json:"data"`
	Error *struct {
		Type string `json:"type"`
		Code string `json:"code"`
	} `json:"error"`
}

var _ = ginkgo.Describe("Auth Handler", func() {
	var handler *Handler

	post := func(h http.HandlerFunc, body string) (*httptest.ResponseRecorder, envelope) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		w := httptest.NewRecorder()
		h(w, req)

		var env envelope
		gomega.Expect(json.Unmarshal(w.Body.Bytes(), &env)).To(gomega.Succeed())
		return w, env
	}

	ginkgo.BeforeEach(func() {
		tokens := NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
		service := NewService(newMockUserRepository(), tokens, NewBcryptHasher(bcrypt.MinCost), nil, logger.Discard())
		handler = NewHandler(transport.NewBaseHandler(logger.Discard(), false), service)
	})

	ginkgo.It("registers, rejects a duplicate and logs in", func() {
		body := `{"email":"a@x.com","password":"Abc12345","confirm_password":"Abc12345"}`

		w, env := post(handler.Register, body)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusCreated))
		gomega.Expect(env.Data.AccessToken).NotTo(gomega.BeEmpty())

		w, env = post(handler.Register, body)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusConflict))
		gomega.Expect(env.Error.Code).To(gomega.Equal(string(internal.ErrCodeEmailTaken)))

		w, _ = post(handler.Login, `{"email":"a@x.com","password":"Wrong1234"}`)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))

		w, env = post(handler.Login, `{"email":"a@x.com","password":"Abc12345"}`)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))

		w, env = post(handler.RefreshToken, `{"refresh_token":"`+env.Data.RefreshToken+`"}`)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(env.Data.AccessToken).NotTo(gomega.BeEmpty())
	})

	ginkgo.It("requires a refresh token", func() {
		w, env := post(handler.RefreshToken, `{}`)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusBadRequest))
		gomega.Expect(env.Error.Type).To(gomega.Equal(string(internal.ErrorTypeValidation)))
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var (
			reached string
			gated   http.Handler
		)

		serve := func(authorization string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if authorization != "" {
				req.Header.Set("Authorization", authorization)
			}
			w := httptest.NewRecorder()
			gated.ServeHTTP(w, req)
			return w
		}

		ginkgo.BeforeEach(func() {
			reached = ""
			gated = handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = internal.UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))
		})

		ginkgo.It("answers 401 without a bearer token", func() {
			gomega.Expect(serve("").Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(serve("Basic abc").Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(reached).To(gomega.BeEmpty())
		})

		ginkgo.It("answers 401 for an invalid token", func() {
			gomega.Expect(serve("Bearer nope").Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("passes the caller identity through", func() {
			result, err := handler.Service.Register(context.Background(),
				RegisterDTO{Email: "a@x.com", Password: "Abc12345", ConfirmPassword: "Abc12345"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			w := serve("Bearer " + result.AccessToken)
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(reached).To(gomega.Equal(result.User.ID))
		})
	})
})
