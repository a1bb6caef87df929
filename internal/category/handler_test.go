package category_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/category"
	categoryPostgres "github.com/frahmantamala/expense-tracker/internal/category/postgres"
	"github.com/frahmantamala/expense-tracker/internal/testutil"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Type string `json:"type"`
		Code string `json:"code"`
	} `json:"error"`
}

var _ = Describe("Category Handler Integration", func() {
	var (
		db     *gorm.DB
		router *chi.Mux
	)

	// do sends a request as userID; an empty userID sends it unauthenticated.
	do := func(method, path, body, userID string) (*httptest.ResponseRecorder, envelope) {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		if userID != "" {
			req = req.WithContext(internal.ContextWithUser(req.Context(), internal.AuthenticatedUser{ID: userID}))
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var env envelope
		Expect(json.Unmarshal(w.Body.Bytes(), &env)).To(Succeed())
		return w, env
	}

	BeforeEach(func() {
		var err error
		db, err = testutil.NewSQLiteDB()
		Expect(err).NotTo(HaveOccurred())

		repo := categoryPostgres.NewCategoryRepository(db)
		service := category.NewService(repo, nil, logger.Discard())
		handler := category.NewHandler(transport.NewBaseHandler(logger.Discard(), false), service)

		router = chi.NewRouter()
		router.Post("/categories", handler.CreateCategory)
		router.Get("/categories", handler.GetCategories)
		router.Get("/categories/stats", handler.GetStats)
		router.Get("/categories/{id}", handler.GetCategory)
		router.Patch("/categories/{id}", handler.UpdateCategory)
		router.Delete("/categories/{id}", handler.DeleteCategory)

		_, err = service.Create(context.Background(), "user-1", category.CreateCategoryDTO{Name: "Salary", Type: "INCOME"})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(testutil.Close(db)).To(Succeed())
	})

	It("creates a category and answers 201", func() {
		w, env := do(http.MethodPost, "/categories", `{"name":"Food","type":"EXPENSE"}`, "user-1")

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))
		Expect(env.Success).To(BeTrue())

		var c category.Category
		Expect(json.Unmarshal(env.Data, &c)).To(Succeed())
		Expect(c.Name).To(Equal("Food"))
		Expect(c.UserID).To(Equal("user-1"))
	})

	It("answers 409 for a duplicate", func() {
		w, env := do(http.MethodPost, "/categories", `{"name":"Salary","type":"INCOME"}`, "user-1")

		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(env.Success).To(BeFalse())
		Expect(env.Error.Code).To(Equal(string(internal.ErrCodeCategoryExists)))
	})

	It("answers 400 for a malformed body", func() {
		w, env := do(http.MethodPost, "/categories", `{"name":`, "user-1")

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(env.Error.Code).To(Equal(string(internal.ErrCodeInvalidRequest)))
	})

	It("answers 401 without a user in the context", func() {
		w, _ := do(http.MethodGet, "/categories", "", "")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("lists only the caller's categories", func() {
		w, env := do(http.MethodGet, "/categories", "", "user-2")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(string(env.Data)).To(Equal("[]"))

		w, env = do(http.MethodGet, "/categories?type=INCOME", "", "user-1")
		Expect(w.Code).To(Equal(http.StatusOK))

		var categories []category.Category
		Expect(json.Unmarshal(env.Data, &categories)).To(Succeed())
		Expect(categories).To(HaveLen(1))
		Expect(categories[0].Name).To(Equal("Salary"))
	})

	It("routes /categories/stats ahead of /categories/{id}", func() {
		w, env := do(http.MethodGet, "/categories/stats", "", "user-1")
		Expect(w.Code).To(Equal(http.StatusOK))

		var stats category.Stats
		Expect(json.Unmarshal(env.Data, &stats)).To(Succeed())
		Expect(stats).To(Equal(category.Stats{Total: 1, Income: 1}))
	})

	It("distinguishes missing from foreign categories", func() {
		_, env := do(http.MethodPost, "/categories", `{"name":"Food","type":"EXPENSE"}`, "user-1")
		var c category.Category
		Expect(json.Unmarshal(env.Data, &c)).To(Succeed())

		w, _ := do(http.MethodGet, "/categories/"+c.ID, "", "user-2")
		Expect(w.Code).To(Equal(http.StatusForbidden))

		w, _ = do(http.MethodGet, "/categories/does-not-exist", "", "user-1")
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("updates and deletes a category", func() {
		_, env := do(http.MethodPost, "/categories", `{"name":"Food","type":"EXPENSE"}`, "user-1")
		var c category.Category
		Expect(json.Unmarshal(env.Data, &c)).To(Succeed())

		w, env := do(http.MethodPatch, "/categories/"+c.ID, `{"name":"Groceries"}`, "user-1")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(env.Data, &c)).To(Succeed())
		Expect(c.Name).To(Equal("Groceries"))

		w, env = do(http.MethodDelete, "/categories/"+c.ID, "", "user-1")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(env.Message).To(Equal("Category deleted successfully"))

		w, _ = do(http.MethodGet, "/categories/"+c.ID, "", "user-1")
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})
