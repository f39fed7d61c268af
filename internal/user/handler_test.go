package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/core/dbtest"
	"github.com/frahmantamala/chathub/internal/user"
	userPostgres "github.com/frahmantamala/chathub/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Meta    struct {
		Total    int64 `json:"total"`
		LastPage int   `json:"last_page"`
	} `json:"meta"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

var _ = Describe("User Handler Integration", func() {
	var (
		router  *chi.Mux
		service *user.Service
		admin   *user.User
	)

	BeforeEach(func() {
		db, err := dbtest.Open()
		Expect(err).NotTo(HaveOccurred())

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(userPostgres.NewUserRepository(db), logger, bcrypt.MinCost)
		handler := user.NewHandler(service)

		admin, err = service.Create(context.Background(), user.CreateUserDTO{Name: "Admin User", Email: "admin@example.com", Password: "password", Role: user.RoleAdmin})
		Expect(err).NotTo(HaveOccurred())
		_, err = service.Create(context.Background(), user.CreateUserDTO{Name: "Regular User", Email: "user@example.com", Password: "password"})
		Expect(err).NotTo(HaveOccurred())

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := internal.ContextWithUser(r.Context(), &internal.User{ID: admin.ID, Role: user.RoleAdmin, Permissions: []string{"all"}})
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		})
		router.Get("/users", handler.ListUsers)
		router.Post("/users", handler.CreateUser)
		router.Post("/users/wizard", handler.Wizard)
		router.Get("/users/{id}", handler.GetUser)
		router.Patch("/users/{id}", handler.UpdateUser)
		router.Delete("/users/{id}", handler.DeleteUser)
	})

	do := func(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var env envelope
		Expect(json.Unmarshal(w.Body.Bytes(), &env)).To(Succeed())
		return w, env
	}

	It("should list users in a paginated envelope", func() {
		w, env := do(http.MethodGet, "/users?q=REGULAR&per_page=5", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(env.Success).To(BeTrue())
		Expect(env.Meta.Total).To(Equal(int64(1)))

		var items []user.User
		Expect(json.Unmarshal(env.Data, &items)).To(Succeed())
		Expect(items[0].Email).To(Equal("user@example.com"))
	})

	It("should never expose password hashes", func() {
		w, _ := do(http.MethodGet, "/users/"+admin.ID, nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).NotTo(ContainSubstring("password"))
	})

	It("should answer 409 for a duplicate email", func() {
		w, env := do(http.MethodPost, "/users", map[string]string{"name": "Dup", "email": "user@example.com", "password": "password"})
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(env.Success).To(BeFalse())
		Expect(env.Error.Code).To(Equal("DUPLICATE"))
	})

	It("should answer 400 when deleting yourself", func() {
		w, _ := do(http.MethodDelete, "/users/"+admin.ID, nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 404 for an unknown user", func() {
		w, env := do(http.MethodDelete, "/users/does-not-exist", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(env.Error.Code).To(Equal("USER_NOT_FOUND"))
	})

	It("should answer 400 for a malformed body", func() {
		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should step through the creation wizard", func() {
		w, env := do(http.MethodPost, "/users/wizard", map[string]interface{}{
			"step": 1, "action": "next",
			"data": map[string]string{"name": "Jane Doe", "email": "jane@example.com", "password": "password"},
		})
		Expect(w.Code).To(Equal(http.StatusOK))

		var state struct {
			Step     int    `json:"step"`
			StepName string `json:"step_name"`
		}
		Expect(json.Unmarshal(env.Data, &state)).To(Succeed())
		Expect(state.Step).To(Equal(2))
		Expect(state.StepName).To(Equal("role"))
	})
})
