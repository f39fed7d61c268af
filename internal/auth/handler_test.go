package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/auth"
	authPostgres "github.com/frahmantamala/chathub/internal/auth/postgres"
	roleDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/user"
	"github.com/frahmantamala/chathub/internal/core/dbtest"
	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var _ = ginkgo.Describe("Auth HTTP handlers", func() {
	var (
		db     *gorm.DB
		router chi.Router
	)

	do := func(method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		var env envelope
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
		return rec, env
	}

	login := func(email string) auth.LoginResponse {
		rec, env := do(http.MethodPost, "/auth/login", "", `{"email":"`+email+`","password":"password"}`)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		var resp auth.LoginResponse
		gomega.Expect(json.Unmarshal(env.Data, &resp)).To(gomega.Succeed())
		return resp
	}

	ginkgo.BeforeEach(func() {
		var err error
		db, err = dbtest.Open()
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		gomega.Expect(db.Create(&roleDatamodel.Role{ID: "r-1", Name: "manager", Permissions: []string{"models.view", "models.manage"}}).Error).To(gomega.Succeed())
		gomega.Expect(db.Create(&userDatamodel.User{
			ID: "u-1", Email: "manager@example.com", Name: "Manager", PasswordHash: string(hash),
			Role: "manager", Permissions: []string{"widget.view"}, IsActive: true,
		}).Error).To(gomega.Succeed())

		svc := auth.NewService(
			authPostgres.NewRepository(db),
			auth.NewJWTTokenGenerator("access-secret-access-secret-access!", "refresh-secret-refresh-secret-refr!", time.Minute, time.Hour),
			auth.NewMemoryRevoker(),
			nil,
			nil,
		)
		h := auth.NewHandler(svc)

		router = chi.NewRouter()
		router.Post("/auth/login", h.Login)
		router.Post("/auth/refresh", h.RefreshToken)
		router.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)
			r.Post("/auth/logout", h.Logout)
			r.Get("/auth/me", h.Me)
			r.Get("/probe", func(w http.ResponseWriter, r *http.Request) {
				user, _ := internal.UserFromContext(r.Context())
				_ = json.NewEncoder(w).Encode(user)
			})
		})
	})

	ginkgo.It("should merge user and role permissions into the principal", func() {
		resp := login("MANAGER@example.com")
		gomega.Expect(resp.User.Permissions).To(gomega.ConsistOf("widget.view", "models.view", "models.manage"))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+resp.Token)
		router.ServeHTTP(rec, req)

		var user internal.User
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &user)).To(gomega.Succeed())
		gomega.Expect(user.ID).To(gomega.Equal("u-1"))
		gomega.Expect(user.HasPermission("models.manage")).To(gomega.BeTrue())
	})

	ginkgo.It("should stamp last_login_at", func() {
		login("manager@example.com")

		var row userDatamodel.User
		gomega.Expect(db.First(&row, "id = ?", "u-1").Error).To(gomega.Succeed())
		gomega.Expect(row.LastLoginAt).ToNot(gomega.BeNil())
	})

	ginkgo.It("should return 401 with the generic message on bad credentials", func() {
		rec, env := do(http.MethodPost, "/auth/login", "", `{"email":"manager@example.com","password":"nope"}`)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(env.Success).To(gomega.BeFalse())
		gomega.Expect(env.Error.Message).To(gomega.Equal("Invalid email or password"))
	})

	ginkgo.It("should require a bearer header", func() {
		rec, _ := do(http.MethodGet, "/auth/me", "", "")
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))

		resp := login("manager@example.com")
		req := httptest.NewRequest(http.MethodGet, "/auth/me?token="+resp.Token, nil)
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("should serve /auth/me and reject the token after logout", func() {
		resp := login("manager@example.com")

		rec, env := do(http.MethodGet, "/auth/me", resp.Token, "")
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		var me auth.Profile
		gomega.Expect(json.Unmarshal(env.Data, &me)).To(gomega.Succeed())
		gomega.Expect(me.Email).To(gomega.Equal("manager@example.com"))

		rec, _ = do(http.MethodPost, "/auth/logout", resp.Token, "")
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

		rec, env = do(http.MethodGet, "/auth/me", resp.Token, "")
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(env.Error.Code).To(gomega.Equal(string(internal.ErrCodeTokenRevoked)))
	})

	ginkgo.It("should refresh tokens", func() {
		resp := login("manager@example.com")

		rec, env := do(http.MethodPost, "/auth/refresh", "", `{"refresh_token":"`+resp.RefreshToken+`"}`)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		var refreshed auth.LoginResponse
		gomega.Expect(json.Unmarshal(env.Data, &refreshed)).To(gomega.Succeed())
		gomega.Expect(refreshed.Token).ToNot(gomega.BeEmpty())

	})
})
