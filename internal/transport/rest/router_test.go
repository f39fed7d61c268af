package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/aimodel"
	aimodelPostgres "github.com/frahmantamala/chathub/internal/aimodel/postgres"
	"github.com/frahmantamala/chathub/internal/auth"
	authPostgres "github.com/frahmantamala/chathub/internal/auth/postgres"
	"github.com/frahmantamala/chathub/internal/core/dbtest"
	"github.com/frahmantamala/chathub/internal/core/events"
	"github.com/frahmantamala/chathub/internal/core/storage"
	"github.com/frahmantamala/chathub/internal/dashboard"
	"github.com/frahmantamala/chathub/internal/followup"
	followupPostgres "github.com/frahmantamala/chathub/internal/followup/postgres"
	"github.com/frahmantamala/chathub/internal/knowledge"
	knowledgePostgres "github.com/frahmantamala/chathub/internal/knowledge/postgres"
	"github.com/frahmantamala/chathub/internal/role"
	rolePostgres "github.com/frahmantamala/chathub/internal/role/postgres"
	"github.com/frahmantamala/chathub/internal/seed"
	"github.com/frahmantamala/chathub/internal/template"
	templatePostgres "github.com/frahmantamala/chathub/internal/template/postgres"
	"github.com/frahmantamala/chathub/internal/tenant"
	tenantPostgres "github.com/frahmantamala/chathub/internal/tenant/postgres"
	"github.com/frahmantamala/chathub/internal/transport/rest"
	"github.com/frahmantamala/chathub/internal/user"
	userPostgres "github.com/frahmantamala/chathub/internal/user/postgres"
	"github.com/frahmantamala/chathub/internal/widget"
	widgetPostgres "github.com/frahmantamala/chathub/internal/widget/postgres"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "REST Router Suite")
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *struct {
		Total int64 `json:"total"`
	} `json:"meta"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

var _ = Describe("API router", func() {
	var (
		router *chi.Mux
		bus    *events.EventBus
	)

	BeforeEach(func() {
		ctx := context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err := dbtest.Open()
		Expect(err).ToNot(HaveOccurred())
		fixtures, err := seed.LoadFixtures()
		Expect(err).ToNot(HaveOccurred())
		_, err = seed.NewSeeder(db, fixtures, bcrypt.MinCost, logger).Run(ctx)
		Expect(err).ToNot(HaveOccurred())

		sqlDB, err := db.DB()
		Expect(err).ToNot(HaveOccurred())

		store, err := storage.NewLocalStore(GinkgoT().TempDir())
		Expect(err).ToNot(HaveOccurred())

		bus = events.NewEventBus(logger)

		authService := auth.NewService(
			authPostgres.NewRepository(db),
			auth.NewJWTTokenGenerator("access-secret-access-secret-access!", "refresh-secret-refresh-secret-refr!", time.Minute, time.Hour),
			auth.NewMemoryRevoker(),
			bus,
			logger,
		)
		models := aimodel.NewService(aimodelPostgres.NewModelRepository(db), bus, logger)
		templates := template.NewService(templatePostgres.NewTemplateRepository(db), logger)
		flows := followup.NewService(followupPostgres.NewFlowRepository(db), bus, logger)
		sources := knowledge.NewService(knowledgePostgres.NewSourceRepository(db), store, logger)
		users := user.NewService(userPostgres.NewUserRepository(db), logger, bcrypt.MinCost)
		tenants := tenant.NewService(tenantPostgres.NewTenantRepository(db), logger)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Health: rest.NewHealthHandler(sqlx.NewDb(sqlDB, "sqlite3"), nil),
			Auth:   auth.NewHandler(authService),
			Dashboard: dashboard.NewHandler(dashboard.NewService(dashboard.Counters{
				Models: models, Templates: templates, Flows: flows,
				Sources: sources, Users: users, Tenants: tenants,
			}, logger)),
			Models:    aimodel.NewHandler(models),
			Templates: template.NewHandler(templates),
			FollowUps: followup.NewHandler(flows),
			Knowledge: knowledge.NewHandler(sources),
			Widget: widget.NewHandler(widget.NewService(widgetPostgres.NewSettingsRepository(db), nil, bus,
				"https://cdn.example.com/widget.js", logger)),
			Users:   user.NewHandler(users),
			Roles:   role.NewHandler(role.NewService(rolePostgres.NewRoleRepository(db), logger)),
			Tenants: tenant.NewHandler(tenants),
		}, internal.ServerConfig{AllowedOrigins: "*"}, logger)
	})

	AfterEach(func() {
		bus.Wait()
	})

	send := func(method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
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

	login := func(email string) string {
		rec, env := send(http.MethodPost, "/api/v1/auth/login", "", `{"email":"`+email+`","password":"password"}`)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		var resp auth.LoginResponse
		Expect(json.Unmarshal(env.Data, &resp)).To(Succeed())
		return resp.Token
	}

	It("should serve liveness, readiness and the openapi document without a token", func() {
		rec, _ := send(http.MethodGet, "/api/v1/ping", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		rec, _ = send(http.MethodGet, "/api/v1/health", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"healthy"`))

		rec, _ = send(http.MethodGet, "/openapi.yml", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("openapi:"))
	})

	It("should answer CORS preflight requests", func() {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/models", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	})

	It("should reject protected routes without a token", func() {
		rec, env := send(http.MethodGet, "/api/v1/models", "", "")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(env.Success).To(BeFalse())
	})

	It("should give the admin the seeded overview and paginated lists", func() {
		token := login("admin@example.com")

		rec, env := send(http.MethodGet, "/api/v1/dashboard/overview", token, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var overview dashboard.Overview
		Expect(json.Unmarshal(env.Data, &overview)).To(Succeed())
		Expect(overview.Models).To(Equal(int64(3)))
		Expect(overview.Users).To(Equal(int64(3)))
		Expect(overview.Tenants).To(Equal(int64(2)))

		rec, env = send(http.MethodGet, "/api/v1/models?per_page=2", token, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(env.Meta).ToNot(BeNil())
		Expect(env.Meta.Total).To(Equal(int64(3)))

		rec, _ = send(http.MethodGet, "/api/v1/models/default", token, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("GPT-4"))

		rec, _ = send(http.MethodGet, "/api/v1/permissions", token, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("should enforce view and manage permissions for the read-only role", func() {
		token := login("user@example.com")

		rec, _ := send(http.MethodGet, "/api/v1/templates", token, "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		rec, env := send(http.MethodPost, "/api/v1/templates", token, `{"name":"x","category":"general","prompt_text":"hello"}`)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(env.Error).ToNot(BeNil())

		rec, _ = send(http.MethodGet, "/api/v1/users", token, "")
		Expect(rec.Code).To(Equal(http.StatusForbidden))

		rec, _ = send(http.MethodPost, "/api/v1/widget/settings/reset", token, "")
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("should combine role and personal permissions for the manager", func() {
		token := login("manager@example.com")

		rec, _ := send(http.MethodGet, "/api/v1/users", token, "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		rec, _ = send(http.MethodDelete, "/api/v1/tenants/unknown", token, "")
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("should not let users.manage escalate the holder's own permissions", func() {
		token := login("manager@example.com")

		rec, env := send(http.MethodGet, "/api/v1/auth/me", token, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var me struct {
			ID string `json:"id"`
		}
		Expect(json.Unmarshal(env.Data, &me)).To(Succeed())
		Expect(me.ID).NotTo(BeEmpty())

		rec, env = send(http.MethodPut, "/api/v1/users/"+me.ID, token, `{"permissions":["all"]}`)
		Expect(rec.Code).To(Equal(http.StatusForbidden), rec.Body.String())
		Expect(env.Error.Code).To(Equal(string(internal.ErrCodeInsufficientPerms)))

		rec, _ = send(http.MethodPut, "/api/v1/users/"+me.ID, token, `{"role":"admin"}`)
		Expect(rec.Code).To(Equal(http.StatusForbidden))

		rec, _ = send(http.MethodPost, "/api/v1/tenants", token, `{"name":"Initech","plan":"starter"}`)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("should round-trip widget settings through export and import", func() {
		token := login("admin@example.com")

		rec, _ := send(http.MethodGet, "/api/v1/widget/settings/export", token, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Disposition")).To(HavePrefix("attachment"))
		exported := rec.Body.String()

		rec, env := send(http.MethodPost, "/api/v1/widget/settings/import", token, exported)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		Expect(env.Success).To(BeTrue())

		rec, _ = send(http.MethodPost, "/api/v1/widget/settings/import", token, `{"position":"middle"}`)
		Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
	})

	It("should validate the seeded follow-up flow", func() {
		token := login("admin@example.com")

		rec, env := send(http.MethodGet, "/api/v1/followups?search=Lead", token, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var flows []struct {
			ID string `json:"id"`
		}
		Expect(json.Unmarshal(env.Data, &flows)).To(Succeed())
		Expect(flows).To(HaveLen(1))

		rec, _ = send(http.MethodGet, "/api/v1/followups/"+flows[0].ID+"/validate", token, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
	})
})
