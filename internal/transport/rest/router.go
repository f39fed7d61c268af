package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/aimodel"
	"github.com/frahmantamala/chathub/internal/auth"
	"github.com/frahmantamala/chathub/internal/dashboard"
	"github.com/frahmantamala/chathub/internal/followup"
	"github.com/frahmantamala/chathub/internal/knowledge"
	"github.com/frahmantamala/chathub/internal/role"
	"github.com/frahmantamala/chathub/internal/template"
	"github.com/frahmantamala/chathub/internal/tenant"
	"github.com/frahmantamala/chathub/internal/transport/middleware"
	"github.com/frahmantamala/chathub/internal/transport/swagger"
	"github.com/frahmantamala/chathub/internal/user"
	"github.com/frahmantamala/chathub/internal/widget"
	"github.com/go-chi/chi"
)

const APIPrefix = "/api/v1"

// Handlers groups every module handler mounted by RegisterAllRoutes. Nil modules are skipped.
type Handlers struct {
	Health    *HealthHandler
	Auth      *auth.Handler
	Dashboard *dashboard.Handler
	Models    *aimodel.Handler
	Templates *template.Handler
	FollowUps *followup.Handler
	Knowledge *knowledge.Handler
	Widget    *widget.Handler
	Users     *user.Handler
	Roles     *role.Handler
	Tenants   *tenant.Handler
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, server internal.ServerConfig, logger *slog.Logger) {
	router.Use(middleware.CORS(server.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get(swagger.SpecPath, swagger.SpecHandler)
	router.Handle("/swagger/*", swagger.Handler())

	router.Route(APIPrefix, func(r chi.Router) {
		r.Use(middleware.SimulatedLatency(server.SimulatedLatency))

		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/login", h.Auth.Login)
			ar.Post("/refresh", h.Auth.RefreshToken)
			ar.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.UserContext)

			pr.Get("/auth/me", h.Auth.Me)

			if h.Dashboard != nil {
				pr.With(can(logger, role.PermDashboardView)).Get("/dashboard/overview", h.Dashboard.Overview)
			}
			if h.Models != nil {
				mountModels(pr, h.Models, logger)
			}
			if h.Templates != nil {
				mountTemplates(pr, h.Templates, logger)
			}
			if h.FollowUps != nil {
				mountFollowUps(pr, h.FollowUps, logger)
			}
			if h.Knowledge != nil {
				mountKnowledge(pr, h.Knowledge, logger)
			}
			if h.Widget != nil {
				mountWidget(pr, h.Widget, logger)
			}
			if h.Users != nil {
				mountUsers(pr, h.Users, logger)
			}
			if h.Roles != nil {
				mountRoles(pr, h.Roles, logger)
			}
			if h.Tenants != nil {
				mountTenants(pr, h.Tenants, logger)
			}
		})
	})
}

func can(logger *slog.Logger, permissions ...string) func(http.Handler) http.Handler {
	return middleware.RequirePermission(logger, permissions...)
}

// view is satisfied by either the view or the manage permission of a module.
func view(logger *slog.Logger, viewPerm, managePerm string) func(http.Handler) http.Handler {
	return can(logger, viewPerm, managePerm)
}

func mountModels(r chi.Router, h *aimodel.Handler, logger *slog.Logger) {
	r.Route("/models", func(mr chi.Router) {
		mr.Group(func(vr chi.Router) {
			vr.Use(view(logger, role.PermModelsView, role.PermModelsManage))
			vr.Get("/", h.ListModels)
			vr.Get("/default", h.GetDefaultModel)
			vr.Get("/{id}", h.GetModel)
		})
		mr.Group(func(wr chi.Router) {
			wr.Use(can(logger, role.PermModelsManage))
			wr.Post("/", h.CreateModel)
			wr.Post("/wizard", h.Wizard)
			wr.Put("/{id}", h.UpdateModel)
			wr.Post("/{id}/default", h.SetDefaultModel)
			wr.Delete("/{id}", h.DeleteModel)
		})
	})
}

func mountTemplates(r chi.Router, h *template.Handler, logger *slog.Logger) {
	r.Route("/templates", func(tr chi.Router) {
		tr.Group(func(vr chi.Router) {
			vr.Use(view(logger, role.PermTemplatesView, role.PermTemplatesEdit))
			vr.Get("/", h.ListTemplates)
			vr.Get("/categories", h.Categories)
			vr.Get("/{id}", h.GetTemplate)
		})
		tr.Group(func(wr chi.Router) {
			wr.Use(can(logger, role.PermTemplatesEdit))
			wr.Post("/", h.CreateTemplate)
			wr.Put("/{id}", h.UpdateTemplate)
			wr.Delete("/{id}", h.DeleteTemplate)
		})
	})
}

func mountFollowUps(r chi.Router, h *followup.Handler, logger *slog.Logger) {
	r.Route("/followups", func(fr chi.Router) {
		fr.Group(func(vr chi.Router) {
			vr.Use(view(logger, role.PermFollowUpsView, role.PermFollowUpsEdit))
			vr.Get("/", h.ListFlows)
			vr.Get("/{id}", h.GetFlow)
			vr.Get("/{id}/validate", h.ValidateFlow)
		})
		fr.Group(func(wr chi.Router) {
			wr.Use(can(logger, role.PermFollowUpsEdit))
			wr.Post("/", h.CreateFlow)
			wr.Put("/{id}", h.UpdateFlow)
			wr.Put("/{id}/status", h.SetStatus)
			wr.Delete("/{id}", h.DeleteFlow)
			wr.Post("/{id}/nodes", h.AddNode)
			wr.Put("/{id}/nodes/{nodeID}", h.UpdateNode)
			wr.Delete("/{id}/nodes/{nodeID}", h.DeleteNode)
			wr.Post("/{id}/nodes/{nodeID}/move", h.MoveNode)
		})
	})
}

func mountKnowledge(r chi.Router, h *knowledge.Handler, logger *slog.Logger) {
	r.Route("/knowledge", func(kr chi.Router) {
		kr.Group(func(vr chi.Router) {
			vr.Use(view(logger, role.PermKnowledgeView, role.PermKnowledgeEdit))
			vr.Get("/", h.ListSources)
			vr.Get("/{id}", h.GetSource)
			vr.Get("/{id}/download", h.DownloadSource)
		})
		kr.Group(func(wr chi.Router) {
			wr.Use(can(logger, role.PermKnowledgeEdit))
			wr.Post("/", h.CreateSource)
			wr.Post("/upload", h.UploadSource)
			wr.Put("/{id}", h.UpdateSource)
			wr.Post("/{id}/sync", h.SyncSource)
			wr.Delete("/{id}", h.DeleteSource)
		})
	})
}

func mountWidget(r chi.Router, h *widget.Handler, logger *slog.Logger) {
	r.Route("/widget", func(wr chi.Router) {
		wr.Group(func(vr chi.Router) {
			vr.Use(view(logger, role.PermWidgetView, role.PermWidgetManage))
			vr.Get("/settings", h.GetSettings)
			vr.Get("/settings/export", h.ExportSettings)
			vr.Get("/embed", h.Embed)
		})
		wr.Group(func(mr chi.Router) {
			mr.Use(can(logger, role.PermWidgetManage))
			mr.Put("/settings", h.UpdateSettings)
			mr.Post("/settings/reset", h.ResetSettings)
			mr.Post("/settings/import", h.ImportSettings)
		})
	})
}

func mountUsers(r chi.Router, h *user.Handler, logger *slog.Logger) {
	r.Route("/users", func(ur chi.Router) {
		ur.Group(func(vr chi.Router) {
			vr.Use(view(logger, role.PermUsersView, role.PermUsersManage))
			vr.Get("/", h.ListUsers)
			vr.Get("/{id}", h.GetUser)
		})
		ur.Group(func(wr chi.Router) {
			wr.Use(can(logger, role.PermUsersManage))
			wr.Post("/", h.CreateUser)
			wr.Post("/wizard", h.Wizard)
			wr.Put("/{id}", h.UpdateUser)
			wr.Delete("/{id}", h.DeleteUser)
		})
	})
}

func mountRoles(r chi.Router, h *role.Handler, logger *slog.Logger) {
	r.With(view(logger, role.PermRolesView, role.PermRolesManage)).Get("/permissions", h.ListPermissions)
	r.Route("/roles", func(rr chi.Router) {
		rr.Group(func(vr chi.Router) {
			vr.Use(view(logger, role.PermRolesView, role.PermRolesManage))
			vr.Get("/", h.ListRoles)
			vr.Get("/{id}", h.GetRole)
		})
		rr.Group(func(wr chi.Router) {
			wr.Use(can(logger, role.PermRolesManage))
			wr.Post("/", h.CreateRole)
			wr.Post("/wizard", h.Wizard)
			wr.Put("/{id}", h.UpdateRole)
			wr.Delete("/{id}", h.DeleteRole)
		})
	})
}

func mountTenants(r chi.Router, h *tenant.Handler, logger *slog.Logger) {
	r.Route("/tenants", func(tr chi.Router) {
		tr.Group(func(vr chi.Router) {
			vr.Use(view(logger, role.PermTenantsView, role.PermTenantsManage))
			vr.Get("/", h.ListTenants)
			vr.Get("/{id}", h.GetTenant)
		})
		tr.Group(func(wr chi.Router) {
			wr.Use(can(logger, role.PermTenantsManage))
			wr.Post("/", h.CreateTenant)
			wr.Put("/{id}", h.UpdateTenant)
			wr.Delete("/{id}", h.DeleteTenant)
		})
	})
}
