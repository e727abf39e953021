package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hr-management/api"
	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/employee"
	"github.com/frahmantamala/hr-management/internal/feature"
	"github.com/frahmantamala/hr-management/internal/feedback"
	"github.com/frahmantamala/hr-management/internal/leave"
	"github.com/frahmantamala/hr-management/internal/navigation"
	"github.com/frahmantamala/hr-management/internal/notification"
	"github.com/frahmantamala/hr-management/internal/permission"
	"github.com/frahmantamala/hr-management/internal/reconcile"
	"github.com/frahmantamala/hr-management/internal/succession"
	"github.com/frahmantamala/hr-management/internal/transport/middleware"
	"github.com/frahmantamala/hr-management/internal/transport/swagger"
	"github.com/frahmantamala/hr-management/internal/workpermit"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Feature codes used to gate routes. They must exist in the feature registry.
const (
	featureEmployeeList     = "employees.directory.list"
	featureEmployeeProfile  = "employees.directory.profile"
	featurePermitRegister   = "work_permits.register"
	featurePermitExpiring   = "work_permits.expiring"
	featureLeaveBalances    = "leave.balances"
	featureLeaveTypes       = "leave.types"
	featureManualSections   = "succession.manual.sections"
	featureHandbookTasks    = "succession.handbook.tasks"
	featureConsentTypes     = "feedback.consent.types"
	featureConsentRecords   = "feedback.consent.records"
	featurePolicies         = "feedback.policies.library"
	featureAccessRequests   = "notifications.access_requests"
	featureRoles            = "admin.security.roles"
	featurePermissionMatrix = "admin.security.permissions"
	featureCatalog          = "admin.system.features"
	featureReconciliation   = "admin.system.reconciliation"
)

const (
	actionView   = "view"
	actionCreate = "create"
	actionEdit   = "edit"
	actionDelete = "delete"
)

type Options struct {
	AllowedOrigins []string
	MetricsEnabled bool
	MetricsPath    string
	Realtime       bool
}

// Handlers groups every HTTP handler the API mounts. A nil handler leaves its
// routes unmounted.
type Handlers struct {
	Health       *HealthHandler
	Auth         *auth.Handler
	Owner        auth.OwnerLookup
	Navigation   *navigation.Handler
	Employee     *employee.Handler
	WorkPermit   *workpermit.Handler
	Leave        *leave.Handler
	Succession   *succession.Handler
	Feedback     *feedback.Handler
	Notification *notification.Handler
	Permission   *permission.Handler
	Feature      *feature.Handler
	Reconcile    *reconcile.Handler
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) {
	rbac := auth.NewRBACAuthorization(logger)

	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware(logger))
	if opts.MetricsEnabled {
		router.Use(middleware.Metrics)
		router.Handle(opts.MetricsPath, promhttp.Handler())
	}

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.Document())
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
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

			pr.Get("/auth/me", h.Auth.Me)

			if h.Navigation != nil {
				pr.Route("/navigation", func(nr chi.Router) {
					nr.Get("/resolve", h.Navigation.Resolve)
					nr.Get("/redirect", h.Navigation.Redirect)
					nr.Get("/menu", h.Navigation.Menu)
				})
			}

			if h.Notification != nil {
				if opts.Realtime {
					pr.Get("/realtime", h.Notification.Realtime)
				}
				mountNotifications(pr, h.Notification, rbac)
			}

			if h.Employee != nil {
				mountEmployees(pr, h, rbac)
			}
			if h.WorkPermit != nil {
				mountWorkPermits(pr, h.WorkPermit, rbac)
			}
			if h.Leave != nil {
				pr.Route("/leave/types", func(lr chi.Router) {
					lr.With(rbac.Require(featureLeaveTypes, actionView)).Get("/", h.Leave.ListTypes)
					lr.With(rbac.Require(featureLeaveTypes, actionCreate)).Post("/", h.Leave.CreateType)
				})
			}
			if h.Succession != nil {
				mountSuccession(pr, h.Succession, rbac)
			}
			if h.Feedback != nil {
				mountFeedback(pr, h.Feedback, rbac)
			}

			pr.Route("/admin", func(adm chi.Router) {
				if h.Permission != nil {
					mountRoles(adm, h.Permission, rbac)
				}
				if h.Feature != nil {
					adm.Route("/features", func(fr chi.Router) {
						fr.With(rbac.Require(featureCatalog, actionView)).Get("/", h.Feature.List)
						fr.With(rbac.Require(featureCatalog, actionCreate)).Post("/", h.Feature.Create)
						fr.With(rbac.Require(featureCatalog, actionView)).Get("/{id}", h.Feature.Get)
						fr.With(rbac.Require(featureCatalog, actionEdit)).Put("/{id}", h.Feature.Update)
						fr.With(rbac.Require(featureCatalog, actionDelete)).Delete("/{id}", h.Feature.Delete)
					})
				}
				if h.Reconcile != nil {
					adm.Route("/reconciliation", func(rr chi.Router) {
						rr.With(rbac.Require(featureReconciliation, actionView)).Get("/", h.Reconcile.Report)
						rr.With(rbac.Require(featureReconciliation, actionView)).Get("/registry", h.Reconcile.Scan)
						rr.With(rbac.Require(featureReconciliation, actionEdit)).Post("/sync", h.Reconcile.Sync)
					})
				}
			})
		})
	})
}

func mountEmployees(r chi.Router, h Handlers, rbac *auth.RBACAuthorization) {
	self := func(code, action string) func(http.Handler) http.Handler {
		return auth.RequireSelfOrPermission(h.Owner, "id", code, action)
	}

	r.Route("/employees", func(er chi.Router) {
		er.With(rbac.Require(featureEmployeeList, actionView)).Get("/", h.Employee.List)
		er.With(rbac.Require(featureEmployeeList, actionCreate)).Post("/", h.Employee.Create)
		er.Get("/me", h.Employee.Me)

		er.Route("/{id}", func(ir chi.Router) {
			ir.With(self(featureEmployeeProfile, actionView)).Get("/", h.Employee.Get)
			ir.With(rbac.Require(featureEmployeeProfile, actionEdit)).Put("/", h.Employee.Update)
			ir.With(rbac.Require(featureEmployeeList, actionDelete)).Delete("/", h.Employee.Delete)

			if h.Leave != nil {
				ir.With(self(featureLeaveBalances, actionView)).Get("/leave-balances", h.Leave.Balances)
				ir.With(rbac.Require(featureLeaveBalances, actionEdit)).Post("/leave-balances/adjust", h.Leave.Adjust)
			}
			if h.Feedback != nil {
				ir.With(self(featureConsentRecords, actionView)).Get("/consents", h.Feedback.Status)
				ir.With(self(featureConsentRecords, actionCreate)).Post("/consents/grant", h.Feedback.Grant)
				ir.With(self(featureConsentRecords, actionCreate)).Post("/consents/withdraw", h.Feedback.Withdraw)
			}
		})
	})
}

func mountWorkPermits(r chi.Router, h *workpermit.Handler, rbac *auth.RBACAuthorization) {
	r.Route("/work-permits", func(wr chi.Router) {
		wr.With(rbac.Require(featurePermitRegister, actionView)).Get("/", h.List)
		wr.With(rbac.Require(featurePermitRegister, actionCreate)).Post("/", h.Create)
		wr.With(rbac.Require(featurePermitExpiring, actionView)).Get("/expiring", h.Expiring)
		wr.With(rbac.Require(featurePermitRegister, actionView)).Get("/{id}", h.Get)
		wr.With(rbac.Require(featurePermitRegister, actionEdit)).Put("/{id}", h.Update)
		wr.With(rbac.Require(featurePermitRegister, actionDelete)).Delete("/{id}", h.Delete)
	})
}

func mountSuccession(r chi.Router, h *succession.Handler, rbac *auth.RBACAuthorization) {
	r.Route("/succession", func(sr chi.Router) {
		sr.Route("/manual", func(mr chi.Router) {
			mr.With(rbac.Require(featureManualSections, actionView)).Get("/", h.ListSections)
			mr.With(rbac.Require(featureManualSections, actionCreate)).Post("/", h.CreateSection)
			mr.With(rbac.Require(featureManualSections, actionView)).Get("/{id}", h.GetSection)
			mr.With(rbac.Require(featureManualSections, actionEdit)).Put("/{id}", h.UpdateSection)
			mr.With(rbac.Require(featureManualSections, actionEdit)).Post("/{id}/review", h.MarkReviewed)
			mr.With(rbac.Require(featureManualSections, actionDelete)).Delete("/{id}", h.DeleteSection)
		})
		sr.Route("/handbook", func(hr chi.Router) {
			hr.With(rbac.Require(featureHandbookTasks, actionView)).Get("/", h.Tasks)
			hr.With(rbac.Require(featureHandbookTasks, actionEdit)).Put("/{code}", h.UpdateTask)
			hr.With(rbac.Require(featureHandbookTasks, actionEdit)).Delete("/{code}", h.ResetTask)
		})
	})
}

func mountFeedback(r chi.Router, h *feedback.Handler, rbac *auth.RBACAuthorization) {
	r.Route("/feedback", func(fr chi.Router) {
		fr.Route("/consent-types", func(cr chi.Router) {
			cr.With(rbac.Require(featureConsentTypes, actionView)).Get("/", h.ListConsentTypes)
			cr.With(rbac.Require(featureConsentTypes, actionCreate)).Post("/", h.CreateConsentType)
			cr.With(rbac.Require(featureConsentTypes, actionView)).Get("/{code}", h.GetConsentType)
			cr.With(rbac.Require(featureConsentTypes, actionEdit)).Put("/{code}", h.UpdateConsentType)
			cr.With(rbac.Require(featureConsentTypes, actionDelete)).Delete("/{code}", h.DeleteConsentType)
		})
		fr.With(rbac.Require(featureConsentRecords, actionView)).Get("/consents", h.ListRecords)
		fr.Route("/policies", func(pr chi.Router) {
			pr.With(rbac.Require(featurePolicies, actionView)).Get("/", h.ListPolicies)
			pr.With(rbac.Require(featurePolicies, actionCreate)).Post("/", h.CreatePolicy)
			pr.With(rbac.Require(featurePolicies, actionEdit)).Post("/{id}/activate", h.ActivatePolicy)
		})
	})
}

// mountNotifications registers the inbox, which is always the caller's own,
// and the access request queue.
func mountNotifications(r chi.Router, h *notification.Handler, rbac *auth.RBACAuthorization) {
	r.Route("/notifications", func(nr chi.Router) {
		nr.Get("/", h.List)
		nr.Get("/unread-count", h.UnreadCount)
		nr.Post("/read-all", h.MarkAllRead)
		nr.Post("/{id}/read", h.MarkRead)
	})

	r.Route("/access-requests", func(ar chi.Router) {
		ar.Post("/", h.CreateAccessRequest)
		ar.Get("/mine", h.MyAccessRequests)
		ar.With(rbac.Require(featureAccessRequests, actionView)).Get("/", h.ListAccessRequests)
		ar.With(rbac.Require(featureAccessRequests, actionView)).Get("/pending-count", h.PendingCount)
		ar.With(rbac.Require(featureAccessRequests, actionEdit)).Post("/{id}/approve", h.Approve)
		ar.With(rbac.Require(featureAccessRequests, actionEdit)).Post("/{id}/deny", h.Deny)
	})
}

func mountRoles(r chi.Router, h *permission.Handler, rbac *auth.RBACAuthorization) {
	r.Route("/roles", func(rr chi.Router) {
		rr.With(rbac.Require(featureRoles, actionView)).Get("/", h.ListRoles)
		rr.With(rbac.Require(featureRoles, actionCreate)).Post("/", h.CreateRole)

		rr.Route("/{id}", func(ir chi.Router) {
			ir.With(rbac.Require(featureRoles, actionView)).Get("/", h.GetRole)
			ir.With(rbac.Require(featureRoles, actionEdit)).Put("/", h.UpdateRole)
			ir.With(rbac.Require(featureRoles, actionDelete)).Delete("/", h.DeleteRole)
			ir.With(rbac.Require(featureRoles, actionEdit)).Post("/users", h.AssignRole)
			ir.With(rbac.Require(featureRoles, actionEdit)).Delete("/users/{userID}", h.RevokeRole)

			ir.With(rbac.Require(featurePermissionMatrix, actionView)).Get("/permissions", h.GetMatrix)
			ir.With(rbac.Require(featurePermissionMatrix, actionEdit)).Put("/permissions", h.SaveMatrix)
			ir.With(rbac.Require(featurePermissionMatrix, actionView)).Post("/permissions/preview", h.PreviewMatrix)
		})
	})
}
