package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/feature"
	"github.com/frahmantamala/hr-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rest Suite")
}

// stubAuth accepts "token-<name>" and maps it to a fixed user.
type stubAuth struct {
	users map[string]*auth.User
}

func (s *stubAuth) Authenticate(context.Context, auth.LoginDTO) (auth.AuthTokens, error) {
	return auth.AuthTokens{}, internal.ErrInvalidCredentials
}

func (s *stubAuth) RefreshTokens(context.Context, string) (auth.AuthTokens, error) {
	return auth.AuthTokens{}, internal.ErrInvalidToken
}

func (s *stubAuth) ValidateAccessToken(token string) (*auth.Claims, error) {
	for id, u := range s.users {
		if token == "token-"+id {
			return &auth.Claims{UserID: strconv.FormatInt(u.ID, 10), Email: u.Email}, nil
		}
	}
	return nil, internal.ErrInvalidToken
}

func (s *stubAuth) GetUserWithPermissions(_ context.Context, userID int64) (*auth.User, error) {
	for _, u := range s.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, errors.New("unknown user")
}

func (s *stubAuth) HashPassword(string) (string, error) { return "", nil }

type stubFeatures struct{}

func (stubFeatures) List(context.Context, bool) ([]*feature.Feature, error) {
	return []*feature.Feature{{ID: 1, Code: "dashboard.overview", Name: "Overview", Route: "/dashboard"}}, nil
}
func (stubFeatures) GetByID(context.Context, int64) (*feature.Feature, error) {
	return nil, internal.ErrFeatureNotFound
}
func (stubFeatures) Create(context.Context, feature.CreateFeatureDTO) (*feature.Feature, error) {
	return nil, errors.New("not implemented")
}
func (stubFeatures) Update(context.Context, int64, feature.UpdateFeatureDTO) (*feature.Feature, error) {
	return nil, errors.New("not implemented")
}
func (stubFeatures) Delete(context.Context, int64) error { return nil }

var _ = Describe("RegisterAllRoutes", func() {
	var router *chi.Mux

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		authSvc := &stubAuth{users: map[string]*auth.User{
			"admin":  {ID: 1, Email: "admin@hr.local", Roles: []string{auth.AdminRole}},
			"viewer": {ID: 2, Email: "viewer@hr.local", Permissions: []string{"admin.system.features.view"}},
			"nobody": {ID: 3, Email: "nobody@hr.local"},
		}}

		router = chi.NewRouter()
		RegisterAllRoutes(router, Handlers{
			Health:  NewHealthHandler(nil, nil),
			Auth:    auth.NewHandler(authSvc, nil),
			Feature: feature.NewHandler(transport.NewBaseHandler(logger), stubFeatures{}),
		}, Options{AllowedOrigins: []string{"http://localhost:3000"}, MetricsEnabled: true, MetricsPath: "/metrics"}, logger)
	})

	do := func(method, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("serves liveness without auth and stamps a request id", func() {
		rec := do(http.MethodGet, "/api/v1/ping", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("X-Request-ID")).NotTo(BeEmpty())
	})

	It("reports unhealthy without a database", func() {
		Expect(do(http.MethodGet, "/api/v1/health", "").Code).To(Equal(http.StatusServiceUnavailable))
	})

	It("serves the OpenAPI document and metrics", func() {
		rec := do(http.MethodGet, "/openapi.yml", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("HR Management API"))

		do(http.MethodGet, "/api/v1/ping", "")
		metrics := do(http.MethodGet, "/metrics", "")
		Expect(metrics.Body.String()).To(ContainSubstring(`route="/api/v1/ping"`))
	})

	It("rejects protected routes without a token", func() {
		Expect(do(http.MethodGet, "/api/v1/admin/features", "").Code).To(Equal(http.StatusUnauthorized))
	})

	It("gates routes on the feature grant", func() {
		Expect(do(http.MethodGet, "/api/v1/admin/features", "token-nobody").Code).To(Equal(http.StatusForbidden))
		Expect(do(http.MethodGet, "/api/v1/admin/features", "token-viewer").Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodDelete, "/api/v1/admin/features/1", "token-viewer").Code).To(Equal(http.StatusForbidden))
		Expect(do(http.MethodDelete, "/api/v1/admin/features/1", "token-admin").Code).To(Equal(http.StatusNoContent))
	})

	It("leaves unconfigured handlers unmounted", func() {
		Expect(do(http.MethodGet, "/api/v1/work-permits", "token-admin").Code).To(Equal(http.StatusNotFound))
	})

	It("answers CORS preflight for allowed origins only", func() {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:3000"))

		req.Header.Set("Origin", "http://evil.example")
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})
})
