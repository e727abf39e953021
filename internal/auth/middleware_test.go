package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Authorization middleware", func() {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	serve := func(mw func(http.Handler) http.Handler, user *User, path string) int {
		router := chi.NewRouter()
		router.With(mw).Get("/employees/{id}", ok)
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if user != nil {
			req = req.WithContext(ContextWithUser(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	ginkgo.Describe("RBAC", func() {
		rbac := NewRBACAuthorization(nil)

		ginkgo.It("should require an authenticated user", func() {
			gomega.Expect(serve(rbac.Require("employees", "view"), nil, "/employees/1")).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should honour inherited grants", func() {
			u := &User{ID: 5, Permissions: []string{"employees.view"}}
			gomega.Expect(serve(rbac.Require("employees.directory.list", "view"), u, "/employees/1")).To(gomega.Equal(http.StatusOK))
			gomega.Expect(serve(rbac.Require("employees.directory.list", "edit"), u, "/employees/1")).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should restrict admin routes", func() {
			gomega.Expect(serve(rbac.RequireAdmin(), &User{ID: 1, Roles: []string{"hr_manager"}}, "/employees/1")).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(serve(rbac.RequireAdmin(), &User{ID: 1, Roles: []string{AdminRole}}, "/employees/1")).To(gomega.Equal(http.StatusOK))
		})
	})

	ginkgo.Describe("RequireSelfOrPermission", func() {
		owners := map[int64]int64{10: 7, 11: 8}
		lookup := func(_ context.Context, id int64) (int64, bool, error) {
			if id == 99 {
				return 0, false, errors.New("db down")
			}
			owner, found := owners[id]
			return owner, found, nil
		}
		mw := RequireSelfOrPermission(lookup, "id", "employees.directory.profile", "view")

		ginkgo.It("should let users see their own record", func() {
			gomega.Expect(serve(mw, &User{ID: 7}, "/employees/10")).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should block other records without permission", func() {
			gomega.Expect(serve(mw, &User{ID: 7}, "/employees/11")).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should allow holders of the permission", func() {
			u := &User{ID: 1, Permissions: []string{"employees.directory.view"}}
			gomega.Expect(serve(mw, u, "/employees/11")).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should map lookup failures to 500", func() {
			gomega.Expect(serve(mw, &User{ID: 7}, "/employees/99")).To(gomega.Equal(http.StatusInternalServerError))
		})

		ginkgo.It("should reject malformed ids", func() {
			gomega.Expect(serve(mw, &User{ID: 7}, "/employees/abc")).To(gomega.Equal(http.StatusBadRequest))
		})
	})
})
