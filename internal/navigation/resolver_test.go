package navigation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/core/common/resolve"
	"github.com/frahmantamala/hr-management/internal/feature"
	"github.com/frahmantamala/hr-management/internal/navigation"
	"github.com/frahmantamala/hr-management/internal/registry"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestNavigation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Navigation Suite")
}

const navYAML = `
version: 1
modules:
  - code: staff
    name: Staff
    order: 1
    features:
      - code: staff.list
        name: Staff List
        route: /staff
        legacy_routes: [/people]
      - code: staff.archive
        name: Archive
        legacy_routes: [/old-archive]
      - code: staff.ghost
        name: Ghost
  - code: reports
    name: Reports
    order: 2
    tabs:
      - code: reports.finance
        name: Finance
        features:
          - code: reports.finance.summary
            name: Summary
            route: /reports/finance
`

type fakeFeatures struct {
	rows map[string]*feature.Feature
	err  error
}

func (f *fakeFeatures) GetByCode(_ context.Context, code string) (*feature.Feature, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[code], nil
}

func (f *fakeFeatures) List(_ context.Context, activeOnly bool) ([]*feature.Feature, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []*feature.Feature{}
	for _, r := range f.rows {
		if activeOnly && !r.IsActive {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

var _ = Describe("Resolver", func() {
	var (
		ctx      context.Context
		features *fakeFeatures
		resolver *navigation.Resolver
	)

	BeforeEach(func() {
		ctx = context.Background()
		reg, err := registry.Parse([]byte(navYAML), "test")
		Expect(err).NotTo(HaveOccurred())
		features = &fakeFeatures{rows: map[string]*feature.Feature{}}
		resolver = navigation.NewResolver(features, registry.NewHolder(reg))
	})

	Describe("Resolve", func() {
		It("prefers an active database row with a route", func() {
			features.rows["staff.list"] = &feature.Feature{Code: "staff.list", Name: "Team", Route: "/team", IsActive: true}

			res, err := resolver.Resolve(ctx, "staff.list")
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(Equal(navigation.Resolution{Code: "staff.list", Path: "/team", Source: resolve.SourceDatabase}))
		})

		It("skips inactive rows and rows without a route", func() {
			features.rows["staff.list"] = &feature.Feature{Code: "staff.list", Route: "/team", IsActive: false}
			features.rows["reports.finance.summary"] = &feature.Feature{Code: "reports.finance.summary", IsActive: true}

			res, err := resolver.Resolve(ctx, "staff.list")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Source).To(Equal(resolve.SourceRegistry))
			Expect(res.Path).To(Equal("/staff"))

			res, err = resolver.Resolve(ctx, "reports.finance.summary")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Path).To(Equal("/reports/finance"))
		})

		It("falls back to the legacy route", func() {
			res, err := resolver.Resolve(ctx, "staff.archive")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Source).To(Equal(resolve.SourceLegacy))
			Expect(res.Path).To(Equal("/old-archive"))
		})

		It("fails when no source knows the code", func() {
			res, err := resolver.Resolve(ctx, "staff.ghost")
			Expect(err).To(MatchError(internal.ErrRouteNotResolved))
			Expect(res.Source).To(Equal(resolve.SourceNone))

			_, err = resolver.Resolve(ctx, "nowhere")
			Expect(err).To(MatchError(internal.ErrRouteNotResolved))
		})

		It("surfaces database failures", func() {
			features.err = errors.New("connection refused")
			_, err := resolver.Resolve(ctx, "staff.list")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})
	})

	It("redirects legacy paths to the resolved route", func() {
		res, err := resolver.Redirect(ctx, "/people")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Code).To(Equal("staff.list"))
		Expect(res.Path).To(Equal("/staff"))
	})

	Describe("Menu", func() {
		It("lists only viewable features with a route", func() {
			user := &auth.User{ID: 3, Permissions: []string{"staff.view"}}

			menu, err := resolver.Menu(ctx, user)
			Expect(err).NotTo(HaveOccurred())
			Expect(menu).To(HaveLen(1))
			Expect(menu[0].Code).To(Equal("staff"))

			codes := []string{}
			for _, item := range menu[0].Items {
				codes = append(codes, item.Code)
			}
			Expect(codes).To(Equal([]string{"staff.list", "staff.archive"}))
		})

		It("shows everything to admins and applies database overrides", func() {
			features.rows["reports.finance.summary"] = &feature.Feature{Code: "reports.finance.summary", Name: "Finance", Route: "/finance", IsActive: true}
			admin := &auth.User{ID: 1, Roles: []string{auth.AdminRole}}

			menu, err := resolver.Menu(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(menu).To(HaveLen(2))
			Expect(menu[1].Items).To(ConsistOf(navigation.MenuItem{
				Code: "reports.finance.summary", Name: "Finance", Tab: "reports.finance", Path: "/finance", Source: resolve.SourceDatabase,
			}))
		})
	})
})
