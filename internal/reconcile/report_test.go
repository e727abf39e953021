package reconcile_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/frahmantamala/hr-management/internal/feature"
	"github.com/frahmantamala/hr-management/internal/reconcile"
	"github.com/frahmantamala/hr-management/internal/registry"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestReconcile(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Reconcile Suite")
}

const reconcileYAML = `
version: 1
modules:
  - code: people
    name: People
    order: 1
    features:
      - code: people.directory
        name: Employee Directory
        route: /people/directory
      - code: people.profile
        name: Profile
        route: /people/profile
      - code: people.permits
        name: Work Permits
        route: /people/permits
`

func mustRegistry() *registry.Registry {
	r, err := registry.Parse([]byte(reconcileYAML), "test")
	Expect(err).NotTo(HaveOccurred())
	return r
}

var _ = Describe("Similarity", func() {
	It("is one for identical strings regardless of case", func() {
		Expect(reconcile.Similarity("Profile", "profile ")).To(Equal(1.0))
	})

	It("is zero when either side is empty", func() {
		Expect(reconcile.Similarity("", "profile")).To(BeZero())
	})

	It("is the normalized edit distance", func() {
		Expect(reconcile.Similarity("abcdefghij", "abcdefgxyz")).To(BeNumerically("~", 0.7, 1e-9))
	})
})

var _ = Describe("ValidateRoutes", func() {
	It("splits unregistered, orphaned and unsynced features", func() {
		rows := []reconcile.FeatureRecord{
			{Code: "people.directory", Name: "Employee Directory", Route: "/people/directory"},
			{Code: "people.profile", Name: "Profile", Route: "/people/me"},
			{Code: "payroll.runs", Name: "Payroll Runs", Route: "/payroll"},
		}

		report := reconcile.ValidateRoutes(mustRegistry(), rows)

		Expect(report.Unregistered).To(HaveLen(1))
		Expect(report.Unregistered[0].Code).To(Equal("people.permits"))
		Expect(report.Orphaned).To(ConsistOf(rows[2]))
		Expect(report.Unsynced).To(HaveLen(1))
		Expect(report.Unsynced[0].Code).To(Equal("people.profile"))
		Expect(report.Unsynced[0].Fields).To(Equal([]string{"route"}))
	})

	It("flags near-identical names across different codes", func() {
		rows := []reconcile.FeatureRecord{
			{Code: "staff.directory", Name: "Employee Directry", Route: "/staff"},
		}

		report := reconcile.ValidateRoutes(mustRegistry(), rows)

		Expect(report.Duplicates).To(ContainElement(SatisfyAll(
			HaveField("Field", "name"),
			HaveField("CodeA", "people.directory"),
			HaveField("CodeB", "staff.directory"),
		)))
	})

	It("does not report pairs at exactly the threshold", func() {
		reg, err := registry.Parse([]byte(`
version: 1
modules:
  - code: m
    name: M
    features:
      - code: m.a
        name: abcdefghij
        route: /one
      - code: m.b
        name: abcdefgxyz
        route: /two-different
`), "test")
		Expect(err).NotTo(HaveOccurred())

		report := reconcile.ValidateRoutes(reg, nil)
		Expect(report.Duplicates).To(BeEmpty())
	})
})

var _ = Describe("DetectOrphans", func() {
	It("finds grants for unknown modules and features", func() {
		grants := []reconcile.GrantRecord{
			{ID: 1, Module: "people"},
			{ID: 2, Module: "people", Feature: "people.directory"},
			{ID: 3, Module: "people", Feature: "people.retired"},
			{ID: 4, Module: "payroll"},
		}

		report := reconcile.DetectOrphans(mustRegistry(), nil, grants)
		Expect(report.Features).To(BeEmpty())
		Expect(report.Grants).To(ConsistOf(grants[2], grants[3]))
	})
})

var _ = Describe("ValidateContent", func() {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	old := now.AddDate(-1, 0, 0)
	recent := now.AddDate(0, -1, 0)

	It("reports undocumented features, stale and dangling sections", func() {
		sections := []reconcile.SectionRecord{
			{ID: 1, FeatureCode: "people.directory", ReviewedAt: &recent, UpdatedAt: old},
			{ID: 2, FeatureCode: "people.profile", UpdatedAt: old},
			{ID: 3, FeatureCode: "people.gone", UpdatedAt: recent},
		}

		report := reconcile.ValidateContent(mustRegistry(), sections, now, 180*24*time.Hour)

		Expect(report.Undocumented).To(Equal([]string{"people.permits"}))
		Expect(report.Stale).To(ConsistOf(sections[1]))
		Expect(report.Dangling).To(ConsistOf(sections[2]))
	})
})

var _ = Describe("Score", func() {
	It("applies the weights", func() {
		r := reconcile.Report{Counts: reconcile.Counts{
			Unregistered: 1, Orphaned: 1, Unsynced: 1, Duplicates: 1,
			Undocumented: 1, Stale: 1, Dangling: 1,
		}}
		Expect(reconcile.Score(r)).To(Equal(100 - (2 + 3 + 2 + 1 + 1 + 1 + 2)))
	})

	It("floors at zero", func() {
		r := reconcile.Report{Counts: reconcile.Counts{Orphaned: 50}}
		Expect(reconcile.Score(r)).To(BeZero())
	})

	It("is 100 for a clean report", func() {
		Expect(reconcile.Score(reconcile.Report{})).To(Equal(100))
	})
})

type fakeSource struct {
	features []reconcile.FeatureRecord
	sections []reconcile.SectionRecord
	err      error
}

func (f *fakeSource) Features(context.Context) ([]reconcile.FeatureRecord, error) {
	return f.features, f.err
}

func (f *fakeSource) Grants(context.Context) ([]reconcile.GrantRecord, error) {
	return nil, nil
}

func (f *fakeSource) Sections(context.Context) ([]reconcile.SectionRecord, error) {
	return f.sections, nil
}

type fakeImporter struct {
	imported []*feature.Feature
}

func (f *fakeImporter) Import(_ context.Context, fs []*feature.Feature) error {
	f.imported = append(f.imported, fs...)
	return nil
}

var _ = Describe("Service", func() {
	var (
		source   *fakeSource
		importer *fakeImporter
		svc      *reconcile.Service
	)

	BeforeEach(func() {
		source = &fakeSource{features: []reconcile.FeatureRecord{
			{Code: "people.directory", Name: "Employee Directory", Route: "/people/directory"},
		}}
		importer = &fakeImporter{}
		svc = reconcile.NewService(source, importer, registry.NewHolder(mustRegistry()), 24*time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("builds a report from the snapshot", func() {
		report, err := svc.Report(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Counts.Unregistered).To(Equal(2))
		Expect(report.Counts.Undocumented).To(Equal(3))
		Expect(report.Counts.RegistryCount).To(Equal(3))
		Expect(report.RegistrySource).To(Equal("test"))
		Expect(report.Score).To(Equal(100 - 4 - 3))
	})

	It("fails when a snapshot cannot be loaded", func() {
		source.err = errors.New("db down")
		_, err := svc.Report(context.Background())
		Expect(err).To(HaveOccurred())
	})

	It("imports unregistered features", func() {
		result, err := svc.Sync(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Inserted).To(Equal([]string{"people.profile", "people.permits"}))
		Expect(importer.imported).To(HaveLen(2))
		Expect(importer.imported[0].ModuleCode).To(Equal("people"))
		Expect(importer.imported[0].IsActive).To(BeTrue())
	})
})
