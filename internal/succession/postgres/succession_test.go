package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/core/common/resolve"
	successionDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/succession"
	"github.com/frahmantamala/hr-management/internal/registry"
	"github.com/frahmantamala/hr-management/internal/succession"
	successionPostgres "github.com/frahmantamala/hr-management/internal/succession/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSuccessionPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Succession Postgres Suite")
}

var _ = Describe("Succession manual", func() {
	var (
		ctx context.Context
		svc *succession.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&successionDatamodel.ManualSection{}, &successionDatamodel.HandbookTask{})).To(Succeed())

		reg, err := registry.Embedded()
		Expect(err).NotTo(HaveOccurred())
		defaults, err := succession.DefaultTasks()
		Expect(err).NotTo(HaveOccurred())

		svc = succession.NewService(
			successionPostgres.NewSuccessionRepository(db),
			registry.NewHolder(reg),
			defaults,
			nil,
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)
	})

	Describe("sections", func() {
		It("derives the module from the registry", func() {
			sec, err := svc.CreateSection(ctx, succession.CreateSectionDTO{
				FeatureCode: "work_permits.register",
				Title:       "Registering a permit",
				Body:        "Scan the permit and enter its dates.",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(sec.ModuleCode).To(Equal("work_permits"))
			Expect(sec.Version).To(Equal(1))
		})

		It("rejects unknown features", func() {
			_, err := svc.CreateSection(ctx, succession.CreateSectionDTO{
				FeatureCode: "payroll.runs", Title: "Runs", Body: "...",
			})
			Expect(err).To(HaveOccurred())
		})

		It("bumps the version and clears the review on edits", func() {
			sec, err := svc.CreateSection(ctx, succession.CreateSectionDTO{
				FeatureCode: "dashboard.overview", Title: "Overview", Body: "v1",
			})
			Expect(err).NotTo(HaveOccurred())

			reviewed, err := svc.MarkReviewed(ctx, sec.ID, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(reviewed.ReviewedAt).NotTo(BeNil())
			Expect(*reviewed.ReviewedBy).To(Equal(int64(4)))

			body := "v2"
			updated, err := svc.UpdateSection(ctx, sec.ID, succession.UpdateSectionDTO{Body: &body})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Version).To(Equal(2))
			Expect(updated.ReviewedAt).To(BeNil())

			same, err := svc.UpdateSection(ctx, sec.ID, succession.UpdateSectionDTO{Body: &body})
			Expect(err).NotTo(HaveOccurred())
			Expect(same.Version).To(Equal(2))
		})

		It("filters by feature", func() {
			for _, code := range []string{"dashboard.overview", "dashboard.overview", "work_permits.expiring"} {
				_, err := svc.CreateSection(ctx, succession.CreateSectionDTO{FeatureCode: code, Title: "t", Body: "b"})
				Expect(err).NotTo(HaveOccurred())
			}
			resp, err := svc.ListSections(ctx, succession.SectionFilter{FeatureCode: "dashboard.overview"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Sections).To(HaveLen(2))
		})

		It("reports missing sections", func() {
			Expect(svc.DeleteSection(ctx, 99)).To(MatchError(internal.ErrSectionNotFound))
		})
	})

	Describe("handbook tasks", func() {
		It("serves embedded defaults when nothing is stored", func() {
			resp, err := svc.Tasks(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Total).To(Equal(6))
			Expect(resp.Completed).To(BeZero())
			for _, t := range resp.Tasks {
				Expect(t.Source).To(Equal(resolve.SourceDefault))
			}
		})

		It("lets stored rows override defaults and resets them", func() {
			done := true
			title := "Identify business-critical roles"
			t, err := svc.UpdateTask(ctx, "identify_critical_roles", succession.UpdateTaskDTO{Completed: &done, Title: &title})
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Source).To(Equal(resolve.SourceDatabase))
			Expect(t.Description).To(ContainSubstring("vacancy"))

			resp, err := svc.Tasks(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Completed).To(Equal(1))
			Expect(resp.Tasks[0].Title).To(Equal(title))

			reset, err := svc.ResetTask(ctx, "identify_critical_roles")
			Expect(err).NotTo(HaveOccurred())
			Expect(reset.Source).To(Equal(resolve.SourceDefault))
			Expect(reset.Completed).To(BeFalse())
		})

		It("reports unknown tasks", func() {
			done := true
			_, err := svc.UpdateTask(ctx, "plant_trees", succession.UpdateTaskDTO{Completed: &done})
			Expect(err).To(MatchError(internal.ErrTaskNotFound))
		})
	})
})
