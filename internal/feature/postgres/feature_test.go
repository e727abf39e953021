package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/frahmantamala/hr-management/internal"
	featureDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/feature"
	"github.com/frahmantamala/hr-management/internal/feature"
	featurePostgres "github.com/frahmantamala/hr-management/internal/feature/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestFeaturePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Feature Postgres Suite")
}

var _ = Describe("Feature catalog", func() {
	var (
		ctx  context.Context
		repo feature.RepositoryAPI
		svc  *feature.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&featureDatamodel.AppFeature{})).To(Succeed())

		repo = featurePostgres.NewFeatureRepository(db)
		svc = feature.NewService(repo, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("creates an active feature by default", func() {
		f, err := svc.Create(ctx, feature.CreateFeatureDTO{
			Code:       "leave.balances",
			Name:       "Leave Balances",
			Route:      "/leave/balances",
			ModuleCode: "leave",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(f.ID).To(BeNumerically(">", 0))
		Expect(f.IsActive).To(BeTrue())
		Expect(f.Resolvable()).To(BeTrue())
	})

	It("rejects duplicate codes", func() {
		dto := feature.CreateFeatureDTO{Code: "leave.types", Name: "Leave Types", ModuleCode: "leave"}
		_, err := svc.Create(ctx, dto)
		Expect(err).NotTo(HaveOccurred())

		_, err = svc.Create(ctx, dto)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeFeatureExists))
	})

	It("rejects malformed codes and routes", func() {
		_, err := svc.Create(ctx, feature.CreateFeatureDTO{Code: "Leave Types", Name: "x", ModuleCode: "leave"})
		Expect(err).To(HaveOccurred())

		_, err = svc.Create(ctx, feature.CreateFeatureDTO{Code: "leave.types", Name: "x", ModuleCode: "leave", Route: "leave"})
		Expect(err).To(HaveOccurred())
	})

	It("updates only the provided fields", func() {
		f, err := svc.Create(ctx, feature.CreateFeatureDTO{Code: "leave.types", Name: "Leave Types", Route: "/leave/types", ModuleCode: "leave"})
		Expect(err).NotTo(HaveOccurred())

		inactive := false
		updated, err := svc.Update(ctx, f.ID, feature.UpdateFeatureDTO{IsActive: &inactive})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Name).To(Equal("Leave Types"))
		Expect(updated.Resolvable()).To(BeFalse())

		active, err := svc.List(ctx, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(active).To(BeEmpty())
	})

	It("imports a batch and deletes", func() {
		batch := []*feature.Feature{
			{Code: "a.one", Name: "One", ModuleCode: "a", IsActive: true},
			{Code: "a.two", Name: "Two", ModuleCode: "a", IsActive: true},
		}
		Expect(svc.Import(ctx, batch)).To(Succeed())
		Expect(batch[1].ID).To(BeNumerically(">", 0))

		Expect(svc.Delete(ctx, batch[0].ID)).To(Succeed())
		all, err := svc.List(ctx, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(1))

		Expect(svc.Delete(ctx, batch[0].ID)).To(MatchError(internal.ErrFeatureNotFound))
	})
})
