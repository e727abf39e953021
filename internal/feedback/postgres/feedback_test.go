package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/frahmantamala/hr-management/internal"
	feedbackDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/feedback"
	"github.com/frahmantamala/hr-management/internal/employee"
	"github.com/frahmantamala/hr-management/internal/feedback"
	feedbackPostgres "github.com/frahmantamala/hr-management/internal/feedback/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestFeedbackPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Feedback Postgres Suite")
}

type employeeStub struct{}

func (employeeStub) Get(_ context.Context, id int64) (*employee.Employee, error) {
	if id <= 3 {
		return &employee.Employee{ID: id}, nil
	}
	return nil, internal.ErrEmployeeNotFound
}

var _ = Describe("Feedback governance", func() {
	var (
		ctx context.Context
		db  *gorm.DB
		svc *feedback.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(
			&feedbackDatamodel.ConsentType{},
			&feedbackDatamodel.ConsentRecord{},
			&feedbackDatamodel.FeedbackPolicy{},
		)).To(Succeed())

		svc = feedback.NewService(feedbackPostgres.NewFeedbackRepository(db), employeeStub{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
		_, err = svc.CreateConsentType(ctx, feedback.CreateConsentTypeDTO{Code: "peer_review", Name: "Peer review", Required: true})
		Expect(err).NotTo(HaveOccurred())
		_, err = svc.CreateConsentType(ctx, feedback.CreateConsentTypeDTO{Code: "anonymous_quotes", Name: "Anonymous quotes"})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("consent records", func() {
		grant := feedback.ConsentDTO{ConsentTypeCode: "peer_review", Cycle: "2026-h1"}

		It("toggles a single record per cycle", func() {
			rec, err := svc.Grant(ctx, 1, grant)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Granted).To(BeTrue())
			Expect(rec.Cycle).To(Equal("2026-H1"))
			Expect(rec.GrantedAt).NotTo(BeNil())

			rec, err = svc.Withdraw(ctx, 1, grant)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Granted).To(BeFalse())
			Expect(rec.WithdrawnAt).NotTo(BeNil())
			Expect(rec.GrantedAt).NotTo(BeNil())

			rec, err = svc.Grant(ctx, 1, grant)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.WithdrawnAt).To(BeNil())

			var count int64
			Expect(db.Model(&feedbackDatamodel.ConsentRecord{}).Count(&count).Error).To(Succeed())
			Expect(count).To(Equal(int64(1)))
		})

		It("keeps cycles apart", func() {
			_, err := svc.Grant(ctx, 1, grant)
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.Grant(ctx, 1, feedback.ConsentDTO{ConsentTypeCode: "peer_review", Cycle: "2026-H2"})
			Expect(err).NotTo(HaveOccurred())

			resp, err := svc.ListRecords(ctx, feedback.RecordFilter{EmployeeID: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Records).To(HaveLen(2))
		})

		It("rejects malformed cycles and unknown types", func() {
			_, err := svc.Grant(ctx, 1, feedback.ConsentDTO{ConsentTypeCode: "peer_review", Cycle: "spring"})
			Expect(err).To(HaveOccurred())
			_, err = svc.Grant(ctx, 1, feedback.ConsentDTO{ConsentTypeCode: "nope", Cycle: "2026"})
			Expect(err).To(MatchError(internal.ErrConsentTypeNotFound))
			_, err = svc.Grant(ctx, 9, grant)
			Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
		})

		It("reports missing required consents", func() {
			_, err := svc.Grant(ctx, 2, feedback.ConsentDTO{ConsentTypeCode: "anonymous_quotes", Cycle: "2026-H1"})
			Expect(err).NotTo(HaveOccurred())

			status, err := svc.Status(ctx, 2, "2026-H1")
			Expect(err).NotTo(HaveOccurred())
			Expect(status.Records).To(HaveLen(2))
			Expect(status.MissingRequired).To(ConsistOf("peer_review"))
		})

		It("deactivates rather than deletes types with history", func() {
			_, err := svc.Grant(ctx, 1, grant)
			Expect(err).NotTo(HaveOccurred())
			Expect(svc.DeleteConsentType(ctx, "peer_review")).To(Succeed())

			ct, err := svc.GetConsentType(ctx, "peer_review")
			Expect(err).NotTo(HaveOccurred())
			Expect(ct.IsActive).To(BeFalse())

			Expect(svc.DeleteConsentType(ctx, "anonymous_quotes")).To(Succeed())
			_, err = svc.GetConsentType(ctx, "anonymous_quotes")
			Expect(err).To(MatchError(internal.ErrConsentTypeNotFound))
		})
	})

	Describe("policies", func() {
		It("versions policies and keeps one active version per code", func() {
			v1, err := svc.CreatePolicy(ctx, 1, feedback.CreatePolicyDTO{Code: "retention", Title: "Retention", Body: "Keep for 2 years"})
			Expect(err).NotTo(HaveOccurred())
			Expect(v1.Version).To(Equal(1))
			Expect(v1.IsActive).To(BeFalse())

			v2, err := svc.CreatePolicy(ctx, 1, feedback.CreatePolicyDTO{Code: "retention", Title: "Retention", Body: "Keep for 3 years"})
			Expect(err).NotTo(HaveOccurred())
			Expect(v2.Version).To(Equal(2))

			other, err := svc.CreatePolicy(ctx, 1, feedback.CreatePolicyDTO{Code: "access", Title: "Access", Body: "Managers only"})
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.ActivatePolicy(ctx, other.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.ActivatePolicy(ctx, v1.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.ActivatePolicy(ctx, v2.ID)
			Expect(err).NotTo(HaveOccurred())

			resp, err := svc.ListPolicies(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			active := map[string][]int{}
			for _, p := range resp.Policies {
				if p.IsActive {
					active[p.Code] = append(active[p.Code], p.Version)
				}
			}
			Expect(active).To(Equal(map[string][]int{"retention": {2}, "access": {1}}))
		})

		It("reports missing policies", func() {
			_, err := svc.ActivatePolicy(ctx, 77)
			Expect(err).To(MatchError(internal.ErrPolicyNotFound))
		})
	})
})
