package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/frahmantamala/hr-management/internal"
	leaveDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/hr-management/internal/employee"
	"github.com/frahmantamala/hr-management/internal/leave"
	leavePostgres "github.com/frahmantamala/hr-management/internal/leave/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestLeavePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Postgres Suite")
}

type employeeStub struct{}

func (employeeStub) Get(_ context.Context, id int64) (*employee.Employee, error) {
	if id == 1 {
		return &employee.Employee{ID: 1}, nil
	}
	return nil, internal.ErrEmployeeNotFound
}

func days(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var _ = Describe("Leave balances", func() {
	var (
		ctx context.Context
		svc *leave.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&leaveDatamodel.LeaveType{}, &leaveDatamodel.LeaveBalance{})).To(Succeed())

		svc = leave.NewService(leavePostgres.NewLeaveRepository(db), employeeStub{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
		_, err = svc.CreateType(ctx, leave.CreateLeaveTypeDTO{Code: "Annual", Name: "Annual Leave", DefaultDays: days("12")})
		Expect(err).NotTo(HaveOccurred())
		_, err = svc.CreateType(ctx, leave.CreateLeaveTypeDTO{Code: "sick", Name: "Sick Leave", DefaultDays: days("0")})
		Expect(err).NotTo(HaveOccurred())
	})

	It("reports default entitlements before any adjustment", func() {
		resp, err := svc.Balances(ctx, 1, 2026)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Balances).To(HaveLen(2))
		Expect(resp.Balances[0].LeaveTypeCode).To(Equal("annual"))
		Expect(resp.Balances[0].Remaining.Equal(days("12"))).To(BeTrue())
		Expect(resp.Balances[0].ID).To(BeZero())
	})

	It("consumes half days", func() {
		b, err := svc.Adjust(ctx, 1, leave.AdjustDTO{LeaveTypeCode: "annual", Year: 2026, Kind: leave.AdjustConsume, Days: days("1.5")})
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Remaining.Equal(days("10.5"))).To(BeTrue())

		b, err = svc.Adjust(ctx, 1, leave.AdjustDTO{LeaveTypeCode: "annual", Year: 2026, Kind: leave.AdjustConsume, Days: days("0.5")})
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Used.Equal(days("2"))).To(BeTrue())
	})

	It("rejects consuming more than remains", func() {
		_, err := svc.Adjust(ctx, 1, leave.AdjustDTO{LeaveTypeCode: "annual", Year: 2026, Kind: leave.AdjustConsume, Days: days("12.5")})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.GetDetailedMessage()).To(ContainSubstring("insufficient balance"))

		resp, err := svc.Balances(ctx, 1, 2026)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Balances[0].Used.IsZero()).To(BeTrue())
	})

	It("accrues onto an empty entitlement", func() {
		b, err := svc.Adjust(ctx, 1, leave.AdjustDTO{LeaveTypeCode: "sick", Year: 2026, Kind: leave.AdjustAccrue, Days: days("3")})
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Entitled.Equal(days("3"))).To(BeTrue())

		_, err = svc.Adjust(ctx, 1, leave.AdjustDTO{LeaveTypeCode: "sick", Year: 2026, Kind: leave.AdjustConsume, Days: days("3")})
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects amounts that are not half-day steps", func() {
		_, err := svc.Adjust(ctx, 1, leave.AdjustDTO{LeaveTypeCode: "annual", Kind: leave.AdjustConsume, Days: days("0.3")})
		Expect(err).To(HaveOccurred())
		_, err = svc.Adjust(ctx, 1, leave.AdjustDTO{LeaveTypeCode: "annual", Kind: leave.AdjustConsume, Days: days("-1")})
		Expect(err).To(HaveOccurred())
	})

	It("reports unknown leave types and employees", func() {
		_, err := svc.Adjust(ctx, 1, leave.AdjustDTO{LeaveTypeCode: "sabbatical", Kind: leave.AdjustAccrue, Days: days("1")})
		Expect(err).To(MatchError(internal.ErrLeaveTypeNotFound))

		_, err = svc.Balances(ctx, 2, 2026)
		Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
	})

	It("refuses duplicate leave type codes", func() {
		_, err := svc.CreateType(ctx, leave.CreateLeaveTypeDTO{Code: "ANNUAL", Name: "Again"})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeLeaveTypeExists))
	})
})
