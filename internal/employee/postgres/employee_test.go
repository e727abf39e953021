package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	employeeDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/hr-management/internal/employee"
	employeePostgres "github.com/frahmantamala/hr-management/internal/employee/postgres"
	"github.com/frahmantamala/hr-management/internal/permission"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestEmployeePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employee Postgres Suite")
}

type staticScopes struct {
	scope permission.AccessScope
}

func (s staticScopes) ScopesForUser(context.Context, int64) (permission.AccessScope, error) {
	return s.scope, nil
}

var _ = Describe("Employee directory", func() {
	var (
		ctx    context.Context
		scopes *staticScopes
		svc    *employee.Service
		hired  = time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
	)

	seed := func(number, first, last, division, department, position string) *employee.Employee {
		e, err := svc.Create(ctx, employee.CreateEmployeeDTO{
			EmployeeNumber: number,
			FirstName:      first,
			LastName:       last,
			Email:          first + "@example.com",
			Division:       division,
			Department:     department,
			PositionType:   position,
			HireDate:       hired,
		})
		Expect(err).NotTo(HaveOccurred())
		return e
	}

	BeforeEach(func() {
		ctx = context.Background()
		sdb, err := sqlx.Open("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())
		// one connection so sqlx and gorm see the same in-memory database
		sdb.SetMaxOpenConns(1)
		DeferCleanup(sdb.Close)

		db, err := gorm.Open(sqlite.New(sqlite.Config{Conn: sdb.DB}), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&employeeDatamodel.Employee{})).To(Succeed())

		scopes = &staticScopes{scope: permission.Unrestricted()}
		svc = employee.NewService(
			employeePostgres.NewEmployeeRepository(db),
			employeePostgres.NewDirectorySearch(sdb),
			scopes,
			nil,
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)

		seed("E-001", "ada", "Lovelace", "Engineering", "Platform", "permanent")
		seed("E-002", "grace", "Hopper", "Engineering", "Compilers", "contract")
		seed("E-003", "joan", "Clarke", "Finance", "Payroll", "permanent")
	})

	It("returns everyone to unrestricted users", func() {
		resp, err := svc.Search(ctx, 1, employee.SearchFilter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Total).To(Equal(3))
		Expect(resp.Employees[0].LastName).To(Equal("Clarke"))
	})

	It("filters by division, position type and text", func() {
		resp, err := svc.Search(ctx, 1, employee.SearchFilter{Division: "Engineering", PositionType: "permanent"})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Total).To(Equal(1))
		Expect(resp.Employees[0].EmployeeNumber).To(Equal("E-001"))

		resp, err = svc.Search(ctx, 1, employee.SearchFilter{Query: "HOP"})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Total).To(Equal(1))
		Expect(resp.Employees[0].FirstName).To(Equal("grace"))
	})

	It("restricts results to the caller's scope", func() {
		scopes.scope = permission.AccessScope{Values: map[permission.ScopeType][]string{
			permission.ScopeDivision: {"Finance"},
		}}
		resp, err := svc.Search(ctx, 2, employee.SearchFilter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Total).To(Equal(1))
		Expect(resp.Employees[0].Division).To(Equal("Finance"))
	})

	It("returns nothing to users without roles", func() {
		scopes.scope = permission.MergeScopes(nil, nil)
		resp, err := svc.Search(ctx, 3, employee.SearchFilter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Total).To(BeZero())
		Expect(resp.Employees).To(BeEmpty())
	})

	It("pages results", func() {
		resp, err := svc.Search(ctx, 1, employee.SearchFilter{Limit: 2, Offset: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Total).To(Equal(3))
		Expect(resp.Employees).To(HaveLen(1))
		Expect(resp.Employees[0].LastName).To(Equal("Lovelace"))
	})

	Describe("CRUD", func() {
		It("rejects duplicate employee numbers", func() {
			_, err := svc.Create(ctx, employee.CreateEmployeeDTO{
				EmployeeNumber: "E-001", FirstName: "x", LastName: "y", Email: "x@example.com", HireDate: hired,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmployeeExists))
		})

		It("stamps termination", func() {
			terminated := employee.StatusTerminated
			e, err := svc.Update(ctx, 1, employee.UpdateEmployeeDTO{Status: &terminated})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.TerminatedAt).NotTo(BeNil())
		})

		It("refuses self-management and unknown managers", func() {
			self := int64(1)
			_, err := svc.Update(ctx, 1, employee.UpdateEmployeeDTO{ManagerID: &self})
			Expect(err).To(HaveOccurred())

			ghost := int64(99)
			_, err = svc.Update(ctx, 1, employee.UpdateEmployeeDTO{ManagerID: &ghost})
			Expect(err).To(HaveOccurred())
		})

		It("deletes", func() {
			Expect(svc.Delete(ctx, 3)).To(Succeed())
			_, err := svc.Get(ctx, 3)
			Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
		})
	})
})
