package permission_test

import (
	"testing"

	"github.com/frahmantamala/hr-management/internal/permission"
	"github.com/frahmantamala/hr-management/internal/registry"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPermission(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Permission Suite")
}

const matrixYAML = `
version: 1
modules:
  - code: employees
    name: Employees
    order: 1
    tabs:
      - code: employees.directory
        name: Directory
        features:
          - code: employees.directory.list
            name: List
            route: /employees
          - code: employees.directory.profile
            name: Profile
            route: /employees/profile
  - code: leave
    name: Leave
    order: 2
    features:
      - code: leave.balances
        name: Balances
        route: /leave/balances
`

func mustRegistry() *registry.Registry {
	r, err := registry.Parse([]byte(matrixYAML), "test")
	Expect(err).NotTo(HaveOccurred())
	return r
}

var _ = Describe("Matrix", func() {
	var (
		m         *permission.Matrix
		employees = permission.Selector{Module: "employees"}
	)

	BeforeEach(func() {
		m = permission.NewMatrix(mustRegistry(), 7, nil, nil)
	})

	It("lays out one cell per module, tab and feature", func() {
		codes := []string{}
		for _, c := range m.Cells {
			codes = append(codes, c.Code())
		}
		Expect(codes).To(Equal([]string{
			"employees",
			"employees.directory",
			"employees.directory.list",
			"employees.directory.profile",
			"leave",
			"leave.balances",
		}))
		Expect(m.RoleID).To(Equal(int64(7)))
		Expect(m.Scopes).To(BeEmpty())
	})

	It("overlays stored rows and drops unknown ones", func() {
		m = permission.NewMatrix(mustRegistry(), 7, []permission.Cell{
			{Module: "leave", Feature: "leave.balances", View: true, Edit: true},
			{Module: "payroll", Feature: "payroll.runs", View: true},
		}, nil)

		Expect(m.NonEmpty()).To(HaveLen(1))
		Expect(m.NonEmpty()[0].Name).To(Equal("Balances"))
		Expect(permission.Keys(m.Cells)).To(Equal([]string{"leave.balances.edit", "leave.balances.view"}))
	})

	Describe("Toggle", func() {
		It("turns an off column on", func() {
			Expect(m.State(employees, permission.ActionView)).To(Equal(permission.StateOff))
			Expect(m.Toggle(employees, permission.ActionView)).To(Equal(permission.StateOn))
		})

		It("turns an on column off", func() {
			m.Toggle(employees, permission.ActionView)
			Expect(m.Toggle(employees, permission.ActionView)).To(Equal(permission.StateOff))
			Expect(m.NonEmpty()).To(BeEmpty())
		})

		It("turns a partial column on", func() {
			profile := permission.Selector{Feature: "employees.directory.profile"}
			m.Toggle(profile, permission.ActionEdit)
			Expect(m.State(employees, permission.ActionEdit)).To(Equal(permission.StatePartial))

			Expect(m.Toggle(employees, permission.ActionEdit)).To(Equal(permission.StateOn))
		})

		It("only touches the selected column", func() {
			m.Toggle(employees, permission.ActionDelete)
			Expect(m.State(permission.Selector{Module: "leave"}, permission.ActionDelete)).To(Equal(permission.StateOff))
		})

		It("grants view along with any write action", func() {
			m.Toggle(employees, permission.ActionCreate)
			Expect(m.State(employees, permission.ActionView)).To(Equal(permission.StateOn))
		})

		It("revokes write actions when view is revoked", func() {
			m.GrantAll()
			m.Toggle(employees, permission.ActionView)
			Expect(m.State(employees, permission.ActionEdit)).To(Equal(permission.StateOff))
			Expect(m.State(permission.Selector{Module: "leave"}, permission.ActionEdit)).To(Equal(permission.StateOn))
		})
	})

	Describe("bulk operations", func() {
		It("grants everything", func() {
			m.GrantAll()
			for _, a := range permission.Actions {
				Expect(m.State(permission.Selector{}, a)).To(Equal(permission.StateOn))
			}
		})

		It("revokes everything", func() {
			m.GrantAll()
			m.RevokeAll()
			Expect(m.NonEmpty()).To(BeEmpty())
		})

		It("leaves only view", func() {
			m.GrantAll()
			m.ViewOnly()
			Expect(m.State(permission.Selector{}, permission.ActionView)).To(Equal(permission.StateOn))
			Expect(m.State(permission.Selector{}, permission.ActionDelete)).To(Equal(permission.StateOff))
		})
	})

	It("reports per-module column states", func() {
		m.Toggle(permission.Selector{Feature: "leave.balances"}, permission.ActionView)
		cols := permission.Columns(m)
		Expect(cols).To(HaveLen(8))
		Expect(cols).To(ContainElement(permission.ColumnState{Module: "leave", Action: permission.ActionView, State: permission.StatePartial}))
		Expect(cols).To(ContainElement(permission.ColumnState{Module: "employees", Action: permission.ActionView, State: permission.StateOff}))
	})
})

var _ = Describe("Scopes", func() {
	It("rejects unknown scope types and blank values", func() {
		Expect(permission.Scope{Type: "planet", Value: "mars"}.Validate()).NotTo(BeNil())
		Expect(permission.Scope{Type: permission.ScopeDivision, Value: " "}.Validate()).NotTo(BeNil())
		Expect(permission.Scope{Type: permission.ScopeDivision, Value: "Sales"}.Validate()).To(BeNil())
	})

	It("merges the values of scoped roles", func() {
		scope := permission.MergeScopes(map[int64][]permission.Scope{
			1: {{Type: permission.ScopeDivision, Value: "Sales"}},
			2: {{Type: permission.ScopeDivision, Value: "Ops"}, {Type: permission.ScopeDivision, Value: "Sales"}},
		}, []int64{1, 2})

		Expect(scope.Unrestricted).To(BeFalse())
		Expect(scope.Values[permission.ScopeDivision]).To(ConsistOf("Sales", "Ops"))
	})

	It("is unrestricted when any role has no scopes", func() {
		scope := permission.MergeScopes(map[int64][]permission.Scope{
			1: {{Type: permission.ScopeDivision, Value: "Sales"}},
		}, []int64{1, 2})
		Expect(scope.Unrestricted).To(BeTrue())
	})
})
