package employee

import (
	"time"

	employeeDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/employee"
)

const (
	StatusActive     = "active"
	StatusOnLeave    = "on_leave"
	StatusTerminated = "terminated"
)

var Statuses = []string{StatusActive, StatusOnLeave, StatusTerminated}

type Employee struct {
	ID             int64      `json:"id"`
	UserID         *int64     `json:"user_id,omitempty"`
	EmployeeNumber string     `json:"employee_number"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	JobTitle       string     `json:"job_title"`
	Company        string     `json:"company"`
	Division       string     `json:"division"`
	Department     string     `json:"department"`
	Section        string     `json:"section"`
	PayGroup       string     `json:"pay_group"`
	PositionType   string     `json:"position_type"`
	Status         string     `json:"status"`
	HireDate       time.Time  `json:"hire_date"`
	ManagerID      *int64     `json:"manager_id,omitempty"`
	TerminatedAt   *time.Time `json:"terminated_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

func (e *Employee) ToDataModel() *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:             e.ID,
		UserID:         e.UserID,
		EmployeeNumber: e.EmployeeNumber,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		Email:          e.Email,
		JobTitle:       e.JobTitle,
		Company:        e.Company,
		Division:       e.Division,
		Department:     e.Department,
		Section:        e.Section,
		PayGroup:       e.PayGroup,
		PositionType:   e.PositionType,
		Status:         e.Status,
		HireDate:       e.HireDate,
		ManagerID:      e.ManagerID,
		TerminatedAt:   e.TerminatedAt,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func FromDataModel(m *employeeDatamodel.Employee) *Employee {
	return &Employee{
		ID:             m.ID,
		UserID:         m.UserID,
		EmployeeNumber: m.EmployeeNumber,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		Email:          m.Email,
		JobTitle:       m.JobTitle,
		Company:        m.Company,
		Division:       m.Division,
		Department:     m.Department,
		Section:        m.Section,
		PayGroup:       m.PayGroup,
		PositionType:   m.PositionType,
		Status:         m.Status,
		HireDate:       m.HireDate,
		ManagerID:      m.ManagerID,
		TerminatedAt:   m.TerminatedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
