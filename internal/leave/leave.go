package leave

import (
	"time"

	leaveDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/leave"
	"github.com/shopspring/decimal"
)

const (
	AdjustAccrue  = "accrue"
	AdjustConsume = "consume"
)

// HalfDay is the smallest leave unit.
var HalfDay = decimal.NewFromFloat(0.5)

type LeaveType struct {
	ID          int64           `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	DefaultDays decimal.Decimal `json:"default_days"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (t *LeaveType) ToDataModel() *leaveDatamodel.LeaveType {
	return &leaveDatamodel.LeaveType{
		ID:          t.ID,
		Code:        t.Code,
		Name:        t.Name,
		DefaultDays: t.DefaultDays,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
	}
}

func TypeFromDataModel(m *leaveDatamodel.LeaveType) *LeaveType {
	return &LeaveType{
		ID:          m.ID,
		Code:        m.Code,
		Name:        m.Name,
		DefaultDays: m.DefaultDays,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
	}
}

// Balance is one employee's standing for a leave type in a year. ID is zero
// until the first adjustment opens the balance.
type Balance struct {
	ID            int64           `json:"id"`
	EmployeeID    int64           `json:"employee_id"`
	LeaveTypeCode string          `json:"leave_type_code"`
	LeaveTypeName string          `json:"leave_type_name,omitempty"`
	Year          int             `json:"year"`
	Entitled      decimal.Decimal `json:"entitled"`
	Used          decimal.Decimal `json:"used"`
	Remaining     decimal.Decimal `json:"remaining"`
	UpdatedAt     time.Time       `json:"updated_at,omitempty"`
}

func BalanceFromDataModel(m *leaveDatamodel.LeaveBalance) *Balance {
	return &Balance{
		ID:            m.ID,
		EmployeeID:    m.EmployeeID,
		LeaveTypeCode: m.LeaveTypeCode,
		Year:          m.Year,
		Entitled:      m.Entitled,
		Used:          m.Used,
		Remaining:     m.Entitled.Sub(m.Used),
		UpdatedAt:     m.UpdatedAt,
	}
}
