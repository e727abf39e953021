package leave

import "github.com/shopspring/decimal"

type CreateLeaveTypeDTO struct {
	Code        string          `json:"code" validate:"required,max=50"`
	Name        string          `json:"name" validate:"required,max=100"`
	DefaultDays decimal.Decimal `json:"default_days"`
}

type AdjustDTO struct {
	LeaveTypeCode string          `json:"leave_type_code" validate:"required,max=50"`
	Year          int             `json:"year" validate:"omitempty,min=2000,max=2100"`
	Kind          string          `json:"kind" validate:"required,oneof=accrue consume"`
	Days          decimal.Decimal `json:"days"`
	Note          string          `json:"note" validate:"max=500"`
}

type LeaveTypesResponse struct {
	LeaveTypes []*LeaveType `json:"leave_types"`
}

type BalancesResponse struct {
	EmployeeID int64      `json:"employee_id"`
	Year       int        `json:"year"`
	Balances   []*Balance `json:"balances"`
}
