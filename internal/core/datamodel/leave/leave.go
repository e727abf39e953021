package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type LeaveType struct {
	ID          int64           `gorm:"primaryKey"`
	Code        string          `gorm:"column:code;uniqueIndex;not null"`
	Name        string          `gorm:"column:name;not null"`
	DefaultDays decimal.Decimal `gorm:"column:default_days;type:numeric(6,2);not null"`
	IsActive    bool            `gorm:"column:is_active;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (LeaveType) TableName() string { return "leave_types" }

type LeaveBalance struct {
	ID            int64           `gorm:"primaryKey"`
	EmployeeID    int64           `gorm:"column:employee_id;not null;uniqueIndex:idx_leave_balance_key"`
	LeaveTypeCode string          `gorm:"column:leave_type_code;not null;uniqueIndex:idx_leave_balance_key"`
	Year          int             `gorm:"column:year;not null;uniqueIndex:idx_leave_balance_key"`
	Entitled      decimal.Decimal `gorm:"column:entitled;type:numeric(6,2);not null"`
	Used          decimal.Decimal `gorm:"column:used;type:numeric(6,2);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveBalance) TableName() string { return "leave_balances" }
