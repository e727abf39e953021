package postgres

import (
	"context"
	"errors"

	leaveDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/hr-management/internal/leave"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.RepositoryAPI {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) ListTypes(ctx context.Context, activeOnly bool) ([]*leaveDatamodel.LeaveType, error) {
	var rows []*leaveDatamodel.LeaveType
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("code ASC").Find(&rows).Error
	return rows, err
}

func (r *LeaveRepository) GetType(ctx context.Context, code string) (*leaveDatamodel.LeaveType, error) {
	var t leaveDatamodel.LeaveType
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *LeaveRepository) CreateType(ctx context.Context, t *leaveDatamodel.LeaveType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *LeaveRepository) ListBalances(ctx context.Context, employeeID int64, year int) ([]*leaveDatamodel.LeaveBalance, error) {
	var rows []*leaveDatamodel.LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND year = ?", employeeID, year).
		Order("leave_type_code ASC").
		Find(&rows).Error
	return rows, err
}

func (r *LeaveRepository) OpenBalance(ctx context.Context, employeeID int64, code string, year int, entitled decimal.Decimal) (*leaveDatamodel.LeaveBalance, error) {
	var b leaveDatamodel.LeaveBalance
	err := r.db.WithContext(ctx).
		Where(leaveDatamodel.LeaveBalance{EmployeeID: employeeID, LeaveTypeCode: code, Year: year}).
		Attrs(leaveDatamodel.LeaveBalance{Entitled: entitled, Used: decimal.Zero}).
		FirstOrCreate(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// SetUsed writes used only while the stored value still equals expected.
func (r *LeaveRepository) SetUsed(ctx context.Context, id int64, expected, used decimal.Decimal) error {
	return r.compareAndSet(ctx, id, "used", expected, used)
}

func (r *LeaveRepository) SetEntitled(ctx context.Context, id int64, expected, entitled decimal.Decimal) error {
	return r.compareAndSet(ctx, id, "entitled", expected, entitled)
}

func (r *LeaveRepository) compareAndSet(ctx context.Context, id int64, column string, expected, value decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&leaveDatamodel.LeaveBalance{}).
		Where("id = ? AND "+column+" = ?", id, expected).
		Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return leave.ErrBalanceChanged
	}
	return nil
}
