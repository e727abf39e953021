package leave

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/core/common/validation"
	leaveDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/internal/employee"
	"github.com/shopspring/decimal"
)

// ErrBalanceChanged is returned by SetUsed and SetEntitled when the stored
// value no longer matches the expected one.
var ErrBalanceChanged = errors.New("leave balance changed concurrently")

const maxAdjustAttempts = 3

type RepositoryAPI interface {
	ListTypes(ctx context.Context, activeOnly bool) ([]*leaveDatamodel.LeaveType, error)
	GetType(ctx context.Context, code string) (*leaveDatamodel.LeaveType, error)
	CreateType(ctx context.Context, t *leaveDatamodel.LeaveType) error

	ListBalances(ctx context.Context, employeeID int64, year int) ([]*leaveDatamodel.LeaveBalance, error)
	// OpenBalance returns the balance row, creating it with entitled days when missing.
	OpenBalance(ctx context.Context, employeeID int64, code string, year int, entitled decimal.Decimal) (*leaveDatamodel.LeaveBalance, error)
	SetUsed(ctx context.Context, id int64, expected, used decimal.Decimal) error
	SetEntitled(ctx context.Context, id int64, expected, entitled decimal.Decimal) error
}

type EmployeeLookup interface {
	Get(ctx context.Context, id int64) (*employee.Employee, error)
}

type Service struct {
	repo      RepositoryAPI
	employees EmployeeLookup
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, employees EmployeeLookup, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		employees: employees,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) ListTypes(ctx context.Context, activeOnly bool) (*LeaveTypesResponse, error) {
	rows, err := s.repo.ListTypes(ctx, activeOnly)
	if err != nil {
		return nil, internal.NewInternalError("failed to list leave types", err)
	}
	out := make([]*LeaveType, 0, len(rows))
	for _, r := range rows {
		out = append(out, TypeFromDataModel(r))
	}
	return &LeaveTypesResponse{LeaveTypes: out}, nil
}

func (s *Service) CreateType(ctx context.Context, dto CreateLeaveTypeDTO) (*LeaveType, error) {
	dto.Code = strings.ToLower(strings.TrimSpace(dto.Code))
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	v := validation.NewValidator()
	v.Field("default_days", dto.DefaultDays).Custom(func(value interface{}) *internal.AppError {
		if d, _ := value.(decimal.Decimal); d.IsNegative() {
			return internal.NewValidationFieldError("default_days", "default_days cannot be negative", internal.ErrCodeInvalidAmount)
		}
		return nil
	}).StepDecimal(HalfDay)
	if err := v.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetType(ctx, dto.Code)
	if err != nil {
		return nil, internal.NewInternalError("failed to check leave type", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError("leave type code already in use", internal.ErrCodeLeaveTypeExists)
	}

	row := (&LeaveType{Code: dto.Code, Name: strings.TrimSpace(dto.Name), DefaultDays: dto.DefaultDays, IsActive: true}).ToDataModel()
	if err := s.repo.CreateType(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create leave type", err)
	}
	s.logger.Info("leave type created", "code", row.Code)
	return TypeFromDataModel(row), nil
}

// Balances lists every active leave type for the employee. Types without a
// stored balance are reported with their default entitlement.
func (s *Service) Balances(ctx context.Context, employeeID int64, year int) (*BalancesResponse, error) {
	if year == 0 {
		year = s.now().Year()
	}
	if _, err := s.employees.Get(ctx, employeeID); err != nil {
		return nil, err
	}

	types, err := s.repo.ListTypes(ctx, true)
	if err != nil {
		return nil, internal.NewInternalError("failed to list leave types", err)
	}
	rows, err := s.repo.ListBalances(ctx, employeeID, year)
	if err != nil {
		return nil, internal.NewInternalError("failed to list leave balances", err)
	}
	stored := make(map[string]*leaveDatamodel.LeaveBalance, len(rows))
	for _, r := range rows {
		stored[r.LeaveTypeCode] = r
	}

	out := make([]*Balance, 0, len(types))
	for _, t := range types {
		var b *Balance
		if r, ok := stored[t.Code]; ok {
			b = BalanceFromDataModel(r)
		} else {
			b = &Balance{
				EmployeeID:    employeeID,
				LeaveTypeCode: t.Code,
				Year:          year,
				Entitled:      t.DefaultDays,
				Used:          decimal.Zero,
				Remaining:     t.DefaultDays,
			}
		}
		b.LeaveTypeName = t.Name
		out = append(out, b)
	}
	return &BalancesResponse{EmployeeID: employeeID, Year: year, Balances: out}, nil
}

// Adjust accrues or consumes days on a balance. Consuming more than what
// remains is rejected and leaves the balance untouched.
func (s *Service) Adjust(ctx context.Context, employeeID int64, dto AdjustDTO) (*Balance, error) {
	dto.LeaveTypeCode = strings.ToLower(strings.TrimSpace(dto.LeaveTypeCode))
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	v := validation.NewValidator()
	v.Field("days", dto.Days).PositiveDecimal().StepDecimal(HalfDay)
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if dto.Year == 0 {
		dto.Year = s.now().Year()
	}

	if _, err := s.employees.Get(ctx, employeeID); err != nil {
		return nil, err
	}
	lt, err := s.repo.GetType(ctx, dto.LeaveTypeCode)
	if err != nil {
		return nil, internal.NewInternalError("failed to load leave type", err)
	}
	if lt == nil || !lt.IsActive {
		return nil, internal.ErrLeaveTypeNotFound
	}

	var row *leaveDatamodel.LeaveBalance
	for attempt := 0; ; attempt++ {
		row, err = s.repo.OpenBalance(ctx, employeeID, lt.Code, dto.Year, lt.DefaultDays)
		if err != nil {
			return nil, internal.NewInternalError("failed to open leave balance", err)
		}

		switch dto.Kind {
		case AdjustConsume:
			remaining := row.Entitled.Sub(row.Used)
			if dto.Days.GreaterThan(remaining) {
				return nil, internal.NewValidationFieldError("days",
					"insufficient balance: "+remaining.String()+" day(s) remaining", internal.ErrCodeInsufficientBalance)
			}
			used := row.Used.Add(dto.Days)
			err = s.repo.SetUsed(ctx, row.ID, row.Used, used)
			row.Used = used
		default:
			entitled := row.Entitled.Add(dto.Days)
			err = s.repo.SetEntitled(ctx, row.ID, row.Entitled, entitled)
			row.Entitled = entitled
		}
		if err == nil {
			break
		}
		if !errors.Is(err, ErrBalanceChanged) || attempt+1 >= maxAdjustAttempts {
			return nil, internal.NewInternalError("failed to adjust leave balance", err)
		}
	}

	s.logger.Info("leave balance adjusted",
		"employee_id", employeeID, "leave_type", lt.Code, "year", dto.Year,
		"kind", dto.Kind, "days", dto.Days.String(), "note", dto.Note)
	evt := events.NewChangeEvent(events.EventTypeLeaveBalanceChanged, "leave_balance", row.ID, events.ActionUpdated)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish leave balance event", "balance_id", row.ID, "error", err)
	}

	b := BalanceFromDataModel(row)
	b.LeaveTypeName = lt.Name
	return b, nil
}
