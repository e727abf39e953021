package workpermit

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/core/common/validation"
	workpermitDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/workpermit"
	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/internal/employee"
)

type RepositoryAPI interface {
	List(ctx context.Context, employeeID int64, limit, offset int) ([]*workpermitDatamodel.WorkPermit, int64, error)
	// ExpiringBefore returns permits whose expiry date is on or before cutoff,
	// soonest first. Already expired permits are included.
	ExpiringBefore(ctx context.Context, cutoff time.Time) ([]*workpermitDatamodel.WorkPermit, error)
	GetByID(ctx context.Context, id int64) (*workpermitDatamodel.WorkPermit, error)
	Create(ctx context.Context, p *workpermitDatamodel.WorkPermit) error
	Update(ctx context.Context, p *workpermitDatamodel.WorkPermit) error
	Delete(ctx context.Context, id int64) error
}

// EmployeeLookup resolves the employee a permit belongs to.
type EmployeeLookup interface {
	Get(ctx context.Context, id int64) (*employee.Employee, error)
}

type Service struct {
	repo      RepositoryAPI
	employees EmployeeLookup
	window    time.Duration
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, employees EmployeeLookup, window time.Duration, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if window <= 0 {
		window = DefaultExpiringWindow
	}
	return &Service{
		repo:      repo,
		employees: employees,
		window:    window,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) toDomain(rows []*workpermitDatamodel.WorkPermit) []*WorkPermit {
	now := s.now()
	out := make([]*WorkPermit, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromDataModel(r, now, s.window))
	}
	return out
}

// List returns permits, optionally for one employee. A status filter is
// applied after the status is derived.
func (s *Service) List(ctx context.Context, filter ListFilter) (*WorkPermitsResponse, error) {
	if filter.Status != "" {
		v := validation.NewValidator()
		v.Field("status", filter.Status).OneOf(StatusValid, StatusExpiring, StatusExpired)
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	limit, offset := filter.Limit, filter.Offset
	if filter.Status != "" {
		limit, offset = 0, 0
	}
	rows, total, err := s.repo.List(ctx, filter.EmployeeID, limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list work permits", err)
	}
	permits := s.toDomain(rows)
	if filter.Status == "" {
		return &WorkPermitsResponse{WorkPermits: permits, Total: total}, nil
	}

	matched := permits[:0]
	for _, p := range permits {
		if p.Status == filter.Status {
			matched = append(matched, p)
		}
	}
	total = int64(len(matched))
	matched = page(matched, filter.Limit, filter.Offset)
	return &WorkPermitsResponse{WorkPermits: matched, Total: total}, nil
}

func page(ps []*WorkPermit, limit, offset int) []*WorkPermit {
	if offset >= len(ps) {
		return []*WorkPermit{}
	}
	ps = ps[offset:]
	if limit > 0 && limit < len(ps) {
		ps = ps[:limit]
	}
	return ps
}

// Expiring lists permits expiring within the given duration from now,
// including those already expired.
func (s *Service) Expiring(ctx context.Context, within time.Duration) ([]*WorkPermit, error) {
	if within <= 0 {
		within = s.window
	}
	cutoff := truncateDay(s.now()).Add(within)
	rows, err := s.repo.ExpiringBefore(ctx, cutoff)
	if err != nil {
		return nil, internal.NewInternalError("failed to list expiring work permits", err)
	}
	now := s.now()
	out := make([]*WorkPermit, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromDataModel(r, now, within))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*WorkPermit, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load work permit", err)
	}
	if row == nil {
		return nil, internal.ErrWorkPermitNotFound
	}
	return FromDataModel(row, s.now(), s.window), nil
}

func (s *Service) Create(ctx context.Context, userID int64, dto CreateWorkPermitDTO) (*WorkPermit, error) {
	dto.PermitType = strings.TrimSpace(dto.PermitType)
	dto.PermitNumber = strings.TrimSpace(dto.PermitNumber)
	dto.IssuingCountry = strings.TrimSpace(dto.IssuingCountry)
	dto.IssueDate = validation.CalendarDay(dto.IssueDate)
	dto.ExpiryDate = validation.CalendarDay(dto.ExpiryDate)
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if err := validation.ValidatePermitDates(dto.IssueDate, dto.ExpiryDate); err != nil {
		return nil, err
	}
	if err := s.checkEmployee(ctx, dto.EmployeeID); err != nil {
		return nil, err
	}

	p := &WorkPermit{
		EmployeeID:     dto.EmployeeID,
		PermitType:     dto.PermitType,
		PermitNumber:   dto.PermitNumber,
		IssuingCountry: dto.IssuingCountry,
		IssueDate:      dto.IssueDate,
		ExpiryDate:     dto.ExpiryDate,
		Notes:          dto.Notes,
		CreatedBy:      userID,
	}
	row := p.ToDataModel()
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create work permit", err)
	}
	s.logger.Info("work permit created", "permit_id", row.ID, "employee_id", row.EmployeeID)
	s.publish(ctx, row.ID, events.ActionCreated)
	return FromDataModel(row, s.now(), s.window), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateWorkPermitDTO) (*WorkPermit, error) {
	dto.PermitType = trimmed(dto.PermitType)
	dto.PermitNumber = trimmed(dto.PermitNumber)
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	// omitempty skips empty strings behind non-nil pointers
	v := validation.NewValidator()
	if dto.PermitType != nil {
		v.Field("permit_type", *dto.PermitType).Required()
	}
	if dto.PermitNumber != nil {
		v.Field("permit_number", *dto.PermitNumber).Required()
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load work permit", err)
	}
	if row == nil {
		return nil, internal.ErrWorkPermitNotFound
	}

	if dto.PermitType != nil {
		row.PermitType = *dto.PermitType
	}
	if dto.PermitNumber != nil {
		row.PermitNumber = *dto.PermitNumber
	}
	if dto.IssuingCountry != nil {
		row.IssuingCountry = *dto.IssuingCountry
	}
	if dto.Notes != nil {
		row.Notes = *dto.Notes
	}
	if dto.IssueDate != nil {
		row.IssueDate = validation.CalendarDay(*dto.IssueDate)
	}
	if dto.ExpiryDate != nil {
		row.ExpiryDate = validation.CalendarDay(*dto.ExpiryDate)
	}
	if err := validation.ValidatePermitDates(row.IssueDate, row.ExpiryDate); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update work permit", err)
	}
	s.publish(ctx, row.ID, events.ActionUpdated)
	return FromDataModel(row, s.now(), s.window), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete work permit", err)
	}
	s.logger.Info("work permit deleted", "permit_id", id)
	s.publish(ctx, id, events.ActionDeleted)
	return nil
}

func (s *Service) checkEmployee(ctx context.Context, id int64) error {
	if s.employees == nil {
		return nil
	}
	_, err := s.employees.Get(ctx, id)
	if errors.Is(err, internal.ErrEmployeeNotFound) {
		return internal.NewValidationFieldError("employee_id", "employee does not exist", internal.ErrCodeEmployeeNotFound)
	}
	return err
}

func (s *Service) publish(ctx context.Context, id int64, action string) {
	evt := events.NewChangeEvent(events.EventTypeWorkPermitChanged, "work_permit", id, action)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish work permit event", "permit_id", id, "error", err)
	}
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
