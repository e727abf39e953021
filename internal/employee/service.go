package employee

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/core/common/validation"
	employeeDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/internal/permission"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error)
	GetByUserID(ctx context.Context, userID int64) (*employeeDatamodel.Employee, error)
	GetByNumber(ctx context.Context, number string) (*employeeDatamodel.Employee, error)
	Create(ctx context.Context, e *employeeDatamodel.Employee) error
	Update(ctx context.Context, e *employeeDatamodel.Employee) error
	Delete(ctx context.Context, id int64) error
}

// SearchAPI runs directory queries restricted to an access scope.
type SearchAPI interface {
	Search(ctx context.Context, filter SearchFilter, scope permission.AccessScope) ([]*employeeDatamodel.Employee, int, error)
}

type ScopeProvider interface {
	ScopesForUser(ctx context.Context, userID int64) (permission.AccessScope, error)
}

type Service struct {
	repo      RepositoryAPI
	search    SearchAPI
	scopes    ScopeProvider
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, search SearchAPI, scopes ScopeProvider, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		search:    search,
		scopes:    scopes,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Search lists the directory as seen by userID.
func (s *Service) Search(ctx context.Context, userID int64, filter SearchFilter) (*EmployeesResponse, error) {
	if err := validation.Struct(filter); err != nil {
		return nil, err
	}

	scope, err := s.scopes.ScopesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, total, err := s.search.Search(ctx, filter, scope)
	if err != nil {
		return nil, internal.NewInternalError("failed to search employees", err)
	}
	out := make([]*Employee, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromDataModel(r))
	}
	return &EmployeesResponse{Employees: out, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Employee, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load employee", err)
	}
	if row == nil {
		return nil, internal.ErrEmployeeNotFound
	}
	return FromDataModel(row), nil
}

// ForUser returns the employee record linked to a login.
func (s *Service) ForUser(ctx context.Context, userID int64) (*Employee, error) {
	row, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load employee", err)
	}
	if row == nil {
		return nil, internal.ErrEmployeeNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error) {
	dto.EmployeeNumber = strings.TrimSpace(dto.EmployeeNumber)
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByNumber(ctx, dto.EmployeeNumber)
	if err != nil {
		return nil, internal.NewInternalError("failed to check employee number", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError("employee number already in use", internal.ErrCodeEmployeeExists)
	}
	if err := s.checkManager(ctx, 0, dto.ManagerID); err != nil {
		return nil, err
	}

	e := &Employee{
		UserID:         dto.UserID,
		EmployeeNumber: dto.EmployeeNumber,
		FirstName:      strings.TrimSpace(dto.FirstName),
		LastName:       strings.TrimSpace(dto.LastName),
		Email:          strings.ToLower(strings.TrimSpace(dto.Email)),
		JobTitle:       dto.JobTitle,
		Company:        dto.Company,
		Division:       dto.Division,
		Department:     dto.Department,
		Section:        dto.Section,
		PayGroup:       dto.PayGroup,
		PositionType:   dto.PositionType,
		Status:         StatusActive,
		HireDate:       dto.HireDate,
		ManagerID:      dto.ManagerID,
	}
	row := e.ToDataModel()
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create employee", err)
	}
	s.logger.Info("employee created", "employee_id", row.ID, "employee_number", row.EmployeeNumber)
	s.publish(ctx, row.ID, events.ActionCreated)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load employee", err)
	}
	if row == nil {
		return nil, internal.ErrEmployeeNotFound
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&row.FirstName, dto.FirstName)
	apply(&row.LastName, dto.LastName)
	apply(&row.Email, dto.Email)
	apply(&row.JobTitle, dto.JobTitle)
	apply(&row.Company, dto.Company)
	apply(&row.Division, dto.Division)
	apply(&row.Department, dto.Department)
	apply(&row.Section, dto.Section)
	apply(&row.PayGroup, dto.PayGroup)
	apply(&row.PositionType, dto.PositionType)
	if dto.HireDate != nil {
		row.HireDate = *dto.HireDate
	}
	if dto.ManagerID != nil {
		if err := s.checkManager(ctx, id, dto.ManagerID); err != nil {
			return nil, err
		}
		row.ManagerID = dto.ManagerID
	}
	if dto.Status != nil && *dto.Status != row.Status {
		row.Status = *dto.Status
		if row.Status == StatusTerminated {
			now := s.now().UTC()
			row.TerminatedAt = &now
		} else {
			row.TerminatedAt = nil
		}
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update employee", err)
	}
	s.publish(ctx, row.ID, events.ActionUpdated)
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete employee", err)
	}
	s.logger.Info("employee deleted", "employee_id", id)
	s.publish(ctx, id, events.ActionDeleted)
	return nil
}

func (s *Service) checkManager(ctx context.Context, self int64, managerID *int64) error {
	if managerID == nil {
		return nil
	}
	if *managerID == self {
		return internal.NewValidationFieldError("manager_id", "an employee cannot manage themselves", internal.ErrCodeValidationFailed)
	}
	m, err := s.repo.GetByID(ctx, *managerID)
	if err != nil {
		return internal.NewInternalError("failed to load manager", err)
	}
	if m == nil {
		return internal.NewValidationFieldError("manager_id", "manager does not exist", internal.ErrCodeEmployeeNotFound)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, id int64, action string) {
	evt := events.NewChangeEvent(events.EventTypeEmployeeChanged, "employee", id, action)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish employee event", "employee_id", id, "error", err)
	}
}
