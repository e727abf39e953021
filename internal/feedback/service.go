package feedback

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/core/common/validation"
	feedbackDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/feedback"
	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/internal/employee"
)

var cyclePattern = regexp.MustCompile(`^\d{4}(-(H[12]|Q[1-4]))?$`)

type RepositoryAPI interface {
	ListConsentTypes(ctx context.Context, activeOnly bool) ([]*feedbackDatamodel.ConsentType, error)
	GetConsentType(ctx context.Context, code string) (*feedbackDatamodel.ConsentType, error)
	CreateConsentType(ctx context.Context, t *feedbackDatamodel.ConsentType) error
	UpdateConsentType(ctx context.Context, t *feedbackDatamodel.ConsentType) error
	DeleteConsentType(ctx context.Context, code string) error

	ListRecords(ctx context.Context, filter RecordFilter) ([]*feedbackDatamodel.ConsentRecord, error)
	GetRecord(ctx context.Context, employeeID int64, typeCode, cycle string) (*feedbackDatamodel.ConsentRecord, error)
	SaveRecord(ctx context.Context, r *feedbackDatamodel.ConsentRecord) error

	ListPolicies(ctx context.Context, code string) ([]*feedbackDatamodel.FeedbackPolicy, error)
	GetPolicy(ctx context.Context, id int64) (*feedbackDatamodel.FeedbackPolicy, error)
	LatestPolicyVersion(ctx context.Context, code string) (int, error)
	CreatePolicy(ctx context.Context, p *feedbackDatamodel.FeedbackPolicy) error
	// ActivatePolicy activates id and deactivates every other version of code.
	ActivatePolicy(ctx context.Context, id int64, code string) error
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

func (s *Service) ListConsentTypes(ctx context.Context, activeOnly bool) (*ConsentTypesResponse, error) {
	rows, err := s.repo.ListConsentTypes(ctx, activeOnly)
	if err != nil {
		return nil, internal.NewInternalError("failed to list consent types", err)
	}
	out := make([]*ConsentType, 0, len(rows))
	for _, r := range rows {
		out = append(out, ConsentTypeFromDataModel(r))
	}
	return &ConsentTypesResponse{ConsentTypes: out}, nil
}

func (s *Service) GetConsentType(ctx context.Context, code string) (*ConsentType, error) {
	row, err := s.repo.GetConsentType(ctx, code)
	if err != nil {
		return nil, internal.NewInternalError("failed to load consent type", err)
	}
	if row == nil {
		return nil, internal.ErrConsentTypeNotFound
	}
	return ConsentTypeFromDataModel(row), nil
}

func (s *Service) CreateConsentType(ctx context.Context, dto CreateConsentTypeDTO) (*ConsentType, error) {
	dto.Code = strings.ToLower(strings.TrimSpace(dto.Code))
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetConsentType(ctx, dto.Code)
	if err != nil {
		return nil, internal.NewInternalError("failed to check consent type", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError("consent type code already in use", internal.ErrCodeConsentTypeExists)
	}

	ct := &ConsentType{
		Code:        dto.Code,
		Name:        strings.TrimSpace(dto.Name),
		Description: dto.Description,
		Required:    dto.Required,
		IsActive:    true,
	}
	row := ct.ToDataModel()
	if err := s.repo.CreateConsentType(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create consent type", err)
	}
	s.logger.Info("consent type created", "code", row.Code)
	s.publish(ctx, events.EventTypeConsentChanged, "consent_type", row.ID, events.ActionCreated)
	return ConsentTypeFromDataModel(row), nil
}

func (s *Service) UpdateConsentType(ctx context.Context, code string, dto UpdateConsentTypeDTO) (*ConsentType, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	row, err := s.repo.GetConsentType(ctx, code)
	if err != nil {
		return nil, internal.NewInternalError("failed to load consent type", err)
	}
	if row == nil {
		return nil, internal.ErrConsentTypeNotFound
	}
	if dto.Name != nil {
		row.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Description != nil {
		row.Description = *dto.Description
	}
	if dto.Required != nil {
		row.Required = *dto.Required
	}
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}
	if err := s.repo.UpdateConsentType(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update consent type", err)
	}
	s.publish(ctx, events.EventTypeConsentChanged, "consent_type", row.ID, events.ActionUpdated)
	return ConsentTypeFromDataModel(row), nil
}

// DeleteConsentType removes a type. Types with recorded consents are only
// deactivated, so the history stays readable.
func (s *Service) DeleteConsentType(ctx context.Context, code string) error {
	ct, err := s.GetConsentType(ctx, code)
	if err != nil {
		return err
	}
	records, err := s.repo.ListRecords(ctx, RecordFilter{ConsentTypeCode: code})
	if err != nil {
		return internal.NewInternalError("failed to check consent records", err)
	}
	if len(records) > 0 {
		inactive := false
		_, err := s.UpdateConsentType(ctx, code, UpdateConsentTypeDTO{IsActive: &inactive})
		return err
	}
	if err := s.repo.DeleteConsentType(ctx, code); err != nil {
		return internal.NewInternalError("failed to delete consent type", err)
	}
	s.publish(ctx, events.EventTypeConsentChanged, "consent_type", ct.ID, events.ActionDeleted)
	return nil
}

func (s *Service) Grant(ctx context.Context, employeeID int64, dto ConsentDTO) (*ConsentRecord, error) {
	return s.setConsent(ctx, employeeID, dto, true)
}

func (s *Service) Withdraw(ctx context.Context, employeeID int64, dto ConsentDTO) (*ConsentRecord, error) {
	return s.setConsent(ctx, employeeID, dto, false)
}

// setConsent keeps a single record per employee, type and cycle. Granting
// stamps granted_at and clears withdrawn_at; withdrawing stamps withdrawn_at
// and keeps the original grant time.
func (s *Service) setConsent(ctx context.Context, employeeID int64, dto ConsentDTO, granted bool) (*ConsentRecord, error) {
	dto.ConsentTypeCode = strings.ToLower(strings.TrimSpace(dto.ConsentTypeCode))
	dto.Cycle = strings.ToUpper(strings.TrimSpace(dto.Cycle))
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if !cyclePattern.MatchString(dto.Cycle) {
		return nil, internal.NewValidationFieldError("cycle", "cycle must look like 2026, 2026-H1 or 2026-Q1", internal.ErrCodeValidationFailed)
	}
	if _, err := s.employees.Get(ctx, employeeID); err != nil {
		return nil, err
	}
	ct, err := s.GetConsentType(ctx, dto.ConsentTypeCode)
	if err != nil {
		return nil, err
	}
	if !ct.IsActive && granted {
		return nil, internal.NewValidationFieldError("consent_type_code", "consent type is inactive", internal.ErrCodeValidationFailed)
	}

	row, err := s.repo.GetRecord(ctx, employeeID, ct.Code, dto.Cycle)
	if err != nil {
		return nil, internal.NewInternalError("failed to load consent record", err)
	}
	if row == nil {
		row = &feedbackDatamodel.ConsentRecord{EmployeeID: employeeID, ConsentTypeCode: ct.Code, Cycle: dto.Cycle}
	} else if row.Granted == granted {
		return RecordFromDataModel(row), nil
	}

	now := s.now().UTC()
	row.Granted = granted
	if granted {
		row.GrantedAt = &now
		row.WithdrawnAt = nil
	} else {
		row.WithdrawnAt = &now
	}
	if err := s.repo.SaveRecord(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to save consent record", err)
	}

	action := "granted"
	if !granted {
		action = "withdrawn"
	}
	s.logger.Info("consent "+action, "employee_id", employeeID, "consent_type", ct.Code, "cycle", dto.Cycle)
	s.publish(ctx, events.EventTypeConsentChanged, "consent_record", row.ID, events.ActionUpdated)
	return RecordFromDataModel(row), nil
}

func (s *Service) ListRecords(ctx context.Context, filter RecordFilter) (*RecordsResponse, error) {
	rows, err := s.repo.ListRecords(ctx, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list consent records", err)
	}
	out := make([]*ConsentRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, RecordFromDataModel(r))
	}
	return &RecordsResponse{Records: out}, nil
}

// Status lists the employee's consent for every active type in a cycle.
// Types never answered show as not granted.
func (s *Service) Status(ctx context.Context, employeeID int64, cycle string) (*ConsentStatus, error) {
	cycle = strings.ToUpper(strings.TrimSpace(cycle))
	if !cyclePattern.MatchString(cycle) {
		return nil, internal.NewValidationFieldError("cycle", "cycle must look like 2026, 2026-H1 or 2026-Q1", internal.ErrCodeValidationFailed)
	}
	types, err := s.repo.ListConsentTypes(ctx, true)
	if err != nil {
		return nil, internal.NewInternalError("failed to list consent types", err)
	}
	rows, err := s.repo.ListRecords(ctx, RecordFilter{EmployeeID: employeeID, Cycle: cycle})
	if err != nil {
		return nil, internal.NewInternalError("failed to list consent records", err)
	}
	byType := make(map[string]*feedbackDatamodel.ConsentRecord, len(rows))
	for _, r := range rows {
		byType[r.ConsentTypeCode] = r
	}

	status := &ConsentStatus{EmployeeID: employeeID, Cycle: cycle, Records: []*ConsentRecord{}, MissingRequired: []string{}}
	for _, t := range types {
		rec := &ConsentRecord{EmployeeID: employeeID, ConsentTypeCode: t.Code, Cycle: cycle}
		if r, ok := byType[t.Code]; ok {
			rec = RecordFromDataModel(r)
		}
		status.Records = append(status.Records, rec)
		if t.Required && !rec.Granted {
			status.MissingRequired = append(status.MissingRequired, t.Code)
		}
	}
	return status, nil
}

func (s *Service) ListPolicies(ctx context.Context, code string) (*PoliciesResponse, error) {
	rows, err := s.repo.ListPolicies(ctx, code)
	if err != nil {
		return nil, internal.NewInternalError("failed to list feedback policies", err)
	}
	out := make([]*Policy, 0, len(rows))
	for _, r := range rows {
		out = append(out, PolicyFromDataModel(r))
	}
	return &PoliciesResponse{Policies: out}, nil
}

// CreatePolicy stores the next version of a policy. New versions start inactive.
func (s *Service) CreatePolicy(ctx context.Context, userID int64, dto CreatePolicyDTO) (*Policy, error) {
	dto.Code = strings.ToLower(strings.TrimSpace(dto.Code))
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if dto.EffectiveFrom.IsZero() {
		dto.EffectiveFrom = s.now().UTC()
	}

	latest, err := s.repo.LatestPolicyVersion(ctx, dto.Code)
	if err != nil {
		return nil, internal.NewInternalError("failed to load policy versions", err)
	}
	row := &feedbackDatamodel.FeedbackPolicy{
		Code:          dto.Code,
		Version:       latest + 1,
		Title:         strings.TrimSpace(dto.Title),
		Body:          dto.Body,
		EffectiveFrom: dto.EffectiveFrom,
		CreatedBy:     userID,
	}
	if err := s.repo.CreatePolicy(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create feedback policy", err)
	}
	s.logger.Info("feedback policy created", "code", row.Code, "version", row.Version)
	s.publish(ctx, events.EventTypePolicyChanged, "feedback_policy", row.ID, events.ActionCreated)
	return PolicyFromDataModel(row), nil
}

func (s *Service) ActivatePolicy(ctx context.Context, id int64) (*Policy, error) {
	row, err := s.repo.GetPolicy(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load feedback policy", err)
	}
	if row == nil {
		return nil, internal.ErrPolicyNotFound
	}
	if err := s.repo.ActivatePolicy(ctx, id, row.Code); err != nil {
		return nil, internal.NewInternalError("failed to activate feedback policy", err)
	}
	row.IsActive = true
	s.logger.Info("feedback policy activated", "code", row.Code, "version", row.Version)
	s.publish(ctx, events.EventTypePolicyChanged, "feedback_policy", id, events.ActionUpdated)
	return PolicyFromDataModel(row), nil
}

func (s *Service) publish(ctx context.Context, eventType, entity string, id int64, action string) {
	evt := events.NewChangeEvent(eventType, entity, id, action)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish feedback event", "entity", entity, "id", id, "error", err)
	}
}
