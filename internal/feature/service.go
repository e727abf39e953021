package feature

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/core/common/validation"
	featureDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/feature"
	"github.com/frahmantamala/hr-management/internal/core/events"
)

type RepositoryAPI interface {
	List(ctx context.Context, activeOnly bool) ([]*featureDatamodel.AppFeature, error)
	GetByID(ctx context.Context, id int64) (*featureDatamodel.AppFeature, error)
	GetByCode(ctx context.Context, code string) (*featureDatamodel.AppFeature, error)
	Create(ctx context.Context, f *featureDatamodel.AppFeature) error
	CreateBatch(ctx context.Context, fs []*featureDatamodel.AppFeature) error
	Update(ctx context.Context, f *featureDatamodel.AppFeature) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]*Feature, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, internal.NewInternalError("failed to list features", err)
	}
	out := make([]*Feature, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromDataModel(r))
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Feature, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load feature", err)
	}
	if row == nil {
		return nil, internal.ErrFeatureNotFound
	}
	return FromDataModel(row), nil
}

// GetByCode returns nil without error when no row carries the code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Feature, error) {
	row, err := s.repo.GetByCode(ctx, code)
	if err != nil || row == nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateFeatureDTO) (*Feature, error) {
	dto.Code = strings.TrimSpace(dto.Code)
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if err := validation.ValidateFeatureCode(dto.Code); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByCode(ctx, dto.Code)
	if err != nil {
		return nil, internal.NewInternalError("failed to check feature code", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError("a feature with this code already exists", internal.ErrCodeFeatureExists)
	}

	f := &Feature{
		Code:        dto.Code,
		Name:        strings.TrimSpace(dto.Name),
		Route:       dto.Route,
		ModuleCode:  dto.ModuleCode,
		TabCode:     dto.TabCode,
		Description: dto.Description,
		IsActive:    dto.IsActive == nil || *dto.IsActive,
	}
	row := f.ToDataModel()
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create feature", err)
	}
	s.logger.Info("feature created", "feature_id", row.ID, "code", row.Code)
	s.publish(ctx, row.ID, events.ActionCreated)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateFeatureDTO) (*Feature, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load feature", err)
	}
	if row == nil {
		return nil, internal.ErrFeatureNotFound
	}

	if dto.Name != nil {
		row.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Route != nil {
		row.Route = *dto.Route
	}
	if dto.ModuleCode != nil {
		row.ModuleCode = *dto.ModuleCode
	}
	if dto.TabCode != nil {
		row.TabCode = *dto.TabCode
	}
	if dto.Description != nil {
		row.Description = *dto.Description
	}
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update feature", err)
	}
	s.publish(ctx, row.ID, events.ActionUpdated)
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete feature", err)
	}
	s.logger.Info("feature deleted", "feature_id", id)
	s.publish(ctx, id, events.ActionDeleted)
	return nil
}

// Import inserts features in one batch. Callers are expected to have filtered
// out codes that already exist.
func (s *Service) Import(ctx context.Context, features []*Feature) error {
	if len(features) == 0 {
		return nil
	}
	rows := make([]*featureDatamodel.AppFeature, 0, len(features))
	for _, f := range features {
		rows = append(rows, f.ToDataModel())
	}
	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		return internal.NewInternalError("failed to import features", err)
	}
	for i, r := range rows {
		features[i].ID = r.ID
	}
	s.logger.Info("features imported", "count", len(rows))
	s.publish(ctx, 0, events.ActionCreated)
	return nil
}

func (s *Service) publish(ctx context.Context, id int64, action string) {
	evt := events.NewChangeEvent(events.EventTypeFeatureChanged, "feature", id, action)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish feature event", "feature_id", id, "error", err)
	}
}
