package succession

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/core/common/resolve"
	"github.com/frahmantamala/hr-management/internal/core/common/validation"
	successionDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/succession"
	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/internal/registry"
)

type RepositoryAPI interface {
	ListSections(ctx context.Context, filter SectionFilter) ([]*successionDatamodel.ManualSection, error)
	GetSection(ctx context.Context, id int64) (*successionDatamodel.ManualSection, error)
	CreateSection(ctx context.Context, s *successionDatamodel.ManualSection) error
	UpdateSection(ctx context.Context, s *successionDatamodel.ManualSection) error
	DeleteSection(ctx context.Context, id int64) error

	ListTasks(ctx context.Context) ([]*successionDatamodel.HandbookTask, error)
	GetTask(ctx context.Context, code string) (*successionDatamodel.HandbookTask, error)
	SaveTask(ctx context.Context, t *successionDatamodel.HandbookTask) error
	DeleteTask(ctx context.Context, code string) (int64, error)
}

type Service struct {
	repo      RepositoryAPI
	registry  *registry.Holder
	defaults  []Task
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, holder *registry.Holder, defaults []Task, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		registry:  holder,
		defaults:  defaults,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) ListSections(ctx context.Context, filter SectionFilter) (*SectionsResponse, error) {
	rows, err := s.repo.ListSections(ctx, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list manual sections", err)
	}
	out := make([]*Section, 0, len(rows))
	for _, r := range rows {
		out = append(out, SectionFromDataModel(r))
	}
	return &SectionsResponse{Sections: out}, nil
}

func (s *Service) GetSection(ctx context.Context, id int64) (*Section, error) {
	row, err := s.repo.GetSection(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load manual section", err)
	}
	if row == nil {
		return nil, internal.ErrSectionNotFound
	}
	return SectionFromDataModel(row), nil
}

// CreateSection documents a registered feature. The module is taken from the
// registry entry.
func (s *Service) CreateSection(ctx context.Context, dto CreateSectionDTO) (*Section, error) {
	dto.FeatureCode = strings.TrimSpace(dto.FeatureCode)
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	entry, ok := s.registry.Get().Lookup(dto.FeatureCode)
	if !ok {
		return nil, internal.NewValidationFieldError("feature_code", "unknown feature "+dto.FeatureCode, internal.ErrCodeInvalidCode)
	}

	sec := &Section{
		FeatureCode: entry.Code,
		ModuleCode:  entry.Module,
		Title:       strings.TrimSpace(dto.Title),
		Body:        dto.Body,
		Version:     1,
	}
	row := sec.ToDataModel()
	if err := s.repo.CreateSection(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create manual section", err)
	}
	s.logger.Info("manual section created", "section_id", row.ID, "feature", row.FeatureCode)
	s.publish(ctx, "manual_section", row.ID, events.ActionCreated)
	return SectionFromDataModel(row), nil
}

// UpdateSection bumps the version when content changes. The review stamp is
// cleared so the section is reviewed again.
func (s *Service) UpdateSection(ctx context.Context, id int64, dto UpdateSectionDTO) (*Section, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	row, err := s.repo.GetSection(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load manual section", err)
	}
	if row == nil {
		return nil, internal.ErrSectionNotFound
	}

	changed := false
	if dto.Title != nil && strings.TrimSpace(*dto.Title) != row.Title {
		row.Title = strings.TrimSpace(*dto.Title)
		changed = true
	}
	if dto.Body != nil && *dto.Body != row.Body {
		row.Body = *dto.Body
		changed = true
	}
	if !changed {
		return SectionFromDataModel(row), nil
	}
	row.Version++
	row.ReviewedAt = nil
	row.ReviewedBy = nil

	if err := s.repo.UpdateSection(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update manual section", err)
	}
	s.publish(ctx, "manual_section", row.ID, events.ActionUpdated)
	return SectionFromDataModel(row), nil
}

func (s *Service) MarkReviewed(ctx context.Context, id, reviewerID int64) (*Section, error) {
	row, err := s.repo.GetSection(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load manual section", err)
	}
	if row == nil {
		return nil, internal.ErrSectionNotFound
	}
	now := s.now().UTC()
	row.ReviewedAt = &now
	row.ReviewedBy = &reviewerID
	if err := s.repo.UpdateSection(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to mark manual section reviewed", err)
	}
	s.logger.Info("manual section reviewed", "section_id", id, "reviewer_id", reviewerID)
	s.publish(ctx, "manual_section", id, events.ActionUpdated)
	return SectionFromDataModel(row), nil
}

func (s *Service) DeleteSection(ctx context.Context, id int64) error {
	if _, err := s.GetSection(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteSection(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete manual section", err)
	}
	s.publish(ctx, "manual_section", id, events.ActionDeleted)
	return nil
}

// Tasks merges stored handbook tasks over the embedded defaults. Stored tasks
// without a default are listed too.
func (s *Service) Tasks(ctx context.Context) (*TasksResponse, error) {
	rows, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list handbook tasks", err)
	}
	stored := make(map[string]*successionDatamodel.HandbookTask, len(rows))
	for _, r := range rows {
		stored[r.Code] = r
	}

	tasks := make([]Task, 0, len(s.defaults)+len(rows))
	seen := make(map[string]bool, len(s.defaults))
	for _, d := range s.defaults {
		t, _, err := s.resolveTask(ctx, stored, d.Code)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
		seen[d.Code] = true
	}
	for _, r := range rows {
		if !seen[r.Code] {
			tasks = append(tasks, TaskFromDataModel(r))
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Position < tasks[j].Position })

	completed := 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	return &TasksResponse{Tasks: tasks, Completed: completed, Total: len(tasks)}, nil
}

func (s *Service) Task(ctx context.Context, code string) (Task, error) {
	t, source, err := s.resolveTask(ctx, nil, code)
	if err != nil {
		return Task{}, err
	}
	if source == resolve.SourceNone {
		return Task{}, internal.ErrTaskNotFound
	}
	return t, nil
}

// resolveTask prefers the stored row over the default. A nil stored map
// falls back to a repository lookup.
func (s *Service) resolveTask(ctx context.Context, stored map[string]*successionDatamodel.HandbookTask, code string) (Task, resolve.Source, error) {
	t, source, err := resolve.First(ctx,
		resolve.From(resolve.SourceDatabase, func(ctx context.Context) (Task, bool, error) {
			if stored != nil {
				r, ok := stored[code]
				if !ok {
					return Task{}, false, nil
				}
				return TaskFromDataModel(r), true, nil
			}
			r, err := s.repo.GetTask(ctx, code)
			if err != nil || r == nil {
				return Task{}, false, err
			}
			return TaskFromDataModel(r), true, nil
		}),
		resolve.From(resolve.SourceDefault, func(context.Context) (Task, bool, error) {
			for _, d := range s.defaults {
				if d.Code == code {
					return d, true, nil
				}
			}
			return Task{}, false, nil
		}),
	)
	if err != nil {
		return Task{}, source, internal.NewInternalError("failed to load handbook task", err)
	}
	return t, source, nil
}

// UpdateTask stores an override for a task, starting from its current content.
func (s *Service) UpdateTask(ctx context.Context, code string, dto UpdateTaskDTO) (Task, error) {
	if err := validation.Struct(dto); err != nil {
		return Task{}, err
	}
	current, err := s.Task(ctx, code)
	if err != nil {
		return Task{}, err
	}

	if dto.Title != nil {
		current.Title = strings.TrimSpace(*dto.Title)
	}
	if dto.Description != nil {
		current.Description = *dto.Description
	}
	if dto.Position != nil {
		current.Position = *dto.Position
	}
	if dto.Completed != nil {
		current.Completed = *dto.Completed
	}

	row := current.ToDataModel()
	if err := s.repo.SaveTask(ctx, row); err != nil {
		return Task{}, internal.NewInternalError("failed to save handbook task", err)
	}
	s.publish(ctx, "handbook_task", row.ID, events.ActionUpdated)
	return TaskFromDataModel(row), nil
}

// ResetTask drops the stored override so the default applies again.
func (s *Service) ResetTask(ctx context.Context, code string) (Task, error) {
	n, err := s.repo.DeleteTask(ctx, code)
	if err != nil {
		return Task{}, internal.NewInternalError("failed to reset handbook task", err)
	}
	if n > 0 {
		s.publish(ctx, "handbook_task", 0, events.ActionDeleted)
	}
	return s.Task(ctx, code)
}

func (s *Service) publish(ctx context.Context, entity string, id int64, action string) {
	evt := events.NewChangeEvent(events.EventTypeManualChanged, entity, id, action)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish manual event", "entity", entity, "id", id, "error", err)
	}
}
