package postgres

import (
	"context"
	"errors"

	successionDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/succession"
	"github.com/frahmantamala/hr-management/internal/succession"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SuccessionRepository struct {
	db *gorm.DB
}

func NewSuccessionRepository(db *gorm.DB) succession.RepositoryAPI {
	return &SuccessionRepository{db: db}
}

func (r *SuccessionRepository) ListSections(ctx context.Context, filter succession.SectionFilter) ([]*successionDatamodel.ManualSection, error) {
	var rows []*successionDatamodel.ManualSection
	q := r.db.WithContext(ctx)
	if filter.FeatureCode != "" {
		q = q.Where("feature_code = ?", filter.FeatureCode)
	}
	if filter.ModuleCode != "" {
		q = q.Where("module_code = ?", filter.ModuleCode)
	}
	err := q.Order("module_code ASC, feature_code ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (r *SuccessionRepository) GetSection(ctx context.Context, id int64) (*successionDatamodel.ManualSection, error) {
	var s successionDatamodel.ManualSection
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SuccessionRepository) CreateSection(ctx context.Context, s *successionDatamodel.ManualSection) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SuccessionRepository) UpdateSection(ctx context.Context, s *successionDatamodel.ManualSection) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *SuccessionRepository) DeleteSection(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&successionDatamodel.ManualSection{}, id).Error
}

func (r *SuccessionRepository) ListTasks(ctx context.Context) ([]*successionDatamodel.HandbookTask, error) {
	var rows []*successionDatamodel.HandbookTask
	err := r.db.WithContext(ctx).Order("position ASC, code ASC").Find(&rows).Error
	return rows, err
}

func (r *SuccessionRepository) GetTask(ctx context.Context, code string) (*successionDatamodel.HandbookTask, error) {
	var t successionDatamodel.HandbookTask
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// SaveTask upserts by code.
func (r *SuccessionRepository) SaveTask(ctx context.Context, t *successionDatamodel.HandbookTask) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "position", "completed", "updated_at"}),
	}).Create(t).Error
	if err != nil {
		return err
	}
	if t.ID == 0 {
		stored, err := r.GetTask(ctx, t.Code)
		if err != nil {
			return err
		}
		if stored != nil {
			*t = *stored
		}
	}
	return nil
}

func (r *SuccessionRepository) DeleteTask(ctx context.Context, code string) (int64, error) {
	res := r.db.WithContext(ctx).Where("code = ?", code).Delete(&successionDatamodel.HandbookTask{})
	return res.RowsAffected, res.Error
}
