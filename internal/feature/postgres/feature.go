package postgres

import (
	"context"
	"errors"

	featureDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/feature"
	"github.com/frahmantamala/hr-management/internal/feature"
	"gorm.io/gorm"
)

type FeatureRepository struct {
	db *gorm.DB
}

func NewFeatureRepository(db *gorm.DB) feature.RepositoryAPI {
	return &FeatureRepository{db: db}
}

func (r *FeatureRepository) List(ctx context.Context, activeOnly bool) ([]*featureDatamodel.AppFeature, error) {
	var rows []*featureDatamodel.AppFeature
	q := r.db.WithContext(ctx).Order("module_code ASC, code ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *FeatureRepository) GetByID(ctx context.Context, id int64) (*featureDatamodel.AppFeature, error) {
	var row featureDatamodel.AppFeature
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *FeatureRepository) GetByCode(ctx context.Context, code string) (*featureDatamodel.AppFeature, error) {
	var row featureDatamodel.AppFeature
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *FeatureRepository) Create(ctx context.Context, f *featureDatamodel.AppFeature) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FeatureRepository) CreateBatch(ctx context.Context, fs []*featureDatamodel.AppFeature) error {
	return r.db.WithContext(ctx).CreateInBatches(fs, 100).Error
}

func (r *FeatureRepository) Update(ctx context.Context, f *featureDatamodel.AppFeature) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *FeatureRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&featureDatamodel.AppFeature{}, id).Error
}
