package postgres

import (
	"context"

	featureDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/feature"
	permissionDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/permission"
	successionDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/succession"
	"github.com/frahmantamala/hr-management/internal/reconcile"
	"gorm.io/gorm"
)

type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) reconcile.SnapshotSource {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Features(ctx context.Context) ([]reconcile.FeatureRecord, error) {
	var rows []featureDatamodel.AppFeature
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]reconcile.FeatureRecord, 0, len(rows))
	for _, f := range rows {
		out = append(out, reconcile.FeatureRecord{
			ID:       f.ID,
			Code:     f.Code,
			Name:     f.Name,
			Route:    f.Route,
			Module:   f.ModuleCode,
			IsActive: f.IsActive,
		})
	}
	return out, nil
}

func (r *SnapshotRepository) Grants(ctx context.Context) ([]reconcile.GrantRecord, error) {
	var rows []permissionDatamodel.ModulePermission
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]reconcile.GrantRecord, 0, len(rows))
	for _, p := range rows {
		out = append(out, reconcile.GrantRecord{
			ID:      p.ID,
			RoleID:  p.RoleID,
			Module:  p.ModuleCode,
			Tab:     p.TabCode,
			Feature: p.FeatureCode,
		})
	}
	return out, nil
}

func (r *SnapshotRepository) Sections(ctx context.Context) ([]reconcile.SectionRecord, error) {
	var rows []successionDatamodel.ManualSection
	if err := r.db.WithContext(ctx).Order("feature_code ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]reconcile.SectionRecord, 0, len(rows))
	for _, s := range rows {
		out = append(out, reconcile.SectionRecord{
			ID:          s.ID,
			FeatureCode: s.FeatureCode,
			Title:       s.Title,
			ReviewedAt:  s.ReviewedAt,
			UpdatedAt:   s.UpdatedAt,
		})
	}
	return out, nil
}
