package postgres

import (
	"context"
	"errors"
	"time"

	workpermitDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/workpermit"
	"github.com/frahmantamala/hr-management/internal/workpermit"
	"gorm.io/gorm"
)

type WorkPermitRepository struct {
	db *gorm.DB
}

func NewWorkPermitRepository(db *gorm.DB) workpermit.RepositoryAPI {
	return &WorkPermitRepository{db: db}
}

func (r *WorkPermitRepository) List(ctx context.Context, employeeID int64, limit, offset int) ([]*workpermitDatamodel.WorkPermit, int64, error) {
	q := r.db.WithContext(ctx).Model(&workpermitDatamodel.WorkPermit{})
	if employeeID != 0 {
		q = q.Where("employee_id = ?", employeeID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*workpermitDatamodel.WorkPermit
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Order("expiry_date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *WorkPermitRepository) ExpiringBefore(ctx context.Context, cutoff time.Time) ([]*workpermitDatamodel.WorkPermit, error) {
	var rows []*workpermitDatamodel.WorkPermit
	err := r.db.WithContext(ctx).
		Where("expiry_date <= ?", cutoff).
		Order("expiry_date ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *WorkPermitRepository) GetByID(ctx context.Context, id int64) (*workpermitDatamodel.WorkPermit, error) {
	var p workpermitDatamodel.WorkPermit
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *WorkPermitRepository) Create(ctx context.Context, p *workpermitDatamodel.WorkPermit) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *WorkPermitRepository) Update(ctx context.Context, p *workpermitDatamodel.WorkPermit) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *WorkPermitRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&workpermitDatamodel.WorkPermit{}, id).Error
}
