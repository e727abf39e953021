package postgres

import (
	"context"
	"errors"

	feedbackDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/feedback"
	"github.com/frahmantamala/hr-management/internal/feedback"
	"gorm.io/gorm"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) feedback.RepositoryAPI {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) ListConsentTypes(ctx context.Context, activeOnly bool) ([]*feedbackDatamodel.ConsentType, error) {
	var rows []*feedbackDatamodel.ConsentType
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("code ASC").Find(&rows).Error
	return rows, err
}

func (r *FeedbackRepository) GetConsentType(ctx context.Context, code string) (*feedbackDatamodel.ConsentType, error) {
	var t feedbackDatamodel.ConsentType
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *FeedbackRepository) CreateConsentType(ctx context.Context, t *feedbackDatamodel.ConsentType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *FeedbackRepository) UpdateConsentType(ctx context.Context, t *feedbackDatamodel.ConsentType) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *FeedbackRepository) DeleteConsentType(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Where("code = ?", code).Delete(&feedbackDatamodel.ConsentType{}).Error
}

func (r *FeedbackRepository) ListRecords(ctx context.Context, filter feedback.RecordFilter) ([]*feedbackDatamodel.ConsentRecord, error) {
	var rows []*feedbackDatamodel.ConsentRecord
	q := r.db.WithContext(ctx)
	if filter.EmployeeID != 0 {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.ConsentTypeCode != "" {
		q = q.Where("consent_type_code = ?", filter.ConsentTypeCode)
	}
	if filter.Cycle != "" {
		q = q.Where("cycle = ?", filter.Cycle)
	}
	err := q.Order("cycle DESC, employee_id ASC, consent_type_code ASC").Find(&rows).Error
	return rows, err
}

func (r *FeedbackRepository) GetRecord(ctx context.Context, employeeID int64, typeCode, cycle string) (*feedbackDatamodel.ConsentRecord, error) {
	var rec feedbackDatamodel.ConsentRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND consent_type_code = ? AND cycle = ?", employeeID, typeCode, cycle).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *FeedbackRepository) SaveRecord(ctx context.Context, rec *feedbackDatamodel.ConsentRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *FeedbackRepository) ListPolicies(ctx context.Context, code string) ([]*feedbackDatamodel.FeedbackPolicy, error) {
	var rows []*feedbackDatamodel.FeedbackPolicy
	q := r.db.WithContext(ctx)
	if code != "" {
		q = q.Where("code = ?", code)
	}
	err := q.Order("code ASC, version DESC").Find(&rows).Error
	return rows, err
}

func (r *FeedbackRepository) GetPolicy(ctx context.Context, id int64) (*feedbackDatamodel.FeedbackPolicy, error) {
	var p feedbackDatamodel.FeedbackPolicy
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *FeedbackRepository) LatestPolicyVersion(ctx context.Context, code string) (int, error) {
	var latest int
	err := r.db.WithContext(ctx).Model(&feedbackDatamodel.FeedbackPolicy{}).
		Where("code = ?", code).
		Select("COALESCE(MAX(version), 0)").
		Scan(&latest).Error
	return latest, err
}

func (r *FeedbackRepository) CreatePolicy(ctx context.Context, p *feedbackDatamodel.FeedbackPolicy) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *FeedbackRepository) ActivatePolicy(ctx context.Context, id int64, code string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&feedbackDatamodel.FeedbackPolicy{}).
			Where("code = ? AND id <> ?", code, id).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&feedbackDatamodel.FeedbackPolicy{}).
			Where("id = ?", id).
			Update("is_active", true).Error
	})
}
