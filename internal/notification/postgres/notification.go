package postgres

import (
	"context"
	"errors"
	"time"

	notificationDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/notification"
	"github.com/frahmantamala/hr-management/internal/notification"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.RepositoryAPI {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*notificationDatamodel.Notification, error) {
	var rows []*notificationDatamodel.Notification
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Order("created_at DESC, id DESC").Find(&rows).Error
	return rows, err
}

func (r *NotificationRepository) Get(ctx context.Context, id int64) (*notificationDatamodel.Notification, error) {
	var row notificationDatamodel.Notification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *NotificationRepository) Create(ctx context.Context, n *notificationDatamodel.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&notificationDatamodel.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&n).Error
	return n, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&notificationDatamodel.Notification{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", at).Error
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&notificationDatamodel.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", at)
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) ListRequests(ctx context.Context, status string, requesterID int64) ([]*notificationDatamodel.AccessRequest, error) {
	var rows []*notificationDatamodel.AccessRequest
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if requesterID != 0 {
		q = q.Where("requester_id = ?", requesterID)
	}
	err := q.Order("created_at DESC, id DESC").Find(&rows).Error
	return rows, err
}

func (r *NotificationRepository) GetRequest(ctx context.Context, id int64) (*notificationDatamodel.AccessRequest, error) {
	var row notificationDatamodel.AccessRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *NotificationRepository) CreateRequest(ctx context.Context, req *notificationDatamodel.AccessRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *NotificationRepository) UpdateRequest(ctx context.Context, req *notificationDatamodel.AccessRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *NotificationRepository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&notificationDatamodel.AccessRequest{}).
		Where("status = ?", notification.RequestPending).
		Count(&n).Error
	return n, err
}
