package notification

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/core/common/validation"
	notificationDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/notification"
	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/internal/registry"
)

type RepositoryAPI interface {
	List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*notificationDatamodel.Notification, error)
	Get(ctx context.Context, id int64) (*notificationDatamodel.Notification, error)
	Create(ctx context.Context, n *notificationDatamodel.Notification) error
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, id int64, at time.Time) error
	MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error)

	ListRequests(ctx context.Context, status string, requesterID int64) ([]*notificationDatamodel.AccessRequest, error)
	GetRequest(ctx context.Context, id int64) (*notificationDatamodel.AccessRequest, error)
	CreateRequest(ctx context.Context, r *notificationDatamodel.AccessRequest) error
	UpdateRequest(ctx context.Context, r *notificationDatamodel.AccessRequest) error
	CountPending(ctx context.Context) (int64, error)
}

type Service struct {
	repo      RepositoryAPI
	registry  *registry.Holder
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, holder *registry.Holder, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		registry:  holder,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) (*NotificationsResponse, error) {
	rows, err := s.repo.List(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list notifications", err)
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to count notifications", err)
	}
	out := make([]*Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromDataModel(r))
	}
	return &NotificationsResponse{Notifications: out, Unread: unread}, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, internal.NewInternalError("failed to count notifications", err)
	}
	return n, nil
}

// Notify stores a notification for userID and signals that user's clients.
func (s *Service) Notify(ctx context.Context, userID int64, category, title, body, link string) (*Notification, error) {
	v := validation.NewValidator()
	v.Field("user_id", userID).Required()
	v.Field("title", title).Required().MaxLength(200)
	if err := v.Validate(); err != nil {
		return nil, err
	}

	n := &Notification{UserID: userID, Category: category, Title: title, Body: body, Link: link}
	row := n.ToDataModel()
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create notification", err)
	}
	s.publish(ctx, events.NewChangeEvent(events.EventTypeNotificationCreated, "notification", row.ID, events.ActionCreated).ForUser(userID))
	return FromDataModel(row), nil
}

// MarkRead marks one of the user's notifications read. Other users'
// notifications are reported as missing.
func (s *Service) MarkRead(ctx context.Context, userID, id int64) error {
	row, err := s.repo.Get(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to load notification", err)
	}
	if row == nil || row.UserID != userID {
		return internal.ErrNotificationNotFound
	}
	if row.ReadAt != nil {
		return nil
	}
	if err := s.repo.MarkRead(ctx, id, s.now().UTC()); err != nil {
		return internal.NewInternalError("failed to mark notification read", err)
	}
	s.publish(ctx, events.NewChangeEvent(events.EventTypeNotificationRead, "notification", id, events.ActionUpdated).ForUser(userID))
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, internal.NewInternalError("failed to mark notifications read", err)
	}
	if n > 0 {
		s.publish(ctx, events.NewChangeEvent(events.EventTypeNotificationRead, "notification", 0, events.ActionUpdated).ForUser(userID))
	}
	return n, nil
}

func (s *Service) CreateAccessRequest(ctx context.Context, requesterID int64, dto CreateAccessRequestDTO) (*AccessRequest, error) {
	dto.FeatureCode = strings.TrimSpace(dto.FeatureCode)
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	entry, ok := s.registry.Get().Lookup(dto.FeatureCode)
	if !ok {
		return nil, internal.NewValidationFieldError("feature_code", "unknown feature "+dto.FeatureCode, internal.ErrCodeInvalidCode)
	}
	if !entry.Supports(dto.Action) {
		return nil, internal.NewValidationFieldError("action", dto.FeatureCode+" does not support "+dto.Action, internal.ErrCodeValidationFailed)
	}

	req := &AccessRequest{
		RequesterID: requesterID,
		FeatureCode: dto.FeatureCode,
		Action:      dto.Action,
		Reason:      dto.Reason,
		Status:      RequestPending,
	}
	row := req.ToDataModel()
	if err := s.repo.CreateRequest(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create access request", err)
	}
	s.logger.Info("access request created", "request_id", row.ID, "feature", row.FeatureCode, "action", row.Action)
	s.publish(ctx, events.NewChangeEvent(events.EventTypeAccessRequestChanged, "access_request", row.ID, events.ActionCreated))
	return AccessRequestFromDataModel(row), nil
}

// ListAccessRequests filters by status when set and by requester when non-zero.
func (s *Service) ListAccessRequests(ctx context.Context, status string, requesterID int64) (*AccessRequestsResponse, error) {
	rows, err := s.repo.ListRequests(ctx, status, requesterID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list access requests", err)
	}
	pending, err := s.repo.CountPending(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to count access requests", err)
	}
	out := make([]*AccessRequest, 0, len(rows))
	for _, r := range rows {
		out = append(out, AccessRequestFromDataModel(r))
	}
	return &AccessRequestsResponse{Requests: out, Pending: pending}, nil
}

func (s *Service) PendingCount(ctx context.Context) (int64, error) {
	n, err := s.repo.CountPending(ctx)
	if err != nil {
		return 0, internal.NewInternalError("failed to count access requests", err)
	}
	return n, nil
}

func (s *Service) Approve(ctx context.Context, id, reviewerID int64, dto DecisionDTO) (*AccessRequest, error) {
	return s.decide(ctx, id, reviewerID, dto, RequestApproved)
}

func (s *Service) Deny(ctx context.Context, id, reviewerID int64, dto DecisionDTO) (*AccessRequest, error) {
	return s.decide(ctx, id, reviewerID, dto, RequestDenied)
}

func (s *Service) decide(ctx context.Context, id, reviewerID int64, dto DecisionDTO, status string) (*AccessRequest, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	row, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load access request", err)
	}
	if row == nil {
		return nil, internal.ErrAccessRequestNotFound
	}
	if row.Status != RequestPending {
		return nil, internal.NewConflictError("access request has already been decided", internal.ErrCodeAccessRequestDecided)
	}

	now := s.now().UTC()
	row.Status = status
	row.ReviewerID = &reviewerID
	row.DecisionNote = dto.Note
	row.ReviewedAt = &now
	if err := s.repo.UpdateRequest(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update access request", err)
	}

	action := events.ActionApproved
	if status == RequestDenied {
		action = events.ActionDenied
	}
	s.logger.Info("access request decided", "request_id", id, "status", status, "reviewer_id", reviewerID)
	s.publish(ctx, events.NewChangeEvent(events.EventTypeAccessRequestChanged, "access_request", id, action))

	title := "Access request " + status
	body := "Your request for " + row.Action + " on " + row.FeatureCode + " was " + status + "."
	if _, err := s.Notify(ctx, row.RequesterID, CategoryAccessRequest, title, body, "/access-requests"); err != nil {
		s.logger.Warn("failed to notify requester", "request_id", id, "error", err)
	}
	return AccessRequestFromDataModel(row), nil
}

func (s *Service) publish(ctx context.Context, evt *events.ChangeEvent) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish notification event", "event_type", evt.EventType(), "error", err)
	}
}
