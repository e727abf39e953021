package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeEmployeeChanged      = "employee.changed"
	EventTypeWorkPermitChanged    = "work_permit.changed"
	EventTypeLeaveBalanceChanged  = "leave_balance.changed"
	EventTypeFeatureChanged       = "feature.changed"
	EventTypePermissionsSaved     = "permissions.saved"
	EventTypeManualChanged        = "manual.changed"
	EventTypeConsentChanged       = "consent.changed"
	EventTypePolicyChanged        = "policy.changed"
	EventTypeNotificationCreated  = "notification.created"
	EventTypeNotificationRead     = "notification.read"
	EventTypeAccessRequestChanged = "access_request.changed"
	EventTypeRegistryReloaded     = "registry.reloaded"
)

// Change actions carried in the "action" payload field.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionApproved = "approved"
	ActionDenied   = "denied"
)

// ChangeEvent announces that an entity changed. Consumers refetch rather than merge.
type ChangeEvent struct {
	BaseEvent
	Entity   string `json:"entity"`
	EntityID int64  `json:"entity_id"`
	Action   string `json:"action"`
	// UserID scopes the event to a single recipient; zero means broadcast.
	UserID int64 `json:"user_id,omitempty"`
}

func NewChangeEvent(eventType, entity string, entityID int64, action string) *ChangeEvent {
	return &ChangeEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"entity":    entity,
				"entity_id": entityID,
				"action":    action,
			},
		},
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
	}
}

// ForUser scopes the event to one recipient.
func (e *ChangeEvent) ForUser(userID int64) *ChangeEvent {
	e.UserID = userID
	e.Data["user_id"] = userID
	return e
}

// RecipientOf returns the user an event is addressed to, or zero for broadcasts.
func RecipientOf(event Event) int64 {
	if ce, ok := event.(*ChangeEvent); ok {
		return ce.UserID
	}
	return 0
}
