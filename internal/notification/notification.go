package notification

import (
	"time"

	notificationDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/notification"
)

const (
	CategoryWorkPermit    = "work_permit"
	CategoryAccessRequest = "access_request"
	CategorySystem        = "system"
)

type Notification struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Category  string     `json:"category"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	Link      string     `json:"link,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (n *Notification) Read() bool {
	return n.ReadAt != nil
}

func (n *Notification) ToDataModel() *notificationDatamodel.Notification {
	return &notificationDatamodel.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Category:  n.Category,
		Title:     n.Title,
		Body:      n.Body,
		Link:      n.Link,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func FromDataModel(m *notificationDatamodel.Notification) *Notification {
	return &Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		Category:  m.Category,
		Title:     m.Title,
		Body:      m.Body,
		Link:      m.Link,
		ReadAt:    m.ReadAt,
		CreatedAt: m.CreatedAt,
	}
}

const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestDenied   = "denied"
)

// AccessRequest asks an administrator for an action on a feature the requester
// cannot reach yet.
type AccessRequest struct {
	ID           int64      `json:"id"`
	RequesterID  int64      `json:"requester_id"`
	FeatureCode  string     `json:"feature_code"`
	Action       string     `json:"action"`
	Reason       string     `json:"reason,omitempty"`
	Status       string     `json:"status"`
	ReviewerID   *int64     `json:"reviewer_id,omitempty"`
	DecisionNote string     `json:"decision_note,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (a *AccessRequest) ToDataModel() *notificationDatamodel.AccessRequest {
	return &notificationDatamodel.AccessRequest{
		ID:           a.ID,
		RequesterID:  a.RequesterID,
		FeatureCode:  a.FeatureCode,
		Action:       a.Action,
		Reason:       a.Reason,
		Status:       a.Status,
		ReviewerID:   a.ReviewerID,
		DecisionNote: a.DecisionNote,
		ReviewedAt:   a.ReviewedAt,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func AccessRequestFromDataModel(m *notificationDatamodel.AccessRequest) *AccessRequest {
	return &AccessRequest{
		ID:           m.ID,
		RequesterID:  m.RequesterID,
		FeatureCode:  m.FeatureCode,
		Action:       m.Action,
		Reason:       m.Reason,
		Status:       m.Status,
		ReviewerID:   m.ReviewerID,
		DecisionNote: m.DecisionNote,
		ReviewedAt:   m.ReviewedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
