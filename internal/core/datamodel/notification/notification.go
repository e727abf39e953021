package notification

import "time"

type Notification struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    int64      `gorm:"column:user_id;not null;index"`
	Category  string     `gorm:"column:category;not null"`
	Title     string     `gorm:"column:title;not null"`
	Body      string     `gorm:"column:body"`
	Link      string     `gorm:"column:link"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Notification) TableName() string { return "notifications" }

type AccessRequest struct {
	ID           int64      `gorm:"primaryKey"`
	RequesterID  int64      `gorm:"column:requester_id;not null;index"`
	FeatureCode  string     `gorm:"column:feature_code;not null"`
	Action       string     `gorm:"column:action;not null"`
	Reason       string     `gorm:"column:reason"`
	Status       string     `gorm:"column:status;not null;index"`
	ReviewerID   *int64     `gorm:"column:reviewer_id"`
	DecisionNote string     `gorm:"column:decision_note"`
	ReviewedAt   *time.Time `gorm:"column:reviewed_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (AccessRequest) TableName() string { return "access_requests" }
