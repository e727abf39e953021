package feedback

import "time"

type ConsentType struct {
	ID          int64     `gorm:"primaryKey"`
	Code        string    `gorm:"column:code;uniqueIndex;not null"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	Required    bool      `gorm:"column:required;not null"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ConsentType) TableName() string { return "consent_types" }

type ConsentRecord struct {
	ID              int64      `gorm:"primaryKey"`
	EmployeeID      int64      `gorm:"column:employee_id;not null;uniqueIndex:idx_consent_record_key"`
	ConsentTypeCode string     `gorm:"column:consent_type_code;not null;uniqueIndex:idx_consent_record_key"`
	Cycle           string     `gorm:"column:cycle;not null;uniqueIndex:idx_consent_record_key"`
	Granted         bool       `gorm:"column:granted;not null"`
	GrantedAt       *time.Time `gorm:"column:granted_at"`
	WithdrawnAt     *time.Time `gorm:"column:withdrawn_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (ConsentRecord) TableName() string { return "consent_records" }

type FeedbackPolicy struct {
	ID            int64     `gorm:"primaryKey"`
	Code          string    `gorm:"column:code;not null;uniqueIndex:idx_policy_version"`
	Version       int       `gorm:"column:version;not null;uniqueIndex:idx_policy_version"`
	Title         string    `gorm:"column:title;not null"`
	Body          string    `gorm:"column:body;not null"`
	IsActive      bool      `gorm:"column:is_active;not null"`
	EffectiveFrom time.Time `gorm:"column:effective_from;not null"`
	CreatedBy     int64     `gorm:"column:created_by"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (FeedbackPolicy) TableName() string { return "feedback_policies" }
