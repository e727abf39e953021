package succession

import "time"

type ManualSection struct {
	ID          int64      `gorm:"primaryKey"`
	FeatureCode string     `gorm:"column:feature_code;not null;index"`
	ModuleCode  string     `gorm:"column:module_code;not null;index"`
	Title       string     `gorm:"column:title;not null"`
	Body        string     `gorm:"column:body;not null"`
	Version     int        `gorm:"column:version;not null"`
	ReviewedAt  *time.Time `gorm:"column:reviewed_at"`
	ReviewedBy  *int64     `gorm:"column:reviewed_by"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (ManualSection) TableName() string { return "manual_sections" }

type HandbookTask struct {
	ID          int64     `gorm:"primaryKey"`
	Code        string    `gorm:"column:code;uniqueIndex;not null"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description"`
	Position    int       `gorm:"column:position;not null"`
	Completed   bool      `gorm:"column:completed;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (HandbookTask) TableName() string { return "handbook_tasks" }
