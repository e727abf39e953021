package feature

import "time"

// AppFeature is a database-registered page or feature. Rows override the
// embedded registry when resolving routes.
type AppFeature struct {
	ID          int64     `gorm:"primaryKey"`
	Code        string    `gorm:"column:code;uniqueIndex;not null"`
	Name        string    `gorm:"column:name;not null"`
	Route       string    `gorm:"column:route"`
	ModuleCode  string    `gorm:"column:module_code;index"`
	TabCode     string    `gorm:"column:tab_code"`
	Description string    `gorm:"column:description"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (AppFeature) TableName() string { return "app_features" }
