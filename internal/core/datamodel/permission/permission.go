package permission

import "time"

type Module struct {
	ID        int64     `gorm:"primaryKey"`
	Code      string    `gorm:"column:code;uniqueIndex;not null"`
	Name      string    `gorm:"column:name;not null"`
	SortOrder int       `gorm:"column:sort_order;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Module) TableName() string { return "modules" }

// ModulePermission holds one role's CRUD flags for a module, a tab, or a feature.
// TabCode and FeatureCode are empty for coarser scopes.
type ModulePermission struct {
	ID          int64     `gorm:"primaryKey"`
	RoleID      int64     `gorm:"column:role_id;not null;index;uniqueIndex:idx_module_permissions_cell"`
	ModuleCode  string    `gorm:"column:module_code;not null;uniqueIndex:idx_module_permissions_cell"`
	TabCode     string    `gorm:"column:tab_code;not null;uniqueIndex:idx_module_permissions_cell"`
	FeatureCode string    `gorm:"column:feature_code;not null;uniqueIndex:idx_module_permissions_cell"`
	CanView     bool      `gorm:"column:can_view;not null"`
	CanCreate   bool      `gorm:"column:can_create;not null"`
	CanEdit     bool      `gorm:"column:can_edit;not null"`
	CanDelete   bool      `gorm:"column:can_delete;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ModulePermission) TableName() string { return "module_permissions" }

type RoleAccessScope struct {
	ID         int64     `gorm:"primaryKey"`
	RoleID     int64     `gorm:"column:role_id;not null;index;uniqueIndex:idx_role_access_scopes_value"`
	ScopeType  string    `gorm:"column:scope_type;not null;uniqueIndex:idx_role_access_scopes_value"`
	ScopeValue string    `gorm:"column:scope_value;not null;uniqueIndex:idx_role_access_scopes_value"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (RoleAccessScope) TableName() string { return "role_access_scopes" }
