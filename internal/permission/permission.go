package permission

import (
	"time"

	permissionDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/permission"
	userDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/user"
)

type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func RoleToDataModel(r *Role) *userDatamodel.Role {
	return &userDatamodel.Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsSystem:    r.IsSystem,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func RoleFromDataModel(r *userDatamodel.Role) *Role {
	return &Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsSystem:    r.IsSystem,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func CellToDataModel(roleID int64, c Cell) *permissionDatamodel.ModulePermission {
	return &permissionDatamodel.ModulePermission{
		RoleID:      roleID,
		ModuleCode:  c.Module,
		TabCode:     c.Tab,
		FeatureCode: c.Feature,
		CanView:     c.View,
		CanCreate:   c.Create,
		CanEdit:     c.Edit,
		CanDelete:   c.Delete,
	}
}

func CellFromDataModel(m *permissionDatamodel.ModulePermission) Cell {
	return Cell{
		Module:  m.ModuleCode,
		Tab:     m.TabCode,
		Feature: m.FeatureCode,
		View:    m.CanView,
		Create:  m.CanCreate,
		Edit:    m.CanEdit,
		Delete:  m.CanDelete,
	}
}

func ScopeToDataModel(roleID int64, s Scope) *permissionDatamodel.RoleAccessScope {
	return &permissionDatamodel.RoleAccessScope{
		RoleID:     roleID,
		ScopeType:  string(s.Type),
		ScopeValue: s.Value,
	}
}

func ScopeFromDataModel(m *permissionDatamodel.RoleAccessScope) Scope {
	return Scope{Type: ScopeType(m.ScopeType), Value: m.ScopeValue}
}
