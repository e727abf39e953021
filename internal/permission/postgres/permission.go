package postgres

import (
	"context"
	"errors"

	permissionDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/permission"
	userDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-management/internal/permission"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) permission.RepositoryAPI {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) ListRoles(ctx context.Context) ([]*userDatamodel.Role, error) {
	var roles []*userDatamodel.Role
	err := r.db.WithContext(ctx).Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *PermissionRepository) GetRole(ctx context.Context, id int64) (*userDatamodel.Role, error) {
	var role userDatamodel.Role
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *PermissionRepository) GetRoleByName(ctx context.Context, name string) (*userDatamodel.Role, error) {
	var role userDatamodel.Role
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *PermissionRepository) CreateRole(ctx context.Context, role *userDatamodel.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *PermissionRepository) UpdateRole(ctx context.Context, role *userDatamodel.Role) error {
	return r.db.WithContext(ctx).Save(role).Error
}

// DeleteRole removes the role together with its grants, scopes and assignments.
func (r *PermissionRepository) DeleteRole(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&permissionDatamodel.ModulePermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&permissionDatamodel.RoleAccessScope{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&userDatamodel.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(&userDatamodel.Role{}, id).Error
	})
}

func (r *PermissionRepository) AssignRole(ctx context.Context, userID, roleID int64, grantedBy *int64) error {
	row := &userDatamodel.UserRole{UserID: userID, RoleID: roleID, GrantedBy: grantedBy}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error
}

func (r *PermissionRepository) RevokeRole(ctx context.Context, userID, roleID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&userDatamodel.UserRole{}).Error
}

func (r *PermissionRepository) RolesForUser(ctx context.Context, userID int64) ([]*userDatamodel.Role, error) {
	var roles []*userDatamodel.Role
	err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name ASC").
		Find(&roles).Error
	return roles, err
}

func (r *PermissionRepository) PermissionsForRoles(ctx context.Context, roleIDs []int64) ([]*permissionDatamodel.ModulePermission, error) {
	var rows []*permissionDatamodel.ModulePermission
	if len(roleIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Where("role_id IN ?", roleIDs).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *PermissionRepository) ScopesForRoles(ctx context.Context, roleIDs []int64) ([]*permissionDatamodel.RoleAccessScope, error) {
	var rows []*permissionDatamodel.RoleAccessScope
	if len(roleIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Where("role_id IN ?", roleIDs).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// AllPermissions returns every stored grant row; reconciliation uses it to find
// rows pointing at features that no longer exist.
func (r *PermissionRepository) AllPermissions(ctx context.Context) ([]*permissionDatamodel.ModulePermission, error) {
	var rows []*permissionDatamodel.ModulePermission
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *PermissionRepository) ReplaceMatrix(ctx context.Context, roleID int64, rows []*permissionDatamodel.ModulePermission, scopes []*permissionDatamodel.RoleAccessScope) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&permissionDatamodel.ModulePermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", roleID).Delete(&permissionDatamodel.RoleAccessScope{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		if len(scopes) > 0 {
			if err := tx.Create(&scopes).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
