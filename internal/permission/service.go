package permission

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/core/common/validation"
	permissionDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/permission"
	userDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/internal/registry"
)

type RepositoryAPI interface {
	ListRoles(ctx context.Context) ([]*userDatamodel.Role, error)
	GetRole(ctx context.Context, id int64) (*userDatamodel.Role, error)
	GetRoleByName(ctx context.Context, name string) (*userDatamodel.Role, error)
	CreateRole(ctx context.Context, role *userDatamodel.Role) error
	UpdateRole(ctx context.Context, role *userDatamodel.Role) error
	DeleteRole(ctx context.Context, id int64) error

	AssignRole(ctx context.Context, userID, roleID int64, grantedBy *int64) error
	RevokeRole(ctx context.Context, userID, roleID int64) error
	RolesForUser(ctx context.Context, userID int64) ([]*userDatamodel.Role, error)

	PermissionsForRoles(ctx context.Context, roleIDs []int64) ([]*permissionDatamodel.ModulePermission, error)
	ScopesForRoles(ctx context.Context, roleIDs []int64) ([]*permissionDatamodel.RoleAccessScope, error)
	// ReplaceMatrix deletes every row for the role and inserts the given rows
	// in a single transaction.
	ReplaceMatrix(ctx context.Context, roleID int64, rows []*permissionDatamodel.ModulePermission, scopes []*permissionDatamodel.RoleAccessScope) error
}

type Service struct {
	repo      RepositoryAPI
	registry  *registry.Holder
	publisher events.Publisher
	logger    *slog.Logger
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
	}
}

func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	rows, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list roles", err)
	}
	out := make([]*Role, 0, len(rows))
	for _, r := range rows {
		out = append(out, RoleFromDataModel(r))
	}
	return out, nil
}

func (s *Service) GetRole(ctx context.Context, id int64) (*Role, error) {
	row, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if row == nil {
		return nil, internal.ErrRoleNotFound
	}
	return RoleFromDataModel(row), nil
}

func (s *Service) CreateRole(ctx context.Context, dto RoleDTO) (*Role, error) {
	dto.Name = strings.TrimSpace(dto.Name)
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetRoleByName(ctx, dto.Name)
	if err != nil {
		return nil, internal.NewInternalError("failed to check role name", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError("a role with this name already exists", internal.ErrCodeRoleExists)
	}

	role := &Role{Name: dto.Name, Description: dto.Description}
	row := RoleToDataModel(role)
	if err := s.repo.CreateRole(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create role", err)
	}
	s.logger.Info("role created", "role_id", row.ID, "name", row.Name)
	return RoleFromDataModel(row), nil
}

func (s *Service) UpdateRole(ctx context.Context, id int64, dto RoleDTO) (*Role, error) {
	dto.Name = strings.TrimSpace(dto.Name)
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	row, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if row == nil {
		return nil, internal.ErrRoleNotFound
	}
	if row.IsSystem && row.Name != dto.Name {
		return nil, internal.NewForbiddenError("system roles cannot be renamed", internal.ErrCodeSystemRole)
	}
	if row.Name != dto.Name {
		clash, err := s.repo.GetRoleByName(ctx, dto.Name)
		if err != nil {
			return nil, internal.NewInternalError("failed to check role name", err)
		}
		if clash != nil {
			return nil, internal.NewConflictError("a role with this name already exists", internal.ErrCodeRoleExists)
		}
	}

	row.Name = dto.Name
	row.Description = dto.Description
	if err := s.repo.UpdateRole(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update role", err)
	}
	return RoleFromDataModel(row), nil
}

func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	row, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to load role", err)
	}
	if row == nil {
		return internal.ErrRoleNotFound
	}
	if row.IsSystem {
		return internal.NewForbiddenError("system roles cannot be deleted", internal.ErrCodeSystemRole)
	}
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete role", err)
	}
	s.logger.Info("role deleted", "role_id", id)
	return nil
}

func (s *Service) AssignRole(ctx context.Context, roleID int64, dto AssignRoleDTO, grantedBy int64) error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	if _, err := s.GetRole(ctx, roleID); err != nil {
		return err
	}
	var by *int64
	if grantedBy != 0 {
		by = &grantedBy
	}
	if err := s.repo.AssignRole(ctx, dto.UserID, roleID, by); err != nil {
		return internal.NewInternalError("failed to assign role", err)
	}
	s.publish(ctx, roleID)
	return nil
}

func (s *Service) RevokeRole(ctx context.Context, roleID, userID int64) error {
	if err := s.repo.RevokeRole(ctx, userID, roleID); err != nil {
		return internal.NewInternalError("failed to revoke role", err)
	}
	s.publish(ctx, roleID)
	return nil
}

// Get builds the role's matrix from the registry layout and stored rows.
func (s *Service) Get(ctx context.Context, roleID int64) (*Matrix, error) {
	if _, err := s.GetRole(ctx, roleID); err != nil {
		return nil, err
	}

	rows, err := s.repo.PermissionsForRoles(ctx, []int64{roleID})
	if err != nil {
		return nil, internal.NewInternalError("failed to load permissions", err)
	}
	scopeRows, err := s.repo.ScopesForRoles(ctx, []int64{roleID})
	if err != nil {
		return nil, internal.NewInternalError("failed to load scopes", err)
	}

	cells := make([]Cell, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, CellFromDataModel(r))
	}
	scopes := make([]Scope, 0, len(scopeRows))
	for _, r := range scopeRows {
		scopes = append(scopes, ScopeFromDataModel(r))
	}
	return NewMatrix(s.registry.Get(), roleID, cells, scopes), nil
}

// Save replaces the role's stored matrix and scopes. Concurrent saves are
// last-write-wins.
func (s *Service) Save(ctx context.Context, roleID int64, dto SaveMatrixDTO) (*Matrix, error) {
	if _, err := s.GetRole(ctx, roleID); err != nil {
		return nil, err
	}
	if err := s.validateCells(dto.Cells); err != nil {
		return nil, err
	}
	for _, sc := range dto.Scopes {
		if err := sc.Validate(); err != nil {
			return nil, err
		}
	}

	var rows []*permissionDatamodel.ModulePermission
	for _, c := range mergeCells(dto.Cells) {
		if c.Empty() {
			continue
		}
		rows = append(rows, CellToDataModel(roleID, c))
	}
	seen := map[Scope]bool{}
	var scopeRows []*permissionDatamodel.RoleAccessScope
	for _, sc := range dto.Scopes {
		sc.Value = strings.TrimSpace(sc.Value)
		if seen[sc] {
			continue
		}
		seen[sc] = true
		scopeRows = append(scopeRows, ScopeToDataModel(roleID, sc))
	}

	if err := s.repo.ReplaceMatrix(ctx, roleID, rows, scopeRows); err != nil {
		return nil, internal.NewInternalError("failed to save permissions", err)
	}
	s.logger.Info("permission matrix saved", "role_id", roleID, "rows", len(rows), "scopes", len(scopeRows))
	s.publish(ctx, roleID)

	return s.Get(ctx, roleID)
}

func (s *Service) validateCells(cells []Cell) *internal.AppError {
	reg := s.registry.Get()
	for _, c := range cells {
		if c.Module == "" {
			return internal.NewValidationFieldError("cells.module", "module is required", internal.ErrCodeInvalidCode)
		}
		mod, ok := reg.Module(c.Module)
		if !ok {
			return internal.NewValidationFieldError("cells.module", "unknown module "+c.Module, internal.ErrCodeInvalidCode)
		}
		if c.Feature != "" {
			entry, ok := reg.Lookup(c.Feature)
			if !ok || entry.Module != c.Module || entry.Tab != c.Tab {
				return internal.NewValidationFieldError("cells.feature", "unknown feature "+c.Feature, internal.ErrCodeInvalidCode)
			}
			continue
		}
		if c.Tab != "" && !hasTab(mod, c.Tab) {
			return internal.NewValidationFieldError("cells.tab", "unknown tab "+c.Tab, internal.ErrCodeInvalidCode)
		}
	}
	return nil
}

func hasTab(m registry.Module, code string) bool {
	for _, t := range m.Tabs {
		if t.Code == code {
			return true
		}
	}
	return false
}

// mergeCells folds cells that share a module, tab and feature into one,
// granting the union of their flags. First appearance fixes the order.
func mergeCells(cells []Cell) []Cell {
	index := make(map[string]int, len(cells))
	out := make([]Cell, 0, len(cells))
	for _, c := range cells {
		i, ok := index[c.key()]
		if !ok {
			index[c.key()] = len(out)
			out = append(out, c)
			continue
		}
		m := &out[i]
		m.View = m.View || c.View
		m.Create = m.Create || c.Create
		m.Edit = m.Edit || c.Edit
		m.Delete = m.Delete || c.Delete
	}
	return out
}

// Preview applies a bulk operation or toggle to a matrix without persisting it.
func (s *Service) Preview(ctx context.Context, roleID int64, dto PreviewDTO) (*PreviewResponse, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	var m *Matrix
	if len(dto.Cells) == 0 {
		current, err := s.Get(ctx, roleID)
		if err != nil {
			return nil, err
		}
		m = current
	} else {
		if err := s.validateCells(dto.Cells); err != nil {
			return nil, err
		}
		m = NewMatrix(s.registry.Get(), roleID, dto.Cells, nil)
	}

	resp := &PreviewResponse{Matrix: m}
	switch dto.Operation {
	case OpGrantAll:
		m.GrantAll()
	case OpRevokeAll:
		m.RevokeAll()
	case OpViewOnly:
		m.ViewOnly()
	case OpToggle:
		if !dto.Action.Valid() {
			return nil, internal.NewValidationFieldError("action", "action must be one of view, create, edit, delete", internal.ErrCodeValidationFailed)
		}
		state := m.Toggle(dto.Selector, dto.Action)
		resp.State = &state
	}
	return resp, nil
}

// Columns reports the per-module tri-state of every action.
func Columns(m *Matrix) []ColumnState {
	var out []ColumnState
	seen := map[string]bool{}
	for _, c := range m.Cells {
		if seen[c.Module] {
			continue
		}
		seen[c.Module] = true
		for _, a := range Actions {
			out = append(out, ColumnState{Module: c.Module, Action: a, State: m.State(Selector{Module: c.Module}, a)})
		}
	}
	return out
}

// PermissionsForUser returns the user's role names and flattened permission keys.
func (s *Service) PermissionsForUser(ctx context.Context, userID int64) ([]string, []string, error) {
	roles, err := s.repo.RolesForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(roles) == 0 {
		return []string{}, []string{}, nil
	}

	names := make([]string, 0, len(roles))
	ids := make([]int64, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
		ids = append(ids, r.ID)
	}

	rows, err := s.repo.PermissionsForRoles(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	cells := make([]Cell, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, CellFromDataModel(r))
	}
	return names, Keys(cells), nil
}

// ScopesForUser returns the organizational reach granted by the user's roles.
func (s *Service) ScopesForUser(ctx context.Context, userID int64) (AccessScope, error) {
	roles, err := s.repo.RolesForUser(ctx, userID)
	if err != nil {
		return AccessScope{}, internal.NewInternalError("failed to load roles", err)
	}
	ids := make([]int64, 0, len(roles))
	for _, r := range roles {
		if r.Name == auth.AdminRole {
			return Unrestricted(), nil
		}
		ids = append(ids, r.ID)
	}
	if len(ids) == 0 {
		return MergeScopes(nil, nil), nil
	}

	rows, err := s.repo.ScopesForRoles(ctx, ids)
	if err != nil {
		return AccessScope{}, internal.NewInternalError("failed to load scopes", err)
	}
	perRole := map[int64][]Scope{}
	for _, r := range rows {
		perRole[r.RoleID] = append(perRole[r.RoleID], ScopeFromDataModel(r))
	}
	return MergeScopes(perRole, ids), nil
}

func (s *Service) publish(ctx context.Context, roleID int64) {
	evt := events.NewChangeEvent(events.EventTypePermissionsSaved, "role", roleID, events.ActionUpdated)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish permission event", "role_id", roleID, "error", err)
	}
}
