package postgres

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	employeeDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/hr-management/internal/employee"
	"github.com/frahmantamala/hr-management/internal/permission"
	"github.com/frahmantamala/hr-management/internal/transport"
	"github.com/jmoiron/sqlx"
)

var employeeColumns = []string{
	"id", "user_id", "employee_number", "first_name", "last_name", "email", "job_title",
	"company", "division", "department", "section", "pay_group", "position_type",
	"status", "hire_date", "manager_id", "terminated_at", "created_at", "updated_at",
}

// scopeColumns maps scope types onto employee columns. Tag scopes have no
// column on employees and do not narrow the directory.
var scopeColumns = map[permission.ScopeType]string{
	permission.ScopeCompany:      "company",
	permission.ScopeDivision:     "division",
	permission.ScopeDepartment:   "department",
	permission.ScopeSection:      "section",
	permission.ScopePayGroup:     "pay_group",
	permission.ScopePositionType: "position_type",
}

// DirectorySearch runs the directory query over sqlx so the same code serves
// postgres and sqlite; placeholders are rebound per driver.
type DirectorySearch struct {
	db *sqlx.DB
}

func NewDirectorySearch(db *sqlx.DB) employee.SearchAPI {
	return &DirectorySearch{db: db}
}

func (s *DirectorySearch) Search(ctx context.Context, filter employee.SearchFilter, scope permission.AccessScope) ([]*employeeDatamodel.Employee, int, error) {
	stmt := applyEmployeeFilter(sq.Select("count(*)").From("employees"), filter, scope)

	sqlQuery, args, err := stmt.ToSql()
	if err != nil {
		return nil, 0, err
	}

	var count int
	if err := s.db.GetContext(ctx, &count, s.db.Rebind(sqlQuery), args...); err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return []*employeeDatamodel.Employee{}, 0, nil
	}

	limit, offset := filter.Limit, filter.Offset
	if limit <= 0 || limit > transport.MaxPageLimit {
		limit = transport.DefaultPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	stmt = applyEmployeeFilter(sq.Select(employeeColumns...).From("employees"), filter, scope).
		OrderBy("last_name ASC", "first_name ASC", "id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sqlQuery, args, err = stmt.ToSql()
	if err != nil {
		return nil, 0, err
	}

	employees := make([]*employeeDatamodel.Employee, 0, limit)
	if err := s.db.SelectContext(ctx, &employees, s.db.Rebind(sqlQuery), args...); err != nil {
		return nil, 0, err
	}
	return employees, count, nil
}

func applyEmployeeFilter(stmt sq.SelectBuilder, filter employee.SearchFilter, scope permission.AccessScope) sq.SelectBuilder {
	if filter.Department != "" {
		stmt = stmt.Where(sq.Eq{"department": filter.Department})
	}
	if filter.Division != "" {
		stmt = stmt.Where(sq.Eq{"division": filter.Division})
	}
	if filter.PositionType != "" {
		stmt = stmt.Where(sq.Eq{"position_type": filter.PositionType})
	}
	if filter.Status != "" {
		stmt = stmt.Where(sq.Eq{"status": filter.Status})
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		like := "%" + q + "%"
		stmt = stmt.Where(sq.Or{
			sq.Like{"LOWER(first_name)": like},
			sq.Like{"LOWER(last_name)": like},
			sq.Like{"LOWER(email)": like},
			sq.Like{"LOWER(employee_number)": like},
		})
	}
	return applyScope(stmt, scope)
}

func applyScope(stmt sq.SelectBuilder, scope permission.AccessScope) sq.SelectBuilder {
	if scope.Unrestricted {
		return stmt
	}
	narrowed := false
	for _, t := range permission.ScopeTypes {
		values := scope.Values[t]
		column, ok := scopeColumns[t]
		if !ok || len(values) == 0 {
			continue
		}
		stmt = stmt.Where(sq.Eq{column: values})
		narrowed = true
	}
	if !narrowed && len(scope.Values) == 0 {
		// no roles at all
		stmt = stmt.Where(sq.Expr("1 = 0"))
	}
	return stmt
}
