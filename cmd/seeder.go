package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	employeeModel "github.com/frahmantamala/hr-management/internal/core/datamodel/employee"
	feedbackModel "github.com/frahmantamala/hr-management/internal/core/datamodel/feedback"
	leaveModel "github.com/frahmantamala/hr-management/internal/core/datamodel/leave"
	permissionModel "github.com/frahmantamala/hr-management/internal/core/datamodel/permission"
	userModel "github.com/frahmantamala/hr-management/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-management/internal/registry"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed roles, their permission matrix, demo users and employees, leave types and consent types.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := mustLoad()

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		gdb, err := initGorm(sqlDB, cfg.Env)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		reg, err := registry.Load(context.Background(), cfg.Registry.Path)
		if err != nil {
			log.Fatalf("failed to load registry: %v", err)
		}

		err = gdb.Transaction(func(tx *gorm.DB) error {
			if clearData {
				if err := clearSeedData(tx); err != nil {
					return err
				}
			}
			return seed(tx, reg, cfg.Security.BCryptCost)
		})
		if err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		logger.Info("database seeded", "registry_source", reg.Source())
	},
}

type seedUser struct {
	Email  string
	Name   string
	Role   string
	Number string
	Job    string
	Dept   string
}

var seedUsers = []seedUser{
	{"admin@hr.local", "Ayu Pratama", "admin", "E-0001", "HR Systems Lead", "Human Resources"},
	{"manager@hr.local", "Budi Santoso", "hr_manager", "E-0002", "HR Manager", "Human Resources"},
	{"officer@hr.local", "Citra Lestari", "hr_officer", "E-0003", "HR Officer", "Human Resources"},
	{"employee@hr.local", "Dimas Saputra", "employee", "E-0004", "Software Engineer", "Engineering"},
}

var seedRoles = []userModel.Role{
	{Name: "admin", Description: "Full administrator", IsSystem: true},
	{Name: "hr_manager", Description: "Manages HR records and governance"},
	{Name: "hr_officer", Description: "Maintains HR records"},
	{Name: "employee", Description: "Self-service access"},
}

// employeeGrants are the only features granted to the employee role. Profile,
// leave balance and consent pages are reachable through self access instead.
var employeeGrants = map[string][]string{
	"dashboard.overview":  {"view"},
	"notifications.inbox": {"view", "edit"},
}

func clearSeedData(tx *gorm.DB) error {
	tables := []string{
		"access_requests", "notifications", "consent_records", "consent_types",
		"feedback_policies", "handbook_tasks", "manual_sections", "leave_balances",
		"leave_types", "work_permits", "employees", "role_access_scopes",
		"module_permissions", "app_features", "user_roles", "roles", "users",
	}
	for _, t := range tables {
		if err := tx.Exec(fmt.Sprintf("DELETE FROM %s", t)).Error; err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}
	fmt.Println("Cleared existing data")
	return nil
}

func seed(tx *gorm.DB, reg *registry.Registry, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), cost)
	if err != nil {
		return err
	}

	roleIDs := map[string]int64{}
	for _, r := range seedRoles {
		role := r
		if err := tx.Where(userModel.Role{Name: role.Name}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", role.Name, err)
		}
		roleIDs[role.Name] = role.ID

		if err := seedGrants(tx, reg, role.ID, role.Name); err != nil {
			return err
		}
	}
	fmt.Println("Seeded roles and permission matrix")

	hireDate := time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC)
	for _, su := range seedUsers {
		u := userModel.User{Email: su.Email, Name: su.Name, PasswordHash: string(hash), IsActive: true}
		if err := tx.Where(userModel.User{Email: su.Email}).FirstOrCreate(&u).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", su.Email, err)
		}

		ur := userModel.UserRole{UserID: u.ID, RoleID: roleIDs[su.Role]}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ur).Error; err != nil {
			return fmt.Errorf("assign role %s: %w", su.Role, err)
		}

		first, last := splitName(su.Name)
		uid := u.ID
		emp := employeeModel.Employee{
			UserID:         &uid,
			EmployeeNumber: su.Number,
			FirstName:      first,
			LastName:       last,
			Email:          su.Email,
			JobTitle:       su.Job,
			Company:        "Acme Indonesia",
			Division:       "Corporate",
			Department:     su.Dept,
			PositionType:   "permanent",
			Status:         "active",
			HireDate:       hireDate,
		}
		if err := tx.Where(employeeModel.Employee{EmployeeNumber: su.Number}).FirstOrCreate(&emp).Error; err != nil {
			return fmt.Errorf("seed employee %s: %w", su.Number, err)
		}
		fmt.Println("Seeded user:", su.Email, "as", su.Role)
	}

	leaveTypes := []leaveModel.LeaveType{
		{Code: "annual", Name: "Annual Leave", DefaultDays: decimal.NewFromInt(12), IsActive: true},
		{Code: "sick", Name: "Sick Leave", DefaultDays: decimal.NewFromInt(14), IsActive: true},
		{Code: "unpaid", Name: "Unpaid Leave", DefaultDays: decimal.Zero, IsActive: true},
	}
	for _, lt := range leaveTypes {
		lt := lt
		if err := tx.Where(leaveModel.LeaveType{Code: lt.Code}).FirstOrCreate(&lt).Error; err != nil {
			return fmt.Errorf("seed leave type %s: %w", lt.Code, err)
		}
	}
	fmt.Println("Seeded leave types")

	consentTypes := []feedbackModel.ConsentType{
		{Code: "peer_feedback", Name: "Peer feedback collection", Required: true, IsActive: true,
			Description: "Colleagues may submit feedback about the employee for the cycle."},
		{Code: "feedback_sharing", Name: "Share feedback with manager", Required: false, IsActive: true,
			Description: "Anonymised feedback may be shared with the direct manager."},
	}
	for _, ct := range consentTypes {
		ct := ct
		if err := tx.Where(feedbackModel.ConsentType{Code: ct.Code}).FirstOrCreate(&ct).Error; err != nil {
			return fmt.Errorf("seed consent type %s: %w", ct.Code, err)
		}
	}
	fmt.Println("Seeded consent types")

	return nil
}

// seedGrants writes feature-level cells for every registry feature that lists
// the role. Existing rows for the role are replaced.
func seedGrants(tx *gorm.DB, reg *registry.Registry, roleID int64, role string) error {
	if err := tx.Where("role_id = ?", roleID).Delete(&permissionModel.ModulePermission{}).Error; err != nil {
		return fmt.Errorf("reset grants for %s: %w", role, err)
	}

	var rows []permissionModel.ModulePermission
	for _, e := range reg.Entries() {
		actions := grantedActions(e, role)
		if len(actions) == 0 {
			continue
		}
		row := permissionModel.ModulePermission{RoleID: roleID, ModuleCode: e.Module, TabCode: e.Tab, FeatureCode: e.Code}
		for _, a := range actions {
			switch a {
			case "view":
				row.CanView = true
			case "create":
				row.CanCreate = true
			case "edit":
				row.CanEdit = true
			case "delete":
				row.CanDelete = true
			}
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func grantedActions(e registry.Entry, role string) []string {
	switch role {
	case "admin":
		return e.Actions
	case "employee":
		return employeeGrants[e.Code]
	}
	if !contains(e.Roles, role) {
		return nil
	}
	if role == "hr_officer" {
		var out []string
		for _, a := range e.Actions {
			if a != "delete" {
				out = append(out, a)
			}
		}
		return out
	}
	return e.Actions
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func splitName(name string) (string, string) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == ' ' {
			return name[:i], name[i+1:]
		}
	}
	return name, "-"
}
