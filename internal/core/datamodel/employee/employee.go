package employee

import "time"

type Employee struct {
	ID             int64      `gorm:"primaryKey" db:"id"`
	UserID         *int64     `gorm:"column:user_id;uniqueIndex" db:"user_id"`
	EmployeeNumber string     `gorm:"column:employee_number;uniqueIndex;not null" db:"employee_number"`
	FirstName      string     `gorm:"column:first_name;not null" db:"first_name"`
	LastName       string     `gorm:"column:last_name;not null" db:"last_name"`
	Email          string     `gorm:"column:email;not null" db:"email"`
	JobTitle       string     `gorm:"column:job_title" db:"job_title"`
	Company        string     `gorm:"column:company" db:"company"`
	Division       string     `gorm:"column:division" db:"division"`
	Department     string     `gorm:"column:department;index" db:"department"`
	Section        string     `gorm:"column:section" db:"section"`
	PayGroup       string     `gorm:"column:pay_group" db:"pay_group"`
	PositionType   string     `gorm:"column:position_type" db:"position_type"`
	Status         string     `gorm:"column:status;not null" db:"status"`
	HireDate       time.Time  `gorm:"column:hire_date;type:date;not null" db:"hire_date"`
	ManagerID      *int64     `gorm:"column:manager_id" db:"manager_id"`
	TerminatedAt   *time.Time `gorm:"column:terminated_at" db:"terminated_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" db:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" db:"updated_at"`
}

func (Employee) TableName() string { return "employees" }
