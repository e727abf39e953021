package employee

import "time"

type CreateEmployeeDTO struct {
	UserID         *int64    `json:"user_id"`
	EmployeeNumber string    `json:"employee_number" validate:"required,max=50"`
	FirstName      string    `json:"first_name" validate:"required,max=100"`
	LastName       string    `json:"last_name" validate:"required,max=100"`
	Email          string    `json:"email" validate:"required,email"`
	JobTitle       string    `json:"job_title" validate:"max=150"`
	Company        string    `json:"company" validate:"max=150"`
	Division       string    `json:"division" validate:"max=150"`
	Department     string    `json:"department" validate:"max=150"`
	Section        string    `json:"section" validate:"max=150"`
	PayGroup       string    `json:"pay_group" validate:"max=100"`
	PositionType   string    `json:"position_type" validate:"max=100"`
	HireDate       time.Time `json:"hire_date" validate:"required"`
	ManagerID      *int64    `json:"manager_id"`
}

type UpdateEmployeeDTO struct {
	FirstName    *string    `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName     *string    `json:"last_name" validate:"omitempty,min=1,max=100"`
	Email        *string    `json:"email" validate:"omitempty,email"`
	JobTitle     *string    `json:"job_title" validate:"omitempty,max=150"`
	Company      *string    `json:"company" validate:"omitempty,max=150"`
	Division     *string    `json:"division" validate:"omitempty,max=150"`
	Department   *string    `json:"department" validate:"omitempty,max=150"`
	Section      *string    `json:"section" validate:"omitempty,max=150"`
	PayGroup     *string    `json:"pay_group" validate:"omitempty,max=100"`
	PositionType *string    `json:"position_type" validate:"omitempty,max=100"`
	Status       *string    `json:"status" validate:"omitempty,oneof=active on_leave terminated"`
	HireDate     *time.Time `json:"hire_date"`
	ManagerID    *int64     `json:"manager_id"`
}

// SearchFilter narrows the employee directory. Empty fields are ignored.
type SearchFilter struct {
	Query        string `json:"q"`
	Department   string `json:"department"`
	Division     string `json:"division"`
	PositionType string `json:"position_type"`
	Status       string `json:"status" validate:"omitempty,oneof=active on_leave terminated"`
	Limit        int    `json:"limit"`
	Offset       int    `json:"offset"`
}

type EmployeesResponse struct {
	Employees []*Employee `json:"employees"`
	Total     int         `json:"total"`
	Limit     int         `json:"limit"`
	Offset    int         `json:"offset"`
}
