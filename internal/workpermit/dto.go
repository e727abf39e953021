package workpermit

import "time"

type CreateWorkPermitDTO struct {
	EmployeeID     int64     `json:"employee_id" validate:"required"`
	PermitType     string    `json:"permit_type" validate:"required,max=100"`
	PermitNumber   string    `json:"permit_number" validate:"required,max=100"`
	IssuingCountry string    `json:"issuing_country" validate:"max=100"`
	IssueDate      time.Time `json:"issue_date"`
	ExpiryDate     time.Time `json:"expiry_date"`
	Notes          string    `json:"notes" validate:"max=2000"`
}

type UpdateWorkPermitDTO struct {
	PermitType     *string    `json:"permit_type" validate:"omitempty,min=1,max=100"`
	PermitNumber   *string    `json:"permit_number" validate:"omitempty,min=1,max=100"`
	IssuingCountry *string    `json:"issuing_country" validate:"omitempty,max=100"`
	IssueDate      *time.Time `json:"issue_date"`
	ExpiryDate     *time.Time `json:"expiry_date"`
	Notes          *string    `json:"notes" validate:"omitempty,max=2000"`
}

type ListFilter struct {
	EmployeeID int64
	Status     string
	Limit      int
	Offset     int
}

type WorkPermitsResponse struct {
	WorkPermits []*WorkPermit `json:"work_permits"`
	Total       int64         `json:"total"`
}
