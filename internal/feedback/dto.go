package feedback

import "time"

type CreateConsentTypeDTO struct {
	Code        string `json:"code" validate:"required,max=50"`
	Name        string `json:"name" validate:"required,max=150"`
	Description string `json:"description" validate:"max=2000"`
	Required    bool   `json:"required"`
}

type UpdateConsentTypeDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=150"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Required    *bool   `json:"required"`
	IsActive    *bool   `json:"is_active"`
}

// ConsentDTO grants or withdraws one consent. Cycle looks like 2026, 2026-H1 or 2026-Q3.
type ConsentDTO struct {
	ConsentTypeCode string `json:"consent_type_code" validate:"required,max=50"`
	Cycle           string `json:"cycle" validate:"required,max=20"`
}

type RecordFilter struct {
	EmployeeID      int64
	ConsentTypeCode string
	Cycle           string
}

type CreatePolicyDTO struct {
	Code          string    `json:"code" validate:"required,max=50"`
	Title         string    `json:"title" validate:"required,max=200"`
	Body          string    `json:"body" validate:"required"`
	EffectiveFrom time.Time `json:"effective_from"`
}

type ConsentTypesResponse struct {
	ConsentTypes []*ConsentType `json:"consent_types"`
}

type RecordsResponse struct {
	Records []*ConsentRecord `json:"records"`
}

// ConsentStatus is an employee's position on every active consent type for a cycle.
type ConsentStatus struct {
	EmployeeID      int64            `json:"employee_id"`
	Cycle           string           `json:"cycle"`
	Records         []*ConsentRecord `json:"records"`
	MissingRequired []string         `json:"missing_required"`
}

type PoliciesResponse struct {
	Policies []*Policy `json:"policies"`
}
