package feedback

import (
	"time"

	feedbackDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/feedback"
)

type ConsentType struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *ConsentType) ToDataModel() *feedbackDatamodel.ConsentType {
	return &feedbackDatamodel.ConsentType{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
		Required:    c.Required,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func ConsentTypeFromDataModel(m *feedbackDatamodel.ConsentType) *ConsentType {
	return &ConsentType{
		ID:          m.ID,
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		Required:    m.Required,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ConsentRecord is an employee's consent for one type in one feedback cycle.
type ConsentRecord struct {
	ID              int64      `json:"id,omitempty"`
	EmployeeID      int64      `json:"employee_id"`
	ConsentTypeCode string     `json:"consent_type_code"`
	Cycle           string     `json:"cycle"`
	Granted         bool       `json:"granted"`
	GrantedAt       *time.Time `json:"granted_at,omitempty"`
	WithdrawnAt     *time.Time `json:"withdrawn_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at,omitempty"`
}

func RecordFromDataModel(m *feedbackDatamodel.ConsentRecord) *ConsentRecord {
	return &ConsentRecord{
		ID:              m.ID,
		EmployeeID:      m.EmployeeID,
		ConsentTypeCode: m.ConsentTypeCode,
		Cycle:           m.Cycle,
		Granted:         m.Granted,
		GrantedAt:       m.GrantedAt,
		WithdrawnAt:     m.WithdrawnAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

type Policy struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Version       int       `json:"version"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	IsActive      bool      `json:"is_active"`
	EffectiveFrom time.Time `json:"effective_from"`
	CreatedBy     int64     `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func PolicyFromDataModel(m *feedbackDatamodel.FeedbackPolicy) *Policy {
	return &Policy{
		ID:            m.ID,
		Code:          m.Code,
		Version:       m.Version,
		Title:         m.Title,
		Body:          m.Body,
		IsActive:      m.IsActive,
		EffectiveFrom: m.EffectiveFrom,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}
