package workpermit

import (
	"time"

	workpermitDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/workpermit"
)

const (
	StatusValid    = "valid"
	StatusExpiring = "expiring"
	StatusExpired  = "expired"
)

// DefaultExpiringWindow is how far ahead a permit counts as expiring.
const DefaultExpiringWindow = 30 * 24 * time.Hour

type WorkPermit struct {
	ID             int64     `json:"id"`
	EmployeeID     int64     `json:"employee_id"`
	PermitType     string    `json:"permit_type"`
	PermitNumber   string    `json:"permit_number"`
	IssuingCountry string    `json:"issuing_country,omitempty"`
	IssueDate      time.Time `json:"issue_date"`
	ExpiryDate     time.Time `json:"expiry_date"`
	Notes          string    `json:"notes,omitempty"`
	Status         string    `json:"status"`
	DaysRemaining  int       `json:"days_remaining"`
	CreatedBy      int64     `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StatusAt derives the permit status at now. A permit expiring today is
// still expiring, not expired.
func StatusAt(expiry, now time.Time, window time.Duration) string {
	today := truncateDay(now)
	end := truncateDay(expiry)
	switch {
	case end.Before(today):
		return StatusExpired
	case !end.After(today.Add(window)):
		return StatusExpiring
	default:
		return StatusValid
	}
}

func daysBetween(from, to time.Time) int {
	return int(truncateDay(to).Sub(truncateDay(from)).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (p *WorkPermit) ToDataModel() *workpermitDatamodel.WorkPermit {
	return &workpermitDatamodel.WorkPermit{
		ID:             p.ID,
		EmployeeID:     p.EmployeeID,
		PermitType:     p.PermitType,
		PermitNumber:   p.PermitNumber,
		IssuingCountry: p.IssuingCountry,
		IssueDate:      p.IssueDate,
		ExpiryDate:     p.ExpiryDate,
		Notes:          p.Notes,
		CreatedBy:      p.CreatedBy,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// FromDataModel converts a stored row and stamps the derived status.
func FromDataModel(m *workpermitDatamodel.WorkPermit, now time.Time, window time.Duration) *WorkPermit {
	return &WorkPermit{
		ID:             m.ID,
		EmployeeID:     m.EmployeeID,
		PermitType:     m.PermitType,
		PermitNumber:   m.PermitNumber,
		IssuingCountry: m.IssuingCountry,
		IssueDate:      m.IssueDate,
		ExpiryDate:     m.ExpiryDate,
		Notes:          m.Notes,
		Status:         StatusAt(m.ExpiryDate, now, window),
		DaysRemaining:  daysBetween(now, m.ExpiryDate),
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
