package succession

import (
	"time"

	"github.com/frahmantamala/hr-management/internal/core/common/resolve"
	successionDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/succession"
)

type Section struct {
	ID          int64      `json:"id"`
	FeatureCode string     `json:"feature_code"`
	ModuleCode  string     `json:"module_code"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Version     int        `json:"version"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy  *int64     `json:"reviewed_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (s *Section) ToDataModel() *successionDatamodel.ManualSection {
	return &successionDatamodel.ManualSection{
		ID:          s.ID,
		FeatureCode: s.FeatureCode,
		ModuleCode:  s.ModuleCode,
		Title:       s.Title,
		Body:        s.Body,
		Version:     s.Version,
		ReviewedAt:  s.ReviewedAt,
		ReviewedBy:  s.ReviewedBy,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func SectionFromDataModel(m *successionDatamodel.ManualSection) *Section {
	return &Section{
		ID:          m.ID,
		FeatureCode: m.FeatureCode,
		ModuleCode:  m.ModuleCode,
		Title:       m.Title,
		Body:        m.Body,
		Version:     m.Version,
		ReviewedAt:  m.ReviewedAt,
		ReviewedBy:  m.ReviewedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// Task is a handbook task together with where its content came from.
type Task struct {
	Code        string         `json:"code" yaml:"code"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	Position    int            `json:"position" yaml:"position"`
	Completed   bool           `json:"completed" yaml:"-"`
	Source      resolve.Source `json:"source" yaml:"-"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty" yaml:"-"`
}

func TaskFromDataModel(m *successionDatamodel.HandbookTask) Task {
	updated := m.UpdatedAt
	return Task{
		Code:        m.Code,
		Title:       m.Title,
		Description: m.Description,
		Position:    m.Position,
		Completed:   m.Completed,
		Source:      resolve.SourceDatabase,
		UpdatedAt:   &updated,
	}
}

func (t Task) ToDataModel() *successionDatamodel.HandbookTask {
	return &successionDatamodel.HandbookTask{
		Code:        t.Code,
		Title:       t.Title,
		Description: t.Description,
		Position:    t.Position,
		Completed:   t.Completed,
	}
}
