package feature

import (
	"time"

	featureDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/feature"
)

// Feature is a page registered in the database catalog.
type Feature struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Route       string    `json:"route"`
	ModuleCode  string    `json:"module_code"`
	TabCode     string    `json:"tab_code,omitempty"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (f *Feature) ToDataModel() *featureDatamodel.AppFeature {
	return &featureDatamodel.AppFeature{
		ID:          f.ID,
		Code:        f.Code,
		Name:        f.Name,
		Route:       f.Route,
		ModuleCode:  f.ModuleCode,
		TabCode:     f.TabCode,
		Description: f.Description,
		IsActive:    f.IsActive,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func FromDataModel(m *featureDatamodel.AppFeature) *Feature {
	return &Feature{
		ID:          m.ID,
		Code:        m.Code,
		Name:        m.Name,
		Route:       m.Route,
		ModuleCode:  m.ModuleCode,
		TabCode:     m.TabCode,
		Description: m.Description,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// Resolvable reports whether the row can serve as a route source.
func (f *Feature) Resolvable() bool {
	return f.IsActive && f.Route != ""
}
