package feature

type CreateFeatureDTO struct {
	Code        string `json:"code" validate:"required,max=150"`
	Name        string `json:"name" validate:"required,max=200"`
	Route       string `json:"route" validate:"omitempty,startswith=/,max=255"`
	ModuleCode  string `json:"module_code" validate:"required,max=100"`
	TabCode     string `json:"tab_code" validate:"max=150"`
	Description string `json:"description" validate:"max=1000"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateFeatureDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Route       *string `json:"route" validate:"omitempty,startswith=/,max=255"`
	ModuleCode  *string `json:"module_code" validate:"omitempty,max=100"`
	TabCode     *string `json:"tab_code" validate:"omitempty,max=150"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	IsActive    *bool   `json:"is_active"`
}

type FeaturesResponse struct {
	Features []*Feature `json:"features"`
	Total    int        `json:"total"`
}
