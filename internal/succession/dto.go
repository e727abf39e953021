package succession

type CreateSectionDTO struct {
	FeatureCode string `json:"feature_code" validate:"required,max=150"`
	Title       string `json:"title" validate:"required,max=200"`
	Body        string `json:"body" validate:"required"`
}

type UpdateSectionDTO struct {
	Title *string `json:"title" validate:"omitempty,min=1,max=200"`
	Body  *string `json:"body" validate:"omitempty,min=1"`
}

type SectionFilter struct {
	FeatureCode string
	ModuleCode  string
}

type UpdateTaskDTO struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Position    *int    `json:"position" validate:"omitempty,min=0"`
	Completed   *bool   `json:"completed"`
}

type SectionsResponse struct {
	Sections []*Section `json:"sections"`
}

type TasksResponse struct {
	Tasks     []Task `json:"tasks"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}
