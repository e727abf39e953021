package permission

type RoleDTO struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type SaveMatrixDTO struct {
	Cells  []Cell  `json:"cells"`
	Scopes []Scope `json:"scopes"`
}

type Operation string

const (
	OpGrantAll  Operation = "grant_all"
	OpRevokeAll Operation = "revoke_all"
	OpViewOnly  Operation = "view_only"
	OpToggle    Operation = "toggle"
)

// PreviewDTO applies an edit to a matrix without saving it. When Cells is
// empty the role's stored matrix is used as the starting point.
type PreviewDTO struct {
	Cells     []Cell    `json:"cells"`
	Operation Operation `json:"operation" validate:"required,oneof=grant_all revoke_all view_only toggle"`
	Selector  Selector  `json:"selector"`
	Action    Action    `json:"action"`
}

type PreviewResponse struct {
	Matrix *Matrix   `json:"matrix"`
	State  *TriState `json:"state,omitempty"`
}

type AssignRoleDTO struct {
	UserID int64 `json:"user_id" validate:"required,min=1"`
}

type ColumnState struct {
	Module string   `json:"module"`
	Action Action   `json:"action"`
	State  TriState `json:"state"`
}

type MatrixResponse struct {
	*Matrix
	Columns []ColumnState `json:"columns"`
}
