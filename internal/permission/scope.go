package permission

import (
	"strings"

	"github.com/frahmantamala/hr-management/internal"
)

type ScopeType string

const (
	ScopeCompany      ScopeType = "company"
	ScopeTag          ScopeType = "tag"
	ScopeDivision     ScopeType = "division"
	ScopeDepartment   ScopeType = "department"
	ScopeSection      ScopeType = "section"
	ScopePayGroup     ScopeType = "pay_group"
	ScopePositionType ScopeType = "position_type"
)

var ScopeTypes = []ScopeType{ScopeCompany, ScopeTag, ScopeDivision, ScopeDepartment, ScopeSection, ScopePayGroup, ScopePositionType}

type Scope struct {
	Type  ScopeType `json:"type"`
	Value string    `json:"value"`
}

func (s Scope) Validate() *internal.AppError {
	valid := false
	for _, t := range ScopeTypes {
		if s.Type == t {
			valid = true
			break
		}
	}
	if !valid {
		return internal.NewValidationFieldError("scopes.type", "unknown scope type "+string(s.Type), internal.ErrCodeInvalidScope)
	}
	if strings.TrimSpace(s.Value) == "" {
		return internal.NewValidationFieldError("scopes.value", "scope value is required", internal.ErrCodeInvalidScope)
	}
	return nil
}

// AccessScope is the organizational reach of a user. Unrestricted users see
// every record; otherwise a record must match one allowed value for every
// scope type that has values.
type AccessScope struct {
	Unrestricted bool                   `json:"unrestricted"`
	Values       map[ScopeType][]string `json:"values,omitempty"`
}

func Unrestricted() AccessScope {
	return AccessScope{Unrestricted: true}
}

// MergeScopes combines the scopes of several roles. A role without scopes
// grants unrestricted reach.
func MergeScopes(perRole map[int64][]Scope, roleIDs []int64) AccessScope {
	if len(roleIDs) == 0 {
		return AccessScope{Values: map[ScopeType][]string{}}
	}
	out := AccessScope{Values: map[ScopeType][]string{}}
	seen := map[Scope]bool{}
	for _, id := range roleIDs {
		scopes := perRole[id]
		if len(scopes) == 0 {
			return Unrestricted()
		}
		for _, s := range scopes {
			if seen[s] {
				continue
			}
			seen[s] = true
			out.Values[s.Type] = append(out.Values[s.Type], s.Value)
		}
	}
	return out
}
