package permission

import (
	"sort"

	"github.com/frahmantamala/hr-management/internal/registry"
)

type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

var Actions = []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}

func (a Action) Valid() bool {
	switch a {
	case ActionView, ActionCreate, ActionEdit, ActionDelete:
		return true
	}
	return false
}

// Cell is one row of the matrix. Tab and Feature are empty for module rows,
// Feature is empty for tab rows.
type Cell struct {
	Module  string `json:"module"`
	Tab     string `json:"tab,omitempty"`
	Feature string `json:"feature,omitempty"`
	Name    string `json:"name,omitempty"`
	View    bool   `json:"view"`
	Create  bool   `json:"create"`
	Edit    bool   `json:"edit"`
	Delete  bool   `json:"delete"`
}

// Code is the most specific code the cell applies to.
func (c Cell) Code() string {
	switch {
	case c.Feature != "":
		return c.Feature
	case c.Tab != "":
		return c.Tab
	default:
		return c.Module
	}
}

func (c Cell) key() string {
	return c.Module + "|" + c.Tab + "|" + c.Feature
}

func (c Cell) Get(a Action) bool {
	switch a {
	case ActionView:
		return c.View
	case ActionCreate:
		return c.Create
	case ActionEdit:
		return c.Edit
	case ActionDelete:
		return c.Delete
	}
	return false
}

// Set writes one flag. Any write grant implies view, and revoking view
// revokes everything else.
func (c *Cell) Set(a Action, v bool) {
	switch a {
	case ActionView:
		c.View = v
		if !v {
			c.Create, c.Edit, c.Delete = false, false, false
		}
		return
	case ActionCreate:
		c.Create = v
	case ActionEdit:
		c.Edit = v
	case ActionDelete:
		c.Delete = v
	}
	if v {
		c.View = true
	}
}

func (c Cell) Empty() bool {
	return !c.View && !c.Create && !c.Edit && !c.Delete
}

// Selector picks a column of cells. Empty fields match anything.
type Selector struct {
	Module  string `json:"module,omitempty"`
	Tab     string `json:"tab,omitempty"`
	Feature string `json:"feature,omitempty"`
}

func (s Selector) Matches(c Cell) bool {
	if s.Module != "" && c.Module != s.Module {
		return false
	}
	if s.Tab != "" && c.Tab != s.Tab {
		return false
	}
	if s.Feature != "" && c.Feature != s.Feature {
		return false
	}
	return true
}

type TriState string

const (
	StateOn      TriState = "on"
	StateOff     TriState = "off"
	StatePartial TriState = "partial"
)

type Matrix struct {
	RoleID int64   `json:"role_id"`
	Cells  []Cell  `json:"cells"`
	Scopes []Scope `json:"scopes"`
}

// NewMatrix lays out one cell per module, tab and feature of the registry and
// overlays stored rows. Rows for codes the registry no longer knows are dropped.
func NewMatrix(reg *registry.Registry, roleID int64, stored []Cell, scopes []Scope) *Matrix {
	m := &Matrix{RoleID: roleID, Scopes: scopes}
	if m.Scopes == nil {
		m.Scopes = []Scope{}
	}

	for _, mod := range reg.Modules() {
		m.Cells = append(m.Cells, Cell{Module: mod.Code, Name: mod.Name})
		for _, f := range mod.Features {
			m.Cells = append(m.Cells, Cell{Module: mod.Code, Feature: f.Code, Name: f.Name})
		}
		for _, t := range mod.Tabs {
			m.Cells = append(m.Cells, Cell{Module: mod.Code, Tab: t.Code, Name: t.Name})
			for _, f := range t.Features {
				m.Cells = append(m.Cells, Cell{Module: mod.Code, Tab: t.Code, Feature: f.Code, Name: f.Name})
			}
		}
	}

	index := make(map[string]int, len(m.Cells))
	for i, c := range m.Cells {
		if _, dup := index[c.key()]; !dup {
			index[c.key()] = i
		}
	}
	for _, s := range stored {
		i, ok := index[s.key()]
		if !ok {
			continue
		}
		name := m.Cells[i].Name
		m.Cells[i] = s
		m.Cells[i].Name = name
	}
	return m
}

// State aggregates one action over the selected cells.
func (m *Matrix) State(sel Selector, a Action) TriState {
	total, on := 0, 0
	for _, c := range m.Cells {
		if !sel.Matches(c) {
			continue
		}
		total++
		if c.Get(a) {
			on++
		}
	}
	switch {
	case total == 0 || on == 0:
		return StateOff
	case on == total:
		return StateOn
	default:
		return StatePartial
	}
}

// Toggle flips a column: partial and off become on, on becomes off.
func (m *Matrix) Toggle(sel Selector, a Action) TriState {
	next := m.State(sel, a) != StateOn
	m.set(sel, a, next)
	return m.State(sel, a)
}

func (m *Matrix) set(sel Selector, a Action, v bool) {
	for i := range m.Cells {
		if sel.Matches(m.Cells[i]) {
			m.Cells[i].Set(a, v)
		}
	}
}

func (m *Matrix) GrantAll() {
	for i := range m.Cells {
		m.Cells[i].View, m.Cells[i].Create, m.Cells[i].Edit, m.Cells[i].Delete = true, true, true, true
	}
}

func (m *Matrix) RevokeAll() {
	for i := range m.Cells {
		m.Cells[i].View, m.Cells[i].Create, m.Cells[i].Edit, m.Cells[i].Delete = false, false, false, false
	}
}

func (m *Matrix) ViewOnly() {
	for i := range m.Cells {
		m.Cells[i].View, m.Cells[i].Create, m.Cells[i].Edit, m.Cells[i].Delete = true, false, false, false
	}
}

// NonEmpty returns the cells that carry at least one grant.
func (m *Matrix) NonEmpty() []Cell {
	out := make([]Cell, 0, len(m.Cells))
	for _, c := range m.Cells {
		if !c.Empty() {
			out = append(out, c)
		}
	}
	return out
}

// Keys flattens cells into sorted "code.action" permission keys.
func Keys(cells []Cell) []string {
	set := map[string]struct{}{}
	for _, c := range cells {
		code := c.Code()
		if code == "" {
			continue
		}
		for _, a := range Actions {
			if c.Get(a) {
				set[code+"."+string(a)] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
