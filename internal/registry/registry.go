// Package registry holds the code-declared feature registry: the static list of
// pages, their routes and the actions they support. It is the fallback source
// of truth when the database has no row for a feature.
package registry

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultActions applies to features that do not list their own.
var DefaultActions = []string{"view", "create", "edit", "delete"}

type Document struct {
	Version int      `yaml:"version"`
	Modules []Module `yaml:"modules"`
}

type Module struct {
	Code     string    `yaml:"code" json:"code"`
	Name     string    `yaml:"name" json:"name"`
	Icon     string    `yaml:"icon,omitempty" json:"icon,omitempty"`
	Order    int       `yaml:"order,omitempty" json:"order"`
	Tabs     []Tab     `yaml:"tabs,omitempty" json:"tabs,omitempty"`
	Features []Feature `yaml:"features,omitempty" json:"features,omitempty"`
}

type Tab struct {
	Code     string    `yaml:"code" json:"code"`
	Name     string    `yaml:"name" json:"name"`
	Features []Feature `yaml:"features" json:"features"`
}

type Feature struct {
	Code         string   `yaml:"code" json:"code"`
	Name         string   `yaml:"name" json:"name"`
	Route        string   `yaml:"route" json:"route"`
	Description  string   `yaml:"description,omitempty" json:"description,omitempty"`
	Roles        []string `yaml:"roles,omitempty" json:"roles,omitempty"`
	Actions      []string `yaml:"actions,omitempty" json:"actions,omitempty"`
	LegacyRoutes []string `yaml:"legacy_routes,omitempty" json:"legacy_routes,omitempty"`
}

// Entry is a flattened feature with its module and tab resolved.
type Entry struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Route        string   `json:"route"`
	Module       string   `json:"module"`
	Tab          string   `json:"tab,omitempty"`
	Description  string   `json:"description,omitempty"`
	Roles        []string `json:"roles,omitempty"`
	Actions      []string `json:"actions"`
	LegacyRoutes []string `json:"legacy_routes,omitempty"`
}

// Supports reports whether the feature declares the action.
func (e Entry) Supports(action string) bool {
	for _, a := range e.Actions {
		if a == action {
			return true
		}
	}
	return false
}

type ScanResult struct {
	Entries         map[string]Entry `json:"entries"`
	Count           int              `json:"count"`
	DuplicateCodes  []string         `json:"duplicate_codes"`
	DuplicateRoutes []string         `json:"duplicate_routes"`
	Source          string           `json:"source"`
	LoadedAt        time.Time        `json:"loaded_at"`
}

type Registry struct {
	modules   []Module
	entries   map[string]Entry
	order     []string
	byRoute   map[string]string
	byLegacy  map[string]string
	dupCodes  []string
	dupRoutes []string
	source    string
	loadedAt  time.Time
}

// Parse decodes and validates a registry document. Duplicate codes and routes
// are not errors: the first declaration wins and the rest are reported by Scan.
func Parse(data []byte, source string) (*Registry, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode registry %s: %w", source, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("validate registry %s: %w", source, err)
	}

	r := &Registry{
		modules:  doc.Modules,
		entries:  make(map[string]Entry),
		byRoute:  make(map[string]string),
		byLegacy: make(map[string]string),
		source:   source,
		loadedAt: time.Now().UTC(),
	}
	sort.SliceStable(r.modules, func(i, j int) bool { return r.modules[i].Order < r.modules[j].Order })

	seenCode := map[string]bool{}
	seenRoute := map[string]bool{}
	add := func(module, tab string, f Feature) {
		if _, exists := r.entries[f.Code]; exists {
			if !seenCode[f.Code] {
				r.dupCodes = append(r.dupCodes, f.Code)
				seenCode[f.Code] = true
			}
			return
		}
		actions := f.Actions
		if len(actions) == 0 {
			actions = DefaultActions
		}
		r.entries[f.Code] = Entry{
			Code:         f.Code,
			Name:         f.Name,
			Route:        f.Route,
			Module:       module,
			Tab:          tab,
			Description:  f.Description,
			Roles:        f.Roles,
			Actions:      actions,
			LegacyRoutes: f.LegacyRoutes,
		}
		r.order = append(r.order, f.Code)

		if f.Route != "" {
			if _, taken := r.byRoute[f.Route]; taken {
				if !seenRoute[f.Route] {
					r.dupRoutes = append(r.dupRoutes, f.Route)
					seenRoute[f.Route] = true
				}
			} else {
				r.byRoute[f.Route] = f.Code
			}
		}
		for _, legacy := range f.LegacyRoutes {
			if _, taken := r.byLegacy[legacy]; !taken {
				r.byLegacy[legacy] = f.Code
			}
		}
	}

	for _, m := range r.modules {
		for _, f := range m.Features {
			add(m.Code, "", f)
		}
		for _, t := range m.Tabs {
			for _, f := range t.Features {
				add(m.Code, t.Code, f)
			}
		}
	}

	sort.Strings(r.dupCodes)
	sort.Strings(r.dupRoutes)
	return r, nil
}

func (d Document) Validate() error {
	var errs []error
	checkFeature := func(where string, f Feature) {
		if strings.TrimSpace(f.Code) == "" {
			errs = append(errs, fmt.Errorf("%s: feature code is required", where))
		}
		if f.Route != "" && !strings.HasPrefix(f.Route, "/") {
			errs = append(errs, fmt.Errorf("%s: route %q must start with '/'", where, f.Route))
		}
		for _, legacy := range f.LegacyRoutes {
			if !strings.HasPrefix(legacy, "/") {
				errs = append(errs, fmt.Errorf("%s: legacy route %q must start with '/'", where, legacy))
			}
		}
		for _, a := range f.Actions {
			switch a {
			case "view", "create", "edit", "delete":
			default:
				errs = append(errs, fmt.Errorf("%s: unknown action %q", where, a))
			}
		}
	}

	if len(d.Modules) == 0 {
		errs = append(errs, errors.New("registry declares no modules"))
	}
	for i, m := range d.Modules {
		if strings.TrimSpace(m.Code) == "" {
			errs = append(errs, fmt.Errorf("modules[%d]: code is required", i))
			continue
		}
		for j, f := range m.Features {
			checkFeature(fmt.Sprintf("%s.features[%d]", m.Code, j), f)
		}
		for j, t := range m.Tabs {
			if strings.TrimSpace(t.Code) == "" {
				errs = append(errs, fmt.Errorf("%s.tabs[%d]: code is required", m.Code, j))
			}
			for k, f := range t.Features {
				checkFeature(fmt.Sprintf("%s.tabs[%d].features[%d]", m.Code, j, k), f)
			}
		}
	}
	return errors.Join(errs...)
}

// Scan flattens the registry into a lookup table keyed by feature code.
func (r *Registry) Scan() ScanResult {
	entries := make(map[string]Entry, len(r.entries))
	for k, v := range r.entries {
		entries[k] = v
	}
	return ScanResult{
		Entries:         entries,
		Count:           len(entries),
		DuplicateCodes:  append([]string(nil), r.dupCodes...),
		DuplicateRoutes: append([]string(nil), r.dupRoutes...),
		Source:          r.source,
		LoadedAt:        r.loadedAt,
	}
}

func (r *Registry) Lookup(code string) (Entry, bool) {
	e, ok := r.entries[code]
	return e, ok
}

func (r *Registry) ByRoute(route string) (Entry, bool) {
	code, ok := r.byRoute[route]
	if !ok {
		code, ok = r.byLegacy[route]
	}
	if !ok {
		return Entry{}, false
	}
	return r.entries[code], true
}

// LegacyRoute returns the first legacy route declared for a feature.
func (r *Registry) LegacyRoute(code string) (string, bool) {
	e, ok := r.entries[code]
	if !ok || len(e.LegacyRoutes) == 0 {
		return "", false
	}
	return e.LegacyRoutes[0], true
}

// Entries returns all entries in declaration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.entries[code])
	}
	return out
}

func (r *Registry) Modules() []Module {
	return r.modules
}

func (r *Registry) Module(code string) (Module, bool) {
	for _, m := range r.modules {
		if m.Code == code {
			return m, true
		}
	}
	return Module{}, false
}

func (r *Registry) Count() int {
	return len(r.entries)
}

func (r *Registry) Source() string {
	return r.source
}
