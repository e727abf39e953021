// Package reconcile compares the feature registry against what the database
// has accumulated: feature rows, permission grants and manual sections.
package reconcile

import (
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/frahmantamala/hr-management/internal/registry"
)

// SimilarityThreshold is exclusive: only ratios strictly above it are reported.
const SimilarityThreshold = 0.7

type FeatureRecord struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Route    string `json:"route"`
	Module   string `json:"module"`
	IsActive bool   `json:"is_active"`
}

type GrantRecord struct {
	ID      int64  `json:"id"`
	RoleID  int64  `json:"role_id"`
	Module  string `json:"module"`
	Tab     string `json:"tab,omitempty"`
	Feature string `json:"feature,omitempty"`
}

type SectionRecord struct {
	ID          int64      `json:"id"`
	FeatureCode string     `json:"feature_code"`
	Title       string     `json:"title"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Drift is a feature known to both sides whose route or name disagree.
type Drift struct {
	Code          string   `json:"code"`
	RegistryName  string   `json:"registry_name"`
	DatabaseName  string   `json:"database_name"`
	RegistryRoute string   `json:"registry_route"`
	DatabaseRoute string   `json:"database_route"`
	Fields        []string `json:"fields"`
}

type Duplicate struct {
	Field string  `json:"field"`
	CodeA string  `json:"code_a"`
	CodeB string  `json:"code_b"`
	A     string  `json:"a"`
	B     string  `json:"b"`
	Ratio float64 `json:"ratio"`
}

type RouteReport struct {
	Unregistered []registry.Entry `json:"unregistered"`
	Orphaned     []FeatureRecord  `json:"orphaned"`
	Unsynced     []Drift          `json:"unsynced"`
	Duplicates   []Duplicate      `json:"duplicates"`
}

type OrphanReport struct {
	Features []FeatureRecord `json:"features"`
	Grants   []GrantRecord   `json:"grants"`
}

type ContentReport struct {
	Undocumented []string        `json:"undocumented"`
	Stale        []SectionRecord `json:"stale"`
	Dangling     []SectionRecord `json:"dangling"`
}

type Counts struct {
	Unregistered  int `json:"unregistered"`
	Orphaned      int `json:"orphaned"`
	OrphanGrants  int `json:"orphan_grants"`
	Unsynced      int `json:"unsynced"`
	Duplicates    int `json:"duplicates"`
	Undocumented  int `json:"undocumented"`
	Stale         int `json:"stale"`
	Dangling      int `json:"dangling"`
	RegistryCount int `json:"registry_count"`
	DatabaseCount int `json:"database_count"`
}

type Report struct {
	Routes         RouteReport   `json:"routes"`
	Orphans        OrphanReport  `json:"orphans"`
	Content        ContentReport `json:"content"`
	Counts         Counts        `json:"counts"`
	Score          int           `json:"score"`
	RegistrySource string        `json:"registry_source"`
	GeneratedAt    time.Time     `json:"generated_at"`
}

// ValidateRoutes diffs registry entries against database feature rows.
func ValidateRoutes(reg *registry.Registry, rows []FeatureRecord) RouteReport {
	report := RouteReport{
		Unregistered: []registry.Entry{},
		Orphaned:     []FeatureRecord{},
		Unsynced:     []Drift{},
	}

	byCode := make(map[string]FeatureRecord, len(rows))
	for _, r := range rows {
		byCode[r.Code] = r
	}

	for _, e := range reg.Entries() {
		row, ok := byCode[e.Code]
		if !ok {
			report.Unregistered = append(report.Unregistered, e)
			continue
		}
		var fields []string
		if row.Route != e.Route {
			fields = append(fields, "route")
		}
		if row.Name != e.Name {
			fields = append(fields, "name")
		}
		if len(fields) > 0 {
			report.Unsynced = append(report.Unsynced, Drift{
				Code:          e.Code,
				RegistryName:  e.Name,
				DatabaseName:  row.Name,
				RegistryRoute: e.Route,
				DatabaseRoute: row.Route,
				Fields:        fields,
			})
		}
	}

	for _, r := range rows {
		if _, ok := reg.Lookup(r.Code); !ok {
			report.Orphaned = append(report.Orphaned, r)
		}
	}
	sort.Slice(report.Orphaned, func(i, j int) bool { return report.Orphaned[i].Code < report.Orphaned[j].Code })

	report.Duplicates = findDuplicates(candidates(reg, rows))
	return report
}

type candidate struct {
	code, name, route string
}

// candidates merges both sides into one item per code, database values first.
func candidates(reg *registry.Registry, rows []FeatureRecord) []candidate {
	seen := map[string]bool{}
	var out []candidate
	for _, r := range rows {
		if seen[r.Code] {
			continue
		}
		seen[r.Code] = true
		out = append(out, candidate{code: r.Code, name: r.Name, route: r.Route})
	}
	for _, e := range reg.Entries() {
		if seen[e.Code] {
			continue
		}
		seen[e.Code] = true
		out = append(out, candidate{code: e.Code, name: e.Name, route: e.Route})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].code < out[j].code })
	return out
}

// findDuplicates compares every pair of distinct codes by name and by route.
func findDuplicates(items []candidate) []Duplicate {
	out := []Duplicate{}
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			a, b := items[i], items[j]
			if a.code == b.code {
				continue
			}
			if r := Similarity(a.name, b.name); r > SimilarityThreshold {
				out = append(out, Duplicate{Field: "name", CodeA: a.code, CodeB: b.code, A: a.name, B: b.name, Ratio: r})
			}
			if r := Similarity(a.route, b.route); r > SimilarityThreshold {
				out = append(out, Duplicate{Field: "route", CodeA: a.code, CodeB: b.code, A: a.route, B: b.route, Ratio: r})
			}
		}
	}
	return out
}

// Similarity is 1 - distance/longest over case-folded, trimmed input. Empty
// strings are never similar to anything.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// DetectOrphans lists database features and permission grants that point at
// codes the registry does not declare.
func DetectOrphans(reg *registry.Registry, rows []FeatureRecord, grants []GrantRecord) OrphanReport {
	report := OrphanReport{Features: []FeatureRecord{}, Grants: []GrantRecord{}}
	for _, r := range rows {
		if _, ok := reg.Lookup(r.Code); !ok {
			report.Features = append(report.Features, r)
		}
	}
	for _, g := range grants {
		if _, ok := reg.Module(g.Module); !ok {
			report.Grants = append(report.Grants, g)
			continue
		}
		if g.Feature != "" {
			if _, ok := reg.Lookup(g.Feature); !ok {
				report.Grants = append(report.Grants, g)
			}
		}
	}
	sort.Slice(report.Features, func(i, j int) bool { return report.Features[i].Code < report.Features[j].Code })
	return report
}

// ValidateContent checks manual coverage. A section never reviewed ages from
// its last update.
func ValidateContent(reg *registry.Registry, sections []SectionRecord, now time.Time, maxAge time.Duration) ContentReport {
	report := ContentReport{Undocumented: []string{}, Stale: []SectionRecord{}, Dangling: []SectionRecord{}}

	documented := map[string]bool{}
	for _, s := range sections {
		if _, ok := reg.Lookup(s.FeatureCode); !ok {
			report.Dangling = append(report.Dangling, s)
			continue
		}
		documented[s.FeatureCode] = true

		reviewed := s.UpdatedAt
		if s.ReviewedAt != nil {
			reviewed = *s.ReviewedAt
		}
		if maxAge > 0 && now.Sub(reviewed) > maxAge {
			report.Stale = append(report.Stale, s)
		}
	}

	for _, e := range reg.Entries() {
		if !documented[e.Code] {
			report.Undocumented = append(report.Undocumented, e.Code)
		}
	}
	return report
}

func Score(r Report) int {
	c := r.Counts
	penalty := c.Unregistered*2 + c.Orphaned*3 + c.Unsynced*2 + c.Duplicates +
		c.Undocumented + c.Stale + c.Dangling*2
	if penalty >= 100 {
		return 0
	}
	return 100 - penalty
}

// Build assembles a full report from the three checks.
func Build(reg *registry.Registry, rows []FeatureRecord, grants []GrantRecord, sections []SectionRecord, now time.Time, maxAge time.Duration) Report {
	r := Report{
		Routes:         ValidateRoutes(reg, rows),
		Orphans:        DetectOrphans(reg, rows, grants),
		Content:        ValidateContent(reg, sections, now, maxAge),
		RegistrySource: reg.Source(),
		GeneratedAt:    now,
	}
	r.Counts = Counts{
		Unregistered:  len(r.Routes.Unregistered),
		Orphaned:      len(r.Routes.Orphaned),
		OrphanGrants:  len(r.Orphans.Grants),
		Unsynced:      len(r.Routes.Unsynced),
		Duplicates:    len(r.Routes.Duplicates),
		Undocumented:  len(r.Content.Undocumented),
		Stale:         len(r.Content.Stale),
		Dangling:      len(r.Content.Dangling),
		RegistryCount: reg.Count(),
		DatabaseCount: len(rows),
	}
	r.Score = Score(r)
	return r
}
