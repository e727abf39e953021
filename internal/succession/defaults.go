package succession

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/frahmantamala/hr-management/internal/core/common/resolve"
	"gopkg.in/yaml.v3"
)

//go:embed handbook.yaml
var handbookYAML []byte

type handbookDocument struct {
	Tasks []Task `yaml:"tasks"`
}

// DefaultTasks parses the embedded handbook, ordered by position.
func DefaultTasks() ([]Task, error) {
	return parseTasks(handbookYAML)
}

func parseTasks(data []byte) ([]Task, error) {
	var doc handbookDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse handbook: %w", err)
	}
	seen := make(map[string]bool, len(doc.Tasks))
	for i := range doc.Tasks {
		t := &doc.Tasks[i]
		if t.Code == "" || t.Title == "" {
			return nil, fmt.Errorf("handbook task %d: code and title are required", i)
		}
		if seen[t.Code] {
			return nil, fmt.Errorf("handbook task %q declared twice", t.Code)
		}
		seen[t.Code] = true
		t.Source = resolve.SourceDefault
	}
	sort.SliceStable(doc.Tasks, func(i, j int) bool { return doc.Tasks[i].Position < doc.Tasks[j].Position })
	return doc.Tasks, nil
}
