package navigation

import (
	"context"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/core/common/resolve"
	"github.com/frahmantamala/hr-management/internal/feature"
	"github.com/frahmantamala/hr-management/internal/registry"
)

type MenuItem struct {
	Code   string         `json:"code"`
	Name   string         `json:"name"`
	Tab    string         `json:"tab,omitempty"`
	Path   string         `json:"path"`
	Source resolve.Source `json:"source"`
}

type MenuModule struct {
	Code  string     `json:"code"`
	Name  string     `json:"name"`
	Icon  string     `json:"icon,omitempty"`
	Items []MenuItem `json:"items"`
}

// Menu builds the sidebar for user. Features the user cannot view, and
// features with no resolvable route, are left out; empty modules are dropped.
func (r *Resolver) Menu(ctx context.Context, user *auth.User) ([]MenuModule, error) {
	if user == nil {
		return nil, internal.ErrInvalidToken
	}

	rows := map[string]*feature.Feature{}
	if r.features != nil {
		active, err := r.features.List(ctx, true)
		if err != nil {
			return nil, internal.NewInternalError("failed to load features", err)
		}
		for _, f := range active {
			rows[f.Code] = f
		}
	}

	reg := r.registry.Get()
	menu := make([]MenuModule, 0)
	for _, mod := range reg.Modules() {
		item := MenuModule{Code: mod.Code, Name: mod.Name, Icon: mod.Icon, Items: []MenuItem{}}
		add := func(tab string, f registry.Feature) {
			if !user.Can(f.Code, "view") {
				return
			}
			if mi, ok := menuItem(ctx, reg, rows, f, tab); ok {
				item.Items = append(item.Items, mi)
			}
		}
		for _, f := range mod.Features {
			add("", f)
		}
		for _, t := range mod.Tabs {
			for _, f := range t.Features {
				add(t.Code, f)
			}
		}
		if len(item.Items) > 0 {
			menu = append(menu, item)
		}
	}
	return menu, nil
}

func menuItem(ctx context.Context, reg *registry.Registry, rows map[string]*feature.Feature, f registry.Feature, tab string) (MenuItem, bool) {
	name := f.Name
	path, source, _ := resolve.First(ctx,
		resolve.From(resolve.SourceDatabase, func(context.Context) (string, bool, error) {
			row, ok := rows[f.Code]
			if !ok || !row.Resolvable() {
				return "", false, nil
			}
			name = row.Name
			return row.Route, true, nil
		}),
		resolve.From(resolve.SourceRegistry, registryLookup(reg, f.Code)),
		resolve.From(resolve.SourceLegacy, legacyLookup(reg, f.Code)),
	)
	if source == resolve.SourceNone {
		return MenuItem{}, false
	}
	return MenuItem{Code: f.Code, Name: name, Tab: tab, Path: path, Source: source}, true
}
