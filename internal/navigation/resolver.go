// Package navigation turns feature codes into routes and builds the sidebar.
//
// A code resolves through an ordered chain of sources: an active database row
// with a route, then the feature registry, then the first legacy route the
// registry remembers for it. The first source with an answer wins.
package navigation

import (
	"context"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/core/common/resolve"
	"github.com/frahmantamala/hr-management/internal/feature"
	"github.com/frahmantamala/hr-management/internal/registry"
)

type FeatureSource interface {
	GetByCode(ctx context.Context, code string) (*feature.Feature, error)
	List(ctx context.Context, activeOnly bool) ([]*feature.Feature, error)
}

type Resolution struct {
	Code   string         `json:"code"`
	Path   string         `json:"path"`
	Source resolve.Source `json:"source"`
}

type Resolver struct {
	features FeatureSource
	registry *registry.Holder
}

func NewResolver(features FeatureSource, holder *registry.Holder) *Resolver {
	return &Resolver{features: features, registry: holder}
}

func (r *Resolver) Resolve(ctx context.Context, code string) (Resolution, error) {
	if code == "" {
		return Resolution{}, internal.NewValidationFieldError("code", "code is required", internal.ErrCodeInvalidCode)
	}
	reg := r.registry.Get()

	path, source, err := resolve.First(ctx,
		resolve.From(resolve.SourceDatabase, r.databaseLookup(code)),
		resolve.From(resolve.SourceRegistry, registryLookup(reg, code)),
		resolve.From(resolve.SourceLegacy, legacyLookup(reg, code)),
	)
	if err != nil {
		return Resolution{}, internal.NewInternalError("failed to resolve route", err)
	}
	if source == resolve.SourceNone {
		return Resolution{Code: code, Source: source}, internal.ErrRouteNotResolved
	}
	return Resolution{Code: code, Path: path, Source: source}, nil
}

// Redirect maps a path, current or legacy, onto the feature's resolved route.
func (r *Resolver) Redirect(ctx context.Context, path string) (Resolution, error) {
	entry, ok := r.registry.Get().ByRoute(path)
	if !ok {
		return Resolution{}, internal.ErrRouteNotResolved
	}
	return r.Resolve(ctx, entry.Code)
}

func (r *Resolver) databaseLookup(code string) resolve.LookupFunc[string] {
	if r.features == nil {
		return nil
	}
	return func(ctx context.Context) (string, bool, error) {
		f, err := r.features.GetByCode(ctx, code)
		if err != nil {
			return "", false, err
		}
		if f == nil || !f.Resolvable() {
			return "", false, nil
		}
		return f.Route, true, nil
	}
}

func registryLookup(reg *registry.Registry, code string) resolve.LookupFunc[string] {
	return func(context.Context) (string, bool, error) {
		e, ok := reg.Lookup(code)
		if !ok || e.Route == "" {
			return "", false, nil
		}
		return e.Route, true, nil
	}
}

func legacyLookup(reg *registry.Registry, code string) resolve.LookupFunc[string] {
	return func(context.Context) (string, bool, error) {
		route, ok := reg.LegacyRoute(code)
		return route, ok, nil
	}
}
