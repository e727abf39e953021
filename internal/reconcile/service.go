package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/feature"
	"github.com/frahmantamala/hr-management/internal/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

var (
	reconciliationScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hr_reconciliation_score",
		Help: "Score of the last route reconciliation report (0-100)",
	})

	reconciliationIssues = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hr_reconciliation_issues",
		Help: "Issues found by the last reconciliation report, by kind",
	}, []string{"kind"})

	reconciliationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hr_reconciliation_duration_seconds",
		Help:    "Duration of reconciliation report generation",
		Buckets: prometheus.DefBuckets,
	})
)

// SnapshotSource reads the database side of the comparison.
type SnapshotSource interface {
	Features(ctx context.Context) ([]FeatureRecord, error)
	Grants(ctx context.Context) ([]GrantRecord, error)
	Sections(ctx context.Context) ([]SectionRecord, error)
}

type FeatureImporter interface {
	Import(ctx context.Context, features []*feature.Feature) error
}

type SyncResult struct {
	Inserted []string `json:"inserted"`
}

type Service struct {
	source   SnapshotSource
	importer FeatureImporter
	registry *registry.Holder
	maxAge   time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(source SnapshotSource, importer FeatureImporter, holder *registry.Holder, maxAge time.Duration, logger *slog.Logger) *Service {
	return &Service{
		source:   source,
		importer: importer,
		registry: holder,
		maxAge:   maxAge,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) Report(ctx context.Context) (*Report, error) {
	start := time.Now()
	defer func() { reconciliationDuration.Observe(time.Since(start).Seconds()) }()

	var (
		rows     []FeatureRecord
		grants   []GrantRecord
		sections []SectionRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.source.Features(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		grants, err = s.source.Grants(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		sections, err = s.source.Sections(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, internal.NewInternalError("failed to load reconciliation snapshot", err)
	}

	report := Build(s.registry.Get(), rows, grants, sections, s.now().UTC(), s.maxAge)
	s.record(report)
	s.logger.Info("reconciliation report generated",
		"score", report.Score,
		"unregistered", report.Counts.Unregistered,
		"orphaned", report.Counts.Orphaned,
		"duplicates", report.Counts.Duplicates)
	return &report, nil
}

// Sync inserts a database row for every registry feature the database lacks.
func (s *Service) Sync(ctx context.Context) (*SyncResult, error) {
	rows, err := s.source.Features(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to load features", err)
	}
	routes := ValidateRoutes(s.registry.Get(), rows)

	result := &SyncResult{Inserted: []string{}}
	if len(routes.Unregistered) == 0 {
		return result, nil
	}

	batch := make([]*feature.Feature, 0, len(routes.Unregistered))
	for _, e := range routes.Unregistered {
		batch = append(batch, &feature.Feature{
			Code:        e.Code,
			Name:        e.Name,
			Route:       e.Route,
			ModuleCode:  e.Module,
			TabCode:     e.Tab,
			Description: e.Description,
			IsActive:    true,
		})
		result.Inserted = append(result.Inserted, e.Code)
	}
	if err := s.importer.Import(ctx, batch); err != nil {
		return nil, err
	}
	s.logger.Info("registry synced to database", "inserted", len(batch))
	return result, nil
}

func (s *Service) record(r Report) {
	reconciliationScore.Set(float64(r.Score))
	c := r.Counts
	for kind, n := range map[string]int{
		"unregistered":  c.Unregistered,
		"orphaned":      c.Orphaned,
		"orphan_grants": c.OrphanGrants,
		"unsynced":      c.Unsynced,
		"duplicates":    c.Duplicates,
		"undocumented":  c.Undocumented,
		"stale":         c.Stale,
		"dangling":      c.Dangling,
	} {
		reconciliationIssues.WithLabelValues(kind).Set(float64(n))
	}
}
