package registry

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/frahmantamala/hr-management/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MaxFileSize bounds the external registry file.
const MaxFileSize = 1024 * 1024

const EmbeddedSource = "embedded"

//go:embed features.yaml
var defaultFeaturesYAML []byte

var (
	registryLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hr_registry_load_duration_seconds",
		Help:    "Duration of feature registry loading",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	registryLoadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hr_registry_load_errors_total",
		Help: "Total feature registry load errors",
	})

	registryEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hr_registry_entries",
		Help: "Number of features in the active registry",
	})

	registryReloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hr_registry_reloads_total",
		Help: "Total successful hot reloads of the feature registry",
	})
)

// Embedded parses the registry compiled into the binary.
func Embedded() (*Registry, error) {
	return Parse(defaultFeaturesYAML, EmbeddedSource)
}

// Load reads the external registry at path, falling back to the embedded
// default when path is empty or the file cannot be used.
func Load(ctx context.Context, path string) (*Registry, error) {
	start := time.Now()
	defer func() { registryLoadDuration.Observe(time.Since(start).Seconds()) }()

	log := logger.From(ctx).With("component", "registry")

	if path != "" {
		r, err := LoadFile(path)
		if err == nil {
			log.Info("feature registry loaded", "source", path, "features", r.Count())
			return r, nil
		}
		registryLoadErrors.Inc()
		log.Warn("external feature registry unusable, using embedded default", "path", path, "error", err)
	}

	r, err := Embedded()
	if err != nil {
		registryLoadErrors.Inc()
		return nil, fmt.Errorf("embedded registry: %w", err)
	}
	return r, nil
}

func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("registry file %s exceeds %d bytes", path, MaxFileSize)
	}
	return Parse(data, path)
}
