// Package config loads and validates the requake pipeline configuration
//, layering built-in defaults, an optional YAML file, and
// environment variable overrides via koanf, per
// `tomtom215-cartographus/internal/config/koanf.go`'s `LoadWithKoanf`
// pattern.
package config

import (
	"time"

	"github.com/requake-go/requake/internal/families"
	"github.com/requake-go/requake/internal/slip"
)

// Config holds every tunable for a requake pipeline run.
type Config struct {
	// Catalog / similarity scan.
	CatalogTraceID     []string `koanf:"catalog_trace_id"`
	CatalogSearchRange float64  `koanf:"catalog_search_range"`

	// Event-window fetch and correlation.
	CCPreP           time.Duration `koanf:"cc_pre_p"`
	CCTraceLength    time.Duration `koanf:"cc_trace_length"`
	CCFreqMin        float64       `koanf:"cc_freq_min"`
	CCFreqMax        float64       `koanf:"cc_freq_max"`
	CCFilterOrder    int           `koanf:"cc_filter_order"`
	CCMaxShift       time.Duration `koanf:"cc_max_shift"`
	CCAllowNegative  bool          `koanf:"cc_allow_negative"`
	CCMin            float64       `koanf:"cc_min"`

	// Family builder.
	ClusteringAlgorithm ClusteringAlgorithm `koanf:"clustering_algorithm"`
	SortFamiliesBy      families.SortMode   `koanf:"sort_families_by"`
	DistanceFromLon     *float64            `koanf:"distance_from_lon"`
	DistanceFromLat     *float64            `koanf:"distance_from_lat"`
	MagToSlipModel      slip.Model          `koanf:"mag_to_slip_model"`
	SlipParams          slip.Params         `koanf:"slip_params"`

	// Template builder.
	NormalizeTracesBeforeAveraging bool   `koanf:"normalize_traces_before_averaging"`
	TemplateDir                    string `koanf:"template_dir"`

	// Template scanner.
	TemplateStartTime time.Time     `koanf:"template_start_time"`
	TemplateEndTime   time.Time     `koanf:"template_end_time"`
	TimeChunk         time.Duration `koanf:"time_chunk"`
	TimeChunkOverlap  time.Duration `koanf:"time_chunk_overlap"`
	MinCCMadRatio     float64       `koanf:"min_cc_mad_ratio"`

	// Parallelism / output.
	Workers int    `koanf:"workers"`
	OutDir  string `koanf:"out_dir"`
}

// ClusteringAlgorithm names a family-builder algorithm
// `clustering_algorithm`.
type ClusteringAlgorithm string

const (
	ClusteringShared ClusteringAlgorithm = "shared"
	ClusteringUPGMA  ClusteringAlgorithm = "UPGMA"
)
