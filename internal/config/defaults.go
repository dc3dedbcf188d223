package config

import (
	"time"

	"github.com/requake-go/requake/internal/families"
	"github.com/requake-go/requake/internal/slip"
)

// defaultConfig returns the built-in defaults, applied before the config
// file and environment overrides, per `defaultConfig` in the reference
// koanf pattern.
func defaultConfig() *Config {
	return &Config{
		CatalogTraceID:                 nil,
		CatalogSearchRange:             50,
		CCPreP:                         10 * time.Second,
		CCTraceLength:                  60 * time.Second,
		CCFreqMin:                      1.0,
		CCFreqMax:                      10.0,
		CCFilterOrder:                  2,
		CCMaxShift:                     10 * time.Second,
		CCAllowNegative:                false,
		CCMin:                          0.9,
		ClusteringAlgorithm:            ClusteringShared,
		SortFamiliesBy:                 families.SortByTime,
		DistanceFromLon:                nil,
		DistanceFromLat:                nil,
		MagToSlipModel:                 slip.NadeauJohnson1998,
		SlipParams:                     slip.Params{},
		NormalizeTracesBeforeAveraging: true,
		TemplateDir:                    "templates",
		TemplateStartTime:              time.Time{},
		TemplateEndTime:                time.Time{},
		TimeChunk:                      300 * time.Second,
		TimeChunkOverlap:               30 * time.Second,
		MinCCMadRatio:                  8.0,
		Workers:                        4,
		OutDir:                         ".",
	}
}
