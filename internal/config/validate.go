package config

import (
	"fmt"

	"github.com/requake-go/requake/internal/families"
	"github.com/requake-go/requake/internal/rqerr"
)

// Validate checks internal consistency, returning a ConfigError for
// violations such as `sort_families_by = distance_from` without a
// reference point, or an unknown clustering algorithm.
func (c *Config) Validate() error {
	if c.SortFamiliesBy == families.SortByDistanceFrom &&
		(c.DistanceFromLon == nil || c.DistanceFromLat == nil) {
		return rqerr.New(rqerr.KindConfigError,
			"sort_families_by = distance_from requires distance_from_lon and distance_from_lat")
	}
	switch c.ClusteringAlgorithm {
	case ClusteringShared, ClusteringUPGMA:
	default:
		return rqerr.New(rqerr.KindConfigError,
			fmt.Sprintf("unknown clustering_algorithm %q", c.ClusteringAlgorithm))
	}
	return nil
}
