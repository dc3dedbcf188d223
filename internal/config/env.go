package config

import "strings"

// envTransform maps REQUAKE_CC_MIN -> cc_min, REQUAKE_CATALOG_SEARCH_RANGE
// -> catalog_search_range, matching the reference implementation's
// env-to-koanf-path transform.
func envTransform(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	return strings.ToLower(s)
}
