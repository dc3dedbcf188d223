package families

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/requake-go/requake/internal/rqerr"
)

// ParseNumberList parses a family-number selection expression: a single
// number ("3"), a comma list ("3,5,9"), a range ("3-9"), or a mix of
// the two ("1,3-5,9").
func ParseNumberList(expr string) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			lov, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("families: invalid range start %q", part)
			}
			hiv, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("families: invalid range end %q", part)
			}
			for n := lov; n <= hiv; n++ {
				out = append(out, n)
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("families: invalid family number %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

// SelectionFilter constrains which families a selection accepts.
type SelectionFilter struct {
	LongerThanYears  *float64
	ShorterThanYears *float64
	MinEvents        int
}

// Select returns the families at the given positional indices (as
// assigned by WriteCSV/ReadCSV's sequential numbering) that pass
// filter, in the order requested. An explicit selection that is
// flagged invalid or fails MinEvents is a KindInvalidFamily error; a
// selection (explicit or filtered) that yields nothing at all is
// KindFamilyNotFound.
func Select(fams []*Family, numbers []int, filter SelectionFilter) ([]*Family, error) {
	explicit := len(numbers) > 0
	var candidates []*Family
	if explicit {
		for _, n := range numbers {
			if n < 0 || n >= len(fams) {
				return nil, rqerr.New(rqerr.KindFamilyNotFound,
					fmt.Sprintf("family number %d does not exist", n))
			}
			candidates = append(candidates, fams[n])
		}
	} else {
		candidates = append(candidates, fams...)
	}

	var out []*Family
	for _, fam := range candidates {
		ok, reason := passesFilter(fam, filter)
		if ok {
			out = append(out, fam)
			continue
		}
		if explicit {
			return nil, rqerr.New(rqerr.KindInvalidFamily,
				fmt.Sprintf("family %d: %s", fam.Number, reason))
		}
	}
	if len(out) == 0 {
		return nil, rqerr.New(rqerr.KindFamilyNotFound, "selection matched no families")
	}
	return out, nil
}

func passesFilter(fam *Family, filter SelectionFilter) (bool, string) {
	if !fam.Valid {
		return false, "flagged invalid"
	}
	if filter.MinEvents > 0 && len(fam.Events) < filter.MinEvents {
		return false, fmt.Sprintf("has %d events, fewer than the required %d", len(fam.Events), filter.MinEvents)
	}
	if filter.LongerThanYears != nil && fam.Duration <= *filter.LongerThanYears {
		return false, fmt.Sprintf("duration %.3fy does not exceed %.3fy", fam.Duration, *filter.LongerThanYears)
	}
	if filter.ShorterThanYears != nil && fam.Duration >= *filter.ShorterThanYears {
		return false, fmt.Sprintf("duration %.3fy is not below %.3fy", fam.Duration, *filter.ShorterThanYears)
	}
	return true, ""
}
