// Package evid generates synthetic event ids for detections and for
// catalog rows ingested without one Event-id generation.
package evid

import (
	"fmt"
	"time"
)

const chars = "abcdefghijklmnopqrstuvwxyz"

// base26 represents val as 6 characters from the lowercase latin
// alphabet, left-padded with 'a'.
func base26(val int64) string {
	const width = 6
	buf := make([]byte, 0, width)
	for {
		buf = append(buf, chars[val%26])
		val /= 26
		if val == 0 {
			break
		}
	}
	for len(buf) < width {
		buf = append(buf, 'a')
	}
	// buf was built least-significant-digit first; reverse it.
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// maxSecondsInYear is the number of seconds in a leap year, used to
// normalize the within-year offset regardless of whether the actual
// year is a leap year.
const maxSecondsInYear = 366 * 24 * 3600

// Generate builds an event id from an origin time: "reqk" + year +
// six base-26 characters derived from the number of seconds elapsed
// since the start of that year, normalized into [0, 26^6-1].
//
// Pure function of origTime: identical inputs always yield identical
// ids.
func Generate(origTime time.Time) string {
	origTime = origTime.UTC()
	year := origTime.Year()
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	elapsed := origTime.Sub(yearStart).Seconds()

	const maxVal = 26*26*26*26*26*26 - 1
	normVal := int64(elapsed / maxSecondsInYear * float64(maxVal))
	if normVal < 0 {
		normVal = 0
	}
	if normVal > maxVal {
		normVal = maxVal
	}
	return fmt.Sprintf("reqk%d%s", year, base26(normVal))
}
