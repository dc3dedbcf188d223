package pairs

import (
	"time"

	"github.com/requake-go/requake/internal/catalog"
	"github.com/requake-go/requake/internal/conv"
)

func eventFromCells(evid string, origTime time.Time, lon, lat, depth, magType, mag, traceID string) catalog.Event {
	return catalog.Event{
		EVID:     evid,
		OrigTime: origTime,
		Lon:      conv.FloatOrNil(lon),
		Lat:      conv.FloatOrNil(lat),
		Depth:    conv.FloatOrNil(depth),
		MagType:  magType,
		Mag:      conv.FloatOrNil(mag),
		TraceID:  traceID,
	}
}
