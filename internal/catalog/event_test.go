package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFDSNText(t *testing.T) {
	t.Parallel()

	t.Run("parses a complete line", func(t *testing.T) {
		t.Parallel()
		line := "reqk2023aaaaaa|2023-06-15T12:30:00|45.1|7.2|5.5|ISC|ISC|net|id1|Ml|2.3|net|Somewhere"
		ev, err := FromFDSNText(line)
		require.NoError(t, err)
		assert.Equal(t, "reqk2023aaaaaa", ev.EVID)
		assert.Equal(t, time.Date(2023, 6, 15, 12, 30, 0, 0, time.UTC), ev.OrigTime)
		require.NotNil(t, ev.Lat)
		assert.InDelta(t, 45.1, *ev.Lat, 1e-9)
		require.NotNil(t, ev.Lon)
		assert.InDelta(t, 7.2, *ev.Lon, 1e-9)
		assert.Equal(t, "Ml", ev.MagType)
	})

	t.Run("tolerates missing numeric fields", func(t *testing.T) {
		t.Parallel()
		line := "reqk2023aaaaaa|2023-06-15T12:30:00|||||||||||"
		ev, err := FromFDSNText(line)
		require.NoError(t, err)
		assert.Nil(t, ev.Lat)
		assert.Nil(t, ev.Mag)
	})

	t.Run("rejects a short line", func(t *testing.T) {
		t.Parallel()
		_, err := FromFDSNText("too|short")
		assert.Error(t, err)
	})

	t.Run("round-trips through FDSNText", func(t *testing.T) {
		t.Parallel()
		line := "reqk2023aaaaaa|2023-06-15T12:30:00|45.1|7.2|5.5|ISC|ISC|net|id1|Ml|2.3|net|Somewhere"
		ev, err := FromFDSNText(line)
		require.NoError(t, err)
		again, err := FromFDSNText(ev.FDSNText())
		require.NoError(t, err)
		assert.True(t, ev.Equal(again))
		assert.Equal(t, ev.OrigTime, again.OrigTime)
	})
}

func TestEventEqualAndOrder(t *testing.T) {
	t.Parallel()

	a := Event{EVID: "e1", TraceID: "NET.STA..HHZ", OrigTime: time.Unix(100, 0)}
	b := Event{EVID: "e1", TraceID: "NET.STA..HHZ", OrigTime: time.Unix(200, 0)}
	c := Event{EVID: "e1", TraceID: "NET.STB..HHZ", OrigTime: time.Unix(100, 0)}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
}
