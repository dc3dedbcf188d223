package waveform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTraceIDRoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("normal id", func(t *testing.T) {
		t.Parallel()
		id, err := ParseTraceID("NET.STA.00.HHZ")
		require.NoError(t, err)
		assert.Equal(t, "NET.STA.00.HHZ", id.String())
	})

	t.Run("empty network round-trips through @@", func(t *testing.T) {
		t.Parallel()
		id, err := ParseTraceID("@@.STA..HHZ")
		require.NoError(t, err)
		assert.Equal(t, "", id.Network)
		assert.Equal(t, "@@.STA..HHZ", id.String())
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		t.Parallel()
		_, err := ParseTraceID("NET.STA")
		assert.Error(t, err)
	})

	t.Run("dots within a field become underscores on output", func(t *testing.T) {
		t.Parallel()
		id := TraceID{Network: "N.E", Station: "STA", Location: "", Channel: "HHZ"}
		assert.Equal(t, "N_E.STA..HHZ", id.String())
	})
}
