package evid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("is deterministic for identical inputs", func(t *testing.T) {
		t.Parallel()
		tm := time.Date(2023, 6, 15, 12, 30, 0, 0, time.UTC)
		require.Equal(t, Generate(tm), Generate(tm))
	})

	t.Run("has the expected shape", func(t *testing.T) {
		t.Parallel()
		tm := time.Date(2023, 6, 15, 12, 30, 0, 0, time.UTC)
		id := Generate(tm)
		require.Len(t, id, len("reqk")+4+6)
		assert.Equal(t, "reqk2023", id[:8])
		for _, c := range id[8:] {
			assert.True(t, c >= 'a' && c <= 'z')
		}
	})

	t.Run("start of year maps near aaaaaa", func(t *testing.T) {
		t.Parallel()
		tm := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, "reqk2024aaaaaa", Generate(tm))
	})

	t.Run("differs across distinct times", func(t *testing.T) {
		t.Parallel()
		a := Generate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
		b := Generate(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC))
		assert.NotEqual(t, a, b)
	})
}
