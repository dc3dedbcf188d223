package families

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requake-go/requake/internal/slip"
)

func buildTestFamilies(t *testing.T) []*Family {
	t.Helper()
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	f0 := New(-1, slip.NadeauJohnson1998, slip.Params{})
	require.NoError(t, f0.Append(testEvent("a", "NET.STA", 1, 2, 3, 2.0, base)))
	require.NoError(t, f0.Append(testEvent("b", "NET.STA", 1, 2, 3, 2.1, base.Add(time.Hour))))

	f1 := New(-1, slip.NadeauJohnson1998, slip.Params{})
	require.NoError(t, f1.Append(testEvent("c", "NET.STA2", 4, 5, 6, 3.0, base)))
	f1.Valid = false

	return []*Family{f0, f1}
}

func TestWriteAndReadCSV(t *testing.T) {
	t.Parallel()

	fams := buildTestFamilies(t)
	path := filepath.Join(t.TempDir(), "families.csv")
	require.NoError(t, WriteCSV(path, fams))

	readBack, err := ReadCSV(path, slip.NadeauJohnson1998, slip.Params{})
	require.NoError(t, err)
	require.Len(t, readBack, 2)

	assert.Len(t, readBack[0].Events, 2)
	assert.True(t, readBack[0].Valid)
	assert.Len(t, readBack[1].Events, 1)
	assert.False(t, readBack[1].Valid)
}

func TestSort(t *testing.T) {
	t.Parallel()

	t.Run("sorts by time ascending", func(t *testing.T) {
		t.Parallel()
		fams := buildTestFamilies(t)
		fams[0], fams[1] = fams[1], fams[0]
		require.NoError(t, Sort(fams, SortByTime, nil, nil))
		assert.True(t, fams[0].StartTime.Before(fams[1].StartTime) || fams[0].StartTime.Equal(fams[1].StartTime))
	})

	t.Run("distance_from without a reference point is a config error", func(t *testing.T) {
		t.Parallel()
		fams := buildTestFamilies(t)
		err := Sort(fams, SortByDistanceFrom, nil, nil)
		assert.Error(t, err)
	})

	t.Run("unknown sort mode is a config error", func(t *testing.T) {
		t.Parallel()
		fams := buildTestFamilies(t)
		err := Sort(fams, SortMode("bogus"), nil, nil)
		assert.Error(t, err)
	})
}
