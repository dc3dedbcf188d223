package families

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requake-go/requake/internal/rqerr"
	"github.com/requake-go/requake/internal/slip"
)

func TestParseNumberList(t *testing.T) {
	t.Parallel()

	t.Run("single number", func(t *testing.T) {
		t.Parallel()
		got, err := ParseNumberList("3")
		require.NoError(t, err)
		assert.Equal(t, []int{3}, got)
	})

	t.Run("comma list", func(t *testing.T) {
		t.Parallel()
		got, err := ParseNumberList("3,5,9")
		require.NoError(t, err)
		assert.Equal(t, []int{3, 5, 9}, got)
	})

	t.Run("range", func(t *testing.T) {
		t.Parallel()
		got, err := ParseNumberList("3-6")
		require.NoError(t, err)
		assert.Equal(t, []int{3, 4, 5, 6}, got)
	})

	t.Run("mix of list and range", func(t *testing.T) {
		t.Parallel()
		got, err := ParseNumberList("1,3-5,9")
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3, 4, 5, 9}, got)
	})

	t.Run("empty expression yields nothing", func(t *testing.T) {
		t.Parallel()
		got, err := ParseNumberList("")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("garbage is an error", func(t *testing.T) {
		t.Parallel()
		_, err := ParseNumberList("abc")
		assert.Error(t, err)
	})
}

func TestSelect(t *testing.T) {
	t.Parallel()

	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	newFam := func(valid bool, n int) *Family {
		f := New(0, slip.NadeauJohnson1998, slip.Params{})
		for i := 0; i < n; i++ {
			_ = f.Append(testEvent(string(rune('a'+i)), "NET.STA", 0, 0, 0, 2.0, base.Add(time.Duration(i)*time.Hour)))
		}
		f.Valid = valid
		return f
	}

	t.Run("unfiltered selection returns all valid families", func(t *testing.T) {
		t.Parallel()
		fams := []*Family{newFam(true, 2), newFam(false, 2)}
		out, err := Select(fams, nil, SelectionFilter{})
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})

	t.Run("explicit selection of an invalid family errors", func(t *testing.T) {
		t.Parallel()
		fams := []*Family{newFam(true, 2), newFam(false, 2)}
		_, err := Select(fams, []int{1}, SelectionFilter{})
		require.Error(t, err)
		var rqErr *rqerr.Error
		require.ErrorAs(t, err, &rqErr)
		assert.Equal(t, rqerr.KindInvalidFamily, rqErr.Kind)
	})

	t.Run("selection matching nothing is FamilyNotFound", func(t *testing.T) {
		t.Parallel()
		fams := []*Family{newFam(false, 2)}
		_, err := Select(fams, nil, SelectionFilter{})
		var rqErr *rqerr.Error
		require.ErrorAs(t, err, &rqErr)
		assert.Equal(t, rqerr.KindFamilyNotFound, rqErr.Kind)
	})

	t.Run("out-of-range explicit number is FamilyNotFound", func(t *testing.T) {
		t.Parallel()
		fams := []*Family{newFam(true, 2)}
		_, err := Select(fams, []int{5}, SelectionFilter{})
		var rqErr *rqerr.Error
		require.ErrorAs(t, err, &rqErr)
		assert.Equal(t, rqerr.KindFamilyNotFound, rqErr.Kind)
	})

	t.Run("minimum event count filters short families", func(t *testing.T) {
		t.Parallel()
		fams := []*Family{newFam(true, 1), newFam(true, 3)}
		out, err := Select(fams, nil, SelectionFilter{MinEvents: 2})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Len(t, out[0].Events, 3)
	})
}
