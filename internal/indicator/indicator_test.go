package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrowatch/liquidrun/internal/series"
)

func mk(name string, n int, end time.Time) series.Series {
	times := make([]time.Time, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		times[i] = end.AddDate(0, 0, -(n - 1 - i))
		values[i] = float64(i)
	}
	return series.New(name, times, values)
}

func TestResolvePrefersDirectRole(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	set := Set{
		RoleCreditGrowth: mk(RoleCreditGrowth, 5, end),
		RoleBankCredit:   mk(RoleBankCredit, 9, end),
	}

	s, ok := set.Resolve(RoleCreditGrowth)
	require.True(t, ok)
	assert.Equal(t, RoleCreditGrowth, s.Name)
}

func TestResolveFallsBack(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	set := Set{RoleBankCredit: mk(RoleBankCredit, 5, end)}

	s, ok := set.Resolve(RoleCreditGrowth)
	require.True(t, ok)
	assert.Equal(t, RoleBankCredit, s.Name)

	_, ok = set.Resolve(RoleVIX)
	assert.False(t, ok, "vix has no fallback")
}

func TestResolveSkipsEmptySeries(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	set := Set{
		RoleSpread:   series.Empty(RoleSpread),
		RoleHYSpread: mk(RoleHYSpread, 3, end),
	}

	s, ok := set.Resolve(RoleSpread)
	require.True(t, ok)
	assert.Equal(t, RoleHYSpread, s.Name)
}

func TestAsOfTruncatesEverySeries(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	set := Set{
		RoleVIX: mk(RoleVIX, 10, end),
		RoleTGA: mk(RoleTGA, 10, end),
	}

	cut := set.AsOf(end.AddDate(0, 0, -3))
	assert.Equal(t, 7, cut[RoleVIX].Len())
	assert.Equal(t, 7, cut[RoleTGA].Len())

	same := set.AsOf(time.Time{})
	assert.Equal(t, 10, same[RoleVIX].Len())
}

func TestStale(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	set := Set{
		RoleVIX:    mk(RoleVIX, 10, end),
		RoleSpread: mk(RoleSpread, 10, end.AddDate(0, 0, -30)),
	}

	stale := set.Stale(end, 7*24*time.Hour, RoleVIX, RoleSpread, RoleTGA)
	assert.Equal(t, []string{RoleSpread}, stale)
}

func TestStaleWithoutCandidatesChecksEveryRole(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	set := Set{
		RoleVIX:    mk(RoleVIX, 10, end),
		RoleTGA:    mk(RoleTGA, 10, end.AddDate(0, 0, -30)),
		RoleEquity: mk(RoleEquity, 10, end.AddDate(0, 0, -20)),
	}

	stale := set.Stale(end, 7*24*time.Hour)
	assert.Equal(t, []string{RoleEquity, RoleTGA}, stale, "all roles checked, sorted")
}
