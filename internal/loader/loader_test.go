package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrowatch/liquidrun/internal/indicator"
)

var sampleEnd = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

func TestCSVLoaderSortsAndDeduplicates(t *testing.T) {
	dir := t.TempDir()
	body := "Date,Close\n" +
		"2025-01-03,3.0\n" +
		"2025-01-01,1.0\n" +
		"2025-01-02,oops\n" +
		"2025-01-03,3.5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spread.csv"), []byte(body), 0o644))

	l := NewCSVLoader(dir, zerolog.Nop())
	s, err := l.Load(context.Background(), "spread")
	require.NoError(t, err)

	require.Equal(t, 2, s.Len(), "bad row skipped, duplicate date collapsed")
	assert.True(t, s.At(0).Time.Before(s.At(1).Time))
	assert.Equal(t, 1.0, s.At(0).Value)
	assert.Equal(t, 3.5, s.At(1).Value, "last row wins on duplicate dates")
	assert.Equal(t, "spread", s.Name)
}

func TestCSVLoaderFallbackColumns(t *testing.T) {
	dir := t.TempDir()
	body := "when,amount\n2025-01-01,42\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.csv"), []byte(body), 0o644))

	s, err := NewCSVLoader(dir, zerolog.Nop()).Load(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 42.0, s.At(0).Value)
}

func TestCSVLoaderNotFound(t *testing.T) {
	l := NewCSVLoader(t.TempDir(), zerolog.Nop())
	_, err := l.Load(context.Background(), "absent")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestLoadSetSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vix.csv"),
		[]byte("date,value\n2025-01-01,18\n"), 0o644))

	set, err := LoadSet(context.Background(), NewCSVLoader(dir, zerolog.Nop()), "vix", "absent")
	require.NoError(t, err)
	assert.True(t, set.Has("vix"))
	assert.False(t, set.Has("absent"))
}

func TestSampleDataDeterministic(t *testing.T) {
	a := SampleData(42, sampleEnd)
	b := SampleData(42, sampleEnd)
	c := SampleData(7, sampleEnd)

	require.Equal(t, len(a), len(b))
	for name, s := range a {
		assert.Equal(t, s.Values(), b[name].Values(), "same seed must reproduce %s", name)
	}
	assert.NotEqual(t, a[indicator.RoleVIX].Values(), c[indicator.RoleVIX].Values(),
		"different seeds should differ")
}

func TestSampleDataCoversEngineInputs(t *testing.T) {
	set := SampleData(42, sampleEnd)

	for _, role := range []string{
		indicator.RoleBankCredit, indicator.RoleHYSpread, indicator.RoleVIX,
		indicator.RoleSP500, indicator.RoleForwardEPS, indicator.RolePERatio,
		indicator.RoleReserves, indicator.RoleRRP, indicator.RoleTGA,
		indicator.RoleFedLending, indicator.RoleFedAssets, indicator.RoleSOMA,
	} {
		require.True(t, set.Has(role), "missing %s", role)
	}

	// Fallback resolution reaches every classifier input.
	for _, role := range []string{
		indicator.RoleCreditGrowth, indicator.RoleSpread, indicator.RoleEquity,
		indicator.RoleValuation, indicator.RoleEarnings,
	} {
		_, ok := set.Resolve(role)
		assert.True(t, ok, "unresolvable %s", role)
	}

	assert.Equal(t, sampleDays, set[indicator.RoleVIX].Len())
	assert.Equal(t, sampleWeeks, set[indicator.RoleReserves].Len())

	last, _ := set[indicator.RoleVIX].Last()
	assert.Equal(t, sampleEnd, last.Time)
}

func TestSampleDataStaysInCalibratedBounds(t *testing.T) {
	set := SampleData(42, sampleEnd)

	for _, v := range set[indicator.RoleVIX].Values() {
		assert.GreaterOrEqual(t, v, 10.0)
		assert.LessOrEqual(t, v, 80.0)
	}
	for _, v := range set[indicator.RoleRRP].Values() {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 2500.0)
	}
}

func TestSampleLoader(t *testing.T) {
	l := NewSampleLoader(42, sampleEnd)

	s, err := l.Load(context.Background(), indicator.RoleVIX)
	require.NoError(t, err)
	assert.Equal(t, sampleDays, s.Len())

	_, err = l.Load(context.Background(), "nope")
	assert.True(t, IsNotFound(err))
}

func TestTokenBucketGateBackoff(t *testing.T) {
	g := NewTokenBucketGate(1000, 10, zerolog.Nop())

	assert.Equal(t, time.Second, g.RecordFailure())
	assert.Equal(t, 2*time.Second, g.RecordFailure())
	assert.Equal(t, 4*time.Second, g.RecordFailure())

	g.RecordSuccess()
	assert.Equal(t, time.Second, g.RecordFailure(), "success resets the streak")

	for i := 0; i < 10; i++ {
		g.RecordFailure()
	}
	assert.True(t, g.Exhausted())
	assert.Equal(t, time.Duration(0), g.RecordFailure())
}

func TestTokenBucketGateAcquire(t *testing.T) {
	g := NewTokenBucketGate(1000, 10, zerolog.Nop())
	require.NoError(t, g.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g.RecordFailure() // arms a backoff delay the canceled context interrupts
	assert.Error(t, g.Acquire(ctx))
}
