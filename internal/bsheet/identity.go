package bsheet

import (
	"math"

	"github.com/macrowatch/liquidrun/internal/series"
)

// IdentityResult holds the balance-sheet identity check per period.
// The first observation of every column is NaN (no prior period to
// difference against) and Balanced is false there.
type IdentityResult struct {
	LHS      series.Series
	RHS      series.Series
	Residual series.Series
	Absolute series.Series
	Balanced []bool
}

// BalancedShare returns the fraction of periods with a defined,
// in-tolerance residual.
func (r IdentityResult) BalancedShare() float64 {
	if len(r.Balanced) == 0 {
		return math.NaN()
	}
	n := 0
	for _, b := range r.Balanced {
		if b {
			n++
		}
	}
	return float64(n) / float64(len(r.Balanced))
}

// VerifyIdentity checks the accounting identity
//
//	Δreserves = Δsoma + Δlending - Δrrp - Δtga
//
// period by period. A period is balanced when the absolute residual is
// within tolerance (billions). Any empty or mismatched input returns
// an all-empty result.
func VerifyIdentity(reserves, soma, lending, rrp, tga series.Series, tolerance float64) IdentityResult {
	if !series.Aligned(reserves, soma, lending, rrp, tga) {
		return IdentityResult{}
	}

	res := reserves.Values()
	so := soma.Values()
	le := lending.Values()
	rp := rrp.Values()
	tg := tga.Values()

	n := len(res)
	lhs := make([]float64, n)
	rhs := make([]float64, n)
	residual := make([]float64, n)
	abs := make([]float64, n)
	balanced := make([]bool, n)
	for i := 0; i < n; i++ {
		if i == 0 {
			lhs[i], rhs[i], residual[i], abs[i] = math.NaN(), math.NaN(), math.NaN(), math.NaN()
			continue
		}
		lhs[i] = res[i] - res[i-1]
		rhs[i] = (so[i] - so[i-1]) + (le[i] - le[i-1]) - (rp[i] - rp[i-1]) - (tg[i] - tg[i-1])
		residual[i] = lhs[i] - rhs[i]
		abs[i] = math.Abs(residual[i])
		balanced[i] = abs[i] <= tolerance
	}

	return IdentityResult{
		LHS:      reserves.Derived("identity_lhs", lhs),
		RHS:      reserves.Derived("identity_rhs", rhs),
		Residual: reserves.Derived("identity_residual", residual),
		Absolute: reserves.Derived("identity_imbalance", abs),
		Balanced: balanced,
	}
}
