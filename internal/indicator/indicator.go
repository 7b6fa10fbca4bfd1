// Package indicator names the canonical indicator roles the classifiers
// consume and resolves fallbacks in one place, so regime scoring and
// alerting read their inputs through the same lens.
package indicator

import (
	"sort"
	"time"

	"github.com/macrowatch/liquidrun/internal/series"
)

// Canonical role keys. Loaders publish series under these names.
const (
	RoleCreditGrowth = "credit_growth"
	RoleBankCredit   = "bank_credit"
	RoleSpread       = "spread"
	RoleHYSpread     = "hy_spread"
	RoleVIX          = "vix"
	RoleEquity       = "equity"
	RoleSP500        = "sp500"
	RoleValuation    = "valuation"
	RolePERatio      = "pe_ratio"
	RoleEarnings     = "earnings"
	RoleForwardEPS   = "forward_eps"
	RoleReserves     = "reserves"
	RoleRRP          = "rrp"
	RoleTGA          = "tga"
	RoleSOMA         = "soma"
	RoleFedLending   = "fed_lending"
	RoleFedAssets    = "fed_assets"
)

// fallbacks maps a preferred role to the role used when it is absent.
var fallbacks = map[string]string{
	RoleCreditGrowth: RoleBankCredit,
	RoleSpread:       RoleHYSpread,
	RoleEquity:       RoleSP500,
	RoleValuation:    RolePERatio,
	RoleEarnings:     RoleForwardEPS,
}

// Set is a named collection of input series keyed by role.
type Set map[string]series.Series

// Resolve returns the series for a role, falling back to the role's
// substitute when the preferred key is absent or empty. The second
// return is false when neither is usable.
func (s Set) Resolve(role string) (series.Series, bool) {
	if ser, ok := s[role]; ok && !ser.IsEmpty() {
		return ser, true
	}
	if fb, ok := fallbacks[role]; ok {
		if ser, ok := s[fb]; ok && !ser.IsEmpty() {
			return ser, true
		}
	}
	return series.Series{}, false
}

// Has reports whether the set carries a non-empty series under the
// exact key, without fallback resolution.
func (s Set) Has(role string) bool {
	ser, ok := s[role]
	return ok && !ser.IsEmpty()
}

// AsOf returns a copy of the set with every series truncated to
// observations at or before t. A zero t returns the set unchanged.
func (s Set) AsOf(t time.Time) Set {
	if t.IsZero() {
		return s
	}
	out := make(Set, len(s))
	for role, ser := range s {
		out[role] = ser.AsOf(t)
	}
	return out
}

// Stale returns the roles among the given candidates whose latest
// observation is older than maxAge relative to now. With no candidates
// every role in the set is checked, in sorted order.
func (s Set) Stale(now time.Time, maxAge time.Duration, roles ...string) []string {
	if len(roles) == 0 {
		roles = make([]string, 0, len(s))
		for role := range s {
			roles = append(roles, role)
		}
		sort.Strings(roles)
	}
	var stale []string
	for _, role := range roles {
		ser, ok := s[role]
		if !ok || ser.IsEmpty() {
			continue
		}
		if last, ok := ser.Last(); ok && now.Sub(last.Time) > maxAge {
			stale = append(stale, role)
		}
	}
	return stale
}
