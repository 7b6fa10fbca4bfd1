// Package loader brings indicator series into the engine: CSV files on
// disk and a deterministic synthetic generator for offline use. Loaders
// deliver series sorted by timestamp with duplicates collapsed, which
// the engine packages rely on.
package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/macrowatch/liquidrun/internal/indicator"
	"github.com/macrowatch/liquidrun/internal/series"
)

// Loader fetches one indicator series by name.
type Loader interface {
	Load(ctx context.Context, name string) (series.Series, error)
}

// LoadSet loads the named indicators into a set. Missing indicators
// are skipped; the first non-not-found error aborts.
func LoadSet(ctx context.Context, l Loader, names ...string) (indicator.Set, error) {
	set := make(indicator.Set, len(names))
	for _, name := range names {
		s, err := l.Load(ctx, name)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
		set[name] = s
	}
	return set, nil
}

// NotFoundError marks an indicator the loader has no data for.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no data for indicator %q", e.Name)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
