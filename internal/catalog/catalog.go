// Package catalog supplies the baseline job list used on first run, either
// from a static URL or from a JSON/YAML file on disk.
package catalog

import (
	"context"
	"fmt"

	"jobmate/listings-service/internal/listing"
)

// Source fetches the baseline catalog once at startup.
type Source interface {
	Fetch(ctx context.Context) ([]listing.Job, error)
}

// TransportError reports that the baseline catalog could not be obtained.
// It is terminal for first-run bootstrap only; persisted data wins.
type TransportError struct {
	Source string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Source, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Seed adapts src to listing.SeedFunc.
func Seed(src Source) listing.SeedFunc {
	return src.Fetch
}
