package doctree

import "context"

// Provider is the narrow port every document provider must satisfy. Providers
// hold no per-call state: each call acquires whatever handle it needs and
// releases it before returning.
type Provider interface {
	// Query lists the children of folder in provider order.
	Query(ctx context.Context, folder Location) ([]ListingRow, error)

	// CreateChild creates a directory or an empty file called name under
	// parent and returns its Location. What happens when the name is already
	// taken is up to the provider: it may fail or create alongside.
	CreateChild(ctx context.Context, parent Location, name string, asDirectory bool) (Location, error)
}

// Stater is implemented by providers that can describe a single document.
// Use type assertion to check: if st, ok := provider.(doctree.Stater); ok { ... }
//
// Stat returns a non-nil row or an error. A missing document is reported as
// ErrNotFound; callers treat a nil row with a nil error the same way.
type Stater interface {
	Stat(ctx context.Context, loc Location) (*ListingRow, error)
}
