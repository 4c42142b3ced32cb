package doctree

import "context"

// Resolver finds children by name. Providers offer no lookup by name, so every
// call lists the folder and scans it linearly; nothing is cached.
//
// When a folder holds several children with the same name only the first one,
// in provider order, is ever found.
type Resolver struct {
	client *Client
}

// NewResolver creates a Resolver on top of client.
func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

// Client returns the underlying query client.
func (r *Resolver) Client() *Client { return r.client }

// FindDocument returns the first child of folder whose name is exactly name.
func (r *Resolver) FindDocument(ctx context.Context, folder Location, name string) (*Document, bool) {
	for _, row := range r.client.List(ctx, folder) {
		if NameOf(row.ID) == name {
			return &Document{Location: ChildLocation(folder, row.ID), Row: row}, true
		}
	}
	return nil, false
}

// FindLocation returns the Location of the first child of folder named name.
func (r *Resolver) FindLocation(ctx context.Context, folder Location, name string) (Location, bool) {
	doc, ok := r.FindDocument(ctx, folder, name)
	if !ok {
		return Location{}, false
	}
	return doc.Location, true
}

// FindLocationAndIsDirectory is like FindLocation but also reports whether the
// match is a directory.
func (r *Resolver) FindLocationAndIsDirectory(ctx context.Context, folder Location, name string) (loc Location, isDir, ok bool) {
	doc, ok := r.FindDocument(ctx, folder, name)
	if !ok {
		return Location{}, false, false
	}
	return doc.Location, doc.IsDir(), true
}

// Stat describes loc through the client.
func (r *Resolver) Stat(ctx context.Context, loc Location) (*ListingRow, error) {
	return r.client.Stat(ctx, loc)
}

// CreateChild creates a child of parent through the client.
func (r *Resolver) CreateChild(ctx context.Context, parent Location, name string, asDirectory bool) (Location, bool) {
	return r.client.Create(ctx, parent, name, asDirectory)
}
