package doctree

// Identifier is an opaque document ID issued by a provider. It is only
// meaningful inside the tree it was listed from.
type Identifier string

// MimeTypeDir is the MIME type providers report for directories.
const MimeTypeDir = "vnd.android.document/directory"

// Location addresses a single document inside a provider tree.
//
// A root location is obtained with [RootLocation]; child locations are derived
// with [ChildLocation] and carry the tree of their parent. Locations are
// comparable: two Locations are equal iff they address the same document.
type Location struct {
	Tree     Identifier `json:"tree" yaml:"tree"`
	Document Identifier `json:"document" yaml:"document"`
}

// IsZero reports whether l is the zero Location.
func (l Location) IsZero() bool {
	return l == Location{}
}

// ListingRow is one child returned by a folder query.
type ListingRow struct {
	ID Identifier `json:"id"`
	// MimeType is empty when the provider did not report one.
	MimeType string `json:"mimeType,omitempty"`
}

// Name returns the display name of the row.
func (r ListingRow) Name() string {
	return NameOf(r.ID)
}

// IsDir reports whether the row describes a directory.
func (r ListingRow) IsDir() bool {
	return IsDirectoryMimeType(r.MimeType)
}

// Document is a resolved child: where it lives and what the listing said about it.
type Document struct {
	Location Location   `json:"location"`
	Row      ListingRow `json:"row"`
}

// Name returns the display name of the document.
func (d *Document) Name() string { return d.Row.Name() }

// IsDir reports whether the document is a directory.
func (d *Document) IsDir() bool { return d.Row.IsDir() }
