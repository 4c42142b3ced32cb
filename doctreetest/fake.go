package doctreetest

import (
	"context"
	"fmt"

	"github.com/nuln/doctree"
)

// Call is one provider call recorded by Fake.
type Call struct {
	Op       string // "query", "create" or "stat"
	Location doctree.Location
	Name     string
	Dir      bool
}

func (c Call) String() string {
	if c.Op == "create" {
		kind := "file"
		if c.Dir {
			kind = "dir"
		}
		return fmt.Sprintf("create %s %s under %s", kind, c.Name, doctree.NameOf(c.Location.Document))
	}
	return fmt.Sprintf("%s %s", c.Op, doctree.NameOf(c.Location.Document))
}

// Fake is a scripted in-memory provider. Documents can be added with any ID,
// duplicates included, and single calls can be made to fail. When asked to
// create a name that is taken it creates alongside as "name (n)".
type Fake struct {
	tree      doctree.Identifier
	rows      map[doctree.Identifier][]doctree.ListingRow
	mimes     map[doctree.Identifier]string
	queryErr  map[doctree.Identifier]error
	createErr map[string]error

	// Calls lists every call made to the provider, in order.
	Calls []Call
}

// NewFake creates a Fake holding an empty tree.
func NewFake(tree doctree.Identifier) *Fake {
	f := &Fake{
		tree:      tree,
		rows:      make(map[doctree.Identifier][]doctree.ListingRow),
		mimes:     make(map[doctree.Identifier]string),
		queryErr:  make(map[doctree.Identifier]error),
		createErr: make(map[string]error),
	}
	f.mimes[tree] = doctree.MimeTypeDir
	return f
}

// Root returns the root location of the fake tree.
func (f *Fake) Root() doctree.Location {
	return doctree.RootLocation(f.tree)
}

// Put appends a row with the given ID under parent and returns its location.
func (f *Fake) Put(parent doctree.Location, id doctree.Identifier, mimeType string) doctree.Location {
	f.rows[parent.Document] = append(f.rows[parent.Document], doctree.ListingRow{ID: id, MimeType: mimeType})
	f.mimes[id] = mimeType
	return doctree.ChildLocation(parent, id)
}

// AddDir adds a directory called name under parent.
func (f *Fake) AddDir(parent doctree.Location, name string) doctree.Location {
	return f.Put(parent, doctree.JoinIdentifier(parent.Document, name), doctree.MimeTypeDir)
}

// AddFile adds a file called name under parent.
func (f *Fake) AddFile(parent doctree.Location, name string) doctree.Location {
	return f.Put(parent, doctree.JoinIdentifier(parent.Document, name), "application/octet-stream")
}

// FailQuery makes every query of folder fail with err.
func (f *Fake) FailQuery(folder doctree.Location, err error) {
	f.queryErr[folder.Document] = err
}

// FailCreate makes every creation of a child called name fail with err.
func (f *Fake) FailCreate(name string, err error) {
	f.createErr[name] = err
}

// Names returns the names of the children of folder in listing order.
func (f *Fake) Names(folder doctree.Location) []string {
	var names []string
	for _, row := range f.rows[folder.Document] {
		names = append(names, row.Name())
	}
	return names
}

// Creates returns the recorded create calls as strings such as
// "create dir 2000 under rtp".
func (f *Fake) Creates() []string {
	var out []string
	for _, c := range f.Calls {
		if c.Op == "create" {
			out = append(out, c.String())
		}
	}
	return out
}

func (f *Fake) Query(ctx context.Context, folder doctree.Location) ([]doctree.ListingRow, error) {
	f.Calls = append(f.Calls, Call{Op: "query", Location: folder})
	if err := f.queryErr[folder.Document]; err != nil {
		return nil, err
	}
	if err := f.checkDir(folder); err != nil {
		return nil, err
	}
	return append([]doctree.ListingRow(nil), f.rows[folder.Document]...), nil
}

func (f *Fake) CreateChild(ctx context.Context, parent doctree.Location, name string, asDirectory bool) (doctree.Location, error) {
	f.Calls = append(f.Calls, Call{Op: "create", Location: parent, Name: name, Dir: asDirectory})
	if err := f.createErr[name]; err != nil {
		return doctree.Location{}, err
	}
	if !doctree.ValidName(name) {
		return doctree.Location{}, doctree.ErrInvalidName
	}
	if err := f.checkDir(parent); err != nil {
		return doctree.Location{}, err
	}

	taken := make(map[string]bool)
	for _, row := range f.rows[parent.Document] {
		taken[row.Name()] = true
	}
	unique := name
	for n := 1; taken[unique]; n++ {
		unique = fmt.Sprintf("%s (%d)", name, n)
	}

	if asDirectory {
		return f.AddDir(parent, unique), nil
	}
	return f.AddFile(parent, unique), nil
}

func (f *Fake) Stat(ctx context.Context, loc doctree.Location) (*doctree.ListingRow, error) {
	f.Calls = append(f.Calls, Call{Op: "stat", Location: loc})
	if loc.Tree != f.tree {
		return nil, doctree.ErrOutsideTree
	}
	mimeType, ok := f.mimes[loc.Document]
	if !ok {
		return nil, doctree.ErrNotFound
	}
	return &doctree.ListingRow{ID: loc.Document, MimeType: mimeType}, nil
}

func (f *Fake) checkDir(loc doctree.Location) error {
	if loc.Tree != f.tree {
		return doctree.ErrOutsideTree
	}
	mimeType, ok := f.mimes[loc.Document]
	if !ok {
		return doctree.ErrNotFound
	}
	if !doctree.IsDirectoryMimeType(mimeType) {
		return fmt.Errorf("doctreetest: %s is not a directory", loc)
	}
	return nil
}

// Settings records every published location.
type Settings struct {
	Stored []doctree.Location
	// Err is returned from every call when set.
	Err error
}

// StoreRTPFolderLocation implements doctree.Settings.
func (s *Settings) StoreRTPFolderLocation(loc doctree.Location) error {
	s.Stored = append(s.Stored, loc)
	return s.Err
}

// Compile-time interface checks.
var (
	_ doctree.Provider = (*Fake)(nil)
	_ doctree.Stater   = (*Fake)(nil)
	_ doctree.Settings = (*Settings)(nil)
)
