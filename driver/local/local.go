package local

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/nuln/doctree"
)

// DefaultVolume prefixes every document ID issued by the local provider.
const DefaultVolume = "primary"

// maxSuffix bounds the "name (n)" attempts made when a name is taken.
const maxSuffix = 32

// Auto-register local provider driver.
func init() {
	doctree.Register("local", func(cfg *doctree.Config) (doctree.Provider, error) {
		return New(cfg.BasePath,
			WithVolume(cfg.StringOption("volume", DefaultVolume)),
			WithCaseInsensitive(cfg.BoolOption("caseInsensitive", false)),
		)
	})
}

// Provider implements doctree.Provider over a local volume. Document IDs have
// the form "<volume>:<path>", for example "primary:EasyRPG/games".
//
// Like the storage providers of mobile platforms it never fails because a
// name is taken: the new document is created alongside as "name (1)".
type Provider struct {
	fs              afero.Fs
	volume          string
	caseInsensitive bool
}

// Option configures a Provider.
type Option func(*Provider)

// WithVolume sets the volume name used in document IDs.
func WithVolume(volume string) Option {
	return func(p *Provider) { p.volume = volume }
}

// WithCaseInsensitive makes name collisions ignore case, as on FAT volumes.
func WithCaseInsensitive(on bool) Option {
	return func(p *Provider) { p.caseInsensitive = on }
}

// New creates a local Provider whose volume is rooted at the given directory.
func New(root string, opts ...Option) (*Provider, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absRoot, 0750); err != nil {
		return nil, err
	}
	return NewWithFs(afero.NewBasePathFs(afero.NewOsFs(), absRoot), opts...), nil
}

// NewWithFs creates a local Provider backed by a custom afero.Fs.
// This is useful for testing with afero.MemMapFs.
func NewWithFs(fs afero.Fs, opts ...Option) *Provider {
	p := &Provider{fs: fs, volume: DefaultVolume}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Root returns the root location of the tree at dir, a slash-separated path
// inside the volume.
func (p *Provider) Root(dir string) doctree.Location {
	return doctree.RootLocation(doctree.Identifier(p.volume + ":" + strings.Trim(dir, "/")))
}

func (p *Provider) Query(ctx context.Context, folder doctree.Location) ([]doctree.ListingRow, error) {
	dir, err := p.path(folder)
	if err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(p.fs, dir)
	if err != nil {
		return nil, err
	}

	rows := make([]doctree.ListingRow, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, doctree.ListingRow{
			ID:       doctree.JoinIdentifier(folder.Document, info.Name()),
			MimeType: mimeTypeOf(info),
		})
	}
	return rows, nil
}

func (p *Provider) CreateChild(ctx context.Context, parent doctree.Location, name string, asDirectory bool) (doctree.Location, error) {
	if !doctree.ValidName(name) {
		return doctree.Location{}, errors.Wrapf(doctree.ErrInvalidName, "%q", name)
	}

	dir, err := p.path(parent)
	if err != nil {
		return doctree.Location{}, err
	}

	info, err := p.fs.Stat(dir)
	if err != nil {
		return doctree.Location{}, err
	}
	if !info.IsDir() {
		return doctree.Location{}, errors.Errorf("doctree/local: parent %s is not a directory", parent)
	}

	unique, err := p.uniqueName(dir, name, asDirectory)
	if err != nil {
		return doctree.Location{}, err
	}

	target := filepath.Join(dir, unique)
	if asDirectory {
		if err := p.fs.Mkdir(target, 0750); err != nil {
			return doctree.Location{}, err
		}
	} else {
		f, err := p.fs.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0640)
		if err != nil {
			return doctree.Location{}, err
		}
		if err := f.Close(); err != nil {
			return doctree.Location{}, err
		}
	}

	return doctree.ChildLocation(parent, doctree.JoinIdentifier(parent.Document, unique)), nil
}

func (p *Provider) Stat(ctx context.Context, loc doctree.Location) (*doctree.ListingRow, error) {
	target, err := p.path(loc)
	if err != nil {
		return nil, err
	}
	info, err := p.fs.Stat(target)
	if err != nil {
		return nil, err
	}
	return &doctree.ListingRow{ID: loc.Document, MimeType: mimeTypeOf(info)}, nil
}

// path maps loc to a path inside the afero filesystem.
func (p *Provider) path(loc doctree.Location) (string, error) {
	prefix := p.volume + ":"
	tree := string(loc.Tree)
	if !strings.HasPrefix(tree, prefix) {
		return "", errors.Wrapf(doctree.ErrOutsideTree, "tree %q is not on volume %q", tree, p.volume)
	}

	rel, err := loc.Relative()
	if err != nil {
		return "", err
	}
	return filepath.FromSlash(path.Join("/", strings.TrimPrefix(tree, prefix), rel)), nil
}

// uniqueName returns name, or the first "name (n)" variant not present in dir.
func (p *Provider) uniqueName(dir, name string, asDirectory bool) (string, error) {
	infos, err := afero.ReadDir(p.fs, dir)
	if err != nil {
		return "", err
	}

	taken := make(map[string]bool, len(infos))
	for _, info := range infos {
		taken[p.fold(info.Name())] = true
	}
	if !taken[p.fold(name)] {
		return name, nil
	}

	base, ext := name, ""
	if !asDirectory {
		ext = filepath.Ext(name)
		if ext == name {
			ext = ""
		}
		base = strings.TrimSuffix(name, ext)
	}

	for n := 1; n <= maxSuffix; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if !taken[p.fold(candidate)] {
			return candidate, nil
		}
	}
	return "", errors.Wrapf(doctree.ErrExist, "doctree/local: no free name for %q", name)
}

func (p *Provider) fold(name string) string {
	if p.caseInsensitive {
		return strings.ToLower(name)
	}
	return name
}

func mimeTypeOf(info os.FileInfo) string {
	if info.IsDir() {
		return doctree.MimeTypeDir
	}
	t := mime.TypeByExtension(filepath.Ext(info.Name()))
	if t == "" {
		return "application/octet-stream"
	}
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}

// Compile-time interface checks.
var (
	_ doctree.Provider = (*Provider)(nil)
	_ doctree.Stater   = (*Provider)(nil)
)
