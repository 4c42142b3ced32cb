package rclone

import (
	"bytes"
	"context"
	"io"
	"path"
	"time"

	"github.com/pkg/errors"
	"github.com/rclone/rclone/fs"
	"github.com/rclone/rclone/fs/config"
	"github.com/rclone/rclone/fs/config/configfile"
	"github.com/rclone/rclone/fs/operations"

	"github.com/nuln/doctree"
)

// Auto-register rclone provider driver.
func init() {
	doctree.Register("rclone", func(cfg *doctree.Config) (doctree.Provider, error) {
		if p := cfg.StringOption("config", ""); p != "" {
			if err := config.SetConfigPath(p); err != nil {
				return nil, errors.WithMessage(err, "doctree/rclone: failed to set config path")
			}
			configfile.Install()
		}
		return New(), nil
	})
}

// Provider implements doctree.Provider on top of rclone remotes.
//
// The tree of a Location is an rclone remote string such as "gdrive:EasyRPG"
// or a local directory; document IDs are the tree followed by the path of
// the document inside it. A remote is opened for each call and shut down
// before the call returns.
type Provider struct{}

// New creates an rclone Provider.
func New() *Provider {
	return &Provider{}
}

// Root returns the root location of an rclone remote.
func Root(remote string) doctree.Location {
	return doctree.RootLocation(doctree.Identifier(remote))
}

func (p *Provider) Query(ctx context.Context, folder doctree.Location) ([]doctree.ListingRow, error) {
	var rows []doctree.ListingRow
	err := withRemote(ctx, folder, func(remote fs.Fs, rel string) error {
		entries, err := remote.List(ctx, rel)
		if err != nil {
			return convertError(err)
		}

		rows = make([]doctree.ListingRow, 0, len(entries))
		for _, entry := range entries {
			rows = append(rows, doctree.ListingRow{
				ID:       doctree.JoinIdentifier(folder.Document, path.Base(entry.Remote())),
				MimeType: mimeTypeOf(ctx, entry),
			})
		}
		return nil
	})
	return rows, err
}

func (p *Provider) CreateChild(ctx context.Context, parent doctree.Location, name string, asDirectory bool) (doctree.Location, error) {
	if !doctree.ValidName(name) {
		return doctree.Location{}, errors.Wrapf(doctree.ErrInvalidName, "%q", name)
	}

	err := withRemote(ctx, parent, func(remote fs.Fs, rel string) error {
		child := path.Join(rel, name)
		if asDirectory {
			return remote.Mkdir(ctx, child)
		}
		_, err := operations.Rcat(ctx, remote, child, io.NopCloser(bytes.NewReader(nil)), time.Now(), nil)
		return err
	})
	if err != nil {
		return doctree.Location{}, err
	}

	return doctree.ChildLocation(parent, doctree.JoinIdentifier(parent.Document, name)), nil
}

func (p *Provider) Stat(ctx context.Context, loc doctree.Location) (*doctree.ListingRow, error) {
	var row *doctree.ListingRow
	err := withRemote(ctx, loc, func(remote fs.Fs, rel string) error {
		if rel != "" {
			obj, err := remote.NewObject(ctx, rel)
			if err == nil {
				row = &doctree.ListingRow{ID: loc.Document, MimeType: fs.MimeType(ctx, obj)}
				return nil
			}
		}

		// Not an object, so it has to list as a directory.

		if _, err := remote.List(ctx, rel); err != nil {
			return convertError(err)
		}
		row = &doctree.ListingRow{ID: loc.Document, MimeType: doctree.MimeTypeDir}
		return nil
	})
	return row, err
}

// withRemote opens the remote of loc's tree, runs fn with the document path
// relative to it and shuts the remote down again.
func withRemote(ctx context.Context, loc doctree.Location, fn func(remote fs.Fs, rel string) error) error {
	rel, err := loc.Relative()
	if err != nil {
		return err
	}

	remote, err := fs.NewFs(ctx, string(loc.Tree))
	if err == fs.ErrorIsFile {
		return errors.Errorf("doctree/rclone: tree %q is a file", loc.Tree)
	}
	if err != nil {
		return errors.WithMessagef(err, "doctree/rclone: failed to open remote %q", loc.Tree)
	}

	if s, ok := remote.(fs.Shutdowner); ok {
		defer func() { _ = s.Shutdown(ctx) }()
	}
	return fn(remote, rel)
}

func mimeTypeOf(ctx context.Context, entry fs.DirEntry) string {
	if obj, ok := entry.(fs.Object); ok {
		return fs.MimeType(ctx, obj)
	}
	return doctree.MimeTypeDir
}

func convertError(err error) error {
	if err == nil {
		return nil
	}
	if err == fs.ErrorObjectNotFound || err == fs.ErrorDirNotFound {
		return doctree.ErrNotFound
	}
	return err
}

// Compile-time interface checks.
var (
	_ doctree.Provider = (*Provider)(nil)
	_ doctree.Stater   = (*Provider)(nil)
)
