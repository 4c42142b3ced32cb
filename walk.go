package doctree

import (
	"context"
	"path"
	"path/filepath"
)

// WalkFunc is the callback for Walk. It is called for each document below the
// walk root with its slash-separated path relative to the root. If it returns
// filepath.SkipDir for a directory, Walk skips that directory's contents.
type WalkFunc func(p string, doc *Document) error

// Walk lists the tree under root depth-first, in provider order, calling fn
// for every document. Folders whose listing fails are treated as empty.
func Walk(ctx context.Context, client *Client, root Location, fn WalkFunc) error {
	err := walkDir(ctx, client, root, "", fn)
	if err == filepath.SkipDir {
		return nil
	}
	return err
}

func walkDir(ctx context.Context, client *Client, folder Location, dir string, fn WalkFunc) error {
	for _, row := range client.List(ctx, folder) {
		if err := ctx.Err(); err != nil {
			return err
		}

		doc := &Document{Location: ChildLocation(folder, row.ID), Row: row}
		p := path.Join(dir, row.Name())

		err := fn(p, doc)
		if err == filepath.SkipDir {
			if doc.IsDir() {
				continue
			}
			return nil
		}
		if err != nil {
			return err
		}

		if doc.IsDir() {
			if err := walkDir(ctx, client, doc.Location, p, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
