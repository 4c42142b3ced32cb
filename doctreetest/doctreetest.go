// Package doctreetest provides helpers for testing doctree providers and the
// code built on top of them.
package doctreetest

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/nuln/doctree"
)

// ProviderTestSuite runs a set of tests against a Provider implementation.
// root must address an existing, empty directory. Call this in your driver
// tests to verify correctness:
//
//	func TestLocalProvider(t *testing.T) {
//	    p := local.NewWithFs(afero.NewMemMapFs())
//	    doctreetest.ProviderTestSuite(t, p, p.Root("EasyRPG"))
//	}
func ProviderTestSuite(t *testing.T, p doctree.Provider, root doctree.Location) { //nolint:gocyclo
	t.Helper()
	ctx := context.Background()

	t.Run("Query_Empty", func(t *testing.T) {
		rows, err := p.Query(ctx, root)
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(rows) != 0 {
			t.Fatalf("Query: got %d rows, want 0", len(rows))
		}
	})

	t.Run("CreateChild_Directory", func(t *testing.T) {
		loc, err := p.CreateChild(ctx, root, "games", true)
		if err != nil {
			t.Fatalf("CreateChild: %v", err)
		}
		if loc.Tree != root.Tree {
			t.Errorf("Tree = %q, want %q", loc.Tree, root.Tree)
		}
		if name := doctree.NameOf(loc.Document); name != "games" {
			t.Errorf("NameOf = %q, want %q", name, "games")
		}

		row := findRow(t, p, root, "games")
		if !row.IsDir() {
			t.Errorf("MimeType = %q, want directory", row.MimeType)
		}
		if got := doctree.ChildLocation(root, row.ID); got != loc {
			t.Errorf("ChildLocation = %v, want %v", got, loc)
		}
	})

	t.Run("CreateChild_File", func(t *testing.T) {
		loc, err := p.CreateChild(ctx, root, ".nomedia", false)
		if err != nil {
			t.Fatalf("CreateChild: %v", err)
		}

		row := findRow(t, p, root, ".nomedia")
		if row.IsDir() {
			t.Error("IsDir = true, want false")
		}
		if got := doctree.ChildLocation(root, row.ID); got != loc {
			t.Errorf("ChildLocation = %v, want %v", got, loc)
		}
	})

	t.Run("CreateChild_Nested", func(t *testing.T) {
		rtp, err := p.CreateChild(ctx, root, "rtp", true)
		if err != nil {
			t.Fatalf("CreateChild rtp: %v", err)
		}
		sub, err := p.CreateChild(ctx, rtp, "2000", true)
		if err != nil {
			t.Fatalf("CreateChild 2000: %v", err)
		}

		rows, err := p.Query(ctx, rtp)
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(rows) != 1 || rows[0].Name() != "2000" {
			t.Fatalf("Query rtp = %v, want a single 2000 row", rows)
		}

		rel, err := sub.Relative()
		if err != nil {
			t.Fatalf("Relative: %v", err)
		}
		if rel != "rtp/2000" {
			t.Errorf("Relative = %q, want %q", rel, "rtp/2000")
		}
	})

	t.Run("CreateChild_InvalidName", func(t *testing.T) {
		if _, err := p.CreateChild(ctx, root, "a/b", true); err == nil {
			t.Error("CreateChild a/b: expected error, got nil")
		}
	})

	t.Run("Query_Missing", func(t *testing.T) {
		missing := doctree.ChildLocation(root, doctree.JoinIdentifier(root.Document, "missing"))
		if _, err := p.Query(ctx, missing); err == nil {
			t.Error("Query missing folder: expected error, got nil")
		}
	})

	if st, ok := p.(doctree.Stater); ok {
		t.Run("Stater", func(t *testing.T) {
			row, err := st.Stat(ctx, root)
			if err != nil {
				t.Fatalf("Stat root: %v", err)
			}
			if !row.IsDir() {
				t.Errorf("root MimeType = %q, want directory", row.MimeType)
			}

			marker := doctree.ChildLocation(root, findRow(t, p, root, ".nomedia").ID)
			row, err = st.Stat(ctx, marker)
			if err != nil {
				t.Fatalf("Stat marker: %v", err)
			}
			if row.IsDir() {
				t.Error("marker IsDir = true, want false")
			}
		})
	}

	t.Run("Bootstrap_Idempotent", func(t *testing.T) {
		base, err := p.CreateChild(ctx, root, "boot", true)
		if err != nil {
			t.Fatalf("CreateChild boot: %v", err)
		}

		logger, _ := test.NewNullLogger()
		resolver := doctree.NewResolver(doctree.NewClient(p, logger))
		settings := &Settings{}
		b := doctree.NewBootstrapper(resolver, settings)

		first := b.Run(ctx, base)
		if len(first.Problems) != 0 {
			t.Fatalf("first run problems: %v", first.Problems)
		}
		second := b.Run(ctx, base)
		if len(second.Problems) != 0 {
			t.Fatalf("second run problems: %v", second.Problems)
		}

		if len(first.Created()) != 6 {
			t.Errorf("first run created %v, want 6 folders", first.Created())
		}
		if created := second.Created(); len(created) != 0 {
			t.Errorf("second run created %v, want none", created)
		}
		if second.MarkerCreated {
			t.Error("second run created the marker again")
		}

		a, b2 := first.Locations(), second.Locations()
		if len(a) != len(b2) {
			t.Fatalf("Locations: %d vs %d", len(a), len(b2))
		}
		for i := range a {
			if a[i] != b2[i] {
				t.Errorf("Locations[%d] = %v, want %v", i, b2[i], a[i])
			}
		}

		rows, err := p.Query(ctx, base)
		if err != nil {
			t.Fatalf("Query boot: %v", err)
		}
		if len(rows) != 5 {
			t.Errorf("boot holds %d documents, want 5", len(rows))
		}
		if len(settings.Stored) != 2 || settings.Stored[0] != settings.Stored[1] {
			t.Errorf("Stored = %v, want the same location twice", settings.Stored)
		}
	})
}

func findRow(t *testing.T, p doctree.Provider, folder doctree.Location, name string) doctree.ListingRow {
	t.Helper()
	rows, err := p.Query(context.Background(), folder)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for _, row := range rows {
		if row.Name() == name {
			return row
		}
	}
	t.Fatalf("no row named %q in %v", name, rows)
	return doctree.ListingRow{}
}
