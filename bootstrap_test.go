package doctree_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuln/doctree"
	"github.com/nuln/doctree/doctreetest"
)

func newBootstrapper(p doctree.Provider, opts ...doctree.Option) (*doctree.Bootstrapper, *doctreetest.Settings, *test.Hook) {
	logger, hook := test.NewNullLogger()
	settings := &doctreetest.Settings{}
	resolver := doctree.NewResolver(doctree.NewClient(p, logger))
	return doctree.NewBootstrapper(resolver, settings, opts...), settings, hook
}

func problemMatches(res *doctree.Result, target error) int {
	n := 0
	for _, p := range res.Problems {
		if errors.Is(p, target) {
			n++
		}
	}
	return n
}

func TestBootstrap_EmptyRoot(t *testing.T) {
	fake := doctreetest.NewFake("primary:EasyRPG")
	b, settings, _ := newBootstrapper(fake)

	res := b.Run(context.Background(), fake.Root())

	assert.Empty(t, res.Problems)
	assert.True(t, res.Ready())
	assert.Equal(t, []string{
		"create dir rtp under primary:EasyRPG",
		"create dir 2000 under rtp",
		"create dir 2003 under rtp",
		"create dir games under primary:EasyRPG",
		"create dir soundfonts under primary:EasyRPG",
		"create dir saves under primary:EasyRPG",
		"create file .nomedia under primary:EasyRPG",
	}, fake.Creates())

	assert.Equal(t, []string{"rtp", "rtp/2000", "rtp/2003", "games", "soundfonts", "saves"}, res.Created())
	assert.True(t, res.MarkerCreated)

	rtp, ok := res.Folder("rtp")
	require.True(t, ok)
	assert.Equal(t, doctree.Identifier("primary:EasyRPG/rtp"), rtp.Document)
	assert.Equal(t, []doctree.Location{rtp}, settings.Stored)
	assert.Equal(t, rtp, res.Published)

	assert.Equal(t, []string{"rtp", "games", "soundfonts", "saves", ".nomedia"}, fake.Names(fake.Root()))
	assert.Equal(t, []string{"2000", "2003"}, fake.Names(rtp))
}

func TestBootstrap_Idempotent(t *testing.T) {
	ctx := context.Background()
	fake := doctreetest.NewFake("primary:EasyRPG")
	b, settings, _ := newBootstrapper(fake)

	first := b.Run(ctx, fake.Root())
	creates := len(fake.Creates())
	second := b.Run(ctx, fake.Root())

	assert.Equal(t, first.Locations(), second.Locations())
	assert.Len(t, fake.Creates(), creates, "second run must not create anything")
	assert.Empty(t, second.Created())
	assert.False(t, second.MarkerCreated)
	assert.Equal(t, first.Marker, second.Marker)
	require.Len(t, settings.Stored, 2)
	assert.Equal(t, settings.Stored[0], settings.Stored[1])
	assert.Equal(t, []string{"rtp", "games", "soundfonts", "saves", ".nomedia"}, fake.Names(fake.Root()))
}

func TestBootstrap_ReusesExistingRTP(t *testing.T) {
	fake := doctreetest.NewFake("primary:EasyRPG")
	existing := fake.AddDir(fake.Root(), "rtp")
	b, settings, _ := newBootstrapper(fake)

	res := b.Run(context.Background(), fake.Root())

	assert.Empty(t, res.Problems)
	assert.Equal(t, []string{
		"create dir 2000 under rtp",
		"create dir 2003 under rtp",
		"create dir games under primary:EasyRPG",
		"create dir soundfonts under primary:EasyRPG",
		"create dir saves under primary:EasyRPG",
		"create file .nomedia under primary:EasyRPG",
	}, fake.Creates())

	rtp, _ := res.Folder("rtp")
	assert.Equal(t, existing, rtp)
	assert.False(t, res.Folders[0].Created)
	assert.Equal(t, []doctree.Location{existing}, settings.Stored)
}

// A file blocking a folder name is left alone and creation is attempted
// anyway; what happens next is up to the provider. The fake creates the
// folder alongside, so a later run meets the same conflict again.
func TestBootstrap_NameTakenByFile(t *testing.T) {
	ctx := context.Background()
	fake := doctreetest.NewFake("primary:EasyRPG")
	blocking := fake.AddFile(fake.Root(), "games")
	b, settings, hook := newBootstrapper(fake)

	res := b.Run(ctx, fake.Root())

	assert.Equal(t, 1, problemMatches(res, doctree.ErrNotADirectory))
	assert.Len(t, res.Problems, 1)
	assert.Contains(t, fake.Creates(), "create dir games under primary:EasyRPG")
	assert.Contains(t, fake.Creates(), "create dir saves under primary:EasyRPG")
	assert.Contains(t, fake.Creates(), "create file .nomedia under primary:EasyRPG")
	assert.Len(t, settings.Stored, 1)

	games, ok := res.Folder("games")
	require.True(t, ok)
	assert.NotEqual(t, blocking, games)
	assert.Equal(t, "games (1)", doctree.NameOf(games.Document))

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Data["folder"] == "games" {
			warned = true
		}
	}
	assert.True(t, warned, "conflict must be logged")

	again := b.Run(ctx, fake.Root())
	assert.Equal(t, 1, problemMatches(again, doctree.ErrNotADirectory))
	assert.Equal(t, []string{"games", "games (1)", "games (2)"}, filterNames(fake.Names(fake.Root()), "games"))
}

func filterNames(names []string, prefix string) []string {
	var out []string
	for _, n := range names {
		if len(n) >= len(prefix) && n[:len(prefix)] == prefix {
			out = append(out, n)
		}
	}
	return out
}

func TestBootstrap_CreateFailureSkipsBranch(t *testing.T) {
	fake := doctreetest.NewFake("primary:EasyRPG")
	fake.FailCreate("rtp", errors.New("quota exceeded"))
	b, settings, _ := newBootstrapper(fake)

	res := b.Run(context.Background(), fake.Root())

	assert.Equal(t, []string{
		"create dir rtp under primary:EasyRPG",
		"create dir games under primary:EasyRPG",
		"create dir soundfonts under primary:EasyRPG",
		"create dir saves under primary:EasyRPG",
		"create file .nomedia under primary:EasyRPG",
	}, fake.Creates())

	assert.Equal(t, 1, problemMatches(res, doctree.ErrProviderCreateFailed))
	assert.Equal(t, 1, problemMatches(res, doctree.ErrNotPublished))
	assert.Empty(t, settings.Stored, "an unresolved folder is never published")
	assert.True(t, res.Published.IsZero())
	assert.False(t, res.Ready())

	_, ok := res.Folder("rtp")
	assert.False(t, ok)
	_, ok = res.Folder("saves")
	assert.True(t, ok)
}

func TestBootstrap_ChildCreateFailure(t *testing.T) {
	fake := doctreetest.NewFake("primary:EasyRPG")
	fake.FailCreate("2000", errors.New("io fault"))
	b, settings, _ := newBootstrapper(fake)

	res := b.Run(context.Background(), fake.Root())

	assert.Equal(t, 1, problemMatches(res, doctree.ErrProviderCreateFailed))
	_, ok := res.Folder("rtp/2003")
	assert.True(t, ok)
	assert.Len(t, settings.Stored, 1)
}

func TestBootstrap_MarkerKept(t *testing.T) {
	fake := doctreetest.NewFake("primary:EasyRPG")
	marker := fake.AddFile(fake.Root(), ".nomedia")
	b, _, _ := newBootstrapper(fake)

	res := b.Run(context.Background(), fake.Root())

	assert.Equal(t, marker, res.Marker)
	assert.False(t, res.MarkerCreated)
	assert.NotContains(t, fake.Creates(), "create file .nomedia under primary:EasyRPG")
}

func TestBootstrap_MarkerCreateFailure(t *testing.T) {
	fake := doctreetest.NewFake("primary:EasyRPG")
	fake.FailCreate(".nomedia", errors.New("denied"))
	b, settings, _ := newBootstrapper(fake)

	res := b.Run(context.Background(), fake.Root())

	assert.Equal(t, 1, problemMatches(res, doctree.ErrProviderCreateFailed))
	assert.True(t, res.Marker.IsZero())
	assert.Len(t, settings.Stored, 1)
}

func TestBootstrap_RootQueryFailure(t *testing.T) {
	fake := doctreetest.NewFake("primary:EasyRPG")
	fake.AddDir(fake.Root(), "rtp")
	fake.FailQuery(fake.Root(), errors.New("permission denied"))
	b, _, hook := newBootstrapper(fake)

	res := b.Run(context.Background(), fake.Root())

	// Failed listings read as "no children", so creation is attempted.
	assert.Contains(t, fake.Creates(), "create dir rtp under primary:EasyRPG")
	assert.NotEmpty(t, loggedErrors(hook))
	assert.ErrorIs(t, loggedErrors(hook)[0], doctree.ErrProviderQueryFailed)
	assert.NotNil(t, res)
}

func TestBootstrap_RootUnavailable(t *testing.T) {
	ctx := context.Background()
	fake := doctreetest.NewFake("primary:EasyRPG")
	file := fake.AddFile(fake.Root(), "notes.txt")
	b, settings, _ := newBootstrapper(fake)

	res := b.Run(ctx, file)
	assert.Equal(t, 1, problemMatches(res, doctree.ErrRootUnavailable))
	assert.Empty(t, fake.Creates())
	assert.Empty(t, settings.Stored)

	res = b.Run(ctx, doctree.RootLocation("primary:Missing"))
	assert.Equal(t, 1, problemMatches(res, doctree.ErrRootUnavailable))
	assert.Empty(t, fake.Creates())
}

type nilStater struct{ *doctreetest.Fake }

func (nilStater) Stat(context.Context, doctree.Location) (*doctree.ListingRow, error) {
	return nil, nil
}

func TestBootstrap_StatWithoutRow(t *testing.T) {
	fake := doctreetest.NewFake("primary:EasyRPG")
	b, settings, _ := newBootstrapper(nilStater{fake})

	var res *doctree.Result
	require.NotPanics(t, func() { res = b.Run(context.Background(), fake.Root()) })

	assert.Equal(t, 1, problemMatches(res, doctree.ErrRootUnavailable))
	assert.Equal(t, 1, problemMatches(res, doctree.ErrNotFound))
	assert.Empty(t, fake.Creates())
	assert.Empty(t, settings.Stored)
}

func TestBootstrap_ProviderWithoutStat(t *testing.T) {
	fake := doctreetest.NewFake("primary:EasyRPG")
	b, _, _ := newBootstrapper(struct{ doctree.Provider }{fake})

	res := b.Run(context.Background(), fake.Root())

	assert.True(t, res.Ready())
	for _, c := range fake.Calls {
		assert.NotEqual(t, "stat", c.Op)
	}
}

func TestBootstrap_SettingsFailure(t *testing.T) {
	fake := doctreetest.NewFake("primary:EasyRPG")
	logger, _ := test.NewNullLogger()
	settings := &doctreetest.Settings{Err: errors.New("disk full")}
	b := doctree.NewBootstrapper(doctree.NewResolver(doctree.NewClient(fake, logger)), settings)

	res := b.Run(context.Background(), fake.Root())

	require.Len(t, res.Problems, 1)
	assert.Contains(t, res.Problems[0].Error(), "disk full")
	assert.Len(t, settings.Stored, 1)
	assert.False(t, res.Ready())
}

func TestBootstrap_CustomHierarchy(t *testing.T) {
	fake := doctreetest.NewFake("primary:App")
	var published []doctree.Location
	logger, _ := test.NewNullLogger()
	b := doctree.NewBootstrapper(
		doctree.NewResolver(doctree.NewClient(fake, logger)),
		doctree.SettingsFunc(func(loc doctree.Location) error {
			published = append(published, loc)
			return nil
		}),
		doctree.WithHierarchy(doctree.Hierarchy{
			Folders: []doctree.FolderSpec{{Name: "data", Children: []doctree.FolderSpec{{Name: "cache"}}}},
			Publish: "data/cache",
		}),
	)

	res := b.Run(context.Background(), fake.Root())

	assert.Empty(t, res.Problems)
	assert.True(t, res.Marker.IsZero())
	require.Len(t, published, 1)
	assert.Equal(t, doctree.Identifier("primary:App/data/cache"), published[0].Document)
}

func TestBootstrap_NilSettings(t *testing.T) {
	fake := doctreetest.NewFake("primary:EasyRPG")
	logger, _ := test.NewNullLogger()
	b := doctree.NewBootstrapper(doctree.NewResolver(doctree.NewClient(fake, logger)), nil)

	res := b.Run(context.Background(), fake.Root())
	assert.Empty(t, res.Problems)
	assert.True(t, res.Published.IsZero())
}
