package doctree

import (
	"context"
	"path"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FolderSpec describes one required folder and its required children.
type FolderSpec struct {
	Name     string       `json:"name" yaml:"name"`
	Children []FolderSpec `json:"children,omitempty" yaml:"children,omitempty"`
}

// Hierarchy is the full set of documents a bootstrap ensures under a root.
type Hierarchy struct {
	// Folders are created depth-first, in order.
	Folders []FolderSpec `json:"folders" yaml:"folders"`

	// Marker is a file created empty directly under the root when absent.
	Marker string `json:"marker,omitempty" yaml:"marker,omitempty"`

	// Publish is the slash-separated path of the folder handed to Settings.
	Publish string `json:"publish,omitempty" yaml:"publish,omitempty"`
}

// EasyRPGHierarchy returns the folders the player expects under its storage root.
//
// The RTP folder is lowercase on purpose: older installs may already hold an
// "RTP" folder and providers on case-insensitive volumes would create
// "RTP (1)" next to it on every start.
func EasyRPGHierarchy() Hierarchy {
	return Hierarchy{
		Folders: []FolderSpec{
			{Name: "rtp", Children: []FolderSpec{{Name: "2000"}, {Name: "2003"}}},
			{Name: "games"},
			{Name: "soundfonts"},
			{Name: "saves"},
		},
		Marker:  ".nomedia",
		Publish: "rtp",
	}
}

// Folder is one folder of the hierarchy as it ended up in the provider.
type Folder struct {
	Path     string   `json:"path"`
	Location Location `json:"location"`
	Created  bool     `json:"created"`
}

// Result describes what a bootstrap did. Problems hold every recoverable
// condition met on the way; each matches one of the package errors with
// errors.Is.
type Result struct {
	Root          Location `json:"root"`
	Folders       []Folder `json:"folders"`
	Marker        Location `json:"marker"`
	MarkerCreated bool     `json:"markerCreated"`
	Published     Location `json:"published"`
	Problems      []error  `json:"-"`
}

// Folder returns the location of the folder at the slash-separated path p.
func (r *Result) Folder(p string) (Location, bool) {
	for _, f := range r.Folders {
		if f.Path == p {
			return f.Location, true
		}
	}
	return Location{}, false
}

// Locations returns every location the bootstrap resolved or created, marker
// included, in visit order.
func (r *Result) Locations() []Location {
	locs := make([]Location, 0, len(r.Folders)+1)
	for _, f := range r.Folders {
		locs = append(locs, f.Location)
	}
	if !r.Marker.IsZero() {
		locs = append(locs, r.Marker)
	}
	return locs
}

// Created returns the paths of the folders created by this run.
func (r *Result) Created() []string {
	var paths []string
	for _, f := range r.Folders {
		if f.Created {
			paths = append(paths, f.Path)
		}
	}
	return paths
}

// Ready reports whether the storage is fully set up: no problems and the
// folder location was published.
func (r *Result) Ready() bool {
	return len(r.Problems) == 0 && !r.Published.IsZero()
}

// Bootstrapper creates a Hierarchy under a root location. Running it again on
// the same root reuses the existing folders instead of creating new ones.
//
// A Bootstrapper is not safe for two concurrent runs over the same root: both
// may decide a folder is missing and create it twice.
type Bootstrapper struct {
	resolver  *Resolver
	settings  Settings
	hierarchy Hierarchy
	log       logrus.FieldLogger
}

// Option configures a Bootstrapper.
type Option func(*Bootstrapper)

// WithLogger sets the logger diagnostics are written to.
func WithLogger(log logrus.FieldLogger) Option {
	return func(b *Bootstrapper) { b.log = log }
}

// WithHierarchy replaces EasyRPGHierarchy.
func WithHierarchy(h Hierarchy) Option {
	return func(b *Bootstrapper) { b.hierarchy = h }
}

// NewBootstrapper creates a Bootstrapper. settings may be nil, in which case
// nothing is published.
func NewBootstrapper(resolver *Resolver, settings Settings, opts ...Option) *Bootstrapper {
	b := &Bootstrapper{
		resolver:  resolver,
		settings:  settings,
		hierarchy: EasyRPGHierarchy(),
		log:       resolver.Client().Logger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run ensures the hierarchy exists under root, then the marker file, then
// publishes the configured folder. It always walks the whole hierarchy; a
// branch whose folder cannot be created is skipped and reported in the
// Result.
func (b *Bootstrapper) Run(ctx context.Context, root Location) *Result {
	res := &Result{Root: root}
	log := b.log.WithField("root", root.String())

	if row, err := b.resolver.Stat(ctx, root); !errors.Is(err, ErrNotSupported) {
		if err == nil && row == nil {
			err = ErrNotFound
		}
		if err == nil && !row.IsDir() {
			err = errors.Errorf("mime type %q", row.MimeType)
		}
		if err != nil {
			res.Problems = append(res.Problems, condition(ErrRootUnavailable, err))
			log.WithError(err).Error("Root location is not usable, nothing to bootstrap")
			return res
		}
	}

	for _, spec := range b.hierarchy.Folders {
		b.ensureFolder(ctx, log, root, "", spec, res)
	}

	b.ensureMarker(ctx, log, root, res)
	b.publish(log, res)

	log.WithFields(logrus.Fields{
		"folders":  len(res.Folders),
		"created":  len(res.Created()),
		"problems": len(res.Problems),
	}).Info("Bootstrap finished")

	return res
}

func (b *Bootstrapper) ensureFolder(ctx context.Context, log logrus.FieldLogger, parent Location, parentPath string, spec FolderSpec, res *Result) {
	p := path.Join(parentPath, spec.Name)
	log = log.WithField("folder", p)

	loc, isDir, found := b.resolver.FindLocationAndIsDirectory(ctx, parent, spec.Name)
	created := false

	switch {
	case found && isDir:
		log.WithField("location", loc.String()).Debug("Reusing existing folder")
	case found:
		// Leave the blocking document alone and let the provider decide.
		res.Problems = append(res.Problems, errors.Wrapf(ErrNotADirectory, "folder %s", p))
		log.WithField("location", loc.String()).Warn("Name is taken by a non-directory, creating the folder anyway")
		fallthrough
	default:
		var ok bool
		if loc, ok = b.resolver.CreateChild(ctx, parent, spec.Name, true); !ok {
			res.Problems = append(res.Problems, errors.Wrapf(ErrProviderCreateFailed, "folder %s", p))
			log.Error("Problem creating folder, skipping its children")
			return
		}
		created = true
		log.WithField("location", loc.String()).Info("Folder created")
	}

	res.Folders = append(res.Folders, Folder{Path: p, Location: loc, Created: created})

	for _, child := range spec.Children {
		b.ensureFolder(ctx, log, loc, p, child, res)
	}
}

func (b *Bootstrapper) ensureMarker(ctx context.Context, log logrus.FieldLogger, root Location, res *Result) {
	name := b.hierarchy.Marker
	if name == "" {
		return
	}

	if loc, found := b.resolver.FindLocation(ctx, root, name); found {
		res.Marker = loc
		return
	}

	loc, ok := b.resolver.CreateChild(ctx, root, name, false)
	if !ok {
		res.Problems = append(res.Problems, errors.Wrapf(ErrProviderCreateFailed, "marker %s", name))
		return
	}
	res.Marker = loc
	res.MarkerCreated = true
	log.WithField("marker", name).Info("Marker file created")
}

func (b *Bootstrapper) publish(log logrus.FieldLogger, res *Result) {
	p := b.hierarchy.Publish
	if p == "" || b.settings == nil {
		return
	}

	loc, ok := res.Folder(p)
	if !ok {
		res.Problems = append(res.Problems, errors.Wrapf(ErrNotPublished, "folder %s", p))
		log.WithField("folder", p).Warn("Folder was not resolved, not publishing it")
		return
	}

	if err := b.settings.StoreRTPFolderLocation(loc); err != nil {
		res.Problems = append(res.Problems, errors.WithMessagef(err, "publish folder %s", p))
		log.WithError(err).WithField("folder", p).Error("Failed to store folder location")
		return
	}
	res.Published = loc
}
