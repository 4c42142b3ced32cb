package doctree

import (
	"net/url"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// Separator separates path segments inside an Identifier.
const Separator = "/"

// NameOf returns the display name encoded in id: the part after the last
// separator, or the whole id when it has none.
func NameOf(id Identifier) string {
	s := string(id)
	if i := strings.LastIndex(s, Separator); i >= 0 {
		return s[i+1:]
	}
	return s
}

// RootLocation returns the Location of the root document of tree.
func RootLocation(tree Identifier) Location {
	return Location{Tree: tree, Document: tree}
}

// ChildLocation builds the Location of id inside the tree of parent. It never
// contacts a provider, so it also works for documents that do not exist yet.
func ChildLocation(parent Location, id Identifier) Location {
	return Location{Tree: parent.Tree, Document: id}
}

// JoinIdentifier builds the ID of a child called name under parent, the way
// the bundled drivers issue IDs.
func JoinIdentifier(parent Identifier, name string) Identifier {
	p := string(parent)
	if p == "" || strings.HasSuffix(p, Separator) || strings.HasSuffix(p, ":") {
		return Identifier(p + name)
	}
	return Identifier(p + Separator + name)
}

// IsDirectoryMimeType reports whether mimeType is the directory MIME type.
func IsDirectoryMimeType(mimeType string) bool {
	return mimeType == MimeTypeDir
}

// ValidName reports whether name can be used for a single child document.
func ValidName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.Contains(name, Separator)
}

// Relative returns the cleaned path of the document relative to the root of
// its tree, using Separator. The root document yields "". Documents outside
// the tree, including through ".." segments, fail with ErrOutsideTree.
func (l Location) Relative() (string, error) {
	doc, tree := string(l.Document), string(l.Tree)
	if doc == tree {
		return "", nil
	}
	prefix := tree
	if tree != "" && !strings.HasSuffix(tree, Separator) && !strings.HasSuffix(tree, ":") {
		prefix += Separator
	}
	if !strings.HasPrefix(doc, prefix) {
		return "", errors.Wrapf(ErrOutsideTree, "document %q, tree %q", doc, tree)
	}
	rel := strings.Trim(doc[len(prefix):], Separator)
	if rel == "" {
		return "", nil
	}
	rel = path.Clean(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", errors.Wrapf(ErrOutsideTree, "document %q escapes tree %q", doc, tree)
	}
	if rel == "." {
		return "", nil
	}
	return rel, nil
}

// String renders the Location as "tree/<tree>/document/<document>" with both
// identifiers path-escaped.
func (l Location) String() string {
	return "tree/" + url.PathEscape(string(l.Tree)) + "/document/" + url.PathEscape(string(l.Document))
}

// ParseLocation parses the output of Location.String. A bare "tree/<tree>"
// yields the root location of that tree.
func ParseLocation(s string) (Location, error) {
	parts := strings.Split(s, "/")
	if (len(parts) != 2 && len(parts) != 4) || parts[0] != "tree" || parts[1] == "" {
		return Location{}, errors.Errorf("doctree: malformed location %q", s)
	}

	tree, err := url.PathUnescape(parts[1])
	if err != nil {
		return Location{}, errors.WithMessagef(err, "doctree: malformed tree in %q", s)
	}
	if len(parts) == 2 {
		return RootLocation(Identifier(tree)), nil
	}

	if parts[2] != "document" {
		return Location{}, errors.Errorf("doctree: malformed location %q", s)
	}
	doc, err := url.PathUnescape(parts[3])
	if err != nil {
		return Location{}, errors.WithMessagef(err, "doctree: malformed document in %q", s)
	}
	return Location{Tree: Identifier(tree), Document: Identifier(doc)}, nil
}
