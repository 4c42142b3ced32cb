package doctree

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Client issues queries and creations against a Provider. Provider failures
// never escape: they are logged and turned into empty results.
type Client struct {
	provider Provider
	log      logrus.FieldLogger
}

// NewClient wraps provider. A nil log falls back to the logrus standard logger.
func NewClient(provider Provider, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{provider: provider, log: log}
}

// Logger returns the logger diagnostics are written to.
func (c *Client) Logger() logrus.FieldLogger { return c.log }

// List returns the children of folder in provider order. A failed query is
// logged as ErrProviderQueryFailed and yields no rows.
func (c *Client) List(ctx context.Context, folder Location) []ListingRow {
	rows, err := c.provider.Query(ctx, folder)
	if err != nil {
		c.log.WithError(condition(ErrProviderQueryFailed, err)).
			WithField("folder", folder.String()).
			Warn("Failed to list folder")
		return nil
	}
	return rows
}

// ListIdentifiers is like List but only keeps the document IDs.
func (c *Client) ListIdentifiers(ctx context.Context, folder Location) []Identifier {
	rows := c.List(ctx, folder)
	ids := make([]Identifier, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids
}

// Stat describes loc when the provider implements Stater, and fails with
// ErrNotSupported otherwise.
func (c *Client) Stat(ctx context.Context, loc Location) (*ListingRow, error) {
	st, ok := c.provider.(Stater)
	if !ok {
		return nil, ErrNotSupported
	}
	row, err := st.Stat(ctx, loc)
	if err == nil && row == nil {
		err = errors.Wrapf(ErrNotFound, "stat %s", loc)
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Create asks the provider for a new child of parent. A failed creation is
// logged as ErrProviderCreateFailed and reported through ok.
func (c *Client) Create(ctx context.Context, parent Location, name string, asDirectory bool) (loc Location, ok bool) {
	fields := logrus.Fields{
		"parent": parent.String(),
		"name":   name,
		"dir":    asDirectory,
	}

	loc, err := c.provider.CreateChild(ctx, parent, name, asDirectory)
	if err == nil && loc.IsZero() {
		err = errors.New("provider returned no location")
	}
	if err != nil {
		c.log.WithError(condition(ErrProviderCreateFailed, err)).
			WithFields(fields).
			Error("Failed to create document")
		return Location{}, false
	}

	c.log.WithFields(fields).WithField("location", loc.String()).Debug("Document created")
	return loc, true
}
