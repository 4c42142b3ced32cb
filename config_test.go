package doctree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuln/doctree"
	"github.com/nuln/doctree/doctreetest"
)

func init() {
	doctree.Register("fake", func(cfg *doctree.Config) (doctree.Provider, error) {
		return doctreetest.NewFake(doctree.Identifier(cfg.StringOption("tree", "fake"))), nil
	})
}

func TestOpen(t *testing.T) {
	p, err := doctree.Open(&doctree.Config{Type: "fake", Options: map[string]any{"tree": "primary:X"}})
	require.NoError(t, err)
	assert.Equal(t, doctree.RootLocation("primary:X"), p.(*doctreetest.Fake).Root())
	assert.Contains(t, doctree.Drivers(), "fake")

	_, err = doctree.Open(&doctree.Config{Type: "nope"})
	assert.Error(t, err)
	_, err = doctree.Open(nil)
	assert.Error(t, err)

	assert.Panics(t, func() { doctree.Register("fake", nil) })
	assert.Panics(t, func() { doctree.MustOpen(&doctree.Config{Type: "nope"}) })
	assert.NotNil(t, doctree.MustOpen(&doctree.Config{Type: "fake"}))
}

func TestConfigOptions(t *testing.T) {
	cfg := &doctree.Config{Options: map[string]any{"volume": "sdcard", "caseInsensitive": true, "n": 3}}
	assert.Equal(t, "sdcard", cfg.StringOption("volume", "primary"))
	assert.Equal(t, "primary", cfg.StringOption("missing", "primary"))
	assert.Equal(t, "x", cfg.StringOption("n", "x"))
	assert.True(t, cfg.BoolOption("caseInsensitive", false))
	assert.True(t, cfg.BoolOption("missing", true))

	var empty doctree.Config
	assert.Equal(t, "d", empty.StringOption("k", "d"))
}
