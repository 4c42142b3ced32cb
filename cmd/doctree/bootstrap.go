package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nuln/doctree"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the player folders under the root and publish the RTP folder location",
	Args:  cobra.NoArgs,
	RunE:  bootstrap,
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
}

// rootLock returns the lock guarding bootstrap passes over root. Two passes
// over the same root must not interleave or both may create the same folder.
func rootLock(dir string, root doctree.Location) *flock.Flock {
	sum := sha256.Sum256([]byte(root.String()))
	return flock.New(filepath.Join(dir, "doctree-"+hex.EncodeToString(sum[:8])+".lock"))
}

func bootstrap(cmd *cobra.Command, args []string) error {
	cfg, resolver, root, err := setup()
	if err != nil {
		return err
	}

	store, err := openSettings(cfg.Settings)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.LockDir, 0750); err != nil {
		return errors.WithMessage(err, "Failed to create lock directory")
	}
	lock := rootLock(cfg.LockDir, root)
	locked, err := lock.TryLock()
	if err != nil {
		return errors.WithMessage(err, "Failed to lock root")
	}
	if !locked {
		return errors.Errorf("another bootstrap is running for %s", root)
	}
	defer func() { _ = lock.Unlock() }()

	res := doctree.NewBootstrapper(resolver, store).Run(cmd.Context(), root)

	for _, p := range res.Problems {
		logrus.WithError(p).Warn("Bootstrap problem")
	}

	out, err := yaml.Marshal(summarize(res))
	if err != nil {
		return errors.WithMessage(err, "Failed to encode result")
	}
	fmt.Fprint(os.Stdout, string(out))

	if !res.Ready() {
		return errors.New("storage not ready")
	}
	return nil
}

type folderSummary struct {
	Path     string `yaml:"path"`
	Location string `yaml:"location"`
	Created  bool   `yaml:"created"`
}

type resultSummary struct {
	Root      string          `yaml:"root"`
	Folders   []folderSummary `yaml:"folders"`
	Marker    string          `yaml:"marker,omitempty"`
	Published string          `yaml:"published,omitempty"`
	Problems  []string        `yaml:"problems,omitempty"`
}

func summarize(res *doctree.Result) resultSummary {
	s := resultSummary{Root: res.Root.String()}
	for _, f := range res.Folders {
		s.Folders = append(s.Folders, folderSummary{Path: f.Path, Location: f.Location.String(), Created: f.Created})
	}
	if !res.Marker.IsZero() {
		s.Marker = res.Marker.String()
	}
	if !res.Published.IsZero() {
		s.Published = res.Published.String()
	}
	for _, p := range res.Problems {
		s.Problems = append(s.Problems, p.Error())
	}
	return s
}
