package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings [key]",
	Short: "Print stored settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  showSettings,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}

func showSettings(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openSettings(cfg.Settings)
	if err != nil {
		return err
	}

	keys := args
	if len(keys) == 0 {
		if keys, err = store.Keys(); err != nil {
			return err
		}
	}

	for _, key := range keys {
		v, ok, err := store.Get(key)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Errorf("setting %q is not set", key)
		}
		fmt.Printf("%s: %s\n", key, v)
	}
	return nil
}
