package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	_ "github.com/rclone/rclone/backend/all"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nuln/doctree"
	_ "github.com/nuln/doctree/drivers"
	"github.com/nuln/doctree/settings"
)

// fileConfig is the layout of the --config file.
type fileConfig struct {
	Provider doctree.Config `yaml:"provider"`
	Root     string         `yaml:"root"`
	Settings string         `yaml:"settings"`
	LockDir  string         `yaml:"lockDir"`
}

var (
	logLevel         string
	logColorDisabled bool

	configPath   string
	driverName   string
	basePath     string
	rootFlag     string
	settingsPath string
	lockDir      string
	options      map[string]string

	rootCmd = &cobra.Command{
		Use:   "doctree",
		Short: "Inspect document provider trees and bootstrap the player storage folders",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return configureLogging(logrus.StandardLogger(), logLevel, !logColorDisabled)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logrus.InfoLevel.String(), "Log level")
	rootCmd.PersistentFlags().BoolVar(&logColorDisabled, "log-color-disabled", false, "Force to disable colorful logs")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&driverName, "driver", "", "Provider driver (local, rclone)")
	rootCmd.PersistentFlags().StringVar(&basePath, "base-path", "", "Volume root for the local driver")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Root tree ID (e.g. primary:EasyRPG) or location string")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Settings file the RTP folder location is stored in")
	rootCmd.PersistentFlags().StringVar(&lockDir, "lock-dir", "", "Directory for bootstrap lock files (default: system temp dir)")
	rootCmd.PersistentFlags().StringToStringVar(&options, "option", nil, "Driver option key=value, may be repeated")
}

// configureLogging applies the --log-level and color flags to log.
func configureLogging(log *logrus.Logger, level string, colors bool) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.WithMessagef(err, "Invalid --log-level %q", level)
	}
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   colors,
		DisableColors: !colors,
	})
	return nil
}

// loadConfig merges the --config file with the command line flags; flags win.
func loadConfig() (*fileConfig, error) {
	cfg := &fileConfig{}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, errors.WithMessage(err, "Failed to read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.WithMessage(err, "Failed to parse config file")
		}
	}

	if driverName != "" {
		cfg.Provider.Type = driverName
	}
	if basePath != "" {
		cfg.Provider.BasePath = basePath
	}
	if rootFlag != "" {
		cfg.Root = rootFlag
	}
	if settingsPath != "" {
		cfg.Settings = settingsPath
	}
	if lockDir != "" {
		cfg.LockDir = lockDir
	}
	if len(options) > 0 && cfg.Provider.Options == nil {
		cfg.Provider.Options = make(map[string]any, len(options))
	}
	for k, v := range options {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Provider.Options[k] = b
		} else {
			cfg.Provider.Options[k] = v
		}
	}

	if cfg.Provider.Type == "" {
		cfg.Provider.Type = "local"
	}
	if cfg.LockDir == "" {
		cfg.LockDir = os.TempDir()
	}
	return cfg, nil
}

// parseRoot accepts either a bare tree ID or a full location string.
func parseRoot(s string) (doctree.Location, error) {
	if s == "" {
		return doctree.Location{}, errors.New("root is required (--root or config file)")
	}
	if strings.HasPrefix(s, "tree/") {
		return doctree.ParseLocation(s)
	}
	return doctree.RootLocation(doctree.Identifier(s)), nil
}

// setup opens the configured provider and returns a resolver over it plus
// the root location.
func setup() (*fileConfig, *doctree.Resolver, doctree.Location, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, doctree.Location{}, err
	}

	root, err := parseRoot(cfg.Root)
	if err != nil {
		return nil, nil, doctree.Location{}, err
	}

	provider, err := doctree.Open(&cfg.Provider)
	if err != nil {
		return nil, nil, doctree.Location{}, errors.WithMessage(err, "Failed to open provider")
	}

	resolver := doctree.NewResolver(doctree.NewClient(provider, logrus.StandardLogger()))
	return cfg, resolver, root, nil
}

func openSettings(path string) (*settings.FileStore, error) {
	if path == "" {
		return nil, errors.New("settings file is required (--settings or config file)")
	}
	return settings.Open(path)
}

// Execute is the command line entrypoint.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
