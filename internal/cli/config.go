// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/critterchat/internal/config"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// runConfig handles "critterchat config <path|show|init>".
func runConfig(w io.Writer, args Args) error {
	applyColorProfile()

	switch args.Subcommand {
	case "path":
		path, err := configPath(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, path)
		return nil

	case "show":
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}
		path, _ := configPath(args)
		fmt.Fprintln(w, headingStyle.Render("critterchat configuration"))
		fmt.Fprintln(w, dimStyle.Render("file: "+path))
		fmt.Fprintln(w)
		fmt.Fprint(w, cfg.String())
		return nil

	case "init":
		path, err := configPath(args)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !args.Force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if args.ConfigPath == "" {
			if err := config.EnsureConfigDir(); err != nil {
				return err
			}
		}
		cfg := config.Default()
		applyFlagOverrides(cfg, args)
		if err := config.SaveTOML(cfg, path); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Fprintf(w, "Wrote %s\n", path)
		return nil

	default:
		return fmt.Errorf("%w: unknown config subcommand %q", ErrUsage, args.Subcommand)
	}
}

// configPath is --config or the default TOML location.
func configPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

// loadConfig loads the file named by --config, or the default files, then
// applies flag overrides. A broken default file falls back to defaults
// and is reported on stderr.
func loadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", args.ConfigPath, err)
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, err
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
	}

	applyFlagOverrides(cfg, args)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyFlagOverrides layers command line flags over cfg. Flags win over
// environment variables and files.
func applyFlagOverrides(cfg *config.Config, args Args) {
	if args.Endpoint != "" {
		cfg.Server.Endpoint = args.Endpoint
	}
	if args.User != "" {
		cfg.Identity.Username = args.User
	}
	if args.LogLevel != "" {
		cfg.Log.Level = args.LogLevel
	}
}
