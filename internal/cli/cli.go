// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdVersion
	CmdConfig
	CmdHelp
)

// ErrUsage reports a malformed command line.
var ErrUsage = errors.New("invalid usage")

// Args holds parsed CLI arguments.
type Args struct {
	Cmd        Command
	Subcommand string

	// Global flags
	ConfigPath string
	Endpoint   string
	User       string
	LogLevel   string
	Force      bool
}

const usageText = `critterchat - terminal client for the critter world chat

Usage:
  critterchat                   Start the chat (default)
  critterchat version           Show version information
  critterchat config path       Show the config file location
  critterchat config show       Show the effective configuration
  critterchat config init       Write a default config file
    --force                     Overwrite an existing file
  critterchat help              Show this help

Flags:
  --config PATH                 Config file (default ~/.critterchat/config.toml)
  --endpoint URL                Chat server websocket URL
  --user NAME                   Local username
  --log-level LEVEL             debug, info, warn, error or disabled

Environment:
  CRITTERCHAT_ENDPOINT, CRITTERCHAT_TOKEN, CRITTERCHAT_USERNAME,
  CRITTERCHAT_FRIENDS_URL, CRITTERCHAT_LOG_LEVEL, CRITTERCHAT_LOG_PATH
  (also read from ./.env)
`

// ParseArgs interprets the process arguments, without the program name.
func ParseArgs(raw []string) (Args, error) {
	p := NewArgParser(raw)
	args := Args{
		ConfigPath: p.Flag("config"),
		Endpoint:   p.Flag("endpoint"),
		User:       p.Flag("user"),
		LogLevel:   p.Flag("log-level"),
		Force:      p.BoolFlag("force"),
		Subcommand: p.Positional(1),
	}
	if p.BoolFlag("help") || p.BoolFlag("h") {
		args.Cmd = CmdHelp
		return args, nil
	}
	if p.BoolFlag("version") {
		args.Cmd = CmdVersion
		return args, nil
	}

	switch strings.ToLower(p.Subcommand()) {
	case "":
		args.Cmd = CmdTUI
	case "version":
		args.Cmd = CmdVersion
	case "config":
		args.Cmd = CmdConfig
		if args.Subcommand == "" {
			args.Subcommand = "show"
		}
	case "help":
		args.Cmd = CmdHelp
	default:
		return args, fmt.Errorf("%w: unknown command %q", ErrUsage, p.Subcommand())
	}

	for _, name := range []string{"config", "endpoint", "user", "log-level"} {
		if p.BoolFlag(name) {
			return args, fmt.Errorf("%w: --%s needs a value", ErrUsage, name)
		}
	}
	return args, nil
}

// Run executes args.
func Run(args Args) error {
	switch args.Cmd {
	case CmdVersion:
		printVersion(os.Stdout)
		return nil
	case CmdHelp:
		fmt.Fprint(os.Stdout, usageText)
		return nil
	case CmdConfig:
		return runConfig(os.Stdout, args)
	default:
		return runTUI(args)
	}
}

// Main parses os.Args and runs, returning the process exit code.
func Main() int {
	args, err := ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n%s", err, usageText)
		return 2
	}
	if err := Run(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "critterchat %s\n", Version)
	fmt.Fprintf(w, "  commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  built:  %s\n", BuildDate)
	fmt.Fprintf(w, "  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
