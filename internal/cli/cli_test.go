// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/critterchat/internal/config"
)

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"config", "show", "--config", "a.toml", "--user=alex", "--force", "-v", "--", "--literal"})

	if got := p.Subcommand(); got != "config" {
		t.Errorf("Subcommand() = %q, want config", got)
	}
	if got := p.Positional(1); got != "show" {
		t.Errorf("Positional(1) = %q, want show", got)
	}
	if got := p.Flag("config"); got != "a.toml" {
		t.Errorf("Flag(config) = %q", got)
	}
	if got := p.Flag("--user"); got != "alex" {
		t.Errorf("Flag(--user) = %q", got)
	}
	if !p.BoolFlag("force") || !p.BoolFlag("v") {
		t.Error("expected force and v to be set")
	}
	if got := p.FlagOrDefault("endpoint", "ws://x"); got != "ws://x" {
		t.Errorf("FlagOrDefault = %q", got)
	}
	if got := p.PositionalFrom(2); len(got) != 1 || got[0] != "--literal" {
		t.Errorf("PositionalFrom(2) = %v", got)
	}
	if p.Positional(9) != "" || p.PositionalFrom(9) != nil {
		t.Error("out of range positionals should be empty")
	}
	if !p.HasFlag("user") || p.HasFlag("missing") {
		t.Error("HasFlag mismatch")
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		cmd  Command
		sub  string
	}{
		{"default", nil, CmdTUI, ""},
		{"version", []string{"version"}, CmdVersion, ""},
		{"version flag", []string{"--version"}, CmdVersion, ""},
		{"help", []string{"help"}, CmdHelp, ""},
		{"help flag", []string{"-h"}, CmdHelp, ""},
		{"config default show", []string{"config"}, CmdConfig, "show"},
		{"config path", []string{"config", "path"}, CmdConfig, "path"},
		{"case insensitive", []string{"VERSION"}, CmdVersion, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := ParseArgs(tt.raw)
			if err != nil {
				t.Fatalf("ParseArgs(%v) error: %v", tt.raw, err)
			}
			if args.Cmd != tt.cmd {
				t.Errorf("Cmd = %v, want %v", args.Cmd, tt.cmd)
			}
			if args.Subcommand != tt.sub {
				t.Errorf("Subcommand = %q, want %q", args.Subcommand, tt.sub)
			}
		})
	}
}

func TestParseArgs_Flags(t *testing.T) {
	args, err := ParseArgs([]string{"--endpoint", "wss://chat.example/ws", "--user", "alex", "--log-level=debug", "--config", "c.toml"})
	if err != nil {
		t.Fatal(err)
	}
	if args.Endpoint != "wss://chat.example/ws" || args.User != "alex" || args.LogLevel != "debug" || args.ConfigPath != "c.toml" {
		t.Errorf("unexpected args: %+v", args)
	}
}

func TestParseArgs_Errors(t *testing.T) {
	for _, raw := range [][]string{{"frobnicate"}, {"--user"}, {"--config", "--user", "x"}} {
		if _, err := ParseArgs(raw); !errors.Is(err, ErrUsage) {
			t.Errorf("ParseArgs(%v) error = %v, want ErrUsage", raw, err)
		}
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := config.Default()
	applyFlagOverrides(cfg, Args{Endpoint: "ws://other/chat", User: "sam", LogLevel: "warn"})
	if cfg.Server.Endpoint != "ws://other/chat" || cfg.Identity.Username != "sam" || cfg.Log.Level != "warn" {
		t.Errorf("overrides not applied: %+v", cfg)
	}

	before := cfg.Clone()
	applyFlagOverrides(cfg, Args{})
	if cfg.String() != before.String() {
		t.Error("empty flags changed the config")
	}
}

func TestTransportOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Reconnect.MaxAttempts = 7
	cfg.Reconnect.MinDelay = config.Dur(2 * time.Second)
	cfg.Chat.SendRate = 3
	cfg.Chat.SendBurst = 4

	opts := transportOptions(cfg)
	if opts.Backoff.MaxAttempts != 7 || opts.Backoff.Min != 2*time.Second {
		t.Errorf("backoff = %+v", opts.Backoff)
	}
	if opts.SendRate != 3 || opts.SendBurst != 4 {
		t.Errorf("rate = %v/%d", opts.SendRate, opts.SendBurst)
	}
}

func TestRunConfig_InitShowPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	args := Args{Cmd: CmdConfig, ConfigPath: path, User: "alex"}

	var out bytes.Buffer
	args.Subcommand = "init"
	if err := runConfig(&out, args); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	if err := runConfig(&out, args); err == nil {
		t.Error("second init without --force should fail")
	}
	args.Force = true
	if err := runConfig(&out, args); err != nil {
		t.Errorf("init --force: %v", err)
	}

	out.Reset()
	args.Subcommand = "path"
	if err := runConfig(&out, args); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != path {
		t.Errorf("path printed %q", out.String())
	}

	out.Reset()
	args.Subcommand = "show"
	args.User = ""
	if err := runConfig(&out, args); err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out.String(), "alex") {
		t.Errorf("show output missing saved username:\n%s", out.String())
	}

	args.Subcommand = "bogus"
	if err := runConfig(&out, args); !errors.Is(err, ErrUsage) {
		t.Errorf("bogus subcommand error = %v", err)
	}
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.SaveTOML(config.Default(), path); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(Args{ConfigPath: path, Endpoint: "http://not-a-websocket"}); err == nil {
		t.Error("expected invalid endpoint to be rejected")
	}
}

func TestColorsEnabled_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if ColorsEnabled() {
		t.Error("NO_COLOR should disable colors")
	}
}

func TestPrintVersion(t *testing.T) {
	var out bytes.Buffer
	printVersion(&out)
	if !strings.Contains(out.String(), "critterchat "+Version) {
		t.Errorf("unexpected version output: %q", out.String())
	}
}
