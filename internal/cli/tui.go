// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/critterchat/internal/config"
	"github.com/jeranaias/critterchat/internal/friends"
	"github.com/jeranaias/critterchat/internal/logging"
	"github.com/jeranaias/critterchat/internal/transport"
	"github.com/jeranaias/critterchat/internal/ui/chat"
	"github.com/jeranaias/critterchat/internal/ui/styles"
)

// ErrNoTerminal is returned when the TUI is started without a terminal.
var ErrNoTerminal = errors.New("critterchat needs an interactive terminal")

// runTUI starts the chat program and blocks until it exits.
func runTUI(args Args) error {
	if !IsTTY() || !IsStdoutTTY() {
		return ErrNoTerminal
	}
	applyColorProfile()

	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	logPath := cfg.Log.Path
	if logPath == "" {
		if logPath, err = config.DefaultLogPath(); err != nil {
			return err
		}
	}
	if err := logging.Init(cfg.Log.Level, logPath); err != nil {
		return err
	}
	defer logging.Close()
	log := logging.Module("cli")
	log.Info().Str("version", Version).Str("user", cfg.Identity.Username).Msg("starting")

	client := transport.NewClient(transportOptions(cfg))
	dir := friends.NewClient(cfg.Friends.BaseURL, cfg.Server.Credential).
		WithTimeout(cfg.Friends.Timeout.Duration).
		WithMaxRetries(cfg.Friends.MaxRetries)

	m := chat.New(chat.Options{
		Config:    cfg,
		Transport: client,
		Directory: dir,
		Theme:     styles.NewTheme(),
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	m.Attach(p.Send)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchConfig(ctx, args, p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	log.Info().Msg("exiting")
	return nil
}

// transportOptions maps configuration onto the connection options.
func transportOptions(cfg *config.Config) transport.Options {
	return transport.Options{
		DialTimeout: cfg.Server.DialTimeout.Duration,
		AuthTimeout: cfg.Server.AuthTimeout.Duration,
		Backoff: transport.Backoff{
			MaxAttempts: cfg.Reconnect.MaxAttempts,
			Min:         cfg.Reconnect.MinDelay.Duration,
			Max:         cfg.Reconnect.MaxDelay.Duration,
		},
		SendRate:  cfg.Chat.SendRate,
		SendBurst: cfg.Chat.SendBurst,
	}
}

// watchConfig delivers reloaded configuration to the program until ctx
// is done. Flag overrides are reapplied to every reload.
func watchConfig(ctx context.Context, args Args, p *tea.Program) {
	log := logging.Module("cli")

	path, err := configPath(args)
	if err != nil {
		log.Warn().Err(err).Msg("config watch disabled")
		return
	}
	err = config.Watch(ctx, path,
		func(cfg *config.Config) {
			applyFlagOverrides(cfg, args)
			if err := cfg.Validate(); err != nil {
				log.Warn().Err(err).Msg("ignoring invalid config reload")
				return
			}
			p.Send(chat.ConfigReloadedMsg{Config: cfg})
		},
		func(err error) {
			log.Warn().Err(err).Msg("config reload failed")
		},
	)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("config watch stopped")
	}
}
