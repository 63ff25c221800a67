// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jeranaias/critterchat/internal/model"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command is a prefixed command. Names are stored without the prefix.
type Command struct {
	// Name is the primary command name (e.g., "w")
	Name string

	// Aliases are alternative names (e.g., "whisper", "tell")
	Aliases []string

	// Description is shown in help
	Description string

	// Usage shows argument syntax without the prefix (e.g., "w <target> <message>")
	Usage string

	// Build turns the raw argument string into an intent.
	Build func(rawArgs string) (Intent, error)
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds the known commands. Lookup is case-insensitive.
type Registry struct {
	commands []*Command
	byName   map[string]*Command
}

// NewRegistry creates a registry with the built-in commands.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Command)}
	r.registerBuiltins()
	return r
}

// Register adds a command. Later registrations win on name clashes.
func (r *Registry) Register(cmd *Command) {
	r.commands = append(r.commands, cmd)
	r.byName[strings.ToLower(cmd.Name)] = cmd
	for _, alias := range cmd.Aliases {
		r.byName[strings.ToLower(alias)] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	return r.byName[strings.ToLower(name)]
}

// All returns the commands in registration order.
func (r *Registry) All() []*Command {
	return append([]*Command(nil), r.commands...)
}

// Complete returns the names and aliases starting with partial, sorted.
func (r *Registry) Complete(partial string) []string {
	partial = strings.ToLower(partial)
	var out []string
	for name := range r.byName {
		if strings.HasPrefix(name, partial) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// HelpLines renders one line per command using prefix.
func (r *Registry) HelpLines(prefix string) []string {
	lines := make([]string, 0, len(r.commands))
	for _, cmd := range r.commands {
		line := prefix + cmd.Usage
		if len(cmd.Aliases) > 0 {
			line += " (" + prefix + strings.Join(cmd.Aliases, ", "+prefix) + ")"
		}
		lines = append(lines, line+" - "+cmd.Description)
	}
	return lines
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "w",
		Aliases:     []string{"whisper", "msg", "tell"},
		Description: "Send a private message",
		Usage:       "w <target> <message>",
		Build: func(raw string) (Intent, error) {
			target, body := nextToken(raw)
			body = strings.TrimSpace(body)
			if target == "" {
				return nil, usageError("w", "w <target> <message>", "target")
			}
			if body == "" {
				return nil, usageError("w", "w <target> <message>", "message")
			}
			return Whisper{Target: target, Body: body}, nil
		},
	})

	r.Register(&Command{
		Name:        "g",
		Aliases:     []string{"global", "say"},
		Description: "Say something in the global channel",
		Usage:       "g <message>",
		Build: func(raw string) (Intent, error) {
			body := strings.TrimSpace(raw)
			if body == "" {
				return nil, usageError("g", "g <message>", "message")
			}
			return ChannelMessage{Channel: model.KindGlobal.String(), Body: body}, nil
		},
	})

	r.Register(&Command{
		Name:        "friend",
		Aliases:     []string{"addfriend", "af"},
		Description: "Send a friend request",
		Usage:       "friend <username>",
		Build: func(raw string) (Intent, error) {
			name, _ := nextToken(raw)
			if name == "" {
				return nil, usageError("friend", "friend <username>", "username")
			}
			return AddFriend{Username: name}, nil
		},
	})

	r.Register(&Command{
		Name:        "help",
		Aliases:     []string{"?"},
		Description: "List commands",
		Usage:       "help",
		Build: func(string) (Intent, error) {
			return Help{}, nil
		},
	})
}

func usageError(cmd, usage, arg string) error {
	return &UsageError{Command: cmd, Usage: usage, Arg: arg, Err: ErrMissingArgument}
}

// =============================================================================
// ERRORS
// =============================================================================

// UsageError reports a malformed command.
type UsageError struct {
	Command string
	Usage   string
	Arg     string
	Err     error
}

func (e *UsageError) Error() string {
	msg := e.Command + ": " + e.Err.Error()
	if e.Arg != "" {
		msg += " '" + e.Arg + "'"
	}
	if e.Usage != "" {
		msg += fmt.Sprintf(" (usage: %s)", e.Usage)
	}
	return msg
}

func (e *UsageError) Unwrap() error { return e.Err }
