// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultPrefix starts a command.
const DefaultPrefix = "/"

var (
	// ErrUnknownCommand is returned for prefixed input naming no command.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrMissingArgument is returned when a required argument is absent.
	ErrMissingArgument = errors.New("missing argument")
)

// =============================================================================
// PARSER
// =============================================================================

// Parser interprets chat input.
type Parser struct {
	prefix   string
	registry *Registry
}

// NewParser creates a parser. An empty prefix uses DefaultPrefix.
func NewParser(prefix string, registry *Registry) *Parser {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &Parser{prefix: prefix, registry: registry}
}

// Prefix returns the command prefix.
func (p *Parser) Prefix() string { return p.prefix }

// Registry returns the command registry.
func (p *Parser) Registry() *Registry { return p.registry }

// Parse interprets input. Blank input yields a nil intent and no error.
func (p *Parser) Parse(input string) (Intent, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	if !strings.HasPrefix(input, p.prefix) {
		return PlainText{Body: input}, nil
	}

	line := input[len(p.prefix):]
	name, rawArgs := nextToken(line)
	if name == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, input)
	}

	cmd := p.registry.Get(name)
	if cmd == nil {
		return nil, fmt.Errorf("%w: %s%s", ErrUnknownCommand, p.prefix, name)
	}

	intent, err := cmd.Build(rawArgs)
	if err != nil {
		var ue *UsageError
		if errors.As(err, &ue) {
			ue.Command = p.prefix + ue.Command
			ue.Usage = p.prefix + ue.Usage
		}
		return nil, err
	}
	return intent, nil
}

// PartialCommand returns the command name being typed, without prefix,
// or "" once the name is complete or input is not a command.
func (p *Parser) PartialCommand(input string) (string, bool) {
	if !strings.HasPrefix(input, p.prefix) {
		return "", false
	}
	rest := input[len(p.prefix):]
	if strings.IndexFunc(rest, unicode.IsSpace) >= 0 {
		return "", false
	}
	return rest, true
}

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

// nextToken reads one token from s, respecting single and double quotes,
// and returns it with the unconsumed remainder.
func nextToken(s string) (token, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	var current strings.Builder
	var inSingleQuote, inDoubleQuote bool

	i := 0
	for i < len(s) {
		char, size := utf8.DecodeRuneInString(s[i:])

		switch {
		case char == '\'' && !inDoubleQuote:
			inSingleQuote = !inSingleQuote

		case char == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote

		case char == '\\' && i+1 < len(s) && (inDoubleQuote || inSingleQuote):
			next := s[i+1]
			if next == '"' || next == '\'' || next == '\\' {
				current.WriteByte(next)
				i += 2
				continue
			}
			current.WriteRune(char)

		case unicode.IsSpace(char) && !inSingleQuote && !inDoubleQuote:
			return current.String(), s[i:]

		default:
			current.WriteRune(char)
		}
		i += size
	}
	return current.String(), ""
}
