// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// View renders the subsystem.
func (m *Model) View() string {
	return m.engine.View(m.input.View(), m.Connected())
}
