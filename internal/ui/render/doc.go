// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package render owns the on-screen representation of the chat.

The Engine is the only writer of presentation state. Other components
mutate the data model and ask the engine to render; the engine reads the
model and never changes it.

# Render Scheduling

Scheduler is a small state machine with one owned timer:

	idle --Request(false)--> scheduled --RenderTickMsg--> render, idle
	any  --Request(true)---> render now, idle (outstanding tick goes stale)

Each timer is a tea.Tick tagged with a generation. A forced render bumps
the generation, so a stale tick is recognized and dropped. Only one timer
is ever live.

# Strategies

  - Full render rebuilds the viewport content from the active tab,
    capturing and restoring the scroll position around the rebuild.
  - Incremental append adds one message fragment to the already rendered
    tab, pruning the oldest fragments beyond the visible window.

# Overlays

Notifications, the confirmation dialog and the autocomplete dropdown are
composed over the viewport in View. Changing them never rebuilds the
viewport content or moves the scroll position.
*/
package render
