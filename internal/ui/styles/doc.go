// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles defines the Lip Gloss themes for the mentor TUI.
// Light and dark palettes are selected by config, with "system"
// following the terminal background.
package styles
