// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides stateless render helpers shared by the
// TUI screens: the session/document sidebar, the status bar, and toast
// notifications.
package components
