// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides argument parsing and terminal detection for the
// mentor command.
//
// Commands: tui (default), serve, export, version, help. Terminal
// helpers gate the TUI behind a real TTY and respect NO_COLOR and
// FORCE_COLOR for plain-output environments.
package cli
