// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers.
//
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - TruncateRunes / TruncateWidth: UTF-8 and display-width safe truncation
//   - PadRight, OneLine: Display formatting
package util
