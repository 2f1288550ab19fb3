// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export provides conversation and state export for mentor.
//
// Sessions export to JSON, Markdown, or standalone HTML with syntax
// highlighting; the full durable state exports as a JSON snapshot
// suitable for backup or migration.
//
// # Key Types
//
//   - Exporter: Render interface implemented per format
//   - Options: Output directory, metadata, timestamps, theme
//
// # Usage
//
// Export a session to Markdown:
//
//	opts := export.DefaultOptions()
//	path, err := export.ExportToFile(session, export.NewMarkdownExporter(opts), opts)
//
// Dump the whole state:
//
//	err := export.WriteStateSnapshot(dispatcher.State(), "backup.json")
package export
