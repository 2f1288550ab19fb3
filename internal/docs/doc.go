// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docs handles study material ingestion.
//
// Files become Document entities with base64 data URLs. Text-like
// documents can be pinned as chat context; a filesystem watcher imports
// anything dropped into the inbox directory.
//
// Size caps: 20 MiB per document, 5 MiB per chat image.
package docs
