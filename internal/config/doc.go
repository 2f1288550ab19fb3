// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config handles mentor configuration.
//
// Configuration loads from ~/.mentor/config.toml with environment
// overrides applied on top (MENTOR_API_KEY, GEMINI_API_KEY,
// MENTOR_MODEL, MENTOR_PROXY_URL, MENTOR_PORT, MENTOR_DATA_DIR,
// MENTOR_THEME). A missing file is not an error; defaults apply.
//
// The config file may contain an API key, so it is kept at 0600 and
// permissions are fixed on load. String() redacts the key.
package config
