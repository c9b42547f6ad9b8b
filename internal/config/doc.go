// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and manages the client configuration.
//
// Configuration lives in TOML at ~/.ausma/config.toml, with built-in
// defaults underneath and AUSMA_* environment variables on top. A
// file watcher can reload the configuration when the file changes on
// disk.
package config
