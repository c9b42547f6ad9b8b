// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package status polls the document-processing service for its indexing
// state and fans the result out to an observer. The poll interval comes
// from configuration; polling stops the moment the owner says so.
package status
