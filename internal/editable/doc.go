// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package editable provides containers that reconcile a server-provided
// baseline value with an optional local, unsaved edit.
//
// Every container tracks an explicit dirty flag. While clean, the observed
// value follows the latest baseline automatically, so server refreshes stay
// visible. Once an edit begins, the observed value is the local override and
// later baseline refreshes are buffered: they are adopted on Reset, or
// transparently the next time an edit starts from a clean state. A pending
// edit is never silently rewritten by a refresh.
//
// # Variants
//
//   - Value[T]: a scalar with Edit / Reset
//   - Record: a keyed record with partial Upsert merging
//   - List[T]: an ordered list with item-level Add / Remove / Swap / Update,
//     where items carry synthetic local keys independent of server identity
//
// All operations are pure in-memory transforms; none can fail and none
// perform I/O. The containers are not safe for concurrent use — they belong
// to the single-threaded event loop that owns the view state.
package editable
