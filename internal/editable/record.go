// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package editable provides containers that reconcile a server-provided
// baseline value with an optional local, unsaved edit.
package editable

// =============================================================================
// KEYED RECORD
// =============================================================================

// Record holds a keyed record whose edits arrive as partial updates.
//
// The first Upsert after a clean state seeds the override from the current
// baseline, so a partial update never drops unrelated fields. While dirty,
// further upserts merge into the existing override and never reseed, which
// guards pending edits against baseline drift.
type Record struct {
	baseline map[string]any
	override map[string]any
	dirty    bool
}

// NewRecord creates a clean record observing the given baseline.
// A nil baseline is treated as an empty record.
func NewRecord(baseline map[string]any) *Record {
	return &Record{baseline: baseline}
}

// Get returns a copy of the observed record.
func (r *Record) Get() map[string]any {
	if r.dirty {
		return copyRecord(r.override)
	}
	return copyRecord(r.baseline)
}

// Dirty reports whether a local edit is pending.
func (r *Record) Dirty() bool {
	return r.dirty
}

// Upsert merges the given keys into the override and marks the record
// dirty. On the clean-to-dirty transition the override is seeded from the
// current baseline first.
func (r *Record) Upsert(partial map[string]any) {
	if !r.dirty {
		r.override = copyRecord(r.baseline)
	}
	if r.override == nil {
		r.override = make(map[string]any, len(partial))
	}
	for k, v := range partial {
		r.override[k] = v
	}
	r.dirty = true
}

// Reset drops the override; the observed record reverts to the current
// baseline.
func (r *Record) Reset() {
	r.override = nil
	r.dirty = false
}

// SetBaseline installs a refreshed server baseline. Observed immediately
// while clean, buffered until Reset while dirty.
func (r *Record) SetBaseline(baseline map[string]any) {
	r.baseline = baseline
}

func copyRecord(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
