// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package editable provides containers that reconcile a server-provided
// baseline value with an optional local, unsaved edit.
package editable

// =============================================================================
// SCALAR VALUE
// =============================================================================

// Value holds a scalar setting with a server baseline and an optional
// local override.
type Value[T any] struct {
	baseline T
	override T
	dirty    bool
}

// NewValue creates a clean value observing the given baseline.
func NewValue[T any](baseline T) *Value[T] {
	return &Value[T]{baseline: baseline}
}

// Get returns the observed value: the override while dirty, otherwise the
// current baseline.
func (v *Value[T]) Get() T {
	if v.dirty {
		return v.override
	}
	return v.baseline
}

// Dirty reports whether a local edit is pending.
func (v *Value[T]) Dirty() bool {
	return v.dirty
}

// Edit sets the local override and marks the value dirty.
func (v *Value[T]) Edit(x T) {
	v.override = x
	v.dirty = true
}

// Reset drops the override. The observed value reverts to the current
// baseline, including any refreshes buffered while dirty.
func (v *Value[T]) Reset() {
	var zero T
	v.override = zero
	v.dirty = false
}

// SetBaseline installs a refreshed server baseline. While clean the change
// is observed immediately; while dirty it is buffered until Reset.
func (v *Value[T]) SetBaseline(x T) {
	v.baseline = x
}
