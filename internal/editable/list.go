// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package editable provides containers that reconcile a server-provided
// baseline value with an optional local, unsaved edit.
package editable

import (
	"strconv"

	"github.com/google/uuid"
)

// =============================================================================
// LIST ITEMS AND KEYS
// =============================================================================

// Item pairs a list element with its synthetic local key. Keys are stable
// across renders and independent of server identity, so an item can be
// reordered or removed before it has ever been saved.
type Item[T any] struct {
	Key   string
	Value T
}

// keyGen issues collision-free keys scoped to one list's lifetime: a random
// run prefix plus a monotonic counter.
type keyGen struct {
	prefix string
	next   int
}

func newKeyGen() *keyGen {
	return &keyGen{prefix: uuid.NewString()[:8]}
}

func (g *keyGen) Next() string {
	g.next++
	return g.prefix + "_" + strconv.Itoa(g.next)
}

// =============================================================================
// ORDERED LIST
// =============================================================================

// List holds an ordered list setting with item-level editing.
//
// Every mutating call marks the list dirty and, when transitioning from a
// clean state, seeds the override from the current baseline first — the
// same anti-drift guard as Record.
type List[T any] struct {
	keys     *keyGen
	baseline []Item[T]
	override []Item[T]
	dirty    bool
}

// NewList creates a clean list observing the given baseline values. Each
// value receives a fresh synthetic key.
func NewList[T any](baseline []T) *List[T] {
	l := &List[T]{keys: newKeyGen()}
	l.baseline = l.wrap(baseline)
	return l
}

// Items returns a copy of the observed items in order.
func (l *List[T]) Items() []Item[T] {
	return append([]Item[T](nil), l.observed()...)
}

// Values returns the observed element values in order, without keys.
func (l *List[T]) Values() []T {
	observed := l.observed()
	values := make([]T, len(observed))
	for i, item := range observed {
		values[i] = item.Value
	}
	return values
}

// Len returns the observed item count.
func (l *List[T]) Len() int {
	return len(l.observed())
}

// Dirty reports whether a local edit is pending.
func (l *List[T]) Dirty() bool {
	return l.dirty
}

// Add appends a new item and returns its synthetic key.
func (l *List[T]) Add(value T) string {
	l.ensureLatestBaseline()
	key := l.keys.Next()
	l.override = append(l.override, Item[T]{Key: key, Value: value})
	l.dirty = true
	return key
}

// Remove deletes the item with the given key. Unknown keys still mark the
// list dirty, matching the other mutating calls.
func (l *List[T]) Remove(key string) {
	l.ensureLatestBaseline()
	kept := l.override[:0]
	for _, item := range l.override {
		if item.Key != key {
			kept = append(kept, item)
		}
	}
	l.override = kept
	l.dirty = true
}

// Update replaces the value of the item with the matching key.
func (l *List[T]) Update(key string, value T) {
	l.ensureLatestBaseline()
	for i := range l.override {
		if l.override[i].Key == key {
			l.override[i].Value = value
		}
	}
	l.dirty = true
}

// Swap exchanges the items at the two indices. Out-of-bounds indices make
// the call a complete no-op: the list is unchanged and the dirty flag is
// untouched.
func (l *List[T]) Swap(i, j int) {
	n := len(l.observed())
	if i < 0 || i >= n || j < 0 || j >= n {
		return
	}
	l.ensureLatestBaseline()
	l.override[i], l.override[j] = l.override[j], l.override[i]
	l.dirty = true
}

// Reset drops the override; the observed items revert to the current
// baseline.
func (l *List[T]) Reset() {
	l.override = nil
	l.dirty = false
}

// SetBaseline installs refreshed server values. Each value receives a
// fresh synthetic key. Observed immediately while clean, buffered until
// Reset while dirty.
func (l *List[T]) SetBaseline(values []T) {
	l.baseline = l.wrap(values)
}

// =============================================================================
// INTERNALS
// =============================================================================

func (l *List[T]) observed() []Item[T] {
	if l.dirty {
		return l.override
	}
	return l.baseline
}

// ensureLatestBaseline seeds the override from the current baseline on the
// clean-to-dirty transition. While already dirty it never reseeds.
func (l *List[T]) ensureLatestBaseline() {
	if !l.dirty {
		l.override = append([]Item[T](nil), l.baseline...)
	}
}

func (l *List[T]) wrap(values []T) []Item[T] {
	items := make([]Item[T], len(values))
	for i, v := range values {
		items[i] = Item[T]{Key: l.keys.Next(), Value: v}
	}
	return items
}
