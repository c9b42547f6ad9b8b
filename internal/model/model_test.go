// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for rooms, messages, and
// generation progress.
package model

import (
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestMessage_IsOptimistic(t *testing.T) {
	msg := NewOptimisticMessage("room-1", "alice", "hello")
	if !msg.IsOptimistic() {
		t.Error("freshly created optimistic message should have nil ID")
	}

	id := int64(42)
	msg.ID = &id
	if msg.IsOptimistic() {
		t.Error("message with a server id should not be optimistic")
	}
}

func TestMessage_RagSourceList(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{name: "empty payload", payload: "", want: 0},
		{name: "null payload", payload: "null", want: 0},
		{name: "malformed payload", payload: "{not json", want: 0},
		{name: "empty list", payload: "[]", want: 0},
		{
			name:    "two sources",
			payload: `[{"id":"a","content":"x","similarity_score":0.2},{"id":"b","content":"y","similarity_score":0.4,"knowledge_base":"docs"}]`,
			want:    2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := Message{RagSources: tc.payload}
			got := msg.RagSourceList()
			if len(got) != tc.want {
				t.Errorf("RagSourceList() returned %d sources, want %d", len(got), tc.want)
			}
		})
	}
}

func TestMessage_RagSourceList_Metadata(t *testing.T) {
	msg := Message{
		RagSources: `[{"id":"r1","content":"chunk","similarity_score":0.73,"knowledge_base":"manuals","metadata":{"document_path":"a.pdf","page_number":3,"page_count":10,"chunk_number":2,"chunk_count":8}}]`,
	}
	sources := msg.RagSourceList()
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	src := sources[0]
	if src.KnowledgeBase != "manuals" {
		t.Errorf("KnowledgeBase = %q, want %q", src.KnowledgeBase, "manuals")
	}
	if src.Metadata.DocumentPath != "a.pdf" || src.Metadata.PageNumber != 3 {
		t.Errorf("unexpected metadata: %+v", src.Metadata)
	}
}

func TestMessage_Preview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		maxLen  int
		want    string
	}{
		{name: "short content unchanged", content: "hi", maxLen: 10, want: "hi"},
		{name: "long content truncated", content: "hello world", maxLen: 8, want: "hello..."},
		{name: "unicode safe", content: "héllo wörld", maxLen: 8, want: "héllo..."},
		{name: "tiny max", content: "hello", maxLen: 2, want: "he"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := Message{Content: tc.content}
			if got := msg.Preview(tc.maxLen); got != tc.want {
				t.Errorf("Preview(%d) = %q, want %q", tc.maxLen, got, tc.want)
			}
		})
	}
}

// =============================================================================
// PROGRESS TESTS
// =============================================================================

func TestProgress_Generating(t *testing.T) {
	tests := []struct {
		status ProgressStatus
		want   bool
	}{
		{StatusInitial, false},
		{StatusStarted, true},
		{StatusGenerating, true},
		{StatusFinished, false},
		{StatusError, false},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			p := Progress{Status: tc.status}
			if got := p.Generating(); got != tc.want {
				t.Errorf("Generating() with status %q = %v, want %v", tc.status, got, tc.want)
			}
		})
	}
}

// =============================================================================
// ROOM TESTS
// =============================================================================

func TestRoom_IsZero(t *testing.T) {
	if !(Room{}).IsZero() {
		t.Error("empty room should be zero")
	}
	if (Room{ID: "abc", Name: "General"}).IsZero() {
		t.Error("populated room should not be zero")
	}
}
