// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for rooms, messages, and
// generation progress.
package model

// =============================================================================
// PROGRESS STATUS
// =============================================================================

// ProgressStatus is the generation phase reported by the server.
type ProgressStatus string

const (
	// StatusInitial is the pre-event state; nothing is known yet.
	StatusInitial ProgressStatus = "initial"
	// StatusStarted means the server accepted the turn and is preparing
	// the history for the model.
	StatusStarted ProgressStatus = "started"
	// StatusGenerating means tokens are being produced.
	StatusGenerating ProgressStatus = "generating"
	// StatusFinished terminates a turn successfully.
	StatusFinished ProgressStatus = "finished"
	// StatusError terminates a turn with a user-visible message.
	StatusError ProgressStatus = "error"
)

// =============================================================================
// PROGRESS TYPE
// =============================================================================

// Progress is the live state of one room's generation. It is never
// persisted; exactly one value exists per open room and it is discarded
// on room switch.
type Progress struct {
	Status              ProgressStatus `json:"status"`
	NewTokens           float64        `json:"new_tokens"`
	DurationS           float64        `json:"duration_s"`
	TotalResponseTokens int            `json:"total_response_tokens"`
	Message             string         `json:"message,omitempty"`
}

// InitialProgress returns the state of a room before any event arrived.
func InitialProgress() Progress {
	return Progress{Status: StatusInitial}
}

// Generating reports whether a turn is outstanding: the turn has been
// accepted or tokens are flowing. Input is blocked while this holds.
func (p Progress) Generating() bool {
	return p.Status == StatusStarted || p.Status == StatusGenerating
}
