// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package progress reduces the stream of generation progress events into
// a user-facing phase and a throughput line.
package progress

import (
	"math"
	"strconv"

	"github.com/v-industries-lv/ausma-ai-documents/internal/model"
)

// =============================================================================
// PHASE
// =============================================================================

// Phase is the user-facing rendering of a progress status.
type Phase int

const (
	// PhaseIdle shows no spinner: nothing has happened yet, or the last
	// turn completed.
	PhaseIdle Phase = iota
	PhaseStarted
	PhaseGenerating
	PhaseError
)

// PhaseOf maps a progress status to its display phase. A finished turn
// renders the same as the pre-event state: no spinner, no message.
func PhaseOf(p model.Progress) Phase {
	switch p.Status {
	case model.StatusStarted:
		return PhaseStarted
	case model.StatusGenerating:
		return PhaseGenerating
	case model.StatusError:
		return PhaseError
	default:
		return PhaseIdle
	}
}

// =============================================================================
// REDUCER
// =============================================================================

// Reduce merges an incoming progress event into the current state.
//
// A started event always wins: it is the beginning of a new turn. Within
// a turn the status only moves forward (started, generating, then finished
// or error). A room opened mid-turn may hear its first event well past
// started, so any event also wins over the idle state; only a leftover
// arriving after the turn has settled is dropped.
func Reduce(current, incoming model.Progress) model.Progress {
	switch incoming.Status {
	case model.StatusStarted:
		return incoming
	case model.StatusGenerating, model.StatusFinished, model.StatusError:
		if current.Status == model.StatusFinished || current.Status == model.StatusError {
			return current
		}
		return incoming
	default:
		return current
	}
}

// =============================================================================
// THROUGHPUT
// =============================================================================

// TokensPerSecond computes the generation throughput. The second return
// is false when the ratio is not a finite number (zero or missing
// duration), in which case the caller must fall back to a token-count-only
// message.
func TokensPerSecond(p model.Progress) (float64, bool) {
	rate := p.NewTokens / p.DurationS
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, false
	}
	return rate, true
}

// StatusMessage renders the progress line for the current state. An empty
// string means nothing should be shown.
func StatusMessage(p model.Progress) string {
	switch p.Status {
	case model.StatusGenerating:
		total := strconv.Itoa(p.TotalResponseTokens)
		rate, ok := TokensPerSecond(p)
		if !ok {
			return "Processing... Tokens so far: " + total
		}
		return "Processing... " + strconv.FormatFloat(rate, 'f', 3, 64) +
			" tokens/s, total so far: " + total + " tokens"
	case model.StatusStarted:
		return "Processing history ..."
	case model.StatusError:
		return "An error occurred. Error: " + p.Message
	default:
		return ""
	}
}
