// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import "github.com/v-industries-lv/ausma-ai-documents/internal/api"

// =============================================================================
// EXTERNAL MESSAGES
// =============================================================================

// RoomsChangedMsg signals that the room set changed. The new set is read
// from the directory.
type RoomsChangedMsg struct{}

// ChatChangedMsg signals that the open room's state changed. The new
// state is read from the controller.
type ChatChangedMsg struct{}

// ServiceStatusMsg carries one indexing-service poll result. Nil means
// the service was unreachable.
type ServiceStatusMsg struct {
	Status *api.ServiceStatus
}

// ConnectionMsg signals a push-channel connectivity change.
type ConnectionMsg struct {
	Connected bool
}

// =============================================================================
// INTERNAL MESSAGES
// =============================================================================

// catalogMsg carries the model and knowledge-base catalogs fetched once
// at startup for the pickers.
type catalogMsg struct {
	models []string
	kbs    []string
	err    error
}

// roomOpenedMsg reports the outcome of opening a room.
type roomOpenedMsg struct {
	roomID string
	err    error
}

// requestFailedMsg carries a failed backend request for the error line.
type requestFailedMsg struct {
	err error
}
