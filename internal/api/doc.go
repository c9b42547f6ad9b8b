// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the ausma backend REST API.
//
// The client covers the request/response half of the protocol: rooms,
// histories, progress resume, configuration defaults, and the model and
// knowledge-base catalogs. Realtime delivery of messages and progress is
// the push channel's business (see internal/push).
//
// # Error Handling
//
// All failures are wrapped in ClientError with a categorized type, so
// callers can distinguish an unreachable server from a missing room:
//
//	rooms, err := client.ListRooms(ctx)
//	if api.IsNotReachable(err) {
//	    // degrade: state unchanged, retry is user-initiated
//	}
//
// The Client is safe for concurrent use.
package api
