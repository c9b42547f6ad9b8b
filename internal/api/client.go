// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the ausma backend REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/v-industries-lv/ausma-ai-documents/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend API client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotReachable
	ErrTypeTimeout
	ErrTypeNotFound
	ErrTypeInvalidResponse
	ErrTypeConnection
)

// Sentinel errors for easy checking.
var (
	ErrNotReachable = &ClientError{Type: ErrTypeNotReachable, Message: "backend is not reachable"}
	ErrTimeout      = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrRoomNotFound = &ClientError{Type: ErrTypeNotFound, Message: "room not found"}
)

// IsNotReachable checks if an error indicates the backend is unreachable.
func IsNotReachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotReachable
	}
	return errors.Is(err, ErrNotReachable)
}

// IsRoomNotFound checks if an error is a missing-room error.
func IsRoomNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotFound
	}
	return errors.Is(err, ErrRoomNotFound)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://127.0.0.1:5000)
	BaseURL string

	// Timeout for requests (default: 30s)
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://127.0.0.1:5000",
		Timeout: 30 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the backend REST API.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:5000"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// =============================================================================
// ROOM OPERATIONS
// =============================================================================

// ListRooms retrieves the ordered set of active rooms.
func (c *Client) ListRooms(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	if err := c.getJSON(ctx, "/api/rooms", &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// CreateRoom asks the server to create a room. The server assigns the id
// and pushes the refreshed room set to every client; the caller performs
// no optimistic insert.
func (c *Client) CreateRoom(ctx context.Context, name string) (*model.Room, error) {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/create_room", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrNotReachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "create room failed: " + resp.Status,
		}
	}

	var room model.Room
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return &room, nil
}

// RenameRoom asks the server to rename a room. Confirmation arrives as a
// room-set push event, not in this response.
func (c *Client) RenameRoom(ctx context.Context, roomID, name string) error {
	path := "/api/room/" + url.PathEscape(roomID) + "/rename/" + url.PathEscape(name)
	return c.get(ctx, path)
}

// RoomInfo retrieves one room's details. A removed or unknown room yields
// ErrRoomNotFound.
func (c *Client) RoomInfo(ctx context.Context, roomID string) (*model.Room, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/room/"+url.PathEscape(roomID), nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrNotReachable
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrRoomNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "room info failed: " + resp.Status,
		}
	}

	var room model.Room
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return &room, nil
}

// RoomHistory retrieves the ordered message history of a room.
func (c *Client) RoomHistory(ctx context.Context, roomID string) ([]model.Message, error) {
	var history []model.Message
	if err := c.getJSON(ctx, "/api/room_history/"+url.PathEscape(roomID), &history); err != nil {
		return nil, err
	}
	return history, nil
}

// RoomProgress retrieves the last known generation progress of a room,
// used to resume mid-generation when the room is opened late. Returns nil
// without error when the room has no progress yet (the server answers the
// literal "null").
func (c *Client) RoomProgress(ctx context.Context, roomID string) (*model.Progress, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/room/"+url.PathEscape(roomID)+"/progress", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrNotReachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "progress fetch failed: " + resp.Status,
		}
	}

	var progress model.Progress
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&progress); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	if progress.Status == "" {
		// "null" body decodes into the zero value.
		return nil, nil
	}
	return &progress, nil
}

// StopGeneration asks the server to cancel the room's in-flight turn.
// The status change arrives as a progress push event; local state is not
// mutated here.
func (c *Client) StopGeneration(ctx context.Context, roomID string) error {
	return c.get(ctx, "/api/room/"+url.PathEscape(roomID)+"/stop")
}

// =============================================================================
// CONFIGURATION AND CATALOGS
// =============================================================================

// RoomDefaults retrieves the server-configured default model and knowledge
// base.
func (c *Client) RoomDefaults(ctx context.Context) (*model.RoomDefaults, error) {
	var defaults model.RoomDefaults
	if err := c.getJSON(ctx, "/api/config/room_defaults", &defaults); err != nil {
		return nil, err
	}
	return &defaults, nil
}

// ListModels retrieves the chat models offered by the configured runners,
// de-duplicated in first-seen order.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var result struct {
		ChatModels []string `json:"chat_models"`
	}
	if err := c.getJSON(ctx, "/api/llm_runners/models", &result); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(result.ChatModels))
	models := make([]string, 0, len(result.ChatModels))
	for _, m := range result.ChatModels {
		if !seen[m] {
			seen[m] = true
			models = append(models, m)
		}
	}
	return models, nil
}

// KnowledgeBase describes one configured knowledge base.
type KnowledgeBase struct {
	Name string `json:"name"`
}

// ListKnowledgeBases retrieves the configured knowledge bases.
func (c *Client) ListKnowledgeBases(ctx context.Context) ([]KnowledgeBase, error) {
	var kbs []KnowledgeBase
	if err := c.getJSON(ctx, "/api/kb/", &kbs); err != nil {
		return nil, err
	}
	return kbs, nil
}

// ServiceStatus is the knowledge-base service's self-reported state. The
// counters are populated only in the phases that use them.
type ServiceStatus struct {
	Status    string `json:"status"`
	KBName    string `json:"kb_name,omitempty"`
	KBNum     int    `json:"kb_num,omitempty"`
	KBTotal   int    `json:"kb_total,omitempty"`
	DocPath   string `json:"doc_path,omitempty"`
	DocNum    int    `json:"doc_num,omitempty"`
	DocTotal  int    `json:"doc_total,omitempty"`
	Convertor string `json:"convertor,omitempty"`
}

// String renders the composite status line shown in the status panel.
func (s ServiceStatus) String() string {
	var b strings.Builder
	b.WriteString(s.Status)
	if s.KBName != "" {
		b.WriteString(" - Knowledge Base [" + strconv.Itoa(s.KBNum) + "/" + strconv.Itoa(s.KBTotal) + "] - \"" + s.KBName + "\"")
	}
	if s.DocPath != "" {
		b.WriteString(" - Document [" + strconv.Itoa(s.DocNum) + "/" + strconv.Itoa(s.DocTotal) + "] - \"" + s.DocPath + "\"")
	}
	if s.Convertor != "" {
		b.WriteString(" - Convertor \"" + s.Convertor + "\"")
	}
	return b.String()
}

// GetServiceStatus retrieves the knowledge-base service status.
func (c *Client) GetServiceStatus(ctx context.Context) (*ServiceStatus, error) {
	var status ServiceStatus
	if err := c.getJSON(ctx, "/api/kb_service/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// =============================================================================
// REQUEST HELPERS
// =============================================================================

// get performs a GET request and discards the body, reporting only
// transport-level failures.
func (c *Client) get(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotReachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "request failed: " + resp.Status,
		}
	}
	return nil
}

// getJSON performs a GET request and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotReachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "request failed: " + resp.Status,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}
