// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/v-industries-lv/ausma-ai-documents/internal/editable"
	"github.com/v-industries-lv/ausma-ai-documents/internal/model"
	"github.com/v-industries-lv/ausma-ai-documents/internal/progress"
	"github.com/v-industries-lv/ausma-ai-documents/internal/push"
)

// DefaultKnowledgeBase is the sentinel sent when no knowledge base is
// selected anywhere along the fallback chain. The server understands it
// as "answer without retrieval".
const DefaultKnowledgeBase = "None"

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// Backend is the slice of the REST API the controller needs.
type Backend interface {
	RoomInfo(ctx context.Context, roomID string) (*model.Room, error)
	RoomHistory(ctx context.Context, roomID string) ([]model.Message, error)
	RoomProgress(ctx context.Context, roomID string) (*model.Progress, error)
	RoomDefaults(ctx context.Context) (*model.RoomDefaults, error)
	StopGeneration(ctx context.Context, roomID string) error
}

// sendPayload is the wire shape of an outbound turn.
type sendPayload struct {
	UserInput string `json:"user_input"`
	LLMModel  string `json:"llm_model"`
	KBName    string `json:"kb_name"`
	RoomID    string `json:"room_id"`
	Username  string `json:"username"`
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller manages the open room's conversation state.
type Controller struct {
	backend  Backend
	channel  push.Channel
	username string

	mu       sync.Mutex
	epoch    int
	roomID   string
	room     model.Room
	history  []model.Message
	progress model.Progress
	defaults model.RoomDefaults

	modelOverride *editable.Value[string]
	kbOverride    *editable.Value[string]

	onChange func()

	offMessage  func()
	offProgress func()
}

// NewController creates a controller subscribed to message and progress
// events on the given channel. Events for rooms other than the open one
// are ignored. Close releases the subscriptions.
func NewController(backend Backend, channel push.Channel, username string) *Controller {
	c := &Controller{
		backend:       backend,
		channel:       channel,
		username:      username,
		progress:      model.InitialProgress(),
		modelOverride: editable.NewValue(""),
		kbOverride:    editable.NewValue(""),
	}

	c.offMessage = channel.On(push.EventMessage, func(data json.RawMessage, roomID string) {
		var msg model.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
		if msg.RoomID == "" {
			msg.RoomID = roomID
		}
		c.ApplyMessage(msg)
	})
	c.offProgress = channel.On(push.EventProgress, func(data json.RawMessage, roomID string) {
		var p model.Progress
		if err := json.Unmarshal(data, &p); err != nil {
			return
		}
		c.ApplyProgress(roomID, p)
	})

	return c
}

// Close leaves the open room and unsubscribes from the push channel.
func (c *Controller) Close() {
	c.mu.Lock()
	roomID := c.roomID
	c.roomID = ""
	c.mu.Unlock()

	if roomID != "" {
		_ = c.channel.Emit(push.EventLeaveRoom, roomID, nil)
	}
	if c.offMessage != nil {
		c.offMessage()
		c.offMessage = nil
	}
	if c.offProgress != nil {
		c.offProgress()
		c.offProgress = nil
	}
}

// SetOnChange registers a callback invoked after every state mutation.
func (c *Controller) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// =============================================================================
// ROOM LIFECYCLE
// =============================================================================

// Open switches the controller to a room. All state of the previous room
// is discarded: history, progress, and any model or knowledge-base
// override. The room is joined on the push channel and its state is
// resumed from the server. Fetch failures are reported but do not undo
// the switch; whatever arrived is kept.
func (c *Controller) Open(ctx context.Context, roomID string) error {
	c.mu.Lock()
	previous := c.roomID
	c.epoch++
	epoch := c.epoch
	c.roomID = roomID
	c.room = model.Room{ID: roomID}
	c.history = nil
	c.progress = model.InitialProgress()
	c.defaults = model.RoomDefaults{}
	c.modelOverride = editable.NewValue("")
	c.kbOverride = editable.NewValue("")
	c.mu.Unlock()

	if previous != "" && previous != roomID {
		_ = c.channel.Emit(push.EventLeaveRoom, previous, nil)
	}
	if err := c.channel.Emit(push.EventJoinRoom, roomID, nil); err != nil {
		return err
	}

	var errs []error

	if room, err := c.backend.RoomInfo(ctx, roomID); err != nil {
		errs = append(errs, err)
	} else {
		c.apply(epoch, func() { c.room = *room })
	}

	if history, err := c.backend.RoomHistory(ctx, roomID); err != nil {
		errs = append(errs, err)
	} else {
		c.apply(epoch, func() { c.history = history })
	}

	// Resume an in-flight generation, but never clobber progress that a
	// push event has already advanced past the initial state.
	if resumed, err := c.backend.RoomProgress(ctx, roomID); err != nil {
		errs = append(errs, err)
	} else if resumed != nil {
		c.apply(epoch, func() {
			if progress.PhaseOf(c.progress) == progress.PhaseIdle && c.progress.Status == model.StatusInitial {
				c.progress = *resumed
			}
		})
	}

	if defaults, err := c.backend.RoomDefaults(ctx); err != nil {
		errs = append(errs, err)
	} else {
		c.apply(epoch, func() { c.defaults = *defaults })
	}

	c.notify()
	return errors.Join(errs...)
}

// apply runs a mutation under the lock unless the controller has moved on
// to another room since the request was issued.
func (c *Controller) apply(epoch int, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return
	}
	fn()
}

// RoomID returns the id of the open room, or "".
func (c *Controller) RoomID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

// Room returns the open room's record as last fetched.
func (c *Controller) Room() model.Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// History returns a copy of the open room's message history.
func (c *Controller) History() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Message(nil), c.history...)
}

// Progress returns the open room's live generation state.
func (c *Controller) Progress() model.Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// =============================================================================
// INCOMING EVENTS
// =============================================================================

// ApplyMessage reconciles a confirmed message into the history. Every
// locally appended message still awaiting confirmation is dropped first,
// then the confirmed message is appended; a confirmed message arriving
// with no placeholder outstanding is simply appended. Messages for other
// rooms are ignored.
func (c *Controller) ApplyMessage(msg model.Message) {
	c.mu.Lock()
	if c.roomID == "" || msg.RoomID != c.roomID {
		c.mu.Unlock()
		return
	}

	kept := c.history[:0]
	for _, m := range c.history {
		if !m.IsOptimistic() {
			kept = append(kept, m)
		}
	}
	c.history = append(kept, msg)
	c.mu.Unlock()

	c.notify()
}

// ApplyProgress folds a progress event into the open room's state.
// Out-of-order events are dropped by the reducer; events for other rooms
// are ignored.
func (c *Controller) ApplyProgress(roomID string, p model.Progress) {
	c.mu.Lock()
	if c.roomID == "" || roomID != c.roomID {
		c.mu.Unlock()
		return
	}
	c.progress = progress.Reduce(c.progress, p)
	c.mu.Unlock()

	c.notify()
}

// =============================================================================
// SELECTION
// =============================================================================

// LockedModel returns the model identity recorded on the newest assistant
// message, or "". Once a room has an assistant reply, its model is fixed.
func (c *Controller) LockedModel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lockedModelLocked()
}

func (c *Controller) lockedModelLocked() string {
	for i := len(c.history) - 1; i >= 0; i-- {
		if c.history[i].Role == model.RoleAssistant && c.history[i].Username != "" {
			return c.history[i].Username
		}
	}
	return ""
}

// LastKnowledgeBase returns the knowledge base recorded on the newest
// assistant message's retrieval references, or "".
func (c *Controller) LastKnowledgeBase() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastKnowledgeBaseLocked()
}

func (c *Controller) lastKnowledgeBaseLocked() string {
	for i := len(c.history) - 1; i >= 0; i-- {
		if c.history[i].Role != model.RoleAssistant {
			continue
		}
		// Within one reply's sources the last named knowledge base wins.
		kb := ""
		for _, src := range c.history[i].RagSourceList() {
			if src.KnowledgeBase != "" {
				kb = src.KnowledgeBase
			}
		}
		if kb != "" {
			return kb
		}
	}
	return ""
}

// EffectiveModel resolves the model the next turn will be sent with:
// the room's locked model, then the user's override, then the server
// default. Empty means no model is available and input stays disabled.
func (c *Controller) EffectiveModel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.effectiveModelLocked()
}

func (c *Controller) effectiveModelLocked() string {
	if locked := c.lockedModelLocked(); locked != "" {
		return locked
	}
	if override := c.modelOverride.Get(); override != "" {
		return override
	}
	return c.defaults.Model
}

// EffectiveKnowledgeBase resolves the knowledge base the next turn will
// be sent with: the user's override, then the one the room last answered
// from, then the server default, then the no-retrieval sentinel.
func (c *Controller) EffectiveKnowledgeBase() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.effectiveKnowledgeBaseLocked()
}

func (c *Controller) effectiveKnowledgeBaseLocked() string {
	if override := c.kbOverride.Get(); override != "" {
		return override
	}
	if last := c.lastKnowledgeBaseLocked(); last != "" {
		return last
	}
	if c.defaults.KnowledgeBase != "" {
		return c.defaults.KnowledgeBase
	}
	return DefaultKnowledgeBase
}

// ModelLocked reports whether the room's model can no longer be changed.
func (c *Controller) ModelLocked() bool {
	return c.LockedModel() != ""
}

// SetModelOverride selects the model for rooms that have not locked one
// yet. Empty clears the override.
func (c *Controller) SetModelOverride(name string) {
	c.mu.Lock()
	if name == "" {
		c.modelOverride.Reset()
	} else {
		c.modelOverride.Edit(name)
	}
	c.mu.Unlock()
	c.notify()
}

// SetKnowledgeBaseOverride selects the knowledge base for the next turn.
// Empty clears the override.
func (c *Controller) SetKnowledgeBaseOverride(name string) {
	c.mu.Lock()
	if name == "" {
		c.kbOverride.Reset()
	} else {
		c.kbOverride.Edit(name)
	}
	c.mu.Unlock()
	c.notify()
}

// Username returns the author name attached to outbound turns.
func (c *Controller) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// SetUsername changes the author name for subsequent turns. Blank names
// are ignored.
func (c *Controller) SetUsername(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	c.mu.Lock()
	c.username = name
	c.mu.Unlock()
	c.notify()
}

// =============================================================================
// OUTBOUND TURNS
// =============================================================================

// InputDisabled reports whether a new turn can be sent. Input is blocked
// while a generation is outstanding or while no model can be resolved.
func (c *Controller) InputDisabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inputDisabledLocked()
}

func (c *Controller) inputDisabledLocked() bool {
	return c.effectiveModelLocked() == "" || c.progress.Generating()
}

// Send appends the turn locally and emits it over the push channel with
// the resolved model and knowledge base. Blank input, no open room, and
// disabled input are all no-ops.
func (c *Controller) Send(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	if c.roomID == "" || c.inputDisabledLocked() {
		c.mu.Unlock()
		return nil
	}
	payload := sendPayload{
		UserInput: text,
		LLMModel:  c.effectiveModelLocked(),
		KBName:    c.effectiveKnowledgeBaseLocked(),
		RoomID:    c.roomID,
		Username:  c.username,
	}
	c.history = append(c.history, model.NewOptimisticMessage(c.roomID, c.username, text))
	epoch := c.epoch
	c.mu.Unlock()

	c.notify()
	if err := c.channel.Emit(push.EventMessage, payload.RoomID, payload); err != nil {
		// The turn never left the client; take the placeholder back out so
		// the history reads as if Send had not happened.
		c.apply(epoch, func() {
			for i := len(c.history) - 1; i >= 0; i-- {
				if c.history[i].IsOptimistic() && c.history[i].Content == text {
					c.history = append(c.history[:i], c.history[i+1:]...)
					break
				}
			}
		})
		c.notify()
		return err
	}
	return nil
}

// Stop asks the server to abort the outstanding generation. Local state
// is untouched; the outcome arrives as a progress event.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	roomID := c.roomID
	generating := c.progress.Generating()
	c.mu.Unlock()

	if roomID == "" || !generating {
		return nil
	}
	return c.backend.StopGeneration(ctx, roomID)
}
