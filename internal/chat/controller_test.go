// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v-industries-lv/ausma-ai-documents/internal/model"
	"github.com/v-industries-lv/ausma-ai-documents/internal/push"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

type fakeBackend struct {
	room     model.Room
	history  []model.Message
	progress *model.Progress
	defaults model.RoomDefaults

	stoppedRoom string
}

func (f *fakeBackend) RoomInfo(_ context.Context, roomID string) (*model.Room, error) {
	room := f.room
	if room.ID == "" {
		room = model.Room{ID: roomID, Name: "Room"}
	}
	return &room, nil
}

func (f *fakeBackend) RoomHistory(context.Context, string) ([]model.Message, error) {
	return f.history, nil
}

func (f *fakeBackend) RoomProgress(context.Context, string) (*model.Progress, error) {
	return f.progress, nil
}

func (f *fakeBackend) RoomDefaults(context.Context) (*model.RoomDefaults, error) {
	defaults := f.defaults
	return &defaults, nil
}

func (f *fakeBackend) StopGeneration(_ context.Context, roomID string) error {
	f.stoppedRoom = roomID
	return nil
}

func id(n int64) *int64 { return &n }

func assistant(n int64, username, content string) model.Message {
	return model.Message{ID: id(n), RoomID: "r1", Username: username, Role: model.RoleAssistant, Content: content}
}

func user(n int64, content string) model.Message {
	return model.Message{ID: id(n), RoomID: "r1", Username: "alice", Role: model.RoleUser, Content: content}
}

func openTestRoom(t *testing.T, backend *fakeBackend) (*Controller, *push.Memory) {
	t.Helper()
	channel := push.NewMemory()
	c := NewController(backend, channel, "alice")
	require.NoError(t, c.Open(context.Background(), "r1"))
	return c, channel
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestController_OpenResumesState(t *testing.T) {
	backend := &fakeBackend{
		history:  []model.Message{user(1, "hi"), assistant(2, "llama3", "hello")},
		progress: &model.Progress{Status: model.StatusGenerating, NewTokens: 4, DurationS: 2},
		defaults: model.RoomDefaults{Model: "llama3", KnowledgeBase: "Docs"},
	}
	c, channel := openTestRoom(t, backend)

	assert.Len(t, c.History(), 2)
	assert.Equal(t, model.StatusGenerating, c.Progress().Status)

	sent := channel.Sent()
	require.NotEmpty(t, sent)
	assert.Equal(t, push.EventJoinRoom, sent[0].Event)
	assert.Equal(t, "r1", sent[0].RoomID)
}

func TestController_OpenWithoutOutstandingGeneration(t *testing.T) {
	// The progress endpoint reports nothing outstanding.
	c, _ := openTestRoom(t, &fakeBackend{})
	assert.Equal(t, model.StatusInitial, c.Progress().Status)
	assert.False(t, c.Progress().Generating())
}

func TestController_OpenDiscardsPreviousRoom(t *testing.T) {
	backend := &fakeBackend{history: []model.Message{user(1, "hi")}}
	c, channel := openTestRoom(t, backend)
	c.SetKnowledgeBaseOverride("Docs")

	backend.history = nil
	require.NoError(t, c.Open(context.Background(), "r2"))

	assert.Empty(t, c.History())
	assert.Equal(t, DefaultKnowledgeBase, c.EffectiveKnowledgeBase(), "override must not survive the switch")

	events := channel.Sent()
	var left bool
	for _, env := range events {
		if env.Event == push.EventLeaveRoom && env.RoomID == "r1" {
			left = true
		}
	}
	assert.True(t, left, "previous room should be left on switch")
}

// =============================================================================
// RECONCILIATION TESTS
// =============================================================================

func TestController_ConfirmedMessageReplacesPlaceholder(t *testing.T) {
	backend := &fakeBackend{defaults: model.RoomDefaults{Model: "llama3"}}
	c, channel := openTestRoom(t, backend)

	require.NoError(t, c.Send("hello there"))
	history := c.History()
	require.Len(t, history, 1)
	assert.True(t, history[0].IsOptimistic())

	channel.Deliver(push.EventMessage, "r1", user(10, "hello there"))

	history = c.History()
	require.Len(t, history, 1)
	assert.False(t, history[0].IsOptimistic())
	assert.EqualValues(t, 10, *history[0].ID)
}

func TestController_ConfirmedMessageWithoutPlaceholder(t *testing.T) {
	c, channel := openTestRoom(t, &fakeBackend{})

	channel.Deliver(push.EventMessage, "r1", assistant(11, "llama3", "hello"))

	history := c.History()
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Content)
}

func TestController_ForeignRoomMessageIgnored(t *testing.T) {
	c, channel := openTestRoom(t, &fakeBackend{})

	msg := assistant(11, "llama3", "hello")
	msg.RoomID = "other"
	channel.Deliver(push.EventMessage, "other", msg)

	assert.Empty(t, c.History())
}

func TestController_ProgressEventsFold(t *testing.T) {
	c, channel := openTestRoom(t, &fakeBackend{})

	channel.Deliver(push.EventProgress, "r1", model.Progress{Status: model.StatusStarted})
	assert.True(t, c.Progress().Generating())

	channel.Deliver(push.EventProgress, "r1", model.Progress{Status: model.StatusGenerating, NewTokens: 8, DurationS: 2})
	assert.Equal(t, model.StatusGenerating, c.Progress().Status)

	// A stray generating event for another room changes nothing.
	channel.Deliver(push.EventProgress, "other", model.Progress{Status: model.StatusError})
	assert.Equal(t, model.StatusGenerating, c.Progress().Status)

	channel.Deliver(push.EventProgress, "r1", model.Progress{Status: model.StatusFinished})
	assert.False(t, c.Progress().Generating())
}

func TestController_ProgressAdoptedWhenOpenedMidTurn(t *testing.T) {
	// The resume endpoint reported nothing, so the room starts idle; the
	// push events of the in-flight turn must still take over.
	backend := &fakeBackend{defaults: model.RoomDefaults{Model: "llama3"}}
	c, channel := openTestRoom(t, backend)
	require.Equal(t, model.StatusInitial, c.Progress().Status)

	channel.Deliver(push.EventProgress, "r1", model.Progress{Status: model.StatusGenerating, NewTokens: 8, DurationS: 2})
	assert.Equal(t, model.StatusGenerating, c.Progress().Status)
	assert.True(t, c.InputDisabled())

	channel.Deliver(push.EventProgress, "r1", model.Progress{Status: model.StatusFinished})
	assert.False(t, c.Progress().Generating())
	assert.False(t, c.InputDisabled())
}

func TestController_ErrorAdoptedWhenOpenedMidTurn(t *testing.T) {
	c, channel := openTestRoom(t, &fakeBackend{})

	channel.Deliver(push.EventProgress, "r1", model.Progress{Status: model.StatusError, Message: "boom"})
	assert.Equal(t, model.StatusError, c.Progress().Status)
	assert.Equal(t, "boom", c.Progress().Message)
}

func TestController_ConfirmedMessageKeepsEarlierHistory(t *testing.T) {
	backend := &fakeBackend{
		history:  []model.Message{user(1, "hi"), assistant(2, "llama3", "hello")},
		defaults: model.RoomDefaults{Model: "llama3"},
	}
	c, channel := openTestRoom(t, backend)

	require.NoError(t, c.Send("and another thing"))
	require.Len(t, c.History(), 3)

	channel.Deliver(push.EventMessage, "r1", user(10, "and another thing"))

	history := c.History()
	require.Len(t, history, 3)
	assert.EqualValues(t, 1, *history[0].ID)
	assert.EqualValues(t, 2, *history[1].ID)
	assert.EqualValues(t, 10, *history[2].ID)
	for _, msg := range history {
		assert.False(t, msg.IsOptimistic())
	}
}

// =============================================================================
// SELECTION TESTS
// =============================================================================

func TestController_ModelFallbackChain(t *testing.T) {
	backend := &fakeBackend{defaults: model.RoomDefaults{Model: "default-model"}}
	c, _ := openTestRoom(t, backend)

	assert.Equal(t, "default-model", c.EffectiveModel())
	assert.False(t, c.ModelLocked())

	c.SetModelOverride("mistral")
	assert.Equal(t, "mistral", c.EffectiveModel())

	c.SetModelOverride("")
	assert.Equal(t, "default-model", c.EffectiveModel())
}

func TestController_LockedModelWins(t *testing.T) {
	backend := &fakeBackend{
		history:  []model.Message{user(1, "hi"), assistant(2, "llama3", "hello")},
		defaults: model.RoomDefaults{Model: "default-model"},
	}
	c, _ := openTestRoom(t, backend)

	assert.True(t, c.ModelLocked())
	assert.Equal(t, "llama3", c.LockedModel())

	c.SetModelOverride("mistral")
	assert.Equal(t, "llama3", c.EffectiveModel(), "locked model beats override")
}

func TestController_KnowledgeBaseFallbackChain(t *testing.T) {
	c, _ := openTestRoom(t, &fakeBackend{})
	assert.Equal(t, DefaultKnowledgeBase, c.EffectiveKnowledgeBase())

	c2, _ := openTestRoom(t, &fakeBackend{defaults: model.RoomDefaults{KnowledgeBase: "Docs"}})
	assert.Equal(t, "Docs", c2.EffectiveKnowledgeBase())

	withSources := assistant(2, "llama3", "hello")
	withSources.RagSources = `[{"id":"s1","content":"x","similarity_score":0.9,"knowledge_base":"Contracts"}]`
	c3, _ := openTestRoom(t, &fakeBackend{
		history:  []model.Message{user(1, "hi"), withSources},
		defaults: model.RoomDefaults{KnowledgeBase: "Docs"},
	})
	assert.Equal(t, "Contracts", c3.EffectiveKnowledgeBase(), "room's last answered KB beats the default")

	c3.SetKnowledgeBaseOverride("Other")
	assert.Equal(t, "Other", c3.EffectiveKnowledgeBase(), "override beats everything")
}

func TestController_LastKnowledgeBaseWithinMixedSources(t *testing.T) {
	// One reply drawing on several knowledge bases: the last named one is
	// the room's answered-from base.
	mixed := assistant(2, "llama3", "hello")
	mixed.RagSources = `[` +
		`{"id":"s1","content":"a","similarity_score":0.9,"knowledge_base":"Contracts"},` +
		`{"id":"s2","content":"b","similarity_score":0.8,"knowledge_base":""},` +
		`{"id":"s3","content":"c","similarity_score":0.7,"knowledge_base":"Policies"}]`

	c, _ := openTestRoom(t, &fakeBackend{history: []model.Message{user(1, "hi"), mixed}})
	assert.Equal(t, "Policies", c.LastKnowledgeBase())
}

func TestController_LastKnowledgeBaseSkipsEmptySources(t *testing.T) {
	older := assistant(2, "llama3", "first")
	older.RagSources = `[{"id":"s1","content":"x","similarity_score":0.9,"knowledge_base":"Contracts"}]`
	newer := assistant(3, "llama3", "second")

	c, _ := openTestRoom(t, &fakeBackend{history: []model.Message{older, newer}})
	assert.Equal(t, "Contracts", c.LastKnowledgeBase())
}

// =============================================================================
// SEND / STOP TESTS
// =============================================================================

func TestController_SendPayload(t *testing.T) {
	backend := &fakeBackend{defaults: model.RoomDefaults{Model: "llama3", KnowledgeBase: "Docs"}}
	c, channel := openTestRoom(t, backend)

	require.NoError(t, c.Send("  what is in the contract?  "))

	env := channel.LastSent()
	require.NotNil(t, env)
	assert.Equal(t, push.EventMessage, env.Event)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, "what is in the contract?", payload["user_input"])
	assert.Equal(t, "llama3", payload["llm_model"])
	assert.Equal(t, "Docs", payload["kb_name"])
	assert.Equal(t, "r1", payload["room_id"])
	assert.Equal(t, "alice", payload["username"])
}

func TestController_SendRollsBackOnEmitFailure(t *testing.T) {
	backend := &fakeBackend{defaults: model.RoomDefaults{Model: "llama3"}}
	c, channel := openTestRoom(t, backend)
	channel.FailEmit(push.EventMessage, errors.New("transport down"))

	require.Error(t, c.Send("hello"))
	assert.Empty(t, c.History(), "placeholder must not survive a failed emit")
	assert.False(t, c.InputDisabled())

	// Recovered transport: the same turn goes through cleanly.
	channel.FailEmit(push.EventMessage, nil)
	require.NoError(t, c.Send("hello"))
	require.Len(t, c.History(), 1)
	assert.True(t, c.History()[0].IsOptimistic())
}

func TestController_SetUsername(t *testing.T) {
	backend := &fakeBackend{defaults: model.RoomDefaults{Model: "llama3"}}
	c, channel := openTestRoom(t, backend)

	c.SetUsername("  carol  ")
	assert.Equal(t, "carol", c.Username())

	c.SetUsername("   ")
	assert.Equal(t, "carol", c.Username())

	require.NoError(t, c.Send("hello"))
	var payload map[string]string
	require.NoError(t, json.Unmarshal(channel.LastSent().Data, &payload))
	assert.Equal(t, "carol", payload["username"])
}

func TestController_SendBlankIsNoOp(t *testing.T) {
	backend := &fakeBackend{defaults: model.RoomDefaults{Model: "llama3"}}
	c, channel := openTestRoom(t, backend)
	before := len(channel.Sent())

	require.NoError(t, c.Send("   "))
	assert.Len(t, channel.Sent(), before)
	assert.Empty(t, c.History())
}

func TestController_SendBlockedWhileGenerating(t *testing.T) {
	backend := &fakeBackend{defaults: model.RoomDefaults{Model: "llama3"}}
	c, channel := openTestRoom(t, backend)

	channel.Deliver(push.EventProgress, "r1", model.Progress{Status: model.StatusStarted})
	require.True(t, c.InputDisabled())

	before := len(channel.Sent())
	require.NoError(t, c.Send("hello"))
	assert.Len(t, channel.Sent(), before)
	assert.Empty(t, c.History())
}

func TestController_SendBlockedWithoutModel(t *testing.T) {
	c, _ := openTestRoom(t, &fakeBackend{})
	assert.True(t, c.InputDisabled())
	require.NoError(t, c.Send("hello"))
	assert.Empty(t, c.History())
}

func TestController_Stop(t *testing.T) {
	backend := &fakeBackend{defaults: model.RoomDefaults{Model: "llama3"}}
	c, channel := openTestRoom(t, backend)

	// Stopping with no outstanding generation is a no-op.
	require.NoError(t, c.Stop(context.Background()))
	assert.Empty(t, backend.stoppedRoom)

	channel.Deliver(push.EventProgress, "r1", model.Progress{Status: model.StatusGenerating})
	require.NoError(t, c.Stop(context.Background()))
	assert.Equal(t, "r1", backend.stoppedRoom)

	// Local state is untouched until the server reports the outcome.
	assert.True(t, c.Progress().Generating())
}
