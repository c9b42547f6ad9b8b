// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rooms maintains the client's view of the room set.
package rooms

import (
	"context"
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
	listed  []model.Room
	listErr error

	createdName string
	createErr   error

	renamedID   string
	renamedName string
}

func (f *fakeBackend) ListRooms(context.Context) ([]model.Room, error) {
	return f.listed, f.listErr
}

func (f *fakeBackend) CreateRoom(_ context.Context, name string) (*model.Room, error) {
	f.createdName = name
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &model.Room{ID: "server-assigned", Name: name}, nil
}

func (f *fakeBackend) RenameRoom(_ context.Context, roomID, name string) error {
	f.renamedID = roomID
	f.renamedName = name
	return nil
}

func newTestDirectory(confirm ConfirmFunc) (*Directory, *fakeBackend, *push.Memory) {
	backend := &fakeBackend{}
	channel := push.NewMemory()
	return NewDirectory(backend, channel, confirm), backend, channel
}

// =============================================================================
// SNAPSHOT TESTS
// =============================================================================

func TestDirectory_ApplySnapshot(t *testing.T) {
	d, _, _ := newTestDirectory(nil)
	d.ApplySnapshot([]model.Room{
		{ID: "a", Name: "One"},
		{ID: "b", Name: "Two"},
	})

	rooms := d.Rooms()
	require.Len(t, rooms, 2)
	assert.Equal(t, "One", rooms[0].Name)

	// A later snapshot replaces the set wholesale.
	d.ApplySnapshot([]model.Room{{ID: "c", Name: "Three"}})
	rooms = d.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, "c", rooms[0].ID)

	_, ok := d.Room("a")
	assert.False(t, ok, "room from previous snapshot should be gone")
}

func TestDirectory_SnapshotViaChannel(t *testing.T) {
	d, _, channel := newTestDirectory(nil)

	channel.Deliver(push.EventRoomsList, "", []model.Room{{ID: "a", Name: "Pushed"}})

	rooms := d.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, "Pushed", rooms[0].Name)
}

func TestDirectory_CloseUnsubscribes(t *testing.T) {
	d, _, channel := newTestDirectory(nil)
	d.Close()

	channel.Deliver(push.EventRoomsList, "", []model.Room{{ID: "a", Name: "Pushed"}})
	assert.Empty(t, d.Rooms())
}

func TestDirectory_OnChange(t *testing.T) {
	d, _, _ := newTestDirectory(nil)

	var got []model.Room
	d.SetOnChange(func(rooms []model.Room) { got = rooms })

	d.ApplySnapshot([]model.Room{{ID: "a", Name: "One"}})
	require.Len(t, got, 1)
}

// =============================================================================
// DISPLAY NAME TESTS
// =============================================================================

func TestDirectory_DisplayNameDisambiguation(t *testing.T) {
	d, _, _ := newTestDirectory(nil)
	d.ApplySnapshot([]model.Room{
		{ID: "aaaaa1", Name: "X"},
		{ID: "bbbbb2", Name: "X"},
		{ID: "ccccc3", Name: "Y"},
	})

	rooms := d.Rooms()
	assert.Equal(t, "X @aaaaa", d.DisplayName(rooms[0]))
	assert.Equal(t, "X @bbbbb", d.DisplayName(rooms[1]))
	assert.Equal(t, "Y", d.DisplayName(rooms[2]))
}

func TestDirectory_DisplayNameSuffixesNeverLeak(t *testing.T) {
	d, _, _ := newTestDirectory(nil)
	d.ApplySnapshot([]model.Room{
		{ID: "aaaaa1", Name: "X"},
		{ID: "bbbbb2", Name: "X"},
	})

	// After the duplicate disappears, the suffix must disappear with it.
	d.ApplySnapshot([]model.Room{{ID: "aaaaa1", Name: "X"}})
	rooms := d.Rooms()
	assert.Equal(t, "X", d.DisplayName(rooms[0]))
}

func TestDirectory_DisplayNameShortID(t *testing.T) {
	d, _, _ := newTestDirectory(nil)
	d.ApplySnapshot([]model.Room{
		{ID: "abc", Name: "X"},
		{ID: "abcdefgh", Name: "X"},
	})
	rooms := d.Rooms()
	// Ids shorter than the fragment length are used whole.
	assert.Equal(t, "X @abc", d.DisplayName(rooms[0]))
	assert.Equal(t, "X @abcde", d.DisplayName(rooms[1]))
}

// =============================================================================
// INTENT TESTS
// =============================================================================

func TestDirectory_RequestCreate(t *testing.T) {
	d, backend, _ := newTestDirectory(nil)

	require.NoError(t, d.RequestCreate(context.Background(), "  General  "))
	assert.Equal(t, "General", backend.createdName)

	// No optimistic insert: membership truth is the next snapshot.
	assert.Empty(t, d.Rooms())
}

func TestDirectory_RequestCreate_EmptyNameIsNoOp(t *testing.T) {
	d, backend, _ := newTestDirectory(nil)
	require.NoError(t, d.RequestCreate(context.Background(), "   "))
	assert.Empty(t, backend.createdName)
}

func TestDirectory_RequestCreate_FailureLeavesSetUnchanged(t *testing.T) {
	d, backend, _ := newTestDirectory(nil)
	backend.createErr = errors.New("backend down")

	err := d.RequestCreate(context.Background(), "General")
	require.Error(t, err)
	assert.Empty(t, d.Rooms())
}

func TestDirectory_RequestRename(t *testing.T) {
	d, backend, _ := newTestDirectory(nil)

	require.NoError(t, d.RequestRename(context.Background(), "a", " New Name "))
	assert.Equal(t, "a", backend.renamedID)
	assert.Equal(t, "New Name", backend.renamedName)
}

func TestDirectory_RequestRename_EmptyNameIsNoOp(t *testing.T) {
	d, backend, _ := newTestDirectory(nil)
	require.NoError(t, d.RequestRename(context.Background(), "a", "  "))
	assert.Empty(t, backend.renamedID)
}

func TestDirectory_RequestRemove_ConfirmGate(t *testing.T) {
	var asked string
	confirm := func(message string) bool {
		asked = message
		return false
	}
	d, _, channel := newTestDirectory(confirm)
	d.ApplySnapshot([]model.Room{{ID: "aaaaa1", Name: "X"}})

	require.NoError(t, d.RequestRemove("aaaaa1"))
	assert.Contains(t, asked, "X")
	assert.Empty(t, channel.Sent(), "declined removal must not emit")
}

func TestDirectory_RequestRemove_Confirmed(t *testing.T) {
	d, _, channel := newTestDirectory(func(string) bool { return true })
	d.ApplySnapshot([]model.Room{{ID: "aaaaa1", Name: "X"}})

	require.NoError(t, d.RequestRemove("aaaaa1"))
	sent := channel.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, push.EventRemoveRoom, sent[0].Event)
	assert.Equal(t, "aaaaa1", sent[0].RoomID)
}

func TestDirectory_RequestRemove_UnknownRoomIsNoOp(t *testing.T) {
	d, _, channel := newTestDirectory(func(string) bool { return true })
	require.NoError(t, d.RequestRemove("missing"))
	assert.Empty(t, channel.Sent())
}

// =============================================================================
// REFRESH TESTS
// =============================================================================

func TestDirectory_Refresh(t *testing.T) {
	d, backend, _ := newTestDirectory(nil)
	backend.listed = []model.Room{{ID: "a", Name: "One"}}

	require.NoError(t, d.Refresh(context.Background()))
	assert.Len(t, d.Rooms(), 1)
}

func TestDirectory_Refresh_FailureLeavesSetUnchanged(t *testing.T) {
	d, backend, _ := newTestDirectory(nil)
	d.ApplySnapshot([]model.Room{{ID: "a", Name: "One"}})
	backend.listErr = errors.New("backend down")

	require.Error(t, d.Refresh(context.Background()))
	assert.Len(t, d.Rooms(), 1)
}
