// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v-industries-lv/ausma-ai-documents/internal/api"
	"github.com/v-industries-lv/ausma-ai-documents/internal/chat"
	"github.com/v-industries-lv/ausma-ai-documents/internal/model"
	"github.com/v-industries-lv/ausma-ai-documents/internal/push"
	"github.com/v-industries-lv/ausma-ai-documents/internal/rooms"
)

func startServer(t *testing.T) (*Server, *api.Client, *push.Socket) {
	t.Helper()

	server := NewServer(Options{})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL: ts.URL,
		Timeout: 5 * time.Second,
	})

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/socket"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	socket, err := push.Dial(ctx, &push.SocketConfig{URL: wsURL})
	require.NoError(t, err)
	t.Cleanup(func() { socket.Close() })

	return server, client, socket
}

func TestDevServer_RESTSurface(t *testing.T) {
	_, client, _ := startServer(t)
	ctx := context.Background()

	list, err := client.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "General", list[0].Name)

	room, err := client.CreateRoom(ctx, "Contracts")
	require.NoError(t, err)
	assert.NotEmpty(t, room.ID)

	info, err := client.RoomInfo(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Contracts", info.Name)

	_, err = client.RoomInfo(ctx, "missing")
	assert.True(t, api.IsRoomNotFound(err))

	require.NoError(t, client.RenameRoom(ctx, room.ID, "Leases"))
	info, err = client.RoomInfo(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Leases", info.Name)

	history, err := client.RoomHistory(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	// No turn yet: the progress endpoint answers null.
	progress, err := client.RoomProgress(ctx, room.ID)
	require.NoError(t, err)
	assert.Nil(t, progress)

	defaults, err := client.RoomDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dev-echo", defaults.Model)

	models, err := client.ListModels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dev-echo"}, models)

	kbs, err := client.ListKnowledgeBases(ctx)
	require.NoError(t, err)
	require.Len(t, kbs, 1)
	assert.Equal(t, "Docs", kbs[0].Name)

	status, err := client.GetServiceStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "idle", status.Status)
}

func TestDevServer_FullTurn(t *testing.T) {
	server, client, socket := startServer(t)
	roomID := server.Rooms()[0].ID

	controller := chat.NewController(client, socket, "alice")
	defer controller.Close()

	done := make(chan struct{}, 8)
	controller.SetOnChange(func() {
		select {
		case done <- struct{}{}:
		default:
		}
	})

	require.NoError(t, controller.Open(context.Background(), roomID))
	require.NoError(t, controller.Send("what is in the lease?"))

	// The canned turn ends with a finished progress event and two
	// confirmed messages in the history.
	deadline := time.After(5 * time.Second)
	for {
		history := controller.History()
		if len(history) == 2 && !history[0].IsOptimistic() && !controller.Progress().Generating() {
			assert.Equal(t, model.RoleAssistant, history[1].Role)
			assert.Equal(t, "dev-echo", history[1].Username)
			assert.Contains(t, history[1].Content, "what is in the lease?")
			return
		}
		select {
		case <-done:
		case <-deadline:
			t.Fatalf("turn did not complete: %d messages, progress %+v",
				len(history), controller.Progress())
		}
	}
}

func TestDevServer_RoomRemovalPushesSnapshot(t *testing.T) {
	server, client, socket := startServer(t)

	directory := rooms.NewDirectory(client, socket, func(string) bool { return true })
	defer directory.Close()

	changed := make(chan int, 8)
	directory.SetOnChange(func(list []model.Room) { changed <- len(list) })

	require.NoError(t, directory.Refresh(context.Background()))
	roomID := directory.Rooms()[0].ID

	require.NoError(t, directory.RequestRemove(roomID))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case n := <-changed:
			if n == 0 {
				assert.Empty(t, server.Rooms())
				return
			}
		case <-deadline:
			t.Fatal("removal snapshot never arrived")
		}
	}
}
