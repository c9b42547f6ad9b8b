// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/v-industries-lv/ausma-ai-documents/internal/model"
	"github.com/v-industries-lv/ausma-ai-documents/internal/push"
)

var upgrader = websocket.Upgrader{
	// The dev server trusts everything on localhost.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsClient is one connected websocket with its room memberships.
type wsClient struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	joined map[string]bool
}

func (c *wsClient) send(env push.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.WriteJSON(env)
}

func (c *wsClient) inRoom(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.joined[roomID]
}

// =============================================================================
// SOCKET ENDPOINT
// =============================================================================

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := &wsClient{conn: conn, joined: map[string]bool{}}
	s.mu.Lock()
	s.clients[client] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, client)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		var env push.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}

		switch env.Event {
		case push.EventJoinRoom:
			client.mu.Lock()
			client.joined[env.RoomID] = true
			client.mu.Unlock()

		case push.EventLeaveRoom:
			client.mu.Lock()
			delete(client.joined, env.RoomID)
			client.mu.Unlock()

		case push.EventMessage:
			s.handleClientMessage(env.Data)

		case push.EventRemoveRoom:
			s.removeRoom(env.RoomID)
		}
	}
}

// =============================================================================
// BROADCASTS
// =============================================================================

// broadcast sends an event to every client that joined the room.
func (s *Server) broadcast(event push.Event, roomID string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	env := push.Envelope{Event: event, RoomID: roomID, Data: raw}

	s.mu.Lock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		if c.inRoom(roomID) {
			c.send(env)
		}
	}
}

// broadcastRooms pushes the full room set to every client, joined or not.
func (s *Server) broadcastRooms() {
	rooms := s.Rooms()
	raw, err := json.Marshal(rooms)
	if err != nil {
		return
	}
	env := push.Envelope{Event: push.EventRoomsList, Data: raw}

	s.mu.Lock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.send(env)
	}
}

func (s *Server) removeRoom(roomID string) {
	s.mu.Lock()
	kept := s.rooms[:0]
	for _, room := range s.rooms {
		if room.ID != roomID {
			kept = append(kept, room)
		}
	}
	s.rooms = kept
	delete(s.histories, roomID)
	delete(s.progress, roomID)
	s.mu.Unlock()

	s.broadcastRooms()
}

// =============================================================================
// CANNED TURNS
// =============================================================================

type turnPayload struct {
	UserInput string `json:"user_input"`
	LLMModel  string `json:"llm_model"`
	KBName    string `json:"kb_name"`
	RoomID    string `json:"room_id"`
	Username  string `json:"username"`
}

// handleClientMessage confirms the user's message and produces a canned
// assistant reply with the progress events a real turn would have.
func (s *Server) handleClientMessage(data json.RawMessage) {
	var turn turnPayload
	if err := json.Unmarshal(data, &turn); err != nil || turn.RoomID == "" {
		return
	}
	if _, ok := s.findRoom(turn.RoomID); !ok {
		return
	}

	confirmed := s.appendMessage(model.Message{
		RoomID:    turn.RoomID,
		Username:  turn.Username,
		Role:      model.RoleUser,
		Content:   turn.UserInput,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	s.broadcast(push.EventMessage, turn.RoomID, confirmed)

	s.wg.Add(1)
	go s.reply(turn)
}

func (s *Server) appendMessage(msg model.Message) model.Message {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	msg.ID = &id
	s.histories[msg.RoomID] = append(s.histories[msg.RoomID], msg)
	s.mu.Unlock()
	return msg
}

func (s *Server) setProgress(roomID string, p model.Progress) {
	s.mu.Lock()
	s.progress[roomID] = p
	s.mu.Unlock()
	s.broadcast(push.EventProgress, roomID, p)
}

func (s *Server) reply(turn turnPayload) {
	defer s.wg.Done()

	pause := func() {
		if s.opts.ReplyDelay > 0 {
			time.Sleep(s.opts.ReplyDelay)
		}
	}

	s.setProgress(turn.RoomID, model.Progress{Status: model.StatusStarted})
	pause()

	s.setProgress(turn.RoomID, model.Progress{
		Status:    model.StatusGenerating,
		NewTokens: 8,
		DurationS: 0.5,
	})
	pause()

	// A stop while "generating" flips the stored progress to error; the
	// reply is abandoned in that case.
	s.mu.Lock()
	aborted := s.progress[turn.RoomID].Status == model.StatusError
	s.mu.Unlock()
	if aborted {
		return
	}

	reply := s.appendMessage(model.Message{
		RoomID:    turn.RoomID,
		Username:  turn.LLMModel,
		Role:      model.RoleAssistant,
		Content:   "You asked: " + turn.UserInput,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	s.broadcast(push.EventMessage, turn.RoomID, reply)

	s.setProgress(turn.RoomID, model.Progress{
		Status:              model.StatusFinished,
		TotalResponseTokens: 8,
	})
}
