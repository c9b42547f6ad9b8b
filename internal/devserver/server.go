// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/v-industries-lv/ausma-ai-documents/internal/api"
	"github.com/v-industries-lv/ausma-ai-documents/internal/model"
	"github.com/v-industries-lv/ausma-ai-documents/internal/push"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options seed the fake backend.
type Options struct {
	Defaults       model.RoomDefaults
	Models         []string
	KnowledgeBases []string
	// ReplyDelay spaces out the canned progress events. Zero means no
	// artificial delay, which is what tests want.
	ReplyDelay time.Duration
}

func (o Options) withDefaults() Options {
	if len(o.Models) == 0 {
		o.Models = []string{"dev-echo"}
	}
	if o.Defaults.Model == "" {
		o.Defaults.Model = o.Models[0]
	}
	if len(o.KnowledgeBases) == 0 {
		o.KnowledgeBases = []string{"Docs"}
	}
	return o
}

// =============================================================================
// SERVER
// =============================================================================

// Server is the in-memory backend.
type Server struct {
	opts Options

	mu        sync.Mutex
	rooms     []model.Room
	histories map[string][]model.Message
	progress  map[string]model.Progress
	nextID    int64
	clients   map[*wsClient]struct{}

	wg sync.WaitGroup
}

// NewServer creates a backend with one seeded room.
func NewServer(opts Options) *Server {
	s := &Server{
		opts:      opts.withDefaults(),
		histories: map[string][]model.Message{},
		progress:  map[string]model.Progress{},
		clients:   map[*wsClient]struct{}{},
		nextID:    1,
	}
	s.rooms = []model.Room{{ID: uuid.NewString(), Name: "General", Active: true}}
	return s
}

// Wait blocks until all in-flight canned replies have finished. Tests
// call it before asserting on final state.
func (s *Server) Wait() {
	s.wg.Wait()
}

// Rooms returns a copy of the current room set.
func (s *Server) Rooms() []model.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Room(nil), s.rooms...)
}

// Handler returns the HTTP handler: the REST surface plus the websocket
// endpoint at /socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/rooms", s.handleRooms)
	mux.HandleFunc("POST /api/create_room", s.handleCreateRoom)
	mux.HandleFunc("GET /api/room/{id}", s.handleRoomInfo)
	mux.HandleFunc("GET /api/room/{id}/rename/{name}", s.handleRenameRoom)
	mux.HandleFunc("GET /api/room/{id}/progress", s.handleRoomProgress)
	mux.HandleFunc("GET /api/room/{id}/stop", s.handleStop)
	mux.HandleFunc("GET /api/room_history/{id}", s.handleRoomHistory)
	mux.HandleFunc("GET /api/config/room_defaults", s.handleRoomDefaults)
	mux.HandleFunc("GET /api/llm_runners/models", s.handleModels)
	mux.HandleFunc("GET /api/kb/", s.handleKnowledgeBases)
	mux.HandleFunc("GET /api/kb_service/status", s.handleServiceStatus)
	mux.HandleFunc("GET /socket", s.handleSocket)

	return mux
}

// =============================================================================
// REST HANDLERS
// =============================================================================

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.Rooms())
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}

	room := model.Room{ID: uuid.NewString(), Name: body.Name, Active: true}
	s.mu.Lock()
	s.rooms = append(s.rooms, room)
	s.mu.Unlock()

	s.broadcastRooms()
	writeJSON(w, room)
}

func (s *Server) findRoom(id string) (model.Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range s.rooms {
		if room.ID == id {
			return room, true
		}
	}
	return model.Room{}, false
}

func (s *Server) handleRoomInfo(w http.ResponseWriter, r *http.Request) {
	room, ok := s.findRoom(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, room)
}

func (s *Server) handleRenameRoom(w http.ResponseWriter, r *http.Request) {
	id, name := r.PathValue("id"), r.PathValue("name")

	s.mu.Lock()
	for i := range s.rooms {
		if s.rooms[i].ID == id {
			s.rooms[i].Name = name
		}
	}
	s.mu.Unlock()

	s.broadcastRooms()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleRoomHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	history := append([]model.Message(nil), s.histories[r.PathValue("id")]...)
	s.mu.Unlock()
	if history == nil {
		history = []model.Message{}
	}
	writeJSON(w, history)
}

func (s *Server) handleRoomProgress(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, ok := s.progress[r.PathValue("id")]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.Write([]byte("null"))
		return
	}
	json.NewEncoder(w).Encode(p)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")

	s.mu.Lock()
	p, generating := s.progress[roomID]
	if generating {
		generating = p.Status == model.StatusStarted || p.Status == model.StatusGenerating
	}
	if generating {
		p = model.Progress{Status: model.StatusError, Message: "Generation stopped."}
		s.progress[roomID] = p
	}
	s.mu.Unlock()

	if generating {
		s.broadcast(push.EventProgress, roomID, p)
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleRoomDefaults(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.opts.Defaults)
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string][]string{"chat_models": s.opts.Models})
}

func (s *Server) handleKnowledgeBases(w http.ResponseWriter, _ *http.Request) {
	kbs := make([]api.KnowledgeBase, 0, len(s.opts.KnowledgeBases))
	for _, name := range s.opts.KnowledgeBases {
		kbs = append(kbs, api.KnowledgeBase{Name: name})
	}
	writeJSON(w, kbs)
}

func (s *Server) handleServiceStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, api.ServiceStatus{Status: "idle", Convertor: "idle"})
}
