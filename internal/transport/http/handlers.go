package http

import (
	"encoding/json"
	"net/http"
)

// RootResponse is the response for the root endpoint
type RootResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the response for the health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Rooms   int    `json:"rooms"`
	Players int    `json:"players"`
}

// StatsResponse is the response for the stats endpoint
type StatsResponse struct {
	ActiveRooms  int `json:"activeRooms"`
	TotalPlayers int `json:"totalPlayers"`
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, &RootResponse{
		Message: "Whooded game server is running!",
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, &HealthResponse{
		Status:  "healthy",
		Rooms:   s.registry.RoomCount(),
		Players: s.registry.PlayerCount(),
	})
}

// handleStats handles GET /stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, &StatsResponse{
		ActiveRooms:  s.registry.RoomCount(),
		TotalPlayers: s.registry.PlayerCount(),
	})
}

// sendJSON writes a JSON response
func (s *Server) sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
