package httpapi

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

func (s *Server) Diagnostics(w http.ResponseWriter, r *http.Request) {
	results, err := s.Registry.Diagnostics.Run(TokenFromContext(r))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, results)
}

func (s *Server) TrafficStats(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.Registry.Traffic.Stats())
}

var trafficUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS layer for the REST surface; the socket
	// authenticates with the session token instead.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// TrafficSocket streams live traffic snapshots to the admin dashboard.
// Browsers cannot set headers on websocket requests, so the session token
// travels as a query parameter.
func (s *Server) TrafficSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if _, err := s.Registry.Tokens.RequireAdmin(token); err != nil {
		WriteServiceError(w, err)
		return
	}

	conn, err := trafficUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("traffic socket upgrade failed: %v", err)
		return
	}

	hub := s.Registry.Traffic.Hub
	hub.Add(conn)
	defer func() {
		hub.Remove(conn)
		conn.Close()
	}()

	// Push the current snapshot immediately so the dashboard does not wait
	// for the next page view.
	if err := conn.WriteJSON(s.Registry.Traffic.Stats()); err != nil {
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
