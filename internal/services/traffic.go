package services

import (
	"context"
	mathrand "math/rand"
	"sync"
	"time"

	"esgishoma-backend-go/internal/models"
	"esgishoma-backend-go/internal/store"

	"github.com/gorilla/websocket"
)

// trendWindow caps the rolling daily-views history.
const trendWindow = 30

// TrafficService maintains the traffic_stats document: total visitors,
// per-path view counts, a rolling daily trend, and the simulated
// active-visitor gauge that is re-rolled on every page view.
type TrafficService struct {
	Store *store.Store
	Hub   *TrafficHub
	Now   func() time.Time

	mu sync.Mutex
}

func (s *TrafficService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func emptyStats() models.TrafficStats {
	return models.TrafficStats{
		PageViews:   map[string]int{},
		DailyTrends: []models.DailyTrend{},
	}
}

// TrackPageView records one view of path and broadcasts the fresh snapshot
// to any dashboard listeners.
func (s *TrafficService) TrackPageView(path string) (models.TrafficStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := store.Read(s.Store, store.KeyTrafficStats, emptyStats())
	if stats.PageViews == nil {
		stats.PageViews = map[string]int{}
	}
	stats.TotalVisitors++
	stats.PageViews[path]++

	today := s.now().UTC().Format("2006-01-02")
	found := false
	for i := range stats.DailyTrends {
		if stats.DailyTrends[i].Date == today {
			stats.DailyTrends[i].Views++
			found = true
			break
		}
	}
	if !found {
		stats.DailyTrends = append(stats.DailyTrends, models.DailyTrend{Date: today, Views: 1})
		if len(stats.DailyTrends) > trendWindow {
			stats.DailyTrends = stats.DailyTrends[len(stats.DailyTrends)-trendWindow:]
		}
	}
	// No real session tracking exists; the gauge is a fresh random value in
	// [10, 59] on every view.
	stats.ActiveVisitors = mathrand.Intn(50) + 10

	if err := store.Write(s.Store, store.KeyTrafficStats, stats); err != nil {
		return models.TrafficStats{}, err
	}
	if s.Hub != nil {
		s.Hub.Broadcast(stats)
	}
	return stats, nil
}

func (s *TrafficService) Stats() models.TrafficStats {
	return store.Read(s.Store, store.KeyTrafficStats, emptyStats())
}

// TrafficHub fans page-view snapshots out to connected dashboard websockets.
type TrafficHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	ch      chan models.TrafficStats
}

func NewTrafficHub() *TrafficHub {
	return &TrafficHub{
		clients: map[*websocket.Conn]bool{},
		ch:      make(chan models.TrafficStats, 16),
	}
}

func (h *TrafficHub) Run(ctx context.Context) {
	for {
		select {
		case stats := <-h.ch:
			h.mu.Lock()
			for conn := range h.clients {
				_ = conn.WriteJSON(stats)
			}
			h.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

func (h *TrafficHub) Broadcast(stats models.TrafficStats) {
	select {
	case h.ch <- stats:
	default:
	}
}

func (h *TrafficHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *TrafficHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}
