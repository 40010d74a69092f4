package httpapi

import (
	"encoding/json"
	"net/http"

	"esgishoma-backend-go/internal/models"
	"esgishoma-backend-go/internal/services"
)

func (s *Server) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var in services.InquiryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	msg, err := s.Registry.Messages.Submit(in)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, msg)
}

func (s *Server) SubmitJoinRequest(w http.ResponseWriter, r *http.Request) {
	var in models.AlumniJoinRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	req, err := s.Registry.SubmitJoinRequest(in)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, req)
}

type trackVisitRequest struct {
	Path string `json:"path"`
}

func (s *Server) TrackVisit(w http.ResponseWriter, r *http.Request) {
	var req trackVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		req.Path = "/"
	}
	stats, err := s.Registry.Traffic.TrackPageView(req.Path)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"count": stats.TotalVisitors})
}

func (s *Server) VisitCount(w http.ResponseWriter, r *http.Request) {
	stats := s.Registry.Traffic.Stats()
	WriteJSON(w, http.StatusOK, map[string]int{"count": stats.TotalVisitors})
}
