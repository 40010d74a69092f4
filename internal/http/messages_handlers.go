package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.Registry.Messages.List(TokenFromContext(r), true)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, msgs)
}

func (s *Server) MessageStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Registry.Messages.Stats(TokenFromContext(r))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

func (s *Server) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	if err := s.Registry.Messages.MarkRead(TokenFromContext(r), chi.URLParam(r, "id")); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

type replyRequest struct {
	Text string `json:"text"`
}

func (s *Server) ReplyMessage(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	reply, err := s.Registry.Messages.Reply(r.Context(), TokenFromContext(r), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		// The reply is persisted even when mail dispatch fails; surface
		// both the reply and the failure so the dashboard can show it.
		if reply != nil {
			WriteJSON(w, http.StatusBadGateway, map[string]any{
				"reply":   reply,
				"message": "Reply saved but email delivery failed",
			})
			return
		}
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, reply)
}

type suggestRequest struct {
	Message string `json:"message"`
}

func (s *Server) SuggestReply(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		WriteError(w, http.StatusBadRequest, "Message text is required")
		return
	}
	suggestion, err := s.Registry.Suggest.Suggest(r.Context(), req.Message)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"suggestion": suggestion})
}
