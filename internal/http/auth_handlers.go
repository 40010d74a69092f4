package httpapi

import (
	"encoding/json"
	"net/http"

	"esgishoma-backend-go/internal/models"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Website is the honeypot field: hidden in the form, always empty for
	// genuine users.
	Website string `json:"website"`
}

type LoginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt int64             `json:"expiresAt"`
	User      models.PublicUser `json:"user"`
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	result, err := s.Registry.Auth.Login(req.Username, req.Password, req.Website)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      result.User,
	})
}

// Logout is stateless: tokens expire on their own and the client discards
// its copy. The endpoint exists so the client has something to call.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := s.Registry.Auth.ChangePassword(TokenFromContext(r), req.CurrentPassword, req.NewPassword); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
