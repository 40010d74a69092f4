package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"esgishoma-backend-go/internal/models"
	"esgishoma-backend-go/internal/store"

	"github.com/google/uuid"
)

// ReplyMailer delivers an admin reply to the visitor by email. Delivery is
// best-effort: a failure is recorded on the reply, never allowed to corrupt
// the stored message.
type ReplyMailer interface {
	SendReply(to, name, subject, replyText string) error
}

// MessageService owns the contact_messages collection. Intake is public;
// everything else requires an admin session. Messages are the one collection
// whose delete is permanent rather than soft.
type MessageService struct {
	Store  *store.Store
	Tokens TokenService
	Mailer ReplyMailer

	mu sync.Mutex
}

type InquiryInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Submit records a visitor inquiry. No session is required: this is the only
// unauthenticated write in the system.
func (s *MessageService) Submit(in InquiryInput) (*models.ContactMessage, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.Message) == "" {
		return nil, ErrBadRequest("Name, email and message are required")
	}
	msg := models.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
		Date:    s.Tokens.now().UTC().Format(time.RFC3339),
		Status:  models.MessageNew,
		Replies: []models.Reply{},
	}
	msg.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	messages := store.Read(s.Store, store.KeyContactMessages, []models.ContactMessage{})
	messages = append(messages, msg)
	if err := store.Write(s.Store, store.KeyContactMessages, messages); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *MessageService) List(token string, includeDeleted bool) ([]models.ContactMessage, error) {
	if _, err := s.Tokens.RequireAdmin(token); err != nil {
		return nil, err
	}
	messages := store.Read(s.Store, store.KeyContactMessages, []models.ContactMessage{})
	if includeDeleted {
		return messages, nil
	}
	out := make([]models.ContactMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.DeletedAt == nil {
			out = append(out, msg)
		}
	}
	return out, nil
}

// MarkRead moves a message from new to read. Any other starting status is
// left alone.
func (s *MessageService) MarkRead(token, id string) error {
	if _, err := s.Tokens.RequireAdmin(token); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := store.Read(s.Store, store.KeyContactMessages, []models.ContactMessage{})
	for i := range messages {
		if messages[i].ID == id && messages[i].Status == models.MessageNew {
			messages[i].Status = models.MessageRead
			return store.Write(s.Store, store.KeyContactMessages, messages)
		}
	}
	return nil
}

// Reply appends an admin reply and dispatches it by mail. The reply is
// persisted either way; a mail failure marks it failed and the error is
// propagated so the caller can surface it.
func (s *MessageService) Reply(ctx context.Context, token, id, text string) (*models.Reply, error) {
	session, err := s.Tokens.RequireAdmin(token)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrBadRequest("Reply text is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	messages := store.Read(s.Store, store.KeyContactMessages, []models.ContactMessage{})
	for i := range messages {
		if messages[i].ID != id {
			continue
		}
		adminName := session.Name
		if adminName == "" {
			adminName = "Administrator"
		}
		reply := models.Reply{
			ID:             uuid.NewString(),
			AdminName:      adminName,
			Text:           text,
			Timestamp:      s.Tokens.now().UTC().Format(time.RFC3339),
			DeliveryStatus: models.DeliveryDelivered,
		}
		mailErr := s.Mailer.SendReply(messages[i].Email, messages[i].Name, messages[i].Subject, text)
		if mailErr != nil {
			reply.DeliveryStatus = models.DeliveryFailed
			messages[i].Status = models.MessageFailed
		} else {
			messages[i].Status = models.MessageReplied
		}
		messages[i].Replies = append(messages[i].Replies, reply)
		if err := store.Write(s.Store, store.KeyContactMessages, messages); err != nil {
			return nil, err
		}
		if mailErr != nil {
			return &reply, WrapError(mailErr, "mail dispatch")
		}
		return &reply, nil
	}
	return nil, ErrNotFound("Message not found")
}

// Delete removes the message permanently; the trash lifecycle never applies
// to inquiries.
func (s *MessageService) Delete(ctx context.Context, token, id string) error {
	if _, err := s.Tokens.RequireAdmin(token); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := store.Read(s.Store, store.KeyContactMessages, []models.ContactMessage{})
	kept := make([]models.ContactMessage, 0, len(messages))
	for _, msg := range messages {
		if strings.TrimSpace(msg.ID) == strings.TrimSpace(id) {
			continue
		}
		kept = append(kept, msg)
	}
	return store.Write(s.Store, store.KeyContactMessages, kept)
}

// Restore exists so messages fit the generic lifecycle endpoints, but hard
// deletion means there is never anything to restore.
func (s *MessageService) Restore(ctx context.Context, token, id string) error {
	_, err := s.Tokens.RequireAdmin(token)
	return err
}

func (s *MessageService) PermanentDelete(ctx context.Context, token, id string) error {
	return s.Delete(ctx, token, id)
}

func (s *MessageService) Trash(ctx context.Context, token string) (any, error) {
	if _, err := s.Tokens.RequireAdmin(token); err != nil {
		return nil, err
	}
	return []models.ContactMessage{}, nil
}

type MessageStats struct {
	Total   int `json:"total"`
	New     int `json:"new"`
	Replied int `json:"replied"`
}

func (s *MessageService) Stats(token string) (MessageStats, error) {
	messages, err := s.List(token, false)
	if err != nil {
		return MessageStats{}, err
	}
	stats := MessageStats{Total: len(messages)}
	for _, msg := range messages {
		switch msg.Status {
		case models.MessageNew:
			stats.New++
		case models.MessageReplied:
			stats.Replied++
		}
	}
	return stats, nil
}
