package services

import (
	"strings"
	"time"

	"esgishoma-backend-go/internal/blob"
	"esgishoma-backend-go/internal/models"
	"esgishoma-backend-go/internal/store"

	"github.com/google/uuid"
)

// Registry wires every entity service to the two stores and the shared token
// service. The HTTP layer and the tests both talk to the system through it.
type Registry struct {
	Tokens TokenService
	Auth   *AuthService

	Announcements *Collection[models.Announcement, *models.Announcement]
	Staff         *Collection[models.StaffMember, *models.StaffMember]
	Gallery       *Collection[models.GalleryItem, *models.GalleryItem]
	Books         *Collection[models.CurriculumBook, *models.CurriculumBook]
	Papers        *Collection[models.PastPaper, *models.PastPaper]
	Alumni        *Collection[models.AlumniStory, *models.AlumniStory]
	JoinRequests  *Collection[models.AlumniJoinRequest, *models.AlumniJoinRequest]

	Sections    *SectionService
	Messages    *MessageService
	Home        *HomeService
	Traffic     *TrafficService
	Diagnostics *DiagnosticsService
	Suggest     Suggester

	store *store.Store
}

type RegistryOptions struct {
	Tokens    TokenService
	Auth      *AuthService
	Mailer    ReplyMailer
	Suggester Suggester
	Hub       *TrafficHub
	DiskPath  string
}

func NewRegistry(st *store.Store, blobs *blob.Store, opts RegistryOptions) *Registry {
	tokens := opts.Tokens
	return &Registry{
		Tokens: tokens,
		Auth:   opts.Auth,

		Announcements: NewCollection[models.Announcement](st, blobs, tokens, store.KeyAnnouncements, PolicySoft),
		Staff:         NewCollection[models.StaffMember](st, blobs, tokens, store.KeyStaff, PolicySoft),
		Gallery:       NewCollection[models.GalleryItem](st, blobs, tokens, store.KeyGallery, PolicySoft),
		Books:         NewCollection[models.CurriculumBook](st, blobs, tokens, store.KeyCurriculumBooks, PolicySoft),
		Papers:        NewCollection[models.PastPaper](st, blobs, tokens, store.KeyPastPapers, PolicySoft),
		Alumni:        NewCollection[models.AlumniStory](st, blobs, tokens, store.KeyAlumniStories, PolicySoft),
		JoinRequests:  NewCollection[models.AlumniJoinRequest](st, blobs, tokens, store.KeyAlumniJoinRequests, PolicySoft),

		Sections: &SectionService{Store: st, Tokens: tokens},
		Messages: &MessageService{Store: st, Tokens: tokens, Mailer: opts.Mailer},
		Home:     &HomeService{Store: st, Tokens: tokens},
		Traffic:  &TrafficService{Store: st, Hub: opts.Hub, Now: tokens.Now},
		Diagnostics: &DiagnosticsService{
			Store:    st,
			Blobs:    blobs,
			Tokens:   tokens,
			DiskPath: opts.DiskPath,
		},
		Suggest: opts.Suggester,

		store: st,
	}
}

// SubmitJoinRequest is the public alumni intake: the one join-request write
// that does not require a session. Everything else on the collection stays
// admin-gated.
func (r *Registry) SubmitJoinRequest(in models.AlumniJoinRequest) (*models.AlumniJoinRequest, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return nil, ErrBadRequest("Name and email are required")
	}
	in.ID = uuid.NewString()
	in.DeletedAt = nil
	in.Date = r.Tokens.now().UTC().Format(time.RFC3339)

	// Shares the collection's mutex so public intake and admin mutations
	// cannot interleave a read-modify-write.
	r.JoinRequests.mu.Lock()
	defer r.JoinRequests.mu.Unlock()
	requests := store.Read(r.store, store.KeyAlumniJoinRequests, []models.AlumniJoinRequest{})
	requests = append(requests, in)
	if err := store.Write(r.store, store.KeyAlumniJoinRequests, requests); err != nil {
		return nil, err
	}
	return &in, nil
}
