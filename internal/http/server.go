package httpapi

import (
	"context"
	"net/http"

	"esgishoma-backend-go/internal/config"
	"esgishoma-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type Server struct {
	Config   config.Config
	Registry *services.Registry
}

func NewServer(cfg config.Config, registry *services.Registry) *Server {
	return &Server{Config: cfg, Registry: registry}
}

// lifecycle is the slice of a collection the generic trash endpoints need.
type lifecycle interface {
	Delete(ctx context.Context, token, id string) error
	Restore(ctx context.Context, token, id string) error
	PermanentDelete(ctx context.Context, token, id string) error
	Trash(ctx context.Context, token string) (any, error)
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	reg := s.Registry

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", s.Login)
		api.Post("/auth/logout", s.Logout)

		api.Route("/public", func(pub chi.Router) {
			pub.Get("/announcements", listHandler(reg.Announcements, false))
			pub.Get("/staff", listHandler(reg.Staff, false))
			pub.Get("/gallery", listHandler(reg.Gallery, false))
			pub.Get("/books", listHandler(reg.Books, false))
			pub.Get("/past-papers", listHandler(reg.Papers, false))
			pub.Get("/alumni-stories", listHandler(reg.Alumni, false))
			pub.Get("/alevel-sections", s.ListSections)
			pub.Get("/home-config", s.HomeConfig)
			pub.Post("/messages", s.SubmitMessage)
			pub.Post("/alumni-join-requests", s.SubmitJoinRequest)
			pub.Post("/visits", s.TrackVisit)
			pub.Get("/visits/count", s.VisitCount)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(WithAdminSession(reg.Tokens))

			admin.Put("/auth/password", s.ChangePassword)

			admin.Get("/announcements", listHandler(reg.Announcements, true))
			admin.Post("/announcements", saveHandler(reg.Announcements))
			admin.Get("/staff", listHandler(reg.Staff, true))
			admin.Post("/staff", saveHandler(reg.Staff))
			admin.Get("/gallery", listHandler(reg.Gallery, true))
			admin.Post("/gallery", saveHandler(reg.Gallery))
			admin.Get("/books", listHandler(reg.Books, true))
			admin.Post("/books", saveHandler(reg.Books))
			admin.Get("/past-papers", listHandler(reg.Papers, true))
			admin.Post("/past-papers", saveHandler(reg.Papers))
			admin.Get("/alumni-stories", listHandler(reg.Alumni, true))
			admin.Post("/alumni-stories", saveHandler(reg.Alumni))
			admin.Get("/alumni-join-requests", listHandler(reg.JoinRequests, true))

			admin.Post("/alevel-sections", s.SaveSection)
			admin.Delete("/alevel-sections/{id}", s.DeleteSection)

			admin.Get("/messages", s.ListMessages)
			admin.Get("/messages/stats", s.MessageStats)
			admin.Put("/messages/{id}/read", s.MarkMessageRead)
			admin.Post("/messages/{id}/reply", s.ReplyMessage)

			admin.Post("/suggest", s.SuggestReply)
			admin.Get("/diagnostics", s.Diagnostics)
			admin.Get("/traffic", s.TrafficStats)
			admin.Put("/home-config", s.SaveHomeConfig)

			// Generic lifecycle endpoints shared by every collection.
			admin.Delete("/{type}/{id}", s.LifecycleDelete)
			admin.Put("/{type}/{id}/restore", s.LifecycleRestore)
			admin.Delete("/{type}/{id}/permanent", s.LifecyclePermanent)
			admin.Get("/{type}/trash", s.LifecycleTrash)
		})
	})

	r.Get("/ws/traffic", s.TrafficSocket)
	return r
}

// collections maps the URL segment of the generic lifecycle endpoints to its
// collection.
func (s *Server) collections() map[string]lifecycle {
	reg := s.Registry
	return map[string]lifecycle{
		"announcements":        reg.Announcements,
		"staff":                reg.Staff,
		"gallery":              reg.Gallery,
		"books":                reg.Books,
		"past-papers":          reg.Papers,
		"alumni-stories":       reg.Alumni,
		"alumni-join-requests": reg.JoinRequests,
		"messages":             reg.Messages,
	}
}
