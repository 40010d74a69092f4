package services

import (
	"sync"

	"esgishoma-backend-go/internal/models"
	"esgishoma-backend-go/internal/store"
)

// HomeService owns the single-document home_config collection.
type HomeService struct {
	Store  *store.Store
	Tokens TokenService

	mu sync.Mutex
}

func defaultHomeConfig() models.HomeConfig {
	return models.HomeConfig{
		HeroTitle:    "Excellence in Education",
		HeroSubtitle: "Empowering students to achieve their full potential through holistic learning and character building.",
		HeroImage:    "https://images.unsplash.com/photo-1546410531-bb4caa6b424d?auto=format&fit=crop&q=80&w=1920",
		SchoolBrief:  "ES GISHOMA is a leading educational institution dedicated to providing a transformative learning experience.",
	}
}

func (s *HomeService) Get() models.HomeConfig {
	return store.Read(s.Store, store.KeyHomeConfig, defaultHomeConfig())
}

func (s *HomeService) Save(token string, cfg models.HomeConfig) error {
	if _, err := s.Tokens.RequireAdmin(token); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Write(s.Store, store.KeyHomeConfig, cfg)
}
