package services

import (
	"strings"
	"sync"

	"esgishoma-backend-go/internal/models"
	"esgishoma-backend-go/internal/store"

	"github.com/google/uuid"
)

// SectionService manages the A-Level section vocabulary. Sections are plain
// id/name pairs with no soft-delete lifecycle. Past papers reference a
// section by display name, so deleting one does not cascade: papers keep the
// orphaned label.
type SectionService struct {
	Store  *store.Store
	Tokens TokenService

	mu sync.Mutex
}

func (s *SectionService) List() []models.ALevelSection {
	return store.Read(s.Store, store.KeyALevelSections, []models.ALevelSection{})
}

func (s *SectionService) Save(token string, section models.ALevelSection) (*models.ALevelSection, error) {
	if _, err := s.Tokens.RequireAdmin(token); err != nil {
		return nil, err
	}
	if strings.TrimSpace(section.Name) == "" {
		return nil, ErrBadRequest("Section name is required")
	}
	if strings.TrimSpace(section.ID) == "" {
		section.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sections := store.Read(s.Store, store.KeyALevelSections, []models.ALevelSection{})
	replaced := false
	for i := range sections {
		if sections[i].ID == section.ID {
			sections[i] = section
			replaced = true
			break
		}
	}
	if !replaced {
		sections = append(sections, section)
	}
	if err := store.Write(s.Store, store.KeyALevelSections, sections); err != nil {
		return nil, err
	}
	return &section, nil
}

func (s *SectionService) Delete(token, id string) error {
	if _, err := s.Tokens.RequireAdmin(token); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sections := store.Read(s.Store, store.KeyALevelSections, []models.ALevelSection{})
	kept := make([]models.ALevelSection, 0, len(sections))
	for _, section := range sections {
		if section.ID == id {
			continue
		}
		kept = append(kept, section)
	}
	return store.Write(s.Store, store.KeyALevelSections, kept)
}
