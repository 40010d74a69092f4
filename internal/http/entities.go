package httpapi

import (
	"encoding/json"
	"net/http"

	"esgishoma-backend-go/internal/models"
	"esgishoma-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

// listHandler serves a collection. Public routes get the live records only;
// admin routes also see soft-deleted ones so the dashboard can show trash
// state inline.
func listHandler[T any, P services.RecordOf[T]](col *services.Collection[T, P], includeDeleted bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := col.List(r.Context(), includeDeleted)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, items)
	}
}

func saveHandler[T any, P services.RecordOf[T]](col *services.Collection[T, P]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item T
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid payload")
			return
		}
		saved, err := col.Save(r.Context(), TokenFromContext(r), item)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, saved)
	}
}

func (s *Server) lifecycleFor(r *http.Request) (lifecycle, bool) {
	col, ok := s.collections()[chi.URLParam(r, "type")]
	return col, ok
}

func (s *Server) LifecycleDelete(w http.ResponseWriter, r *http.Request) {
	col, ok := s.lifecycleFor(r)
	if !ok {
		WriteError(w, http.StatusNotFound, "Unknown collection")
		return
	}
	if err := col.Delete(r.Context(), TokenFromContext(r), chi.URLParam(r, "id")); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) LifecycleRestore(w http.ResponseWriter, r *http.Request) {
	col, ok := s.lifecycleFor(r)
	if !ok {
		WriteError(w, http.StatusNotFound, "Unknown collection")
		return
	}
	if err := col.Restore(r.Context(), TokenFromContext(r), chi.URLParam(r, "id")); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

func (s *Server) LifecyclePermanent(w http.ResponseWriter, r *http.Request) {
	col, ok := s.lifecycleFor(r)
	if !ok {
		WriteError(w, http.StatusNotFound, "Unknown collection")
		return
	}
	if err := col.PermanentDelete(r.Context(), TokenFromContext(r), chi.URLParam(r, "id")); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) LifecycleTrash(w http.ResponseWriter, r *http.Request) {
	col, ok := s.lifecycleFor(r)
	if !ok {
		WriteError(w, http.StatusNotFound, "Unknown collection")
		return
	}
	items, err := col.Trash(r.Context(), TokenFromContext(r))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) ListSections(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.Registry.Sections.List())
}

func (s *Server) SaveSection(w http.ResponseWriter, r *http.Request) {
	var section models.ALevelSection
	if err := json.NewDecoder(r.Body).Decode(&section); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	saved, err := s.Registry.Sections.Save(TokenFromContext(r), section)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, saved)
}

func (s *Server) DeleteSection(w http.ResponseWriter, r *http.Request) {
	if err := s.Registry.Sections.Delete(TokenFromContext(r), chi.URLParam(r, "id")); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) HomeConfig(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.Registry.Home.Get())
}

func (s *Server) SaveHomeConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.HomeConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := s.Registry.Home.Save(TokenFromContext(r), cfg); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, cfg)
}
