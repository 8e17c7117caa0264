package app

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"log"
	"net/http"
	"strconv"

	"adoptionService/pkg/api"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  8092,
	WriteBufferSize: 8092,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// drainPeer discards client frames on a stream connection and closes the
// feed when the peer disconnects, detaching the snapshot listener.
func drainPeer(conn *websocket.Conn, feed interface{ Close() }) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			feed.Close()
			return
		}
	}
}

func emailFromCtx(r *http.Request) string {
	email, _ := r.Context().Value("email").(string)
	return email
}

func petIdParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "petId"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Unable to encode response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, api.ErrNotFound):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	case errors.Is(err, api.ErrInvalidInput),
		errors.Is(err, api.ErrWeakPassword),
		errors.Is(err, api.ErrInvalidEmail):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, api.ErrEmailInUse):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, api.ErrForbidden):
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	case errors.Is(err, api.ErrUnauthorized):
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	default:
		log.Printf("Request failed: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// currentSummary builds the denormalized owner/participant summary for the
// authenticated caller.
func (s *Server) currentSummary(r *http.Request) (api.UserSummary, error) {
	profile, err := s.userService.GetProfile(r.Context(), emailFromCtx(r))
	if err != nil {
		return api.UserSummary{}, err
	}
	return api.UserSummary{
		Email:    profile.Email,
		Name:     profile.DisplayName,
		ImageUrl: profile.PhotoURL,
	}, nil
}

// canModifyPet reports whether the caller owns the pet or is an admin.
func (s *Server) canModifyPet(r *http.Request, pet api.Pet) bool {
	email := emailFromCtx(r)
	if pet.Owner.Email == email {
		return true
	}
	profile, err := s.userService.GetProfile(r.Context(), email)
	return err == nil && profile.Role == api.RoleAdmin
}

func (s *Server) GetCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := s.petService.GetCategories(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, categories)
	}
}

// GetSliders returns the home-screen banner images.
func (s *Server) GetSliders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sliders, err := s.petService.GetSliders(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sliders)
	}
}

func (s *Server) GetPetsByCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := chi.URLParam(r, "category")

		pets, err := s.petService.GetPetsByCategory(r.Context(), category)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pets)
	}
}

// StreamPetsByCategory upgrades to a websocket and pushes the pet list for
// the selected category on every backend snapshot. The client switches
// category by sending {"category": "..."}; the previous subscription is
// detached before the next one is opened.
func (s *Server) StreamPetsByCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println(err)
			return
		}
		defer conn.Close()

		watcher := s.petService.Watcher()
		defer watcher.Close()

		feeds := make(chan *api.PetFeed, 1)
		done := make(chan struct{})

		initial := r.URL.Query().Get("category")
		feed, err := watcher.Switch(r.Context(), initial)
		if err != nil {
			log.Printf("Unable to watch category %q: %v", initial, err)
			return
		}
		feeds <- feed

		// Reader: category-switch requests until the peer goes away.
		go func() {
			defer close(done)
			for {
				var req struct {
					Category string `json:"category"`
				}
				if err := conn.ReadJSON(&req); err != nil {
					return
				}
				next, err := watcher.Switch(r.Context(), req.Category)
				if err != nil {
					log.Printf("Unable to watch category %q: %v", req.Category, err)
					return
				}
				feeds <- next
			}
		}()

		var current <-chan []api.Pet = feed.C
		for {
			select {
			case <-done:
				return
			case next := <-feeds:
				current = next.C
			case pets, ok := <-current:
				if !ok {
					// Superseded by a switch; wait for the next feed.
					current = nil
					continue
				}
				if err := conn.WriteJSON(pets); err != nil {
					return
				}
			}
		}
	}
}

func (s *Server) GetPetDetail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := petIdParam(r)
		if err != nil {
			writeError(w, api.ErrInvalidInput)
			return
		}

		pet, err := s.petService.GetPetDetail(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pet)
	}
}

func (s *Server) CreatePet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var newPet api.NewPet
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&newPet); err != nil {
			log.Printf("Unable to unmarshal request body: %v\n", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		owner, err := s.currentSummary(r)
		if err != nil {
			writeError(w, err)
			return
		}

		pet, err := s.petService.CreatePet(r.Context(), owner, newPet)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, pet)
	}
}

func (s *Server) UpdatePet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := petIdParam(r)
		if err != nil {
			writeError(w, api.ErrInvalidInput)
			return
		}

		pet, err := s.petService.GetPetDetail(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if !s.canModifyPet(r, pet) {
			writeError(w, api.ErrForbidden)
			return
		}

		patchJSON, err := ioutil.ReadAll(r.Body)
		if err != nil {
			writeError(w, api.ErrInvalidInput)
			return
		}

		updated, err := s.petService.UpdatePet(r.Context(), id, patchJSON)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) ToggleAdopted() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := petIdParam(r)
		if err != nil {
			writeError(w, api.ErrInvalidInput)
			return
		}

		pet, err := s.petService.GetPetDetail(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if !s.canModifyPet(r, pet) {
			writeError(w, api.ErrForbidden)
			return
		}

		toggled, err := s.petService.ToggleAdopted(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toggled)
	}
}

func (s *Server) DeletePet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := petIdParam(r)
		if err != nil {
			writeError(w, api.ErrInvalidInput)
			return
		}

		pet, err := s.petService.GetPetDetail(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if !s.canModifyPet(r, pet) {
			writeError(w, api.ErrForbidden)
			return
		}

		if err := s.petService.DeletePet(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) GetMyPets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pets, err := s.petService.GetPetsByOwner(r.Context(), emailFromCtx(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pets)
	}
}

func (s *Server) GetFavorites() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		favorites, err := s.favoriteService.GetFavorites(r.Context(), emailFromCtx(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, favorites)
	}
}

// GetFavoritePets resolves the caller's favorites to pet documents. Stale ids
// are implicitly dropped by the lookup.
func (s *Server) GetFavoritePets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		favorites, err := s.favoriteService.GetFavorites(r.Context(), emailFromCtx(r))
		if err != nil {
			writeError(w, err)
			return
		}

		pets, err := s.petService.GetPetsByIds(r.Context(), favorites)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pets)
	}
}

func (s *Server) AddFavorite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := petIdParam(r)
		if err != nil {
			writeError(w, api.ErrInvalidInput)
			return
		}

		if err := s.favoriteService.AddFavorite(r.Context(), emailFromCtx(r), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) RemoveFavorite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := petIdParam(r)
		if err != nil {
			writeError(w, api.ErrInvalidInput)
			return
		}

		if err := s.favoriteService.RemoveFavorite(r.Context(), emailFromCtx(r), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
