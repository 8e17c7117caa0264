package app

import (
	"encoding/json"
	"log"
	"net/http"

	"adoptionService/pkg/api"
	"github.com/go-chi/chi/v5"
)

func (s *Server) AdminStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.adminService.GetStats(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) AdminPets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pets, err := s.adminService.GetAllPets(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pets)
	}
}

func (s *Server) AdminStreamPets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println(err)
			return
		}
		defer conn.Close()

		feed, err := s.adminService.WatchPets(r.Context())
		if err != nil {
			log.Printf("Unable to watch pets: %v", err)
			return
		}
		defer feed.Close()

		go drainPeer(conn, feed)

		for pets := range feed.C {
			if err := conn.WriteJSON(pets); err != nil {
				return
			}
		}
	}
}

func (s *Server) AdminDeletePet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := petIdParam(r)
		if err != nil {
			writeError(w, api.ErrInvalidInput)
			return
		}

		if err := s.adminService.DeletePet(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		log.Printf("Admin deleted pet %d", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) AdminUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := s.adminService.GetAllUsers(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func (s *Server) AdminStreamUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println(err)
			return
		}
		defer conn.Close()

		feed, err := s.adminService.WatchUsers(r.Context())
		if err != nil {
			log.Printf("Unable to watch users: %v", err)
			return
		}
		defer feed.Close()

		go drainPeer(conn, feed)

		for users := range feed.C {
			if err := conn.WriteJSON(users); err != nil {
				return
			}
		}
	}
}

// AdminDeleteUser removes the profile document; live sessions of that user
// observe the deletion and sign out.
func (s *Server) AdminDeleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := chi.URLParam(r, "email")

		if err := s.adminService.DeleteUser(r.Context(), email); err != nil {
			writeError(w, err)
			return
		}
		log.Printf("Admin deleted user %s", email)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) AdminAddCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name     string `json:"name"`
			ImageUrl string `json:"imageUrl"`
		}
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		category, err := s.adminService.AddCategory(r.Context(), body.Name, body.ImageUrl)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, category)
	}
}

func (s *Server) AdminStreamCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println(err)
			return
		}
		defer conn.Close()

		feed, err := s.adminService.WatchCategories(r.Context())
		if err != nil {
			log.Printf("Unable to watch categories: %v", err)
			return
		}
		defer feed.Close()

		go drainPeer(conn, feed)

		for categories := range feed.C {
			if err := conn.WriteJSON(categories); err != nil {
				return
			}
		}
	}
}

func (s *Server) AdminAddSlider() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name     string `json:"name"`
			ImageUrl string `json:"imageUrl"`
		}
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		slider, err := s.adminService.AddSlider(r.Context(), body.Name, body.ImageUrl)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, slider)
	}
}

func (s *Server) AdminDeleteSlider() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		if err := s.adminService.DeleteSlider(r.Context(), name); err != nil {
			writeError(w, err)
			return
		}
		log.Printf("Admin deleted slider %s", name)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) AdminDeleteCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		if err := s.adminService.DeleteCategory(r.Context(), name); err != nil {
			writeError(w, err)
			return
		}
		log.Printf("Admin deleted category %s", name)
		w.WriteHeader(http.StatusNoContent)
	}
}
