package app

import (
	"encoding/json"
	"log"
	"net/http"
)

func (s *Server) SignUp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			FullName string `json:"fullName"`
		}
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&body); err != nil {
			log.Printf("Unable to unmarshal request body: %v\n", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		profile, err := s.userService.SignUp(r.Context(), body.Email, body.Password, body.FullName)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, profile)
	}
}

func (s *Server) GetMyProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := s.userService.GetProfile(r.Context(), emailFromCtx(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func (s *Server) UpdateMyProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			DisplayName string `json:"displayName"`
			PhotoURL    string `json:"photoURL"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		profile, err := s.userService.UpdateProfile(r.Context(), emailFromCtx(r), body.DisplayName, body.PhotoURL)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// DeleteAccount removes the caller's account and every document keyed to it.
func (s *Server) DeleteAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := emailFromCtx(r)
		if err := s.userService.DeleteAccount(r.Context(), email); err != nil {
			writeError(w, err)
			return
		}
		log.Printf("Deleted account and data for %s", email)
		w.WriteHeader(http.StatusNoContent)
	}
}
