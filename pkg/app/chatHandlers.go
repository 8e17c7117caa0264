package app

import (
	"encoding/json"
	"log"
	"net/http"

	"adoptionService/pkg/api"
	"github.com/go-chi/chi/v5"
)

// InitiateThread resolves or creates the conversation between the caller and
// the pet owner named in the request body.
func (s *Server) InitiateThread() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var other api.UserSummary
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&other); err != nil {
			log.Printf("Unable to unmarshal request body: %v\n", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		initiator, err := s.currentSummary(r)
		if err != nil {
			writeError(w, err)
			return
		}

		thread, err := s.chatService.InitiateThread(r.Context(), initiator, other)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, thread)
	}
}

func (s *Server) GetThreads() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threads, err := s.chatService.GetThreads(r.Context(), emailFromCtx(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, threads)
	}
}

// StreamThreads pushes the caller's inbox on every backend snapshot, filtered
// and sorted the same way as the one-shot variant.
func (s *Server) StreamThreads() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println(err)
			return
		}
		defer conn.Close()

		feed, err := s.chatService.WatchThreads(r.Context(), emailFromCtx(r))
		if err != nil {
			log.Printf("Unable to watch threads: %v", err)
			return
		}
		defer feed.Close()

		go drainPeer(conn, feed)

		for threads := range feed.C {
			if err := conn.WriteJSON(api.SortInbox(threads)); err != nil {
				return
			}
		}
	}
}

// participantsOnly rejects callers that are not part of the thread.
func (s *Server) participantsOnly(r *http.Request, threadId string) (api.ChatThread, error) {
	thread, err := s.chatService.GetThread(r.Context(), threadId)
	if err != nil {
		return thread, err
	}

	email := emailFromCtx(r)
	for _, participant := range thread.UserIds {
		if participant == email {
			return thread, nil
		}
	}
	return thread, api.ErrForbidden
}

func (s *Server) GetThread() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		thread, err := s.participantsOnly(r, chi.URLParam(r, "threadId"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, thread)
	}
}

func (s *Server) GetMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threadId := chi.URLParam(r, "threadId")
		if _, err := s.participantsOnly(r, threadId); err != nil {
			writeError(w, err)
			return
		}

		messages, err := s.chatService.GetMessages(r.Context(), threadId)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messages)
	}
}

func (s *Server) StreamMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threadId := chi.URLParam(r, "threadId")
		if _, err := s.participantsOnly(r, threadId); err != nil {
			writeError(w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println(err)
			return
		}
		defer conn.Close()

		feed, err := s.chatService.WatchMessages(r.Context(), threadId)
		if err != nil {
			log.Printf("Unable to watch messages: %v", err)
			return
		}
		defer feed.Close()

		go drainPeer(conn, feed)

		for messages := range feed.C {
			if err := conn.WriteJSON(messages); err != nil {
				return
			}
		}
	}
}

func (s *Server) PostMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threadId := chi.URLParam(r, "threadId")
		if _, err := s.participantsOnly(r, threadId); err != nil {
			writeError(w, err)
			return
		}

		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		sender, err := s.currentSummary(r)
		if err != nil {
			writeError(w, err)
			return
		}

		message, err := s.chatService.SendMessage(r.Context(), threadId, sender, body.Text)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, message)
	}
}

func (s *Server) MarkThreadRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threadId := chi.URLParam(r, "threadId")
		if _, err := s.participantsOnly(r, threadId); err != nil {
			writeError(w, err)
			return
		}

		if err := s.chatService.MarkThreadRead(r.Context(), threadId, emailFromCtx(r)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		log.Printf("Marked thread %s as read\n", threadId)
	}
}

// DeleteThread removes the conversation and all its messages.
func (s *Server) DeleteThread() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threadId := chi.URLParam(r, "threadId")
		if _, err := s.participantsOnly(r, threadId); err != nil {
			writeError(w, err)
			return
		}

		if err := s.chatService.DeleteThread(r.Context(), threadId); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ServeWs(hub *api.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		if email == "" {
			log.Println("email in query param required")
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println(err)
			return
		}

		log.Println("Connected to websocket")

		// The client joins the hub only after it presents a valid token for
		// the claimed email; until then no events are delivered to it.
		client := api.NewClient(hub, conn, make(chan []byte, 256), email, s.chatService, s.userService, s.verifier)

		// Allow collection of memory referenced by the caller by doing all work in
		// new goroutines.
		go client.WritePump()
		go client.ReadPump()
	}
}
