package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adoptionService/pkg/api"
	"github.com/go-chi/chi/v5"
)

type Server struct {
	router          *chi.Mux
	petService      api.PetService
	favoriteService api.FavoriteService
	chatService     api.ChatService
	userService     api.UserService
	adminService    api.AdminService
	verifier        api.TokenVerifier
}

func NewServer(router *chi.Mux, petService api.PetService, favoriteService api.FavoriteService,
	chatService api.ChatService, userService api.UserService, adminService api.AdminService,
	verifier api.TokenVerifier) *Server {
	return &Server{
		router:          router,
		petService:      petService,
		favoriteService: favoriteService,
		chatService:     chatService,
		userService:     userService,
		adminService:    adminService,
		verifier:        verifier,
	}
}

func (s *Server) Run() error {
	hub := api.NewHub()
	go hub.Run()

	// run function that initializes the routes
	r := s.Routes(hub)

	server := &http.Server{Addr: os.Getenv("SERVER_URL"), Handler: r}

	// Server run context
	serverCtx, serverStopCtx := context.WithCancel(context.Background())

	// Listen for syscall signals for process to interrupt/quit
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		// Shutdown signal with grace period of 30 seconds
		shutdownCtx, cancelFunc := context.WithTimeout(serverCtx, 30*time.Second)

		// Cancels shutdownCtx if shutdown occurs before timeout
		defer cancelFunc()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		// Trigger graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	if err := server.ListenAndServe(); err != nil {
		return err
	}

	return nil
}
