package app

import (
	"adoptionService/config"
	"adoptionService/pkg/api"
	myMiddleware "adoptionService/pkg/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (s *Server) Routes(hub *api.Hub) *chi.Mux {
	r := s.router
	r.Use(cors.Handler(cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(myMiddleware.FirebaseConfig(config.SetupFirebase()))

	r.Post("/auth/signup", s.SignUp())

	r.Group(func(r chi.Router) {
		r.Use(myMiddleware.Authenticator)

		r.Get("/categories", s.GetCategories())
		r.Get("/sliders", s.GetSliders())

		r.Route("/pets", func(r chi.Router) {
			r.Get("/category/{category}", s.GetPetsByCategory())
			r.Get("/stream", s.StreamPetsByCategory())
			r.Get("/my-posts", s.GetMyPets())
			r.Post("/", s.CreatePet())
			r.Get("/{petId}", s.GetPetDetail())
			r.Patch("/{petId}", s.UpdatePet())
			r.Post("/{petId}/adopted", s.ToggleAdopted())
			r.Delete("/{petId}", s.DeletePet())
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", s.GetFavorites())
			r.Get("/pets", s.GetFavoritePets())
			r.Post("/{petId}", s.AddFavorite())
			r.Delete("/{petId}", s.RemoveFavorite())
		})

		r.Route("/chat", func(r chi.Router) {
			r.Post("/initiate", s.InitiateThread())
			r.Get("/threads", s.GetThreads())
			r.Get("/threads/stream", s.StreamThreads())
			r.Get("/thread/{threadId}", s.GetThread())
			r.Get("/thread/{threadId}/messages", s.GetMessages())
			r.Get("/thread/{threadId}/messages/stream", s.StreamMessages())
			r.Post("/thread/{threadId}/messages", s.PostMessage())
			r.Post("/thread/{threadId}/read", s.MarkThreadRead())
			r.Delete("/thread/{threadId}", s.DeleteThread())
		})

		r.Route("/me", func(r chi.Router) {
			r.Get("/", s.GetMyProfile())
			r.Patch("/", s.UpdateMyProfile())
			r.Delete("/", s.DeleteAccount())
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(myMiddleware.RequireAdmin(s.userService))
			r.Get("/stats", s.AdminStats())
			r.Get("/pets", s.AdminPets())
			r.Get("/pets/stream", s.AdminStreamPets())
			r.Delete("/pets/{petId}", s.AdminDeletePet())
			r.Get("/users", s.AdminUsers())
			r.Get("/users/stream", s.AdminStreamUsers())
			r.Delete("/users/{email}", s.AdminDeleteUser())
			r.Post("/categories", s.AdminAddCategory())
			r.Get("/categories/stream", s.AdminStreamCategories())
			r.Delete("/categories/{name}", s.AdminDeleteCategory())
			r.Post("/sliders", s.AdminAddSlider())
			r.Delete("/sliders/{name}", s.AdminDeleteSlider())
		})
	})

	r.Get("/chat/ws", s.ServeWs(hub))

	return r
}
