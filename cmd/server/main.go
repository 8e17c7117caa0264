package main

import (
	"context"
	"log"

	"adoptionService/config"
	"adoptionService/pkg/api"
	"adoptionService/pkg/app"
	"adoptionService/pkg/repository"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalln("Error loading .env file")
	}
}

func main() {
	firebaseApp := config.SetupFirebase()

	firestore, err := firebaseApp.Firestore(context.Background())
	if err != nil {
		log.Fatalln(err)
	}
	defer firestore.Close()

	authClient, err := firebaseApp.Auth(context.Background())
	if err != nil {
		log.Fatalln(err)
	}

	storage := repository.NewStorage(firestore)
	authenticator := repository.NewAuthenticator(authClient)

	router := chi.NewRouter()

	petService := api.NewPetService(storage)
	favoriteService := api.NewFavoriteService(storage)
	chatService := api.NewChatService(storage)
	userService := api.NewUserService(storage, storage, storage, storage, authenticator)
	adminService := api.NewAdminService(storage, storage, storage)

	server := app.NewServer(router, petService, favoriteService, chatService, userService, adminService, authenticator)

	if err = server.Run(); err != nil {
		log.Println(err)
	}
}
