package repository

import (
	"context"
	"strings"

	"adoptionService/pkg/api"
	"firebase.google.com/go/v4/auth"
)

// firebaseAuthenticator adapts the Firebase Admin auth client to the account
// operations the services need.
type firebaseAuthenticator struct {
	client *auth.Client
}

func NewAuthenticator(client *auth.Client) *firebaseAuthenticator {
	return &firebaseAuthenticator{client: client}
}

func (f *firebaseAuthenticator) CreateUser(ctx context.Context, email string, password string, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	record, err := f.client.CreateUser(ctx, params)
	if auth.IsEmailAlreadyExists(err) {
		return "", api.ErrEmailInUse
	}
	if err != nil {
		return "", err
	}

	return record.UID, nil
}

func (f *firebaseAuthenticator) DeleteUser(ctx context.Context, email string) error {
	record, err := f.client.GetUserByEmail(ctx, email)
	if auth.IsUserNotFound(err) {
		return api.ErrNotFound
	}
	if err != nil {
		return err
	}
	return f.client.DeleteUser(ctx, record.UID)
}

// VerifyToken checks an ID token and returns the lowercased email claim.
func (f *firebaseAuthenticator) VerifyToken(ctx context.Context, idToken string) (string, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", api.ErrUnauthorized
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return "", api.ErrUnauthorized
	}

	return strings.ToLower(email), nil
}
