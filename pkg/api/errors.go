package api

import "errors"

// Sentinel errors returned by services and repositories.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Sign-up failures mapped to the user-facing messages the app shows.
var (
	ErrEmailInUse   = errors.New("this email is already registered, please sign in instead")
	ErrWeakPassword = errors.New("password should be at least 6 characters")
	ErrInvalidEmail = errors.New("please enter a valid email address")
)
