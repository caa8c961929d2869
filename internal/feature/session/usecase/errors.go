// Package usecase implements the business logic for the session feature.
package usecase

import "errors"

var (
	// ErrInvalidCredentials is returned when the email is unknown or the password does not match.
	// The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailAlreadyExists is returned when registering an email that is already taken.
	ErrEmailAlreadyExists = errors.New("an account with this email already exists")

	// ErrWeakPassword is returned when a registration password is too short.
	ErrWeakPassword = errors.New("password must be at least 6 characters long")

	// ErrPasswordTooLong is returned when a registration password exceeds what bcrypt can hash.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes long")

	// ErrUserNotFound is returned by UserRepository when no user has the given email.
	ErrUserNotFound = errors.New("user not found")

	// ErrSessionNotFound is returned by SessionRepository when no session marker is stored.
	ErrSessionNotFound = errors.New("session not found")
)
