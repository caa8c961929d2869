// Package entity defines the domain entities for the session feature.
package entity

// User represents a registered account.
// Records are created at registration and never modified afterwards.
type User struct {
	// ID is generated at registration and is unique across all users.
	ID string `json:"id"`

	// Name is the optional display name entered at registration.
	Name string `json:"name,omitempty"`

	// Email identifies the user. Lookups compare it exactly (case-sensitive).
	Email string `json:"email"`

	// PasswordHash holds the value produced by the configured CredentialVerifier.
	// Depending on the scheme this is a bcrypt hash or the password itself.
	PasswordHash string `json:"passwordHash"`
}

// DisplayName returns the name to greet the user with, falling back to the email.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
