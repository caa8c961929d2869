package entity

// View is the screen the front end should show.
type View string

const (
	// ViewLogin is the sign-in screen (unauthenticated).
	ViewLogin View = "login"
	// ViewRegister is the registration screen (unauthenticated).
	ViewRegister View = "register"
	// ViewApp is the goal selection / plan screen (authenticated).
	ViewApp View = "app"
)

// State is a snapshot of the session state machine.
type State struct {
	View View
	User *User // nil unless View is ViewApp

	// Epoch increments whenever the current user changes.
	// A plan result computed under an older epoch belongs to a session that no longer exists.
	Epoch uint64
}

// Authenticated reports whether a user is signed in.
func (s State) Authenticated() bool {
	return s.View == ViewApp && s.User != nil
}
