// Package usecase はdietplanフィーチャーのビジネスロジックを実装します。
package usecase

import "errors"

// Local validation errors. These are returned before any remote call is made.
var (
	// ErrNotAuthenticated is returned when no user is signed in.
	ErrNotAuthenticated = errors.New("please log in to get a diet plan")

	// ErrNoGoalSelected is returned when the request carries no wellness goal.
	ErrNoGoalSelected = errors.New("please select a wellness goal")

	// ErrMissingConditionDetails is returned for ManageCondition without condition details.
	ErrMissingConditionDetails = errors.New("please specify your health condition")

	// ErrRequestInFlight is returned while another plan request is still running.
	ErrRequestInFlight = errors.New("a diet plan request is already in progress")
)

// Remote and transport errors.
var (
	// ErrMissingAPIKey is returned when no generator credentials are configured.
	ErrMissingAPIKey = errors.New("API key is not configured")

	// ErrInvalidAPIKey is returned when the generation service rejects the credentials.
	ErrInvalidAPIKey = errors.New("the API key is invalid")

	// ErrUpstreamRequestFailed wraps any other failure of the remote call.
	ErrUpstreamRequestFailed = errors.New("failed to fetch diet plan from AI")
)

// Contract violations by the generation service.
var (
	// ErrInvalidResponseFormat is returned when the response is not a valid plan document.
	ErrInvalidResponseFormat = errors.New("AI returned an invalid data format")

	// ErrIncompleteResponse is returned when required plan fields are missing.
	ErrIncompleteResponse = errors.New("AI returned data in an unexpected format")
)
