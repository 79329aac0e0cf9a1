package service

import "errors"

// Sentinel errors shared by the domain services. Handlers map these to HTTP
// statuses in internal/api.
var (
	// ErrAlreadyExists is returned when a toggle or subscription binding
	// already exists for the pair.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound is returned for absent recipes, users, or bindings.
	ErrNotFound = errors.New("not found")

	// ErrSelfSubscription is returned when a user tries to follow themselves.
	ErrSelfSubscription = errors.New("you cannot subscribe to yourself")

	// ErrReferenceNotFound is returned when a request references an unknown
	// tag or catalog ingredient id.
	ErrReferenceNotFound = errors.New("referenced tag or ingredient does not exist")

	// ErrDuplicateEntry is returned when a request list repeats an id.
	ErrDuplicateEntry = errors.New("duplicate id in request list")

	// ErrInvalidQuantity is returned for non-positive amounts or cooking time.
	ErrInvalidQuantity = errors.New("amount and cooking time must be at least 1")

	// ErrEmptyList is returned when a recipe carries no ingredients or tags.
	ErrEmptyList = errors.New("ingredients and tags must not be empty")

	// ErrForbidden is returned when a user mutates a recipe they do not own.
	ErrForbidden = errors.New("only the author can modify this recipe")

	// ErrUserBanned is returned when a banned account presents a valid token.
	ErrUserBanned = errors.New("account is banned")

	// ErrInvalidCredentials is returned on failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
