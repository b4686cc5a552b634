package schema

import "errors"

var (
	// ErrCredentialUnavailable indicates the credential backend could not be read or written.
	ErrCredentialUnavailable = errors.New("credential unavailable")
	// ErrReadOnlyBackend indicates a credential backend that cannot store tokens.
	ErrReadOnlyBackend = errors.New("credential backend is read-only")
	// ErrDestinationNotFound indicates neither an organization nor a user matched.
	ErrDestinationNotFound = errors.New("destination not found")
	// ErrAccountNotFound indicates a single organization or user lookup missed.
	ErrAccountNotFound = errors.New("account not found")
	// ErrUnknownCollaborator indicates a collaborator login that does not resolve.
	ErrUnknownCollaborator = errors.New("unknown collaborator")
	// ErrRemoteCall indicates any other remote API failure.
	ErrRemoteCall = errors.New("remote call failed")
	// ErrInvalidRole indicates a role outside the supported set.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidCount indicates a repository count outside the allowed range.
	ErrInvalidCount = errors.New("invalid repository count")
	// ErrInvalidSlot indicates a malformed credential slot name.
	ErrInvalidSlot = errors.New("invalid credential slot")
	// ErrInvalidRepoName indicates a generated name the remote would reject.
	ErrInvalidRepoName = errors.New("invalid repository name")
	// ErrInvalidGenerator indicates an unknown or misconfigured name generator.
	ErrInvalidGenerator = errors.New("invalid name generator")
	// ErrInvalidSource indicates an unknown or misconfigured collaborator source.
	ErrInvalidSource = errors.New("invalid collaborator source")
	// ErrCollaboratorCount indicates collaborator lists that do not match the repository count.
	ErrCollaboratorCount = errors.New("collaborator lists do not match repository count")
)
