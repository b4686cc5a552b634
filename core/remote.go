package core

import (
	"context"
	"iter"

	"pkt.systems/repostamp/schema"
)

// Remote is the subset of the hosting API the creator drives.
type Remote interface {
	// LookupOrganization returns schema.ErrAccountNotFound when no organization matches.
	LookupOrganization(ctx context.Context, name string) (schema.Destination, error)
	// LookupUser returns schema.ErrAccountNotFound when no user matches.
	// An empty name selects the authenticated user.
	LookupUser(ctx context.Context, name string) (schema.Destination, error)
	CreateRepository(ctx context.Context, dest schema.Destination, req schema.CreateRepoRequest) (schema.RepoRef, error)
	// AddCollaborator returns schema.ErrUnknownCollaborator when login does not resolve.
	AddCollaborator(ctx context.Context, repo schema.RepoRef, login string, role schema.Role) error
}

// NameGenerator produces an unbounded sequence of repository names and descriptions.
// Each call to Generate starts a new sequence from the generator's first pair.
type NameGenerator interface {
	Generate() iter.Seq[schema.NamePair]
}
