package schema

// Slot names a stored credential.
type Slot string

// DefaultSlot is used when no slot is given.
const DefaultSlot Slot = "Default"

// Role is a permission level granted to a collaborator.
type Role string

// Supported roles.
const (
	RoleAdmin    Role = "admin"
	RoleMaintain Role = "maintain"
	RoleRead     Role = "read"
	RoleTriage   Role = "triage"
	RoleWrite    Role = "write"
)

// DefaultRole is applied when the caller does not pick one.
const DefaultRole = RoleMaintain

// Roles lists every valid role in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleMaintain, RoleRead, RoleTriage, RoleWrite}
}

// NamePair is one generated repository name and description.
type NamePair struct {
	Name        string
	Description string
}

// LogEntry is a single record in the run log.
type LogEntry struct {
	Category string
	Message  string
}

// Log categories.
const (
	CategoryCredential   = "credential"
	CategoryDestination  = "destination"
	CategoryCollaborator = "collaborator"
)

// DestinationKind distinguishes organizations from user accounts.
type DestinationKind string

// Destination kinds.
const (
	DestinationOrganization DestinationKind = "organization"
	DestinationUser         DestinationKind = "user"
)

// Destination is a resolved account that will own the created repositories.
type Destination struct {
	Login string
	Kind  DestinationKind
	// Authenticated is set when the destination is the token owner.
	Authenticated bool
}

// RepoRef identifies a repository on the remote.
type RepoRef struct {
	Owner    string
	Name     string
	FullName string
	URL      string
}

// CreateRepoRequest carries the fields of a single repository creation call.
type CreateRepoRequest struct {
	Name        string
	Description string
	Private     bool
	Template    string
	AutoInit    bool
}
