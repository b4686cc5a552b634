package schema

// RunState tracks the progress of a single run.
type RunState string

// Run states. DONE is the only successful terminal state.
const (
	StateInit                   RunState = "INIT"
	StateDestinationResolved    RunState = "DESTINATION_RESOLVED"
	StateCreatingRepo           RunState = "CREATING_REPO"
	StateAssigningCollaborators RunState = "ASSIGNING_COLLABORATORS"
	StateDone                   RunState = "DONE"
	StateAborted                RunState = "ABORTED"
)

// Terminal reports whether no further transitions can follow.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateAborted
}

// RepoResult describes one created repository and its collaborator outcome.
type RepoResult struct {
	Index int
	Repo  RepoRef
	// Added lists logins that were invited.
	Added []string
	// Unknown lists logins the remote did not recognise.
	Unknown []string
}

// RunReport summarizes a run. Repos holds every repository created, including
// those created before an abort.
type RunReport struct {
	RunID       string
	State       RunState
	Destination Destination
	Repos       []RepoResult
}
