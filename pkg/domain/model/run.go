package model

import "time"

// RunStatus is the lifecycle status of a mirror run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// MirrorRequest asks for one source tree to be mirrored into a new repository
type MirrorRequest struct {
	RootID     string
	RepoName   string
	DriveCred  Credential
	GitHubCred Credential
}

// MirrorRun records the progress and outcome of one mirror request. A failed
// run whose State reached "created" left a partial repository behind.
type MirrorRun struct {
	ID             string       `json:"id" firestore:"id"`
	RootID         string       `json:"root_id" firestore:"root_id"`
	RepoName       string       `json:"repo_name" firestore:"repo_name"`
	Status         RunStatus    `json:"status" firestore:"status"`
	State          PublishState `json:"state" firestore:"state"`
	RepositoryURL  string       `json:"repository_url,omitempty" firestore:"repository_url"`
	FilesCollected int          `json:"files_collected" firestore:"files_collected"`
	FilesPublished int          `json:"files_published" firestore:"files_published"`
	ErrorKind      string       `json:"error_kind,omitempty" firestore:"error_kind"`
	Error          string       `json:"error,omitempty" firestore:"error"`
	CreatedAt      time.Time    `json:"created_at" firestore:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" firestore:"updated_at"`
}

// PartialRepository reports whether the run failed after a repository was created
func (r *MirrorRun) PartialRepository() bool {
	return r.Status == RunStatusFailed && r.State.Reached(PublishStateCreated)
}
