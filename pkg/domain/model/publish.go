package model

import "fmt"

// PublishState is the progress of one repository construction
type PublishState string

const (
	PublishStateInitial    PublishState = "initial"
	PublishStateCreated    PublishState = "created"
	PublishStateBlobsDone  PublishState = "blobs_done"
	PublishStateTreeDone   PublishState = "tree_done"
	PublishStateCommitDone PublishState = "commit_done"
	PublishStateRefDone    PublishState = "ref_done"
)

var publishStateOrder = map[PublishState]int{
	PublishStateInitial:    0,
	PublishStateCreated:    1,
	PublishStateBlobsDone:  2,
	PublishStateTreeDone:   3,
	PublishStateCommitDone: 4,
	PublishStateRefDone:    5,
}

// Next returns the state that directly follows s. RefDone is terminal.
func (s PublishState) Next() (PublishState, bool) {
	switch s {
	case PublishStateInitial:
		return PublishStateCreated, true
	case PublishStateCreated:
		return PublishStateBlobsDone, true
	case PublishStateBlobsDone:
		return PublishStateTreeDone, true
	case PublishStateTreeDone:
		return PublishStateCommitDone, true
	case PublishStateCommitDone:
		return PublishStateRefDone, true
	default:
		return s, false
	}
}

// Reached reports whether s is at or beyond target
func (s PublishState) Reached(target PublishState) bool {
	return publishStateOrder[s] >= publishStateOrder[target]
}

// PublishStage names one remote object creation step
type PublishStage string

const (
	StageCreateRepository PublishStage = "create_repository"
	StageCreateBlobs      PublishStage = "create_blobs"
	StageCreateTree       PublishStage = "create_tree"
	StageCreateCommit     PublishStage = "create_commit"
	StageCreateRef        PublishStage = "create_ref"
)

// Repository is a repository created on the hosting service
type Repository struct {
	Owner string
	Name  string
	URL   string
}

// TreeEntry is one file entry submitted with the tree
type TreeEntry struct {
	Path string
	Mode string
	Type string
	SHA  string
}

// Git object constants for tree entries
const (
	FileModeRegular = "100644"
	ObjectTypeBlob  = "blob"
	MainBranchRef   = "refs/heads/main"
)

// PublishResult is the terminal success value of a publish
type PublishResult struct {
	RepositoryURL  string
	Owner          string
	Repository     string
	CommitSHA      string
	FilesPublished int
}

// PublishError reports the stage at which publishing stopped and how far the
// repository construction got. A State at or beyond "created" means a
// repository exists on the hosting service without the full commit graph.
type PublishError struct {
	Stage         PublishStage
	State         PublishState
	RepositoryURL string
	Err           error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish stopped at %s (state: %s): %v", e.Stage, e.State, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// PartialRepository reports whether a repository was left behind
func (e *PublishError) PartialRepository() bool {
	return e.State.Reached(PublishStateCreated)
}
