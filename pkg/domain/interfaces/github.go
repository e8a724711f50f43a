package interfaces

import (
	"context"

	"github.com/m-mizutani/drivemirror/pkg/domain/model"
)

// RepositoryHost defines the repository and Git object creation operations of
// the hosting service. None of the calls are transactional across each other.
type RepositoryHost interface {
	// CreateRepository creates a new, empty repository owned by the authenticated identity
	CreateRepository(ctx context.Context, name string) (*model.Repository, error)

	// CreateBlob stores base64 encoded content and returns the blob SHA
	CreateBlob(ctx context.Context, owner, repo, base64Content string) (string, error)

	// CreateTree creates a tree from blob entries and returns the tree SHA
	CreateTree(ctx context.Context, owner, repo string, entries []*model.TreeEntry) (string, error)

	// CreateCommit creates a parentless commit for the tree and returns the commit SHA
	CreateCommit(ctx context.Context, owner, repo, message, treeSHA string) (string, error)

	// CreateRef points ref (e.g. refs/heads/main) at the commit
	CreateRef(ctx context.Context, owner, repo, ref, commitSHA string) error
}

// RepositoryHostFactory builds a RepositoryHost bound to one credential
type RepositoryHostFactory interface {
	NewRepositoryHost(ctx context.Context, cred model.Credential) (RepositoryHost, error)
}
