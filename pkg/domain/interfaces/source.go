package interfaces

import (
	"context"

	"github.com/m-mizutani/drivemirror/pkg/domain/model"
)

// SourceTree defines read operations against the hierarchical file store
type SourceTree interface {
	// GetMetadata returns the node identified by id
	GetMetadata(ctx context.Context, id string) (*model.SourceNode, error)

	// ListChildren returns one page of the container's children. An empty
	// pageToken requests the first page.
	ListChildren(ctx context.Context, folderID, pageToken string) (*model.ChildPage, error)

	// ReadContent downloads the raw bytes of a leaf
	ReadContent(ctx context.Context, id string) ([]byte, error)

	// ExportContent exports a native document leaf in the given format
	ExportContent(ctx context.Context, id, format string) ([]byte, error)
}

// SourceTreeFactory builds a SourceTree bound to one credential
type SourceTreeFactory interface {
	NewSourceTree(ctx context.Context, cred model.Credential) (SourceTree, error)
}
