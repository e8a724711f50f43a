package model

// NodeKind distinguishes nodes that hold children from nodes that hold content
type NodeKind string

const (
	NodeKindContainer NodeKind = "container"
	NodeKindLeaf      NodeKind = "leaf"
)

// FolderContentType is the content type Drive reports for folders
const FolderContentType = "application/vnd.google-apps.folder"

// SourceNode represents a single item in the source tree
type SourceNode struct {
	ID          string   // Opaque stable identifier
	Name        string   // Display name, used as a path segment
	Kind        NodeKind // Container or leaf
	ContentType string   // Content type of a leaf, selects the export policy
	Parents     []string // Parent container IDs
}

// IsContainer reports whether the node can have children
func (n *SourceNode) IsContainer() bool {
	return n.Kind == NodeKindContainer
}

// KindOf derives the node kind from a source content type
func KindOf(contentType string) NodeKind {
	if contentType == FolderContentType {
		return NodeKindContainer
	}
	return NodeKindLeaf
}

// ChildPage is one page of a container listing
type ChildPage struct {
	Nodes         []*SourceNode
	NextPageToken string // Empty when no further page exists
}
