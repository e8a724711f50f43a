package usecase

import (
	"context"

	"github.com/m-mizutani/drivemirror/pkg/domain/interfaces"
	"github.com/m-mizutani/drivemirror/pkg/domain/model"
	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/drivemirror/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency = 4
	defaultMaxDepth    = 64
)

type collector struct {
	sourceFactory interfaces.SourceTreeFactory
	concurrency   int
	maxDepth      int
}

// CollectorOption is a functional option for the collector
type CollectorOption func(*collector)

// WithCollectConcurrency sets how many leaves are downloaded in parallel
func WithCollectConcurrency(n int) CollectorOption {
	return func(c *collector) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithMaxDepth bounds how deep containers may be nested below the root
func WithMaxDepth(depth int) CollectorOption {
	return func(c *collector) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

// NewCollector creates a new instance of CollectorUseCase
func NewCollector(sourceFactory interfaces.SourceTreeFactory, opts ...CollectorOption) interfaces.CollectorUseCase {
	c := &collector{
		sourceFactory: sourceFactory,
		concurrency:   defaultConcurrency,
		maxDepth:      defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// leaf is a content node discovered by the walk together with its final path
type leaf struct {
	path string
	node *model.SourceNode
}

// Collect walks the tree under rootID and materializes every leaf. The walk
// itself is sequential; leaf downloads run with bounded parallelism and are
// stored by walk index, so the output order is depth-first listing order.
func (uc *collector) Collect(ctx context.Context, cred model.Credential, rootID string) ([]*model.CollectedFile, error) {
	logger := logging.From(ctx)

	if rootID == "" {
		return nil, goerr.New("root ID is required", goerr.T(types.ErrTagInvalidArgument))
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	tree, err := uc.sourceFactory.NewSourceTree(ctx, cred)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create source tree client")
	}

	root, err := tree.GetMetadata(ctx, rootID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get root metadata", goerr.V("root_id", rootID))
	}

	if err := model.ValidateName(root.Name); err != nil {
		return nil, goerr.Wrap(err, "invalid root name", goerr.V("root_id", root.ID))
	}

	logger.Info("Collecting source tree",
		"root_id", root.ID,
		"root_name", root.Name,
		"kind", root.Kind,
	)

	var leaves []*leaf
	if root.IsContainer() {
		w := &walker{
			tree:      tree,
			maxDepth:  uc.maxDepth,
			ancestors: map[string]bool{},
		}
		if err := w.walk(ctx, root, root.Name, 0); err != nil {
			return nil, err
		}
		leaves = w.leaves
	} else {
		leaves = []*leaf{{path: root.Name, node: root}}
	}

	paths := make([]string, len(leaves))
	for i, l := range leaves {
		paths[i] = l.path
	}
	if err := model.ValidatePaths(paths); err != nil {
		return nil, goerr.Wrap(err, "collected paths are not publishable", goerr.V("root_id", rootID))
	}

	files, err := uc.materializeAll(ctx, tree, leaves)
	if err != nil {
		return nil, err
	}

	logger.Info("Collected source tree",
		"root_id", root.ID,
		"file_count", len(files),
	)

	return files, nil
}

func (uc *collector) materializeAll(ctx context.Context, tree interfaces.SourceTree, leaves []*leaf) ([]*model.CollectedFile, error) {
	files := make([]*model.CollectedFile, len(leaves))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.concurrency)
	for i, l := range leaves {
		eg.Go(func() error {
			if err := checkContext(egCtx); err != nil {
				return err
			}

			content, err := materialize(egCtx, tree, l.node)
			if err != nil {
				return goerr.Wrap(err, "failed to materialize file",
					goerr.V("path", l.path),
					goerr.V("id", l.node.ID),
					goerr.V("content_type", l.node.ContentType),
				)
			}

			logging.From(ctx).Debug("Materialized file",
				"path", l.path,
				"size_bytes", len(content),
			)
			files[i] = &model.CollectedFile{Path: l.path, Content: content}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return files, nil
}

// materialize exports native documents in their fixed format and downloads
// everything else unmodified
func materialize(ctx context.Context, tree interfaces.SourceTree, node *model.SourceNode) ([]byte, error) {
	if format, ok := model.ExportFormat(node.ContentType); ok {
		return tree.ExportContent(ctx, node.ID, format)
	}
	return tree.ReadContent(ctx, node.ID)
}

type walker struct {
	tree      interfaces.SourceTree
	maxDepth  int
	ancestors map[string]bool
	leaves    []*leaf
}

// walk lists container page by page, recording leaves and descending into
// sub-containers in listing order. A container that appears among its own
// ancestors is a cycle.
func (w *walker) walk(ctx context.Context, container *model.SourceNode, prefix string, depth int) error {
	if depth > w.maxDepth {
		return goerr.New("source tree exceeds maximum depth",
			goerr.V("id", container.ID),
			goerr.V("path", prefix),
			goerr.V("max_depth", w.maxDepth),
			goerr.T(types.ErrTagStructural),
		)
	}
	if w.ancestors[container.ID] {
		return goerr.New("cycle detected in source tree",
			goerr.V("id", container.ID),
			goerr.V("path", prefix),
			goerr.T(types.ErrTagStructural),
		)
	}
	w.ancestors[container.ID] = true
	defer delete(w.ancestors, container.ID)

	logging.From(ctx).Debug("Listing container", "id", container.ID, "path", prefix)

	seenTokens := map[string]bool{}
	pageToken := ""
	for {
		if err := checkContext(ctx); err != nil {
			return err
		}

		page, err := w.tree.ListChildren(ctx, container.ID, pageToken)
		if err != nil {
			return goerr.Wrap(err, "failed to list container",
				goerr.V("id", container.ID),
				goerr.V("path", prefix),
			)
		}

		for _, child := range page.Nodes {
			if err := model.ValidateName(child.Name); err != nil {
				return goerr.Wrap(err, "invalid child name",
					goerr.V("id", child.ID),
					goerr.V("parent_path", prefix),
				)
			}
			childPath := model.JoinPath(prefix, child.Name)
			if child.IsContainer() {
				if err := w.walk(ctx, child, childPath, depth+1); err != nil {
					return err
				}
				continue
			}
			w.leaves = append(w.leaves, &leaf{path: childPath, node: child})
		}

		if page.NextPageToken == "" {
			return nil
		}
		if seenTokens[page.NextPageToken] {
			return goerr.New("listing returned a repeated page token",
				goerr.V("id", container.ID),
				goerr.V("page_token", page.NextPageToken),
				goerr.T(types.ErrTagStructural),
			)
		}
		seenTokens[page.NextPageToken] = true
		pageToken = page.NextPageToken
	}
}

// checkContext converts a done context into a cancellation failure
func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return goerr.Wrap(err, "operation cancelled", goerr.T(types.ErrTagCancelled))
	}
	return nil
}
