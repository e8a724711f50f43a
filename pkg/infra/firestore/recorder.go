package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/drivemirror/pkg/domain/model"
	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultCollection = "mirror_runs"

// Recorder stores mirror runs as Firestore documents keyed by run ID
type Recorder struct {
	client     *firestore.Client
	collection string
}

// Option configures the Recorder
type Option func(*Recorder)

// WithCollection overrides the collection that holds run documents
func WithCollection(name string) Option {
	return func(r *Recorder) {
		if name != "" {
			r.collection = name
		}
	}
}

// New connects to databaseID in projectID. An empty databaseID selects the
// default database.
func New(ctx context.Context, projectID, databaseID string, opts []Option, clientOpts ...option.ClientOption) (*Recorder, error) {
	if projectID == "" {
		return nil, goerr.New("firestore project ID is required", goerr.T(types.ErrTagInvalidArgument))
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, clientOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID),
		)
	}

	r := &Recorder{client: client, collection: defaultCollection}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Close releases the underlying client
func (r *Recorder) Close() error {
	return r.client.Close()
}

func (r *Recorder) PutRun(ctx context.Context, run *model.MirrorRun) error {
	if run == nil || run.ID == "" {
		return goerr.New("run ID is required", goerr.T(types.ErrTagInvalidArgument))
	}

	if _, err := r.client.Collection(r.collection).Doc(run.ID).Set(ctx, run); err != nil {
		return goerr.Wrap(err, "failed to save mirror run",
			goerr.V("run_id", run.ID),
			goerr.V("collection", r.collection),
			goerr.T(types.ErrTagRemoteService),
		)
	}
	return nil
}

func (r *Recorder) GetRun(ctx context.Context, id string) (*model.MirrorRun, error) {
	if id == "" {
		return nil, goerr.New("run ID is required", goerr.T(types.ErrTagInvalidArgument))
	}

	snap, err := r.client.Collection(r.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(err, "mirror run not found", goerr.V("run_id", id), goerr.T(types.ErrTagNotFound))
		}
		return nil, goerr.Wrap(err, "failed to get mirror run",
			goerr.V("run_id", id),
			goerr.T(types.ErrTagRemoteService),
		)
	}

	var run model.MirrorRun
	if err := snap.DataTo(&run); err != nil {
		return nil, goerr.Wrap(err, "failed to decode mirror run", goerr.V("run_id", id))
	}
	return &run, nil
}
