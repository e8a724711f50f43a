package config

import (
	"context"

	"github.com/m-mizutani/drivemirror/pkg/domain/interfaces"
	"github.com/m-mizutani/drivemirror/pkg/infra/firestore"
	"github.com/m-mizutani/drivemirror/pkg/infra/memory"
	"github.com/urfave/cli/v3"
)

// Firestore holds run record storage configuration
type Firestore struct {
	ProjectID  string
	DatabaseID string
	Collection string
}

// Flags returns CLI flags for Firestore configuration
func (c *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project of the run record database (in-memory records if empty)",
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("DRIVEMIRROR_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Destination: &c.DatabaseID,
			Sources:     cli.EnvVars("DRIVEMIRROR_FIRESTORE_DATABASE_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Collection that holds run records",
			Value:       "mirror_runs",
			Destination: &c.Collection,
			Sources:     cli.EnvVars("DRIVEMIRROR_FIRESTORE_COLLECTION"),
		},
	}
}

// NewRecorder returns a Firestore recorder when a project is configured and
// an in-memory one otherwise. The returned func releases the recorder.
func (c *Firestore) NewRecorder(ctx context.Context) (interfaces.RunRecorder, func(), error) {
	if c.ProjectID == "" {
		return memory.NewRecorder(), func() {}, nil
	}

	recorder, err := firestore.New(ctx, c.ProjectID, c.DatabaseID,
		[]firestore.Option{firestore.WithCollection(c.Collection)},
	)
	if err != nil {
		return nil, nil, err
	}
	return recorder, func() { _ = recorder.Close() }, nil
}
