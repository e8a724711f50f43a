package config

import (
	"github.com/m-mizutani/drivemirror/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Mirror holds pipeline tuning
type Mirror struct {
	Concurrency   int
	MaxDepth      int
	CommitMessage string
}

// Flags returns CLI flags for pipeline tuning
func (c *Mirror) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Parallel downloads and blob uploads per run",
			Value:       4,
			Destination: &c.Concurrency,
			Sources:     cli.EnvVars("DRIVEMIRROR_CONCURRENCY"),
		},
		&cli.IntFlag{
			Name:        "max-depth",
			Usage:       "Maximum folder nesting below the root",
			Value:       64,
			Destination: &c.MaxDepth,
			Sources:     cli.EnvVars("DRIVEMIRROR_MAX_DEPTH"),
		},
		&cli.StringFlag{
			Name:        "commit-message",
			Usage:       "Message of the initial commit",
			Value:       usecase.DefaultCommitMessage,
			Destination: &c.CommitMessage,
			Sources:     cli.EnvVars("DRIVEMIRROR_COMMIT_MESSAGE"),
		},
	}
}

// CollectorOptions returns the collector options for this configuration
func (c *Mirror) CollectorOptions() []usecase.CollectorOption {
	return []usecase.CollectorOption{
		usecase.WithCollectConcurrency(c.Concurrency),
		usecase.WithMaxDepth(c.MaxDepth),
	}
}

// PublisherOptions returns the publisher options for this configuration
func (c *Mirror) PublisherOptions() []usecase.PublisherOption {
	return []usecase.PublisherOption{
		usecase.WithBlobConcurrency(c.Concurrency),
		usecase.WithCommitMessage(c.CommitMessage),
	}
}
