package config

import (
	"github.com/m-mizutani/drivemirror/pkg/domain/model"
	"github.com/m-mizutani/drivemirror/pkg/infra/drive"
	"github.com/urfave/cli/v3"
)

// Drive holds Google Drive configuration
type Drive struct {
	Token    string `masq:"secret"`
	Endpoint string
	PageSize int64
}

// Flags returns CLI flags for Drive configuration
func (c *Drive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "drive-token",
			Usage:       "Google Drive OAuth access token",
			Destination: &c.Token,
			Sources:     cli.EnvVars("DRIVEMIRROR_DRIVE_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "drive-endpoint",
			Usage:       "Drive API endpoint override",
			Destination: &c.Endpoint,
			Sources:     cli.EnvVars("DRIVEMIRROR_DRIVE_ENDPOINT"),
		},
		&cli.Int64Flag{
			Name:        "drive-page-size",
			Usage:       "Number of children requested per listing page",
			Value:       100,
			Destination: &c.PageSize,
			Sources:     cli.EnvVars("DRIVEMIRROR_DRIVE_PAGE_SIZE"),
		},
	}
}

// Credential returns the configured Drive token
func (c *Drive) Credential() model.Credential {
	return model.Credential{Token: c.Token}
}

// NewFactory builds the source tree factory
func (c *Drive) NewFactory() *drive.Factory {
	var opts []drive.Option
	if c.Endpoint != "" {
		opts = append(opts, drive.WithEndpoint(c.Endpoint))
	}
	if c.PageSize > 0 {
		opts = append(opts, drive.WithPageSize(c.PageSize))
	}
	return drive.NewFactory(opts...)
}
