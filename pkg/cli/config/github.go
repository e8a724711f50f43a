package config

import (
	"github.com/m-mizutani/drivemirror/pkg/domain/interfaces"
	"github.com/m-mizutani/drivemirror/pkg/domain/model"
	"github.com/m-mizutani/drivemirror/pkg/infra/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub configuration
type GitHub struct {
	Token          string `masq:"secret"`
	BaseURL        string
	Organization   string
	Private        bool
	Description    string
	AppID          int64
	InstallationID int64
	PrivateKey     string `masq:"secret"`
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token used to create repositories",
			Destination: &c.Token,
			Sources:     cli.EnvVars("DRIVEMIRROR_GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-base-url",
			Usage:       "GitHub API base URL (for GitHub Enterprise)",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("DRIVEMIRROR_GITHUB_BASE_URL"),
		},
		&cli.StringFlag{
			Name:        "github-org",
			Usage:       "Organization that owns created repositories (default: authenticated user)",
			Destination: &c.Organization,
			Sources:     cli.EnvVars("DRIVEMIRROR_GITHUB_ORG"),
		},
		&cli.BoolFlag{
			Name:        "github-private",
			Usage:       "Create private repositories",
			Destination: &c.Private,
			Sources:     cli.EnvVars("DRIVEMIRROR_GITHUB_PRIVATE"),
		},
		&cli.StringFlag{
			Name:        "github-description",
			Usage:       "Description set on created repositories",
			Value:       "Mirrored from Google Drive",
			Destination: &c.Description,
			Sources:     cli.EnvVars("DRIVEMIRROR_GITHUB_DESCRIPTION"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID, used when no token is given",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("DRIVEMIRROR_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("DRIVEMIRROR_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "GitHub App private key (PEM)",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("DRIVEMIRROR_GITHUB_PRIVATE_KEY"),
		},
	}
}

// Credential returns the token credential, empty when only App auth is configured
func (c *GitHub) Credential() model.Credential {
	return model.Credential{Token: c.Token}
}

// app returns the App credential when all of its fields are set
func (c *GitHub) app() (*github.AppCredential, error) {
	set := 0
	if c.AppID != 0 {
		set++
	}
	if c.InstallationID != 0 {
		set++
	}
	if c.PrivateKey != "" {
		set++
	}

	switch set {
	case 0:
		return nil, nil
	case 3:
		return &github.AppCredential{
			AppID:          c.AppID,
			InstallationID: c.InstallationID,
			PrivateKey:     []byte(c.PrivateKey),
		}, nil
	default:
		return nil, goerr.New("github-app-id, github-installation-id and github-private-key must be set together")
	}
}

// NewFactory builds the repository host factory for the configured target
func (c *GitHub) NewFactory() (interfaces.RepositoryHostFactory, error) {
	app, err := c.app()
	if err != nil {
		return nil, err
	}

	return github.NewFactory(c.BaseURL, app,
		github.WithOrganization(c.Organization),
		github.WithPrivate(c.Private),
		github.WithDescription(c.Description),
	), nil
}
