package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// File holds defaults read from a TOML file. Values only apply to flags that
// were not set on the command line or through the environment.
type File struct {
	Path string

	loaded *fileValues
}

type fileValues struct {
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
	Drive struct {
		Endpoint string `toml:"endpoint"`
		PageSize int64  `toml:"page_size"`
	} `toml:"drive"`
	GitHub struct {
		BaseURL        string `toml:"base_url"`
		Organization   string `toml:"org"`
		Private        *bool  `toml:"private"`
		Description    string `toml:"description"`
		AppID          int64  `toml:"app_id"`
		InstallationID int64  `toml:"installation_id"`
	} `toml:"github"`
	Mirror struct {
		Concurrency   int    `toml:"concurrency"`
		MaxDepth      int    `toml:"max_depth"`
		CommitMessage string `toml:"commit_message"`
	} `toml:"mirror"`
	Server struct {
		Addr            string `toml:"addr"`
		ShutdownTimeout string `toml:"shutdown_timeout"`
	} `toml:"server"`
	Firestore struct {
		ProjectID  string `toml:"project_id"`
		DatabaseID string `toml:"database_id"`
		Collection string `toml:"collection"`
	} `toml:"firestore"`
	Sentry struct {
		Environment string `toml:"env"`
	} `toml:"sentry"`
}

// Flags returns the --config flag
func (c *File) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "TOML file with default settings",
			Destination: &c.Path,
			Sources:     cli.EnvVars("DRIVEMIRROR_CONFIG"),
		},
	}
}

// Load parses the file once. A missing Path is not an error.
func (c *File) Load() error {
	if c.loaded != nil || c.Path == "" {
		return nil
	}

	raw, err := os.ReadFile(c.Path)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file",
			goerr.V("path", c.Path),
			goerr.T(types.ErrTagInvalidArgument),
		)
	}

	var values fileValues
	if err := toml.Unmarshal(raw, &values); err != nil {
		return goerr.Wrap(err, "failed to parse config file",
			goerr.V("path", c.Path),
			goerr.T(types.ErrTagInvalidArgument),
		)
	}
	c.loaded = &values
	return nil
}

// Defaults returns the file values keyed by flag name. Zero values are omitted.
func (c *File) Defaults() map[string]string {
	out := map[string]string{}
	if c.loaded == nil {
		return out
	}
	v := c.loaded

	setString := func(name, value string) {
		if value != "" {
			out[name] = value
		}
	}
	setInt := func(name string, value int64) {
		if value != 0 {
			out[name] = strconv.FormatInt(value, 10)
		}
	}

	setString("log-level", v.Log.Level)
	setString("log-format", v.Log.Format)
	setString("drive-endpoint", v.Drive.Endpoint)
	setInt("drive-page-size", v.Drive.PageSize)
	setString("github-base-url", v.GitHub.BaseURL)
	setString("github-org", v.GitHub.Organization)
	if v.GitHub.Private != nil {
		out["github-private"] = strconv.FormatBool(*v.GitHub.Private)
	}
	setString("github-description", v.GitHub.Description)
	setInt("github-app-id", v.GitHub.AppID)
	setInt("github-installation-id", v.GitHub.InstallationID)
	setInt("concurrency", int64(v.Mirror.Concurrency))
	setInt("max-depth", int64(v.Mirror.MaxDepth))
	setString("commit-message", v.Mirror.CommitMessage)
	setString("addr", v.Server.Addr)
	setString("shutdown-timeout", v.Server.ShutdownTimeout)
	setString("firestore-project-id", v.Firestore.ProjectID)
	setString("firestore-database-id", v.Firestore.DatabaseID)
	setString("firestore-collection", v.Firestore.Collection)
	setString("sentry-env", v.Sentry.Environment)
	return out
}

// Apply loads the file and sets its values on the flags declared by cmd
// that are still unset
func (c *File) Apply(cmd *cli.Command) error {
	if err := c.Load(); err != nil {
		return err
	}

	defaults := c.Defaults()
	for _, flag := range cmd.Flags {
		for _, name := range flag.Names() {
			value, ok := defaults[name]
			if !ok || cmd.IsSet(name) {
				continue
			}
			if err := cmd.Set(name, value); err != nil {
				return goerr.Wrap(err, fmt.Sprintf("invalid value for %s in config file", name),
					goerr.V("path", c.Path),
					goerr.V("value", value),
					goerr.T(types.ErrTagInvalidArgument),
				)
			}
		}
	}
	return nil
}
