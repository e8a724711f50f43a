package github

import (
	"context"

	"github.com/m-mizutani/drivemirror/pkg/domain/interfaces"
	"github.com/m-mizutani/drivemirror/pkg/domain/model"
	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// AppCredential identifies a GitHub App installation. It is used when a run
// carries no user token, e.g. for organization-owned mirrors.
type AppCredential struct {
	AppID          int64
	InstallationID int64
	PrivateKey     []byte `masq:"secret"`
}

// Factory creates RepositoryHost clients for per-run credentials
type Factory struct {
	baseURL string
	app     *AppCredential
	opts    []Option
}

// NewFactory creates a Factory. app may be nil when only user tokens are used.
func NewFactory(baseURL string, app *AppCredential, opts ...Option) *Factory {
	return &Factory{baseURL: baseURL, app: app, opts: opts}
}

// NewRepositoryHost creates a client bound to cred, falling back to the App
// installation when cred is empty.
func (f *Factory) NewRepositoryHost(ctx context.Context, cred model.Credential) (interfaces.RepositoryHost, error) {
	if !cred.IsEmpty() {
		githubClient, err := NewTokenClient(ctx, cred.Token, f.baseURL)
		if err != nil {
			return nil, err
		}
		return NewClient(githubClient, f.opts...), nil
	}

	if f.app == nil {
		return nil, goerr.New("GitHub token is required", goerr.T(types.ErrTagAuthFailure))
	}

	githubClient, err := NewAppClient(f.app.AppID, f.app.InstallationID, f.app.PrivateKey, f.baseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App client", goerr.T(types.ErrTagAuthFailure))
	}
	return NewClient(githubClient, f.opts...), nil
}
