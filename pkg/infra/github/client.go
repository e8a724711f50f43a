package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/drivemirror/pkg/domain/interfaces"
	"github.com/m-mizutani/drivemirror/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"
)

const defaultAPIURL = "https://api.github.com/"

type config struct {
	org         string
	private     bool
	description string
}

// Option is a functional option for the repository host client
type Option func(*config)

// WithOrganization creates repositories under org instead of the authenticated user
func WithOrganization(org string) Option {
	return func(c *config) {
		c.org = org
	}
}

// WithPrivate creates private repositories
func WithPrivate(private bool) Option {
	return func(c *config) {
		c.private = private
	}
}

// WithDescription sets the description of created repositories
func WithDescription(description string) Option {
	return func(c *config) {
		c.description = description
	}
}

type client struct {
	githubClient *github.Client
	cfg          config
}

// NewClient wraps an authenticated GitHub client as a RepositoryHost
func NewClient(githubClient *github.Client, opts ...Option) interfaces.RepositoryHost {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &client{githubClient: githubClient, cfg: cfg}
}

// NewTokenClient creates a GitHub client authenticated with an OAuth or
// personal access token. An empty baseURL targets api.github.com.
func NewTokenClient(ctx context.Context, token, baseURL string) (*github.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	githubClient := github.NewClient(oauth2.NewClient(ctx, ts))
	if err := applyBaseURL(githubClient, baseURL); err != nil {
		return nil, err
	}
	return githubClient, nil
}

// NewAppClient creates a GitHub client authenticated as a GitHub App installation
func NewAppClient(appID, installationID int64, privateKey []byte, baseURL string) (*github.Client, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport",
			goerr.V("app_id", appID),
			goerr.V("installation_id", installationID),
		)
	}
	if baseURL != "" {
		itr.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	githubClient := github.NewClient(&http.Client{Transport: itr})
	if err := applyBaseURL(githubClient, baseURL); err != nil {
		return nil, err
	}
	return githubClient, nil
}

func applyBaseURL(githubClient *github.Client, baseURL string) error {
	if baseURL == "" || baseURL == defaultAPIURL {
		return nil
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return goerr.Wrap(err, "invalid GitHub API base URL", goerr.V("base_url", baseURL))
	}
	githubClient.BaseURL = u
	return nil
}

// CreateRepository creates an empty repository for the user or configured organization
func (c *client) CreateRepository(ctx context.Context, name string) (*model.Repository, error) {
	req := &github.Repository{
		Name:     github.Ptr(name),
		Private:  github.Ptr(c.cfg.private),
		AutoInit: github.Ptr(false),
	}
	if c.cfg.description != "" {
		req.Description = github.Ptr(c.cfg.description)
	}

	repo, _, err := c.githubClient.Repositories.Create(ctx, c.cfg.org, req)
	if err != nil {
		return nil, classify(err, "failed to create repository",
			goerr.V("name", name),
			goerr.V("org", c.cfg.org),
		)
	}

	return &model.Repository{
		Owner: repo.GetOwner().GetLogin(),
		Name:  repo.GetName(),
		URL:   repo.GetHTMLURL(),
	}, nil
}

// CreateBlob stores base64 encoded content as a blob
func (c *client) CreateBlob(ctx context.Context, owner, repo, base64Content string) (string, error) {
	blob, _, err := c.githubClient.Git.CreateBlob(ctx, owner, repo, github.Blob{
		Content:  github.Ptr(base64Content),
		Encoding: github.Ptr("base64"),
	})
	if err != nil {
		return "", classify(err, "failed to create blob",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
		)
	}
	return blob.GetSHA(), nil
}

// CreateTree creates a root tree from blob entries
func (c *client) CreateTree(ctx context.Context, owner, repo string, entries []*model.TreeEntry) (string, error) {
	treeEntries := make([]*github.TreeEntry, 0, len(entries))
	for _, entry := range entries {
		treeEntries = append(treeEntries, &github.TreeEntry{
			Path: github.Ptr(entry.Path),
			Mode: github.Ptr(entry.Mode),
			Type: github.Ptr(entry.Type),
			SHA:  github.Ptr(entry.SHA),
		})
	}

	tree, _, err := c.githubClient.Git.CreateTree(ctx, owner, repo, "", treeEntries)
	if err != nil {
		return "", classify(err, "failed to create tree",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("entries", len(entries)),
		)
	}
	return tree.GetSHA(), nil
}

// CreateCommit creates a root commit pointing at treeSHA
func (c *client) CreateCommit(ctx context.Context, owner, repo, message, treeSHA string) (string, error) {
	commit, _, err := c.githubClient.Git.CreateCommit(ctx, owner, repo, github.Commit{
		Message: github.Ptr(message),
		Tree:    &github.Tree{SHA: github.Ptr(treeSHA)},
	}, nil)
	if err != nil {
		return "", classify(err, "failed to create commit",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("tree_sha", treeSHA),
		)
	}
	return commit.GetSHA(), nil
}

// CreateRef creates ref pointing at commitSHA
func (c *client) CreateRef(ctx context.Context, owner, repo, ref, commitSHA string) error {
	_, _, err := c.githubClient.Git.CreateRef(ctx, owner, repo, github.CreateRef{
		Ref: ref,
		SHA: commitSHA,
	})
	if err != nil {
		return classify(err, "failed to create ref",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("ref", ref),
			goerr.V("commit_sha", commitSHA),
		)
	}
	return nil
}
