// Package drive implements interfaces.SourceTree on top of the Google Drive v3
// API. Each client is bound to a single OAuth access token supplied by the
// caller; the package never acquires or refreshes tokens itself.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/m-mizutani/drivemirror/pkg/domain/interfaces"
	"github.com/m-mizutani/drivemirror/pkg/domain/model"
	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const defaultPageSize = 100

type config struct {
	endpoint   string
	httpClient *http.Client
	pageSize   int64
}

// Option is a functional option for the Drive client
type Option func(*config)

// WithEndpoint overrides the Drive API base URL
func WithEndpoint(endpoint string) Option {
	return func(c *config) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient sets the base HTTP client. The access token is added on top
// of its transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

// WithPageSize sets the number of children requested per listing page
func WithPageSize(size int64) Option {
	return func(c *config) {
		c.pageSize = size
	}
}

type client struct {
	svc      *drive.Service
	pageSize int64
}

// NewClient creates a Drive client that authenticates with cred
func NewClient(ctx context.Context, cred model.Credential, opts ...Option) (interfaces.SourceTree, error) {
	if cred.IsEmpty() {
		return nil, goerr.New("drive access token is required", goerr.T(types.ErrTagAuthFailure))
	}

	cfg := &config{pageSize: defaultPageSize}
	for _, opt := range opts {
		opt(cfg)
	}

	baseCtx := ctx
	if cfg.httpClient != nil {
		baseCtx = context.WithValue(ctx, oauth2.HTTPClient, cfg.httpClient)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cred.Token})
	httpClient := oauth2.NewClient(baseCtx, ts)

	svcOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if cfg.endpoint != "" {
		svcOpts = append(svcOpts, option.WithEndpoint(cfg.endpoint))
	}

	svc, err := drive.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Drive service")
	}

	return &client{svc: svc, pageSize: cfg.pageSize}, nil
}

// GetMetadata fetches id, name, content type and parents of a file or folder
func (c *client) GetMetadata(ctx context.Context, id string) (*model.SourceNode, error) {
	file, err := c.svc.Files.Get(id).
		Fields("id", "name", "mimeType", "parents").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err, "failed to get Drive file metadata", goerr.V("id", id))
	}
	return toNode(file), nil
}

// ListChildren lists one page of non-trashed children of folderID
func (c *client) ListChildren(ctx context.Context, folderID, pageToken string) (*model.ChildPage, error) {
	call := c.svc.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(folderID))).
		Fields("nextPageToken", "files(id, name, mimeType, parents)").
		PageSize(c.pageSize).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	list, err := call.Context(ctx).Do()
	if err != nil {
		return nil, classify(err, "failed to list Drive folder",
			goerr.V("folder_id", folderID),
			goerr.V("page_token", pageToken),
		)
	}

	page := &model.ChildPage{
		Nodes:         make([]*model.SourceNode, 0, len(list.Files)),
		NextPageToken: list.NextPageToken,
	}
	for _, file := range list.Files {
		page.Nodes = append(page.Nodes, toNode(file))
	}
	return page, nil
}

// ReadContent downloads the raw bytes of a binary file
func (c *client) ReadContent(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.svc.Files.Get(id).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, classify(err, "failed to download Drive file", goerr.V("id", id))
	}
	return readBody(resp, id)
}

// ExportContent exports a native Google document in format
func (c *client) ExportContent(ctx context.Context, id, format string) ([]byte, error) {
	resp, err := c.svc.Files.Export(id, format).Context(ctx).Download()
	if err != nil {
		return nil, classify(err, "failed to export Drive file",
			goerr.V("id", id),
			goerr.V("format", format),
		)
	}
	return readBody(resp, id)
}

func readBody(resp *http.Response, id string) ([]byte, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err, "failed to read Drive content", goerr.V("id", id))
	}
	return data, nil
}

func toNode(file *drive.File) *model.SourceNode {
	return &model.SourceNode{
		ID:          file.Id,
		Name:        file.Name,
		Kind:        model.KindOf(file.MimeType),
		ContentType: file.MimeType,
		Parents:     file.Parents,
	}
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// classify wraps err with the error kind derived from the Drive response
func classify(err error, msg string, opts ...goerr.Option) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return goerr.Wrap(err, msg, append(opts, goerr.T(types.ErrTagCancelled))...)
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return goerr.Wrap(err, msg, append(opts, goerr.T(types.ErrTagRemoteService))...)
	}

	opts = append(opts, goerr.V("status", apiErr.Code), goerr.V("payload", apiErr.Body))
	switch apiErr.Code {
	case http.StatusNotFound:
		return goerr.Wrap(err, msg, append(opts, goerr.T(types.ErrTagNotFound))...)
	case http.StatusUnauthorized:
		return goerr.Wrap(err, msg, append(opts, goerr.T(types.ErrTagAuthFailure))...)
	case http.StatusForbidden:
		if reason, ok := serviceReason(apiErr); ok {
			return goerr.Wrap(err, msg, append(opts, goerr.V("reason", reason), goerr.T(types.ErrTagRemoteService))...)
		}
		return goerr.Wrap(err, msg, append(opts, goerr.T(types.ErrTagAuthFailure))...)
	default:
		return goerr.Wrap(err, msg, append(opts, goerr.T(types.ErrTagRemoteService))...)
	}
}

// serviceReasons are 403 reasons that are not caused by the credential: quota
// and rate limits, and files the API refuses to serve
var serviceReasons = map[string]bool{
	"rateLimitExceeded":         true,
	"userRateLimitExceeded":     true,
	"dailyLimitExceeded":        true,
	"sharingRateLimitExceeded":  true,
	"quotaExceeded":             true,
	"fileNotDownloadable":       true,
	"cannotDownloadAbusiveFile": true,
	"exportSizeLimitExceeded":   true,
	"cannotExportFile":          true,
}

func serviceReason(apiErr *googleapi.Error) (string, bool) {
	for _, item := range apiErr.Errors {
		if serviceReasons[item.Reason] {
			return item.Reason, true
		}
	}
	return "", false
}

// Factory creates Drive clients for per-run credentials
type Factory struct {
	opts []Option
}

// NewFactory creates a Factory that applies opts to every client
func NewFactory(opts ...Option) *Factory {
	return &Factory{opts: opts}
}

// NewSourceTree creates a Drive client bound to cred
func (f *Factory) NewSourceTree(ctx context.Context, cred model.Credential) (interfaces.SourceTree, error) {
	return NewClient(ctx, cred, f.opts...)
}
