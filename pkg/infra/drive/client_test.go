package drive_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/drivemirror/pkg/domain/interfaces"
	"github.com/m-mizutani/drivemirror/pkg/domain/model"
	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/drivemirror/pkg/infra/drive"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

type fakeDrive struct {
	mu      sync.Mutex
	auth    []string
	queries []string
}

func (f *fakeDrive) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		f.queries = append(f.queries, r.URL.Query().Get("q"))
		f.mu.Unlock()

		resp := map[string]any{
			"files": []map[string]any{
				{"id": "d1", "name": "docs", "mimeType": model.FolderContentType},
				{"id": "l1", "name": "logo.png", "mimeType": "image/png"},
			},
		}
		if r.URL.Query().Get("pageToken") == "" {
			resp["nextPageToken"] = "page-2"
		}
		writeJSON(w, resp)
	})

	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		rest := strings.TrimPrefix(r.URL.Path, "/files/")

		if strings.HasSuffix(rest, "/export") {
			id := strings.TrimSuffix(rest, "/export")
			w.Write([]byte("export:" + id + ":" + r.URL.Query().Get("mimeType")))
			return
		}

		switch rest {
		case "missing":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":404,"message":"File not found: missing."}}`))
			return
		case "rate-limited":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"code":403,"message":"User rate limit exceeded.","errors":[{"domain":"usageLimits","reason":"userRateLimitExceeded","message":"User rate limit exceeded."}]}}`))
			return
		case "shortcut":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"code":403,"message":"Only files with binary content can be downloaded.","errors":[{"domain":"global","reason":"fileNotDownloadable","message":"Only files with binary content can be downloaded."}]}}`))
			return
		case "no-permission":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"code":403,"message":"Insufficient permissions","errors":[{"domain":"global","reason":"insufficientFilePermissions","message":"Insufficient permissions"}]}}`))
			return
		case "forbidden":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"code":403,"message":"The user does not have sufficient permissions"}}`))
			return
		}

		if r.URL.Query().Get("alt") == "media" {
			w.Write([]byte{0x89, 'P', 'N', 'G'})
			return
		}

		writeJSON(w, map[string]any{
			"id":       rest,
			"name":     "proj",
			"mimeType": model.FolderContentType,
			"parents":  []string{"root"},
		})
	})

	return mux
}

func (f *fakeDrive) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T) (*fakeDrive, func(token string) (interfaces.SourceTree, error)) {
	fake := &fakeDrive{}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	factory := drive.NewFactory(
		drive.WithEndpoint(server.URL+"/"),
		drive.WithHTTPClient(server.Client()),
	)
	return fake, func(token string) (interfaces.SourceTree, error) {
		return factory.NewSourceTree(context.Background(), model.Credential{Token: token})
	}
}

func TestClient_GetMetadata(t *testing.T) {
	fake, newClient := newTestClient(t)
	client, err := newClient("drive-token")
	gt.NoError(t, err)

	node, err := client.GetMetadata(context.Background(), "root-folder")
	gt.NoError(t, err)
	gt.Value(t, node.ID).Equal("root-folder")
	gt.Value(t, node.Name).Equal("proj")
	gt.Value(t, node.Kind).Equal(model.NodeKindContainer)
	gt.A(t, node.Parents).Length(1)

	gt.A(t, fake.auth).Length(1)
	gt.Value(t, fake.auth[0]).Equal("Bearer drive-token")
}

func TestClient_ListChildren(t *testing.T) {
	fake, newClient := newTestClient(t)
	client, err := newClient("drive-token")
	gt.NoError(t, err)

	first, err := client.ListChildren(context.Background(), "root-folder", "")
	gt.NoError(t, err)
	gt.A(t, first.Nodes).Length(2)
	gt.Value(t, first.NextPageToken).Equal("page-2")
	gt.Value(t, first.Nodes[0].Kind).Equal(model.NodeKindContainer)
	gt.Value(t, first.Nodes[1].Kind).Equal(model.NodeKindLeaf)
	gt.Value(t, first.Nodes[1].ContentType).Equal("image/png")

	second, err := client.ListChildren(context.Background(), "root-folder", first.NextPageToken)
	gt.NoError(t, err)
	gt.Value(t, second.NextPageToken).Equal("")

	gt.A(t, fake.queries).Length(2)
	gt.Value(t, fake.queries[0]).Equal("'root-folder' in parents and trashed = false")
}

func TestClient_ListChildren_EscapesQuotes(t *testing.T) {
	fake, newClient := newTestClient(t)
	client, err := newClient("drive-token")
	gt.NoError(t, err)

	_, err = client.ListChildren(context.Background(), "it's", "")
	gt.NoError(t, err)
	gt.Value(t, fake.queries[0]).Equal(`'it\'s' in parents and trashed = false`)
}

func TestClient_ReadContent(t *testing.T) {
	_, newClient := newTestClient(t)
	client, err := newClient("drive-token")
	gt.NoError(t, err)

	data, err := client.ReadContent(context.Background(), "logo")
	gt.NoError(t, err)
	gt.Value(t, data).Equal([]byte{0x89, 'P', 'N', 'G'})
}

func TestClient_ExportContent(t *testing.T) {
	_, newClient := newTestClient(t)
	client, err := newClient("drive-token")
	gt.NoError(t, err)

	data, err := client.ExportContent(context.Background(), "budget", "text/csv")
	gt.NoError(t, err)
	gt.Value(t, string(data)).Equal("export:budget:text/csv")
}

func TestClient_ErrorClassification(t *testing.T) {
	_, newClient := newTestClient(t)
	client, err := newClient("drive-token")
	gt.NoError(t, err)

	t.Run("not found", func(t *testing.T) {
		_, err := client.GetMetadata(context.Background(), "missing")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagNotFound))
	})

	t.Run("permission denied", func(t *testing.T) {
		_, err := client.GetMetadata(context.Background(), "forbidden")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagAuthFailure))
	})

	t.Run("rate limited", func(t *testing.T) {
		_, err := client.GetMetadata(context.Background(), "rate-limited")
		gt.Error(t, err)
		gt.Value(t, types.ErrorKind(err)).Equal("remote_service_error")
		gt.String(t, err.Error()).Contains("rate limit")
	})

	t.Run("file not downloadable", func(t *testing.T) {
		_, err := client.ReadContent(context.Background(), "shortcut")
		gt.Error(t, err)
		gt.Value(t, types.ErrorKind(err)).Equal("remote_service_error")
	})

	t.Run("insufficient file permissions", func(t *testing.T) {
		_, err := client.ReadContent(context.Background(), "no-permission")
		gt.Error(t, err)
		gt.Value(t, types.ErrorKind(err)).Equal("auth_failure")
	})

	t.Run("download not found", func(t *testing.T) {
		_, err := client.ReadContent(context.Background(), "missing")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagNotFound))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := client.GetMetadata(ctx, "root-folder")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagCancelled))
	})
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := drive.NewClient(context.Background(), model.Credential{})
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagAuthFailure))
}
