package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/drivemirror/pkg/domain/interfaces"
	"github.com/m-mizutani/drivemirror/pkg/domain/model"
	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/drivemirror/pkg/utils/async"
	"github.com/m-mizutani/drivemirror/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Token headers of POST /api/mirror
const (
	HeaderDriveToken  = "X-Drive-Token"
	HeaderGitHubToken = "X-GitHub-Token"
)

// MirrorRequest is the body of POST /api/mirror
type MirrorRequest struct {
	RootID   string `json:"root_id"`
	RepoName string `json:"repo_name"`
}

// MirrorAccepted is the response of POST /api/mirror
type MirrorAccepted struct {
	RunID  string          `json:"run_id"`
	Status model.RunStatus `json:"status"`
}

// MirrorHandler serves the mirror run API
type MirrorHandler struct {
	mirrorUC    interfaces.MirrorUseCase
	runner      *async.Runner
	driveCred   model.Credential
	githubCred  model.Credential
	maxBodySize int64
}

// newMirrorHandler creates a MirrorHandler from the server configuration
func newMirrorHandler(mirrorUC interfaces.MirrorUseCase, runner *async.Runner, cfg *config) *MirrorHandler {
	return &MirrorHandler{
		mirrorUC:    mirrorUC,
		runner:      runner,
		driveCred:   cfg.driveCred,
		githubCred:  cfg.githubCred,
		maxBodySize: cfg.maxBodySize,
	}
}

// Start records a new run and executes it in the background
func (h *MirrorHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.From(ctx)

	var body MirrorRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodySize)).Decode(&body); err != nil {
		writeError(ctx, w, goerr.Wrap(err, "invalid request body", goerr.T(types.ErrTagInvalidArgument)), http.StatusBadRequest)
		return
	}

	req := &model.MirrorRequest{
		RootID:     body.RootID,
		RepoName:   body.RepoName,
		DriveCred:  credentialFrom(r, HeaderDriveToken, h.driveCred),
		GitHubCred: credentialFrom(r, HeaderGitHubToken, h.githubCred),
	}
	if req.DriveCred.IsEmpty() {
		writeError(ctx, w, goerr.New("Drive token is required", goerr.T(types.ErrTagAuthFailure)), http.StatusUnauthorized)
		return
	}

	run, err := h.mirrorUC.Start(ctx, req)
	if err != nil {
		logger.Warn("Failed to start mirror run", "error", err)
		writeError(ctx, w, err, statusOf(err))
		return
	}

	h.runner.Dispatch(ctx, func(ctx context.Context) error {
		// Failures are stored on the run record
		_, _ = h.mirrorUC.Execute(ctx, run, req)
		return nil
	})

	writeJSON(ctx, w, http.StatusAccepted, &MirrorAccepted{RunID: run.ID, Status: run.Status})
}

// GetRun returns a recorded run
func (h *MirrorHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	run, err := h.mirrorUC.GetRun(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(ctx, w, err, statusOf(err))
		return
	}
	writeJSON(ctx, w, http.StatusOK, run)
}

func credentialFrom(r *http.Request, header string, fallback model.Credential) model.Credential {
	if token := r.Header.Get(header); token != "" {
		return model.Credential{Token: token}
	}
	return fallback
}
