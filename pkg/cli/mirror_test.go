package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/drivemirror/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

func TestPrintSummary(t *testing.T) {
	color.NoColor = true

	t.Run("success", func(t *testing.T) {
		var buf bytes.Buffer
		printSummary(&buf, &model.MirrorRun{
			ID:             "run-1",
			Status:         model.RunStatusSucceeded,
			State:          model.PublishStateRefDone,
			RepositoryURL:  "https://github.com/octo/mirror",
			FilesCollected: 2,
			FilesPublished: 2,
		})
		gt.String(t, buf.String()).Contains("Mirror completed")
		gt.String(t, buf.String()).Contains("2 collected, 2 published")
		gt.String(t, buf.String()).Contains("https://github.com/octo/mirror")
	})

	t.Run("partial repository", func(t *testing.T) {
		var buf bytes.Buffer
		printSummary(&buf, &model.MirrorRun{
			ID:            "run-2",
			Status:        model.RunStatusFailed,
			State:         model.PublishStateCreated,
			RepositoryURL: "https://github.com/octo/mirror",
			ErrorKind:     "remote_service_error",
		})
		gt.String(t, buf.String()).Contains("Mirror failed")
		gt.String(t, buf.String()).Contains("remote_service_error")
		gt.String(t, buf.String()).Contains("partial repository")
	})
}

func TestRun_MissingRequiredFlags(t *testing.T) {
	err := Run(context.Background(), []string{"drivemirror", "--log-format", "json", "mirror"})
	gt.Error(t, err)
}

func TestRun_InvalidLogLevel(t *testing.T) {
	err := Run(context.Background(), []string{"drivemirror", "--log-level", "loud", "mirror", "--root-id", "x", "--repo", "y"})
	gt.Error(t, err)
}
