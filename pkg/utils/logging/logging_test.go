package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/drivemirror/pkg/utils/logging"
	"github.com/m-mizutani/gt"
)

func TestFrom(t *testing.T) {
	t.Run("returns default logger without value", func(t *testing.T) {
		gt.Value(t, logging.From(context.Background())).Equal(slog.Default())
	})

	t.Run("returns logger set by With", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		ctx := logging.With(context.Background(), logger)
		gt.Value(t, logging.From(ctx)).Equal(logger)
	})

	t.Run("nil logger keeps previous value", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		ctx := logging.With(context.Background(), logger)
		ctx = logging.With(ctx, nil)
		gt.Value(t, logging.From(ctx)).Equal(logger)
	})
}

func TestWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := logging.With(context.Background(), logger)
	ctx = logging.WithAttrs(ctx, "run_id", "r-1")

	logging.From(ctx).Info("collecting")
	gt.String(t, buf.String()).Contains("run_id=r-1")
	gt.String(t, buf.String()).Contains("collecting")
}
