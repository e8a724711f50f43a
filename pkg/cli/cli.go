package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/drivemirror/pkg/cli/config"
	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/drivemirror/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var (
		loggerCfg config.Logger
		sentryCfg config.Sentry
		fileCfg   config.File
		logger    *slog.Logger
	)

	flags := append(loggerCfg.Flags(), sentryCfg.Flags()...)
	flags = append(flags, fileCfg.Flags()...)

	app := &cli.Command{
		Name:    "drivemirror",
		Usage:   "Mirror a Google Drive folder into a new GitHub repository",
		Version: types.Version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := fileCfg.Apply(c); err != nil {
				return nil, err
			}

			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}
			if err := sentryCfg.Configure(); err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = logging.With(ctx, logger)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdMirror(&fileCfg),
			cmdServe(&fileCfg),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed",
			slog.Any("error", err),
			slog.String("error_kind", types.ErrorKind(err)),
		)
		sentryCfg.Report(err)
		return err
	}

	return nil
}
