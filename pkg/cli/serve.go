package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/drivemirror/pkg/cli/config"
	controller "github.com/m-mizutani/drivemirror/pkg/controller/http"
	"github.com/m-mizutani/drivemirror/pkg/usecase"
	"github.com/m-mizutani/drivemirror/pkg/utils/async"
	"github.com/m-mizutani/drivemirror/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe(fileCfg *config.File) *cli.Command {
	var (
		serverCfg    config.Server
		driveCfg     config.Drive
		githubCfg    config.GitHub
		mirrorCfg    config.Mirror
		firestoreCfg config.Firestore
		slackCfg     config.Slack
	)

	flags := append(serverCfg.Flags(), driveCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, mirrorCfg.Flags()...)
	flags = append(flags, firestoreCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server accepting mirror requests",
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, fileCfg.Apply(c)
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

			githubFactory, err := githubCfg.NewFactory()
			if err != nil {
				return err
			}

			recorder, closeRecorder, err := firestoreCfg.NewRecorder(ctx)
			if err != nil {
				return err
			}
			defer closeRecorder()

			mirrorUC := usecase.NewMirror(
				usecase.NewCollector(driveCfg.NewFactory(), mirrorCfg.CollectorOptions()...),
				usecase.NewPublisher(githubFactory, mirrorCfg.PublisherOptions()...),
				recorder,
				slackCfg.MirrorOptions()...,
			)
			runner := async.NewRunner(ctx)

			server, err := controller.NewServer(
				ctx,
				mirrorUC,
				runner,
				controller.WithAddr(serverCfg.Addr),
				controller.WithDefaultCredentials(driveCfg.Credential(), githubCfg.Credential()),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			runnerCtx, cancelRunner := context.WithTimeout(context.WithoutCancel(ctx), serverCfg.ShutdownTimeout)
			defer cancelRunner()
			if err := runner.Shutdown(runnerCtx); err != nil {
				logger.Warn("Mirror runs still in flight at shutdown", slog.Any("error", err))
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
