package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/drivemirror/pkg/cli/config"
	"github.com/m-mizutani/drivemirror/pkg/domain/model"
	"github.com/m-mizutani/drivemirror/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdMirror(fileCfg *config.File) *cli.Command {
	var (
		rootID       string
		repoName     string
		driveCfg     config.Drive
		githubCfg    config.GitHub
		mirrorCfg    config.Mirror
		firestoreCfg config.Firestore
		slackCfg     config.Slack
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "root-id",
			Usage:       "Drive ID of the folder or file to mirror",
			Required:    true,
			Destination: &rootID,
		},
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Name of the repository to create",
			Required:    true,
			Destination: &repoName,
		},
	}
	flags = append(flags, driveCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, mirrorCfg.Flags()...)
	flags = append(flags, firestoreCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "mirror",
		Aliases: []string{"m"},
		Usage:   "Mirror one Drive folder into a new repository and wait for the result",
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, fileCfg.Apply(c)
		},
		Action: func(ctx context.Context, c *cli.Command) error {
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

			req := &model.MirrorRequest{
				RootID:     rootID,
				RepoName:   repoName,
				DriveCred:  driveCfg.Credential(),
				GitHubCred: githubCfg.Credential(),
			}

			run, err := mirrorUC.Start(ctx, req)
			if err != nil {
				return err
			}

			run, err = mirrorUC.Execute(ctx, run, req)
			printSummary(c.Root().Writer, run)
			if err != nil {
				return goerr.Wrap(err, "mirror run failed", goerr.V("run_id", run.ID))
			}
			return nil
		},
	}
}

// printSummary writes a human readable outcome of run to w
func printSummary(w io.Writer, run *model.MirrorRun) {
	if w == nil {
		w = os.Stdout
	}
	label := color.New(color.Bold)

	switch run.Status {
	case model.RunStatusSucceeded:
		color.New(color.FgGreen, color.Bold).Fprintln(w, "✔ Mirror completed")
	default:
		color.New(color.FgRed, color.Bold).Fprintln(w, "✘ Mirror failed")
	}

	label.Fprint(w, "  Run ID:     ")
	fmt.Fprintln(w, run.ID)
	label.Fprint(w, "  Files:      ")
	fmt.Fprintf(w, "%d collected, %d published\n", run.FilesCollected, run.FilesPublished)
	label.Fprint(w, "  State:      ")
	fmt.Fprintln(w, run.State)
	if run.RepositoryURL != "" {
		label.Fprint(w, "  Repository: ")
		fmt.Fprintln(w, run.RepositoryURL)
	}
	if run.ErrorKind != "" {
		label.Fprint(w, "  Error kind: ")
		fmt.Fprintln(w, run.ErrorKind)
	}
	if run.PartialRepository() {
		color.New(color.FgYellow).Fprintln(w, "  A partial repository was left behind and must be deleted manually")
	}
}
