package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/drivemirror/pkg/cli/config"
	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/gt"
	"github.com/urfave/cli/v3"
)

const sampleConfig = `
[drive]
endpoint = "http://localhost:9000/drive/v3/"
page_size = 50

[github]
org = "mirrors"
private = true

[mirror]
concurrency = 8
max_depth = 10
commit_message = "Import"
`

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "drivemirror.toml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestFile_Defaults(t *testing.T) {
	file := &config.File{Path: writeConfig(t, sampleConfig)}
	gt.NoError(t, file.Load())

	defaults := file.Defaults()
	gt.Value(t, defaults["drive-endpoint"]).Equal("http://localhost:9000/drive/v3/")
	gt.Value(t, defaults["drive-page-size"]).Equal("50")
	gt.Value(t, defaults["github-org"]).Equal("mirrors")
	gt.Value(t, defaults["github-private"]).Equal("true")
	gt.Value(t, defaults["concurrency"]).Equal("8")
	gt.Value(t, defaults["commit-message"]).Equal("Import")

	_, ok := defaults["addr"]
	gt.False(t, ok)
}

func TestFile_LoadErrors(t *testing.T) {
	t.Run("no path", func(t *testing.T) {
		file := &config.File{}
		gt.NoError(t, file.Load())
		gt.Value(t, len(file.Defaults())).Equal(0)
	})

	t.Run("missing file", func(t *testing.T) {
		file := &config.File{Path: filepath.Join(t.TempDir(), "nope.toml")}
		err := file.Load()
		gt.Error(t, err)
		gt.Value(t, types.ErrorKind(err)).Equal("invalid_argument")
	})

	t.Run("broken toml", func(t *testing.T) {
		file := &config.File{Path: writeConfig(t, "[mirror\nconcurrency = ")}
		gt.Error(t, file.Load())
	})
}

func TestFile_ApplyFlagsWin(t *testing.T) {
	var (
		file      config.File
		mirrorCfg config.Mirror
		driveCfg  config.Drive
	)
	path := writeConfig(t, sampleConfig)

	cmd := &cli.Command{
		Name:  "test",
		Flags: append(mirrorCfg.Flags(), driveCfg.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			file.Path = path
			return ctx, file.Apply(c)
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return nil
		},
	}

	gt.NoError(t, cmd.Run(context.Background(), []string{"test", "--concurrency", "2"}))
	gt.Value(t, mirrorCfg.Concurrency).Equal(2)
	gt.Value(t, mirrorCfg.MaxDepth).Equal(10)
	gt.Value(t, mirrorCfg.CommitMessage).Equal("Import")
	gt.Value(t, driveCfg.PageSize).Equal(int64(50))
	gt.Value(t, driveCfg.Endpoint).Equal("http://localhost:9000/drive/v3/")
}
