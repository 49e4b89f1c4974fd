package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func loggerTestApp() *cli.App {
	return &cli.App{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
			},
		},
		Before: setupLogger,
		Action: func(c *cli.Context) error { return nil },
	}
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			t.Run(level, func(t *testing.T) {
				err := loggerTestApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, level := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(level, func(t *testing.T) {
				err := loggerTestApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := loggerTestApp().Run([]string{"test", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		err := loggerTestApp().Run([]string{"test", "-l", "debug"})
		require.NoError(t, err)
	})
}

func TestSeedTexts(t *testing.T) {
	t.Run("defaults to built-in corpus", func(t *testing.T) {
		texts, err := seedTexts("")
		require.NoError(t, err)
		assert.NotEmpty(t, texts)
	})

	t.Run("reads lines from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.txt")
		require.NoError(t, os.WriteFile(path, []byte("one\n\ntwo\nthree\n"), 0o644))

		texts, err := seedTexts(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two", "three"}, texts, "blank lines are skipped")
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := seedTexts(filepath.Join(t.TempDir(), "absent.txt"))
		require.Error(t, err)
	})
}
