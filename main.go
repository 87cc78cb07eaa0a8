package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	GitCommit string
	GitTag    string
	BuildTime string
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "demo-library",
		Short:         "In-memory library lending service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the library lending api server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	var output string
	var verbose bool
	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a sample lending session and export its statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.NewNop()
			if verbose {
				var err error
				if logger, err = zap.NewDevelopment(); err != nil {
					return err
				}
				defer logger.Sync() //nolint:errcheck
			}
			if err := RunDemo(context.Background(), logger, NewClock(false), cmd.OutOrStdout(), output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "statistics exported to %s\n", output)
			return nil
		},
	}
	demoCmd.Flags().StringVarP(&output, "output", "o", "library_stats.json", "file to export the statistics to")
	demoCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the library narration logs")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build details",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tag: %s\ncommit: %s\nbuilt: %s\n", GitTag, GitCommit, BuildTime)
		},
	}

	root.AddCommand(serveCmd, demoCmd, versionCmd)
	return root
}

func serve() error {
	app, err := NewApp()
	if err != nil {
		return fmt.Errorf("application failed to initialized: %w", err)
	}
	if err = app.Run(); err != nil {
		return fmt.Errorf("application exited. check logs for more details: %w", err)
	}
	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
