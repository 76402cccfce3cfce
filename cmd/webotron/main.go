package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/studio1767/webotron/internal/s3io"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

// replaced in tests
var newClient = s3io.NewClient

var errNoProfile = errors.New("no aws profile given: use --profile or set AWS_PROFILE")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "webotron",
		Short: "Deploy static websites to S3",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			setupLogging(verbose)
		},
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("profile", "p", "", "aws profile for credentials and configuration")
	rootCmd.PersistentFlags().StringP("region", "r", "", "aws region, overriding the profile")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose reporting")

	rootCmd.AddCommand(newListBucketsCmd())
	rootCmd.AddCommand(newListBucketObjectsCmd())
	rootCmd.AddCommand(newSetupBucketCmd())
	rootCmd.AddCommand(newSyncCmd())

	return rootCmd
}

func main() {
	// cancel on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", red("Error:"), err)
		os.Exit(1)
	}
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

// resolveProfile takes the flag, then AWS_PROFILE. The default profile is
// never used implicitly.
func resolveProfile(cmd *cobra.Command) (string, error) {
	profile, _ := cmd.Flags().GetString("profile")
	if profile == "" {
		profile = os.Getenv("AWS_PROFILE")
	}
	if profile == "" {
		return "", errNoProfile
	}
	return profile, nil
}

func connect(cmd *cobra.Command) (s3io.Client, error) {
	profile, err := resolveProfile(cmd)
	if err != nil {
		return nil, err
	}
	region, _ := cmd.Flags().GetString("region")

	client, err := newClient(cmd.Context(), profile, region)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws profile %s: %w", profile, err)
	}

	slog.Debug("connected", "profile", profile, "region", client.Region())
	return client, nil
}
