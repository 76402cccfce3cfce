package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/studio1767/webotron/internal/deploy"
	"github.com/studio1767/webotron/internal/site"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [<pathname> <bucket>]",
		Short: "Upload changed files from a directory to a bucket",
		Long: `Upload every file under pathname whose content differs from the object
with the same key in bucket. Files are compared by S3 ETag, so unchanged files
are never uploaded again regardless of their timestamps.

The pathname and bucket may be left out when the site file given with
--config names them. A relative root in a site file is taken relative to the
file.`,
		Args: syncArgs,
		RunE: runSync,
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().StringP("config", "c", "", "yaml site file with sync settings")
	cmd.Flags().BoolP("delete", "d", false, "delete objects that have no local file")
	cmd.Flags().String("chunk-size", "", "multipart chunk size, e.g. 8MiB")
	cmd.Flags().IntP("workers", "w", site.DefaultWorkers, "number of concurrent uploads")
	cmd.Flags().Bool("sniff", false, "detect the content type of files with unknown extensions")
	cmd.Flags().BoolP("dry-run", "n", false, "report what would change without changing anything")
	cmd.Flags().String("report", "", "write a json report to this file")

	return cmd
}

var errSyncArgs = errors.New("sync needs <pathname> <bucket>, or a site file naming both given with --config")

func syncArgs(cmd *cobra.Command, args []string) error {
	config, _ := cmd.Flags().GetString("config")
	if len(args) == 2 || (len(args) == 0 && config != "") {
		return nil
	}
	return errSyncArgs
}

func runSync(cmd *cobra.Command, args []string) error {
	s, err := loadSite(cmd, args)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	client, err := connect(cmd)
	if err != nil {
		return err
	}

	opts := deploy.OptionsFromSite(s)
	opts.DryRun, _ = cmd.Flags().GetBool("dry-run")

	syncer := deploy.NewSyncer(client, opts, slog.Default())
	report, err := syncer.Sync(cmd.Context(), s.Root, s.Bucket, s.Delete)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printReport(out, report)

	if path, _ := cmd.Flags().GetString("report"); path != "" {
		if err := writeReport(path, report); err != nil {
			return err
		}
	}

	url, err := client.WebsiteURL(cmd.Context(), s.Bucket)
	if err != nil {
		slog.Warn("failed to look up website url", "bucket", s.Bucket, "error", err)
	} else {
		fmt.Fprintf(out, "%s %s\n", green("website:"), cyan(url))
	}

	if n := report.Failures(); n > 0 {
		return fmt.Errorf("%d operations failed", n)
	}
	return nil
}

// loadSite reads the site file if one was given, then applies the arguments
// and any flags that were set on the command line.
func loadSite(cmd *cobra.Command, args []string) (*site.Site, error) {
	s := site.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		s, err = site.Load(path)
		if err != nil {
			return nil, err
		}
		if s.Root != "" && !filepath.IsAbs(s.Root) {
			s.Root = filepath.Join(filepath.Dir(path), s.Root)
		}
	}

	if len(args) == 2 {
		s.Root = args[0]
		s.Bucket = args[1]
	}

	flags := cmd.Flags()
	if flags.Changed("delete") {
		s.Delete, _ = flags.GetBool("delete")
	}
	if flags.Changed("workers") {
		s.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("sniff") {
		s.SniffContentType, _ = flags.GetBool("sniff")
	}
	if flags.Changed("chunk-size") {
		value, _ := flags.GetString("chunk-size")
		size, err := humanize.ParseBytes(value)
		if err != nil {
			return nil, fmt.Errorf("invalid chunk size %q: %w", value, err)
		}
		s.ChunkSize = int64(size)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func printReport(w io.Writer, report *deploy.Report) {
	if report.DryRun {
		fmt.Fprintln(w, cyan("dry run: nothing was changed"))
	}

	for _, f := range report.Files {
		switch f.Action {
		case "uploaded":
			fmt.Fprintf(w, "- %s %s (%s)\n", green("uploaded:"), f.Key, humanize.Bytes(uint64(f.Size)))
		case "planned":
			fmt.Fprintf(w, "- %s %s (%s)\n", cyan(" planned:"), f.Key, humanize.Bytes(uint64(f.Size)))
		case "failed":
			fmt.Fprintf(w, "- %s %s\n", red("  failed:"), f.Error)
		}
	}
	for _, d := range report.Removed {
		switch d.Action {
		case "deleted":
			fmt.Fprintf(w, "- %s %s\n", green(" deleted:"), d.Key)
		case "planned":
			fmt.Fprintf(w, "- %s %s\n", cyan("  delete:"), d.Key)
		case "failed":
			fmt.Fprintf(w, "- %s %s\n", red("  failed:"), d.Error)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, report.String())
	fmt.Fprintln(w)
}

func writeReport(path string, report *deploy.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := report.WriteJSON(file); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return file.Close()
}
