package main

import (
	"fmt"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/studio1767/webotron/internal/s3io"
)

func newListBucketsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-buckets",
		Short: "List all buckets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect(cmd)
			if err != nil {
				return err
			}

			buckets, err := client.ListBuckets(cmd.Context())
			if err != nil {
				return err
			}

			for _, bucket := range buckets {
				fmt.Fprintln(cmd.OutOrStdout(), bucket)
			}
			return nil
		},
	}
}

func newListBucketObjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-bucket-objects <bucket>",
		Short: "List the objects in a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket := args[0]
			if err := s3io.ValidateBucketName(bucket); err != nil {
				return err
			}

			client, err := connect(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var count, total int64
			err = client.ListObjects(cmd.Context(), bucket, func(obj s3io.Object) error {
				count++
				total += obj.Size
				_, err := fmt.Fprintf(out, "%-60s %10s  %-16s %s\n",
					obj.Key, humanize.Bytes(uint64(obj.Size)), humanize.Time(obj.LastModified), obj.ETag)
				return err
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s objects, %s\n", humanize.Comma(count), humanize.Bytes(uint64(total)))
			return nil
		},
	}
}

func newSetupBucketCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup-bucket <bucket>",
		Short: "Create a bucket and configure it for public website hosting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket := args[0]
			if err := s3io.ValidateBucketName(bucket); err != nil {
				return err
			}

			client, err := connect(cmd)
			if err != nil {
				return err
			}

			if err := client.SetupBucket(cmd.Context(), bucket); err != nil {
				return err
			}

			url, err := client.WebsiteURL(cmd.Context(), bucket)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("website:"), cyan(url))
			return nil
		},
	}
}
