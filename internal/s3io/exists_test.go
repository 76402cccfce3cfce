package s3io_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/stretchr/testify/require"
	"testing"

	"github.com/studio1767/webotron/internal/s3io"
)

func TestValidBucketNames(t *testing.T) {
	valid := []string{
		"my-bucket.example",
		"abcd",
		"www.example.com",
		"0123",
		strings.Repeat("a", 62),
	}
	for _, name := range valid {
		require.NoError(t, s3io.ValidateBucketName(name), name)
	}
}

func TestInvalidBucketNames(t *testing.T) {
	invalid := []string{
		"",
		"ab",
		"abc",
		strings.Repeat("a", 63),
		strings.Repeat("a", 70),
		"My_Bucket",
		"UPPER",
		"-leading",
		"trailing-",
		".leading",
		"trailing.",
		"under_score",
	}
	for _, name := range invalid {
		err := s3io.ValidateBucketName(name)
		require.Error(t, err, name)

		var invalidName *s3io.ErrInvalidBucketName
		require.ErrorAs(t, err, &invalidName)
	}
}

func TestWebsiteEndpoint(t *testing.T) {
	url := s3io.WebsiteEndpoint("my-bucket.example", "eu-west-1")
	require.Equal(t, "http://my-bucket.example.s3-website.eu-west-1.amazonaws.com", url)
}

func TestPublicReadPolicy(t *testing.T) {
	expected := `{
		"Version": "2012-10-17",
		"Statement": [{
			"Sid": "PublicReadGetObject",
			"Effect": "Allow",
			"Principal": "*",
			"Action": ["s3:GetObject"],
			"Resource": ["arn:aws:s3:::my-bucket/*"]
		}]
	}`
	require.JSONEq(t, expected, s3io.PublicReadPolicy("my-bucket"))
}

func TestBucketExists(t *testing.T) {
	// basic setup to get the client
	profile := os.Getenv("WEBOTRON_TEST_PROFILE")
	bucket := os.Getenv("WEBOTRON_TEST_BUCKET")
	if profile == "" || bucket == "" {
		t.Skip("WEBOTRON_TEST_PROFILE and WEBOTRON_TEST_BUCKET not set")
	}

	ctx := context.Background()
	client, err := s3io.NewClient(ctx, profile, "")
	require.NoError(t, err)

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	require.True(t, exists)

	// generate a bucket name nobody should own
	missing := fmt.Sprintf("webotron-missing-%s", time.Now().Format("20060102150405"))

	exists, err = client.BucketExists(ctx, missing)
	require.NoError(t, err)
	require.False(t, exists)
}
