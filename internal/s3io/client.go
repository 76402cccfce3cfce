package s3io

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Object is a single entry in a bucket listing. ETag is reported exactly as
// S3 returns it, surrounding quotes included.
type Object struct {
	Key          string
	ETag         string
	Size         int64
	LastModified time.Time
}

// ObjectStore is the part of the client a sync needs.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	ListObjects(ctx context.Context, bucket string, fn func(Object) error) error

	Upload(ctx context.Context, bucket, key, path, contentType string, partSize int64) (int64, error)
	Delete(ctx context.Context, bucket, key string) error
}

type Client interface {
	ObjectStore

	Region() string
	ListBuckets(ctx context.Context) ([]string, error)
	SetupBucket(ctx context.Context, bucket string) error
	BucketRegion(ctx context.Context, bucket string) (string, error)
	WebsiteURL(ctx context.Context, bucket string) (string, error)
}

type client struct {
	client *s3.Client
	region string
}

func NewClient(ctx context.Context, profile, region string) (Client, error) {

	// load the profile, overriding the region if asked to
	opts := []func(*config.LoadOptions) error{
		config.WithSharedConfigProfile(profile),
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	cl := client{
		client: s3.NewFromConfig(cfg),
		region: cfg.Region,
	}

	return &cl, nil
}

func (cl *client) Region() string {
	return cl.region
}

func (cl *client) ListBuckets(ctx context.Context) ([]string, error) {
	var names []string

	paginator := s3.NewListBucketsPaginator(cl.client, &s3.ListBucketsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, bucket := range page.Buckets {
			names = append(names, aws.ToString(bucket.Name))
		}
	}

	return names, nil
}
