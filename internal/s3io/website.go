package s3io

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const indexDocument = "index.html"

const publicReadPolicy = `{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Sid": "PublicReadGetObject",
      "Effect": "Allow",
      "Principal": "*",
      "Action": ["s3:GetObject"],
      "Resource": ["arn:aws:s3:::%s/*"]
    }
  ]
}`

// PublicReadPolicy returns the bucket policy that lets anyone read objects.
func PublicReadPolicy(bucket string) string {
	return fmt.Sprintf(publicReadPolicy, bucket)
}

// WebsiteEndpoint returns the static website URL of bucket in region.
func WebsiteEndpoint(bucket, region string) string {
	return fmt.Sprintf("http://%s.s3-website.%s.amazonaws.com", bucket, region)
}

// SetupBucket creates the bucket, or reuses it if we already own it, and
// configures it to serve a public static website.
func (cl *client) SetupBucket(ctx context.Context, bucket string) error {
	if err := ValidateBucketName(bucket); err != nil {
		return err
	}

	// us-east-1 is the default and rejects an explicit location constraint
	input := s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}
	if cl.region != "" && cl.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(cl.region),
		}
	}

	_, err := cl.client.CreateBucket(ctx, &input)
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if !errors.As(err, &owned) && !hasErrorCode(err, "BucketAlreadyOwnedByYou") {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	// new buckets block public policies by default
	_, err = cl.client.DeletePublicAccessBlock(ctx, &s3.DeletePublicAccessBlockInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return fmt.Errorf("remove public access block on %s: %w", bucket, err)
	}

	_, err = cl.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(bucket),
		Policy: aws.String(PublicReadPolicy(bucket)),
	})
	if err != nil {
		return fmt.Errorf("set policy on %s: %w", bucket, err)
	}

	_, err = cl.client.PutBucketWebsite(ctx, &s3.PutBucketWebsiteInput{
		Bucket: aws.String(bucket),
		WebsiteConfiguration: &types.WebsiteConfiguration{
			ErrorDocument: &types.ErrorDocument{
				Key: aws.String(indexDocument),
			},
			IndexDocument: &types.IndexDocument{
				Suffix: aws.String(indexDocument),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("configure website on %s: %w", bucket, err)
	}

	return nil
}

func (cl *client) BucketRegion(ctx context.Context, bucket string) (string, error) {

	resp, err := cl.client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		if isNotFound(err) {
			return "", &ErrNoSuchBucket{
				bucket: bucket,
			}
		}
		return "", err
	}

	// an empty constraint means the bucket lives in us-east-1
	region := string(resp.LocationConstraint)
	if region == "" {
		region = "us-east-1"
	}

	return region, nil
}

func (cl *client) WebsiteURL(ctx context.Context, bucket string) (string, error) {
	region, err := cl.BucketRegion(ctx, bucket)
	if err != nil {
		return "", err
	}
	return WebsiteEndpoint(bucket, region), nil
}
