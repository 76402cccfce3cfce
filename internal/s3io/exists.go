package s3io

import (
	"context"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var bucketNameRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9.-]{0,61}[a-z0-9])?$`)

// ValidateBucketName checks name against the S3 naming grammar: lowercase
// letters, digits, dots and hyphens, starting and ending with a letter or
// digit, and longer than 3 but shorter than 63 characters.
func ValidateBucketName(name string) error {
	if len(name) <= 3 || len(name) >= 63 || !bucketNameRegex.MatchString(name) {
		return &ErrInvalidBucketName{
			name: name,
		}
	}
	return nil
}

func (cl *client) BucketExists(ctx context.Context, bucket string) (bool, error) {

	_, err := cl.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err == nil {
		return true, nil
	}

	if isNotFound(err) {
		return false, nil
	}

	return false, err
}
