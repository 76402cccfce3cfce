package s3io

import (
	"errors"
	"fmt"
	"net/http"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
)

const namingRulesURL = "https://docs.aws.amazon.com/AmazonS3/latest/userguide/bucketnamingrules.html"

type ErrInvalidBucketName struct {
	name string
}

func (e *ErrInvalidBucketName) Error() string {
	return fmt.Sprintf("invalid bucket name '%s': see %s", e.name, namingRulesURL)
}

type ErrNoSuchBucket struct {
	bucket string
}

func NewErrNoSuchBucket(bucket string) *ErrNoSuchBucket {
	return &ErrNoSuchBucket{
		bucket: bucket,
	}
}

func (e *ErrNoSuchBucket) Error() string {
	return fmt.Sprintf("no such bucket: %s", e.bucket)
}

type ErrPartSizeTooSmall struct {
	size int64
	min  int64
}

func (e *ErrPartSizeTooSmall) Error() string {
	return fmt.Sprintf("part size %d is below the S3 minimum of %d bytes", e.size, e.min)
}

// isNotFound reports if err is a 404 from S3 or one of the not-found error
// codes it returns for buckets.
func isNotFound(err error) bool {
	var responseError *awshttp.ResponseError
	if errors.As(err, &responseError) && responseError.ResponseError.HTTPStatusCode() == http.StatusNotFound {
		return true
	}

	var apiError smithy.APIError
	if errors.As(err, &apiError) {
		switch apiError.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return true
		}
	}

	return false
}

func hasErrorCode(err error, code string) bool {
	var apiError smithy.APIError
	return errors.As(err, &apiError) && apiError.ErrorCode() == code
}
