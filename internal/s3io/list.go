package s3io

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ListObjects calls fn for every object in the bucket, following continuation
// tokens until the listing is exhausted. An error from fn stops the listing
// and is returned as is.
func (cl *client) ListObjects(ctx context.Context, bucket string, fn func(Object) error) error {

	paginator := s3.NewListObjectsV2Paginator(cl.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			if isNotFound(err) {
				return &ErrNoSuchBucket{
					bucket: bucket,
				}
			}
			return err
		}

		for _, object := range page.Contents {
			err := fn(Object{
				Key:          aws.ToString(object.Key),
				ETag:         aws.ToString(object.ETag),
				Size:         aws.ToInt64(object.Size),
				LastModified: aws.ToTime(object.LastModified),
			})
			if err != nil {
				return err
			}
		}
	}

	return nil
}
