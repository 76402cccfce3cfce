package s3io

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Upload sends the file at path to bucket/key. Files larger than partSize go
// up as a multipart upload with parts of exactly partSize bytes, which keeps
// the resulting ETag equal to the locally computed one.
func (cl *client) Upload(ctx context.Context, bucket, key, path, contentType string, partSize int64) (int64, error) {

	if partSize < manager.MinUploadPartSize {
		return 0, &ErrPartSizeTooSmall{
			size: partSize,
			min:  manager.MinUploadPartSize,
		}
	}

	// open the file for reading; *os.File is a ReaderAt so the uploader
	//   can read parts concurrently without buffering them
	source, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return 0, err
	}

	uploader := manager.NewUploader(cl.client, func(u *manager.Uploader) {
		u.PartSize = partSize
	})

	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        source,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

func (cl *client) Delete(ctx context.Context, bucket, key string) error {

	_, err := cl.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})

	return err
}
