package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"contestatii/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const keyPrefix = "rapoarte"

// ObjectPutter is the part of *s3.Client the archive needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Reports stores generated reports in an S3 bucket under
// rapoarte/<yyyy-mm-dd>/<id>.pdf.
type Reports struct {
	client ObjectPutter
	bucket string
	clock  func() time.Time
}

func NewReports(client ObjectPutter, bucket string) *Reports {
	return &Reports{client: client, bucket: bucket, clock: time.Now}
}

// Store uploads pdf and returns the object key.
func (r *Reports) Store(ctx context.Context, pdf []byte) (string, error) {
	key := path.Join(keyPrefix, r.clock().Format("2006-01-02"), utils.NewID()+".pdf")

	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(pdf),
		ContentType:   aws.String("application/pdf"),
		ContentLength: aws.Int64(int64(len(pdf))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report to s3://%s/%s: %w", r.bucket, key, err)
	}

	return key, nil
}
