package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/port/outbound"
	"github.com/google/uuid"
)

// objectPutter is the subset of *s3.Client used by the archive.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// webhookArchive implements outbound.WebhookArchivePort.
// Objects are laid out as <prefix>/<method>/<yyyy>/<mm>/<dd>/<unix-nano>-<uuid>.json.
type webhookArchive struct {
	client objectPutter
	bucket string
	prefix string
	now    func() time.Time
}

// NewWebhookArchive creates an archive writing raw webhook bodies to bucket.
func NewWebhookArchive(client *s3.Client, bucket, prefix string) outbound.WebhookArchivePort {
	return newWebhookArchive(client, bucket, prefix)
}

func newWebhookArchive(client objectPutter, bucket, prefix string) *webhookArchive {
	if prefix == "" {
		prefix = "webhooks"
	}
	return &webhookArchive{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

func (a *webhookArchive) Archive(ctx context.Context, method model.PaymentMethod, payload []byte) (string, error) {
	now := a.now().UTC()
	key := path.Join(
		a.prefix,
		method.String(),
		now.Format("2006/01/02"),
		fmt.Sprintf("%d-%s.json", now.UnixNano(), uuid.NewString()),
	)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
		ContentType:   aws.String("application/json"),
		Metadata: map[string]string{
			"payment-method": method.String(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("put webhook object: %w", err)
	}
	return key, nil
}

// Compile-time check
var _ outbound.WebhookArchivePort = (*webhookArchive)(nil)
