package minioctrl

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mediasearch/src/core/search"
	"mediasearch/src/log"
)

// DefaultURLExpiry is how long signed preview URLs stay valid.
const DefaultURLExpiry = 15 * time.Minute

// MinioService signs time-limited GET URLs for preview objects. Search never
// writes to object storage.
type MinioService struct {
	client *minio.Client
	expiry time.Duration
}

func NewMinioService(endpoint, accessKeyID, secretAccessKey string, useSSL bool, expiry time.Duration) (*MinioService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %v", err)
	}

	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}

	return &MinioService{
		client: client,
		expiry: expiry,
	}, nil
}

// SignBatch signs every ref in one pass, returning one URL per ref
// positionally. Zero refs and per-object failures yield an empty string;
// only the caller decides whether that degrades the response.
func (s *MinioService) SignBatch(ctx context.Context, refs []search.ObjectRef) ([]string, error) {
	urls := make([]string, len(refs))
	for i, ref := range refs {
		if ref.Bucket == "" || ref.Key == "" {
			continue
		}
		signed, err := s.client.PresignedGetObject(ctx, ref.Bucket, ref.Key, s.expiry, url.Values{})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Error(err, "failed to presign object", "bucket", ref.Bucket, "key", ref.Key)
			continue
		}
		urls[i] = signed.String()
	}
	return urls, nil
}
