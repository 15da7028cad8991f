package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go/logging"
	"github.com/pluur/backend/internal/config"
)

// S3Service wraps the media bucket holding album image blobs. Keys follow
// albums/<albumId>/<imageId>.jpg so an album's blobs share a prefix.
type S3Service struct {
	client *s3.Client
	cfg    *config.Config
}

func NewS3Service(cfg *config.Config) (*S3Service, error) {
	client, err := buildClient(cfg.MediaS3Endpoint, cfg.MediaS3Region, cfg.MediaS3AccessKeyID, cfg.MediaS3SecretAccessKey, cfg.MediaS3UsePathStyle)
	if err != nil {
		return nil, err
	}
	return &S3Service{client: client, cfg: cfg}, nil
}

func buildClient(endpoint, region, key, secret string, pathStyle bool) (*s3.Client, error) {
	resolver := awsconfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
		func(service, rgn string, options ...interface{}) (aws.Endpoint, error) {
			if endpoint != "" {
				return aws.Endpoint{URL: endpoint, SigningRegion: region}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		}))
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		resolver,
		awsconfig.WithLogger(logging.NewStandardLogger(nil)),
	)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = pathStyle
		if endpoint != "" {
			o.BaseEndpoint = &endpoint
		}
	})
	return client, nil
}

// ImageKey builds the storage key for an image blob.
func ImageKey(albumID, imageID string) string {
	return fmt.Sprintf("albums/%s/%s.jpg", albumID, imageID)
}

// UploadImage stores an image blob
func (s *S3Service) UploadImage(ctx context.Context, key string, body io.Reader, ctype string) error {
	uploader := manager.NewUploader(s.client)
	in := &s3.PutObjectInput{
		Bucket:      &s.cfg.MediaImagesBucket,
		Key:         &key,
		Body:        body,
		ContentType: &ctype,
		ACL:         s3types.ObjectCannedACLPublicRead,
	}
	_, err := uploader.Upload(ctx, in, func(u *manager.Uploader) { u.PartSize = 10 * 1024 * 1024 })
	return err
}

// DeleteImage removes an image blob
func (s *S3Service) DeleteImage(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.cfg.MediaImagesBucket,
		Key:    &key,
	})
	return err
}

// DownloadImage fetches an image blob into memory (for local caching)
func (s *S3Service) DownloadImage(ctx context.Context, key string) ([]byte, error) {
	downloader := manager.NewDownloader(s.client)
	buf := manager.NewWriteAtBuffer([]byte{})
	_, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: &s.cfg.MediaImagesBucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PresignImageGet returns a time-limited download URL for a blob
func (s *S3Service) PresignImageGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	presigner := s3.NewPresignClient(s.client)
	out, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.cfg.MediaImagesBucket,
		Key:    &key,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", err
	}
	return out.URL, nil
}

// PublicURL returns the stable download URL embedded in album records.
// Prefers the configured CDN/public base, falling back to the endpoint.
func (s *S3Service) PublicURL(key string) string {
	if s.cfg.MediaPublicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.MediaPublicURL, "/"), escapeKey(key))
	}
	e := s.client.Options().BaseEndpoint
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", *e, s.cfg.MediaImagesBucket, escapeKey(key))
}

// escapeKey escapes each path segment while keeping separators intact.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// ListAlbumKeys lists the blob keys under an album's prefix, used by the
// retention sweeper to catch blobs orphaned from the image list.
func (s *S3Service) ListAlbumKeys(ctx context.Context, albumID string) ([]string, error) {
	prefix := fmt.Sprintf("albums/%s/", albumID)
	keys := []string{}
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            &s.cfg.MediaImagesBucket,
			Prefix:            &prefix,
			ContinuationToken: token,
			MaxKeys:           aws.Int32(1000),
		})
		if err != nil {
			return nil, err
		}
		for _, o := range out.Contents {
			keys = append(keys, *o.Key)
		}
		if aws.ToBool(out.IsTruncated) && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	return keys, nil
}
