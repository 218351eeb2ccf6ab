package s3infra

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kurtniculi26/RentAll/internal/config"
	"github.com/kurtniculi26/RentAll/internal/domain"
	"github.com/kurtniculi26/RentAll/internal/infrastructure/awsconf"
)

// maxImageBytes caps decoded uploads (ID photos, profile pictures).
const maxImageBytes = 8 << 20

type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store wraps S3 uploads for registration images.
type Store struct {
	client putter
	bucket string
	region string
	base   string // endpoint override for LocalStack; empty for AWS
}

// NewClient creates an S3 client. When cfg.AWSEndpointURL is set (LocalStack),
// it overrides the endpoint and enables path-style addressing.
func NewClient(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awsconf.Load(ctx, cfg, cfg.AWSRegion)
	if err != nil {
		return nil, err
	}
	var opts []func(*s3.Options)
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, opts...), nil
}

func NewStore(client putter, bucket, region, endpoint string) *Store {
	return &Store{client: client, bucket: bucket, region: region, base: strings.TrimRight(endpoint, "/")}
}

// Upload streams r to key and returns the object URL.
func (s *Store) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}
	return s.objectURL(key), nil
}

// UploadImage decodes a base64 image, optionally wrapped in a data: URI,
// and stores it under key plus an extension matching its sniffed type.
// Undecodable or non-image payloads wrap domain.ErrValidation.
func (s *Store) UploadImage(ctx context.Context, key, b64 string) (string, error) {
	if i := strings.Index(b64, ","); strings.HasPrefix(b64, "data:") && i > 0 {
		b64 = b64[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", domain.ErrValidation)
	}
	if len(data) > maxImageBytes {
		return "", fmt.Errorf("image exceeds %d bytes: %w", maxImageBytes, domain.ErrValidation)
	}
	contentType := http.DetectContentType(data)
	ext, ok := imageExt[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported image type %s: %w", contentType, domain.ErrValidation)
	}
	return s.Upload(ctx, key+ext, bytes.NewReader(data), contentType)
}

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

func (s *Store) objectURL(key string) string {
	if s.base != "" {
		return fmt.Sprintf("%s/%s/%s", s.base, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
