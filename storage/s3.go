package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/NicoBaldowine/pickleplay/apperr"
	"github.com/NicoBaldowine/pickleplay/config"
)

var ErrNotConfigured = apperr.New(apperr.KindExternal, "File storage is not configured").
	WithHint("set STORAGE_ACCESS_KEY_ID, STORAGE_SECRET_ACCESS_KEY and STORAGE_BUCKET")

// s3Uploader talks to any S3-compatible store: Cloudflare R2, AWS S3, MinIO.
type s3Uploader struct {
	client        *s3.Client
	bucketName    string
	publicBaseURL string
}

func NewS3Uploader(ctx context.Context, cfg config.StorageConfig) (FileUploader, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Uploader{
		client:        client,
		bucketName:    cfg.Bucket,
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

func (u *s3Uploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	result, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucketName),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, u.classify("upload", key, err)
	}

	etag := ""
	if result.ETag != nil {
		etag = strings.Trim(*result.ETag, "\"")
	}

	return &UploadResult{
		Key:      key,
		Location: u.GetPublicURL(key),
		ETag:     etag,
	}, nil
}

func (u *s3Uploader) Delete(ctx context.Context, key string) error {
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return u.classify("delete", key, err)
	}
	return nil
}

func (u *s3Uploader) GetPublicURL(key string) string {
	return PublicURL(u.publicBaseURL, key)
}

// classify turns store errors the user can act on into apperr values.
func (u *s3Uploader) classify(op, key string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindTimeout, "Upload timed out. Please try again.", err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return apperr.Wrap(apperr.KindExternal, "Storage bucket does not exist", err).
				WithHint(fmt.Sprintf("create the %s bucket", u.bucketName))
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return apperr.Wrap(apperr.KindExternal, "Storage rejected the credentials", err).
				WithHint("check the storage access key and its bucket permissions")
		}
	}
	return fmt.Errorf("failed to %s object (key: %s): %w", op, key, err)
}

// PublicURL joins base and key. It returns "" when either is empty or base
// is not a valid URL.
func PublicURL(base, key string) string {
	if base == "" || key == "" {
		return ""
	}
	if _, err := url.Parse(base); err != nil {
		return ""
	}
	joined, err := url.JoinPath(base, strings.TrimPrefix(key, "/"))
	if err != nil {
		return ""
	}
	return joined
}
