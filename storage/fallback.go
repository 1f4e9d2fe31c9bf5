package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// FallbackPrefix marks keys that were written to the secondary store.
const FallbackPrefix = "fallback/"

// FallbackUploader writes to primary and retries once on secondary when the
// primary fails for any reason other than the caller giving up. Objects on
// the secondary store get FallbackPrefix so later lookups are routed there.
type FallbackUploader struct {
	primary   FileUploader
	secondary FileUploader
	logger    *slog.Logger
}

func NewFallbackUploader(primary, secondary FileUploader, logger *slog.Logger) *FallbackUploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackUploader{primary: primary, secondary: secondary, logger: logger}
}

func (f *FallbackUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	// The body is consumed by the first attempt.
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload body: %w", err)
	}

	res, err := f.primary.Upload(ctx, key, contentType, bytes.NewReader(body))
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	f.logger.WarnContext(ctx, "primary upload failed, trying fallback store", "key", key, "error", err)
	res, fbErr := f.secondary.Upload(ctx, FallbackPrefix+key, contentType, bytes.NewReader(body))
	if fbErr != nil {
		return nil, errors.Join(err, fbErr)
	}
	return res, nil
}

func (f *FallbackUploader) Delete(ctx context.Context, key string) error {
	return f.route(key).Delete(ctx, key)
}

func (f *FallbackUploader) GetPublicURL(key string) string {
	return f.route(key).GetPublicURL(key)
}

func (f *FallbackUploader) route(key string) FileUploader {
	if strings.HasPrefix(key, FallbackPrefix) {
		return f.secondary
	}
	return f.primary
}
