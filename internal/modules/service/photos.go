package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AbelardoOk/PlanTracker/internal/config"
	"github.com/AbelardoOk/PlanTracker/internal/infra/blob"
	"github.com/AbelardoOk/PlanTracker/internal/pkg/utils/mime"
)

// Upload is a photo received with a create request.
type Upload struct {
	Filename string
	Data     []byte
}

// photos stores record photos in the blob store under <prefix>/<uuid><ext>.
type photos struct {
	store blob.Store
	cfg   *config.Config
	log   *zap.Logger
}

// save validates and uploads up. An empty key with a nil error means there was no photo.
func (p photos) save(ctx context.Context, prefix string, up *Upload) (string, error) {
	if up == nil || len(up.Data) == 0 {
		return "", nil
	}
	if limit := p.cfg.S3.MaxPhotoBytes; limit > 0 && int64(len(up.Data)) > limit {
		return "", Invalid("photo", fmt.Sprintf("photo exceeds %d bytes", limit))
	}
	contentType, ext, err := mime.DetectImage(up.Data)
	if err != nil {
		return "", Invalid("photo", "upload a valid image")
	}

	key := prefix + "/" + uuid.NewString() + ext
	if _, err := p.store.Put(ctx, key, bytes.NewReader(up.Data), blob.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"original-filename": up.Filename},
	}); err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	return key, nil
}

// url returns a presigned download URL, or "" when the driver cannot presign.
func (p photos) url(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	u, err := p.store.PresignURL(ctx, key, time.Duration(p.cfg.S3.PresignExpireSec)*time.Second)
	if err != nil {
		if !errors.Is(err, blob.ErrUnsupported) {
			p.log.Warn("presign photo", zap.String("key", key), zap.Error(err))
		}
		return ""
	}
	return u
}

// remove deletes keys, logging failures; orphaned blobs never fail a request.
func (p photos) remove(ctx context.Context, keys ...string) {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if err := p.store.Delete(ctx, k); err != nil && !errors.Is(err, blob.ErrNotFound) {
			p.log.Warn("delete photo", zap.String("key", k), zap.Error(err))
		}
	}
}

// open streams a stored photo.
func (p photos) open(ctx context.Context, key string) (*Photo, error) {
	if key == "" {
		return nil, ErrPhotoNotFound
	}
	info, rc, err := p.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, fmt.Errorf("open photo: %w", err)
	}
	return &Photo{Info: info, Body: rc}, nil
}

// Photo is an open photo download. The caller closes Body.
type Photo struct {
	Info blob.Info
	Body io.ReadCloser
}
