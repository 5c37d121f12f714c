// Package blob stores uploaded photos. Records keep only the object key.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/AbelardoOk/PlanTracker/internal/config"
)

type Driver string

const (
	DriverS3     Driver = "s3"
	DriverMemory Driver = "memory" // tests and local runs
)

// ErrUnsupported is returned when a driver lacks an optional capability.
var ErrUnsupported = errors.New("blob: unsupported operation")

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("blob: not found")

type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Driver() Driver
}

// Open returns the store selected by cfg.S3.Driver. An empty driver means s3.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch Driver(strings.ToLower(strings.TrimSpace(cfg.S3.Driver))) {
	case DriverS3, "":
		return NewS3(ctx, cfg)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.S3.Driver)
	}
}
