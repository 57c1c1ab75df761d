package ports

import (
	"context"

	"github.com/folio-hub/portfolio-api/internal/core/domain"
)

// ImageResizer downsamples an encoded image, keeping its format and metadata.
// key groups jobs that must not run concurrently (the owning user id).
type ImageResizer interface {
	Resize(ctx context.Context, key string, src []byte) ([]byte, error)
}

// ImageStore persists image bytes under a stable name and resolves the public
// URL for it.
type ImageStore interface {
	Save(ctx context.Context, name string, data []byte) error
	URL(name string) string
}

// UploadLocker serialises uploads for the same user across processes.
// Acquire returns acquired=false when another holder owns the lock.
type UploadLocker interface {
	Acquire(ctx context.Context, userID string) (release func(context.Context) error, acquired bool, err error)
}

type ProfileImageService interface {
	Ingest(ctx context.Context, userID string, upload domain.ImageUpload) (*domain.ProfileImage, error)
}
