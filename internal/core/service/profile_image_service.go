package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/folio-hub/portfolio-api/internal/core/domain"
	"github.com/folio-hub/portfolio-api/internal/core/ports"
)

// ProfileImageService runs the profile image pipeline: resize, store, then
// record the public URL on the user. A failing stage stops the pipeline before
// the user record is touched.
type ProfileImageService struct {
	users   ports.UserRepository
	resizer ports.ImageResizer
	store   ports.ImageStore
	locker  ports.UploadLocker
	log     zerolog.Logger
}

// NewProfileImageService wires the pipeline. locker may be nil, in which case
// uploads are only serialised by the resizer.
func NewProfileImageService(
	users ports.UserRepository,
	resizer ports.ImageResizer,
	store ports.ImageStore,
	locker ports.UploadLocker,
	log zerolog.Logger,
) *ProfileImageService {
	return &ProfileImageService{
		users:   users,
		resizer: resizer,
		store:   store,
		locker:  locker,
		log:     log,
	}
}

func (s *ProfileImageService) Ingest(ctx context.Context, userID string, upload domain.ImageUpload) (*domain.ProfileImage, error) {
	if len(upload.Data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", domain.ErrImageDecode)
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	resized, err := s.resizer.Resize(ctx, userID, upload.Data)
	if err != nil {
		return nil, fmt.Errorf("resize profile image: %w", err)
	}

	name := userID + imageExt(resized, upload.Filename)
	if err := s.store.Save(ctx, name, resized); err != nil {
		return nil, fmt.Errorf("store profile image: %w", err)
	}

	url := s.store.URL(name)
	if _, err := updateField(ctx, s.users, userID, domain.FieldProfileImageURL, url); err != nil {
		return nil, fmt.Errorf("record profile image: %w", err)
	}

	s.log.Info().
		Str("user_id", userID).
		Int("original_bytes", len(upload.Data)).
		Int("stored_bytes", len(resized)).
		Msg("profile image updated")

	return &domain.ProfileImage{URL: url}, nil
}

func (s *ProfileImageService) lock(ctx context.Context, userID string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}

	release, acquired, err := s.locker.Acquire(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("upload lock unavailable, continuing without it")
		return func() {}, nil
	}
	if !acquired {
		return nil, domain.ErrUploadInProgress
	}

	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to release upload lock")
		}
	}, nil
}

// imageExt names the stored file after the format the decoder recognises in
// the resized bytes, falling back to the uploaded file name.
func imageExt(data []byte, filename string) string {
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		switch format {
		case "jpeg":
			return ".jpg"
		case "png", "gif", "bmp", "tiff":
			return "." + format
		}
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	return ".img"
}
