package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	apperrors "openmart/internal/errors"
)

// Folders images are grouped under.
const (
	FolderListings = "listing_images"
	FolderChat     = "chat_images"
	FolderEvidence = "report_evidence"
	FolderProfiles = "profile_images"
)

// MaxImageSize is the largest accepted upload.
var MaxImageSize = int64(10 * 1024 * 1024) // 10MB

// AllowedImageTypes lists accepted file extensions.
var AllowedImageTypes = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// ImageStore persists uploaded images and returns their public URL.
type ImageStore interface {
	Save(ctx context.Context, folder string, header *multipart.FileHeader) (string, error)
}

// ValidateImageFile checks size and extension of an image upload.
func ValidateImageFile(header *multipart.FileHeader) error {
	if header == nil {
		return apperrors.ErrInvalidImage
	}
	if header.Size > MaxImageSize {
		return fmt.Errorf("%w: exceeds %d MB", apperrors.ErrInvalidImage, MaxImageSize/(1024*1024))
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	for _, allowed := range AllowedImageTypes {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: type %q not allowed", apperrors.ErrInvalidImage, ext)
}
