package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore uploads images to Cloudinary.
type CloudinaryStore struct {
	cld          *cloudinary.Cloudinary
	uploadFolder string
}

// NewCloudinaryStore creates a Cloudinary-backed store.
func NewCloudinaryStore(cloudName, apiKey, apiSecret, uploadFolder string) (*CloudinaryStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are required")
	}

	cld, err := cloudinary.NewFromURL(fmt.Sprintf("cloudinary://%s:%s@%s", apiKey, apiSecret, cloudName))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	if uploadFolder == "" {
		uploadFolder = "openmart"
	}

	return &CloudinaryStore{
		cld:          cld,
		uploadFolder: uploadFolder,
	}, nil
}

// Save uploads the image under uploadFolder/folder and returns its secure URL.
func (s *CloudinaryStore) Save(ctx context.Context, folder string, header *multipart.FileHeader) (string, error) {
	if err := ValidateImageFile(header); err != nil {
		return "", err
	}
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       s.uploadFolder + "/" + folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return result.SecureURL, nil
}
