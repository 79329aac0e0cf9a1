package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/foodgram-v2/backend/config"
)

var ErrInvalidImage = errors.New("invalid image payload")

// ImageService stores recipe images in S3. Uploads arrive as base64 data
// URLs; the stored value is the resulting public URL, so no request ever
// touches the local filesystem.
type ImageService struct {
	s3Config *config.S3Config
}

func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// UploadRecipeImage decodes a "data:image/...;base64," payload (or a bare
// base64 string, treated as PNG) and uploads it under recipe-images/.
func (s *ImageService) UploadRecipeImage(ctx context.Context, encoded string) (string, error) {
	if s.s3Config == nil {
		return "", errors.New("image storage is not configured")
	}

	ext := "png"
	contentType := "image/png"
	if strings.HasPrefix(encoded, "data:") {
		header, payload, found := strings.Cut(encoded, ",")
		if !found {
			return "", ErrInvalidImage
		}
		switch {
		case strings.Contains(header, "image/jpeg"):
			ext, contentType = "jpg", "image/jpeg"
		case strings.Contains(header, "image/png"):
		default:
			return "", ErrInvalidImage
		}
		encoded = payload
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidImage
	}

	fileName := fmt.Sprintf("recipe-images/%s.%s", uuid.New().String(), ext)
	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageService] Uploaded recipe image to %s", publicURL)
	return publicURL, nil
}
