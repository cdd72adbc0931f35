package api

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stocknexus/backend/internal/models"
)

const maxUploadBytes = 5 << 20 // 5 MB

func validImageExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}

// UploadProfilePhoto stores an avatar for the caller and links it to
// their profile.
func (h *Handler) UploadProfilePhoto(c *gin.Context) {
	viewer, ok := h.currentProfile(c)
	if !ok {
		return
	}

	fileHeader, file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	objectKey := fmt.Sprintf("profiles/%s/%s%s", viewer.ID, uuid.NewString(), filepath.Ext(fileHeader.Filename))
	photoURL, err := h.uploadToS3(ctx, objectKey, file)
	if err != nil {
		log.Printf("S3 upload failed, falling back to local storage: %v", err)
		photoURL, err = h.uploadToLocal(objectKey, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to store photo", Message: err.Error()})
			return
		}
	}

	profile, err := h.DB.UpdateProfile(ctx, viewer.ID, models.UpdateProfileRequest{PhotoURL: &photoURL})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to link photo", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UploadItemImage stores an image for an item of the caller's
// effective branch.
func (h *Handler) UploadItemImage(c *gin.Context) {
	viewer, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}
	itemID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	item, err := h.DB.GetItem(ctx, itemID)
	if err != nil || item.BranchID != branchID {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Item not found", Message: "No such item in this branch"})
		return
	}

	fileHeader, file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	objectKey := fmt.Sprintf("items/%s/%s%s", itemID, uuid.NewString(), filepath.Ext(fileHeader.Filename))
	imageURL, err := h.uploadToS3(ctx, objectKey, file)
	if err != nil {
		log.Printf("S3 upload failed, falling back to local storage: %v", err)
		imageURL, err = h.uploadToLocal(objectKey, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to store image", Message: err.Error()})
			return
		}
	}

	if err := h.DB.SetItemImage(ctx, itemID, imageURL); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to link image", Message: err.Error()})
		return
	}

	h.logActivity(viewer.ID, "item_image_uploaded", map[string]interface{}{"item_id": itemID})
	c.JSON(http.StatusOK, gin.H{"image_url": imageURL})
}

// openUpload extracts and validates the multipart file field.
func (h *Handler) openUpload(c *gin.Context) (*multipart.FileHeader, multipart.File, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Missing file", Message: "Provide an image in the 'file' form field"})
		return nil, nil, false
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "File too large", Message: "Images are limited to 5 MB"})
		return nil, nil, false
	}
	if !validImageExt(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Unsupported file type", Message: "Allowed extensions: jpg, jpeg, png, gif, webp"})
		return nil, nil, false
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to read upload", Message: err.Error()})
		return nil, nil, false
	}
	return fileHeader, file, true
}

// uploadToS3 uploads a file stream to the given S3 key and returns a public URL
func (h *Handler) uploadToS3(ctx context.Context, objectKey string, file multipart.File) (string, error) {
	// Reset file pointer
	file.Seek(0, 0)

	// Use the default credential chain (instance role in AWS)
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if region == "" {
		region = "eu-central-1"
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return "", fmt.Errorf("failed to load AWS default config: %w", err)
	}
	s3Client := s3.NewFromConfig(cfg)

	bucketName := os.Getenv("UPLOADS_S3_BUCKET")
	if bucketName == "" {
		bucketName = "stocknexus-uploads"
	}
	_, err = s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucketName,
		Key:    &objectKey,
		Body:   file,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	// Public URL goes through the CDN when configured
	cdnBase := os.Getenv("ASSETS_CDN_BASE_URL")
	if cdnBase == "" {
		cdnBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucketName, region)
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(cdnBase, "/"), objectKey), nil
}

// uploadToLocal stores the file under ./uploads for development
func (h *Handler) uploadToLocal(objectKey string, file multipart.File) (string, error) {
	// Reset file pointer
	file.Seek(0, 0)

	filePath := filepath.Join("./uploads", objectKey)
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	baseURL := os.Getenv("SERVICE_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return fmt.Sprintf("%s/uploads/%s", baseURL, objectKey), nil
}
