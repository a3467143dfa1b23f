package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Import for PNG decoding support
	"io"
	"math"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)


type FileService interface {
	// UploadCheckoutPhoto compresses and stores a check-out photo on the absensi disk
	UploadCheckoutPhoto(ctx context.Context, userID string, at time.Time, file io.Reader, filename string) (string, error)

	// PhotoURL resolves the public URL of a stored photo
	PhotoURL(ctx context.Context, path string) (string, error)

	// DeletePhoto removes a stored photo
	DeletePhoto(ctx context.Context, path string) error

	// SaveExport writes a generated export onto the public disk
	SaveExport(ctx context.Context, name string, content []byte, contentType string) (string, error)

	// ExportURL resolves the download URL of an export
	ExportURL(ctx context.Context, path string) (string, error)

	// PurgeExports removes exports generated before cutoff
	PurgeExports(ctx context.Context, cutoff time.Time) (int, error)
}

type fileServiceImpl struct {
	photos  storage.FileStorage
	exports storage.FileStorage
}

func NewFileService(disks storage.Disks) (FileService, error) {
	photos, err := disks.Disk(storage.DiskAbsensi)
	if err != nil {
		return nil, err
	}
	exports, err := disks.Disk(storage.DiskPublic)
	if err != nil {
		return nil, err
	}
	return &fileServiceImpl{
		photos:  photos,
		exports: exports,
	}, nil
}

// UploadCheckoutPhoto uploads a check-out photo.
// Compresses image to target size between 50KB - 150KB
func (s *fileServiceImpl) UploadCheckoutPhoto(ctx context.Context, userID string, at time.Time, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	// Validate image format
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return "", fmt.Errorf("invalid file type: only jpg, jpeg, png allowed")
	}

	buffer, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	compressed, err := compressImage(buffer, 150*1024, 50*1024)
	if err != nil {
		return "", fmt.Errorf("failed to compress image: %w", err)
	}

	// checkout/{date}/{userID}-{timestamp}.jpg, always JPEG after compression
	dateStr := at.Format("2006-01-02")
	newFilename := fmt.Sprintf("%s-%d.jpg", userID, at.UnixNano())
	key := path.Join("checkout", dateStr, newFilename)

	uploadedPath, err := s.photos.Upload(ctx, bytes.NewReader(compressed), key, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("failed to upload check-out photo: %w", err)
	}

	return uploadedPath, nil
}

func (s *fileServiceImpl) PhotoURL(ctx context.Context, path string) (string, error) {
	return s.photos.GetURL(ctx, path, 0)
}

func (s *fileServiceImpl) DeletePhoto(ctx context.Context, path string) error {
	return s.photos.Delete(ctx, path)
}

// SaveExport stores an export under exports/{name-uuid.ext}.
func (s *fileServiceImpl) SaveExport(ctx context.Context, name string, content []byte, contentType string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(filepath.Base(name), ext)
	key := path.Join(storage.ExportsPrefix, fmt.Sprintf("%s-%s%s", base, uuid.New().String(), ext))

	uploadedPath, err := s.exports.Upload(ctx, bytes.NewReader(content), key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to store export: %w", err)
	}
	return uploadedPath, nil
}

func (s *fileServiceImpl) ExportURL(ctx context.Context, path string) (string, error) {
	return s.exports.GetURL(ctx, path, 0)
}

func (s *fileServiceImpl) PurgeExports(ctx context.Context, cutoff time.Time) (int, error) {
	removed, err := s.exports.DeleteOlderThan(ctx, storage.ExportsPrefix, cutoff)
	if err != nil {
		return removed, fmt.Errorf("failed to purge exports: %w", err)
	}
	return removed, nil
}

// ==================== HELPER FUNCTIONS ====================

// compressImage re-encodes an image as JPEG until it fits between minSize and maxSize.
func compressImage(buffer []byte, maxSize int, minSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// Already JPEG-sized within range; keep the original bytes
	if len(buffer) <= maxSize && len(buffer) >= minSize && isJPEG(buffer) {
		return buffer, nil
	}

	bounds := img.Bounds()
	originalWidth := bounds.Dx()
	originalHeight := bounds.Dy()

	quality := 85
	var compressed []byte

	for quality >= 50 {
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		compressed = buf.Bytes()

		if len(compressed) <= maxSize {
			return compressed, nil
		}
		quality -= 5
	}

	// Still too large, shrink towards ~100KB
	targetSize := 100 * 1024
	ratio := math.Sqrt(float64(targetSize) / float64(len(compressed)))
	newWidth := max(int(float64(originalWidth)*ratio), 600)
	newHeight := max(int(float64(originalHeight)*ratio), 400)

	resized := resizeImage(img, newWidth, newHeight)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: 70}); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}

	return buf.Bytes(), nil
}

func isJPEG(b []byte) bool {
	return len(b) > 2 && b[0] == 0xFF && b[1] == 0xD8
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// CatmullRom for high-quality downscaling
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
