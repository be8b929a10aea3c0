package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// ProcessedImage contains all variants of a processed image
type ProcessedImage struct {
	Original    []byte
	Thumbnail   []byte
	ContentType string
	Width       int
	Height      int
	ThumbWidth  int
	ThumbHeight int
}

// Config for image processing
type Config struct {
	MaxWidth    int // Max width for original
	MaxHeight   int // Max height for original
	ThumbWidth  int // Thumbnail width
	ThumbHeight int // Thumbnail height
	Quality     int // JPEG quality 1-100
}

// CoverConfig returns the processing config for campaign cover images.
func CoverConfig() Config {
	return Config{
		MaxWidth:    1600,
		MaxHeight:   900,
		ThumbWidth:  480,
		ThumbHeight: 270,
		Quality:     85,
	}
}

// AvatarConfig returns the processing config for profile avatars.
func AvatarConfig() Config {
	return Config{
		MaxWidth:    512,
		MaxHeight:   512,
		ThumbWidth:  96,
		ThumbHeight: 96,
		Quality:     85,
	}
}

// Processor handles image processing
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// Process resizes the image to fit the configured bounds and creates a
// center-cropped thumbnail.
func (p *Processor) Process(reader io.Reader) (*ProcessedImage, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	result := &ProcessedImage{
		ContentType: mimeFromFormat(format),
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
	}

	resized := img
	if result.Width > p.config.MaxWidth || result.Height > p.config.MaxHeight {
		resized = imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)
		result.Width = resized.Bounds().Dx()
		result.Height = resized.Bounds().Dy()
	}

	original, err := p.encode(resized, format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode original: %w", err)
	}
	result.Original = original

	thumb := imaging.Fill(img, p.config.ThumbWidth, p.config.ThumbHeight, imaging.Center, imaging.Lanczos)
	result.ThumbWidth = thumb.Bounds().Dx()
	result.ThumbHeight = thumb.Bounds().Dy()

	thumbnail, err := p.encode(thumb, format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	result.Thumbnail = thumbnail

	return result, nil
}

// ValidateType checks if file is a valid image type
func ValidateType(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	default:
		return false
	}
}

// MaxFileSize in bytes (10MB)
const MaxFileSize int64 = 10 * 1024 * 1024

func (p *Processor) encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.config.Quality}); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func mimeFromFormat(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// CoverPaths generates storage keys for a campaign cover and its thumbnail.
func CoverPaths(campaignID uuid.UUID, filename string) (original, thumb string) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.New().String()

	original = fmt.Sprintf("covers/%s/%s%s", campaignID, name, ext)
	thumb = fmt.Sprintf("covers/%s/%s_thumb%s", campaignID, name, ext)

	return
}

// AvatarPaths generates storage keys for a profile avatar and its thumbnail.
func AvatarPaths(userID uuid.UUID, filename string) (original, thumb string) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.New().String()

	original = fmt.Sprintf("avatars/%s/%s%s", userID, name, ext)
	thumb = fmt.Sprintf("avatars/%s/%s_thumb%s", userID, name, ext)

	return
}
