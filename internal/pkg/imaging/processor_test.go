package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func encodeTestJPEG(t *testing.T, width, height int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return &buf
}

func TestProcessResizesOversizedImage(t *testing.T) {
	p := NewProcessor(CoverConfig())
	src := encodeTestJPEG(t, 3200, 1800)

	out, err := p.Process(src)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Width > 1600 || out.Height > 900 {
		t.Fatalf("expected image fit into 1600x900, got %dx%d", out.Width, out.Height)
	}
	if out.ThumbWidth != 480 || out.ThumbHeight != 270 {
		t.Fatalf("expected 480x270 thumbnail, got %dx%d", out.ThumbWidth, out.ThumbHeight)
	}
	if out.ContentType != "image/jpeg" {
		t.Fatalf("expected jpeg content type, got %s", out.ContentType)
	}
	if len(out.Original) == 0 || len(out.Thumbnail) == 0 {
		t.Fatal("expected encoded variants")
	}
}

func TestProcessKeepsSmallImage(t *testing.T) {
	p := NewProcessor(CoverConfig())
	src := encodeTestJPEG(t, 800, 450)

	out, err := p.Process(src)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Width != 800 || out.Height != 450 {
		t.Fatalf("expected original size kept, got %dx%d", out.Width, out.Height)
	}
}

func TestProcessPNGStaysPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}

	p := NewProcessor(AvatarConfig())
	out, err := p.Process(&buf)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.ContentType != "image/png" {
		t.Fatalf("expected image/png, got %s", out.ContentType)
	}
}

func TestProcessRejectsGarbage(t *testing.T) {
	p := NewProcessor(CoverConfig())
	if _, err := p.Process(strings.NewReader("definitely not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestValidateType(t *testing.T) {
	for _, name := range []string{"cover.jpg", "cover.JPEG", "a.png", "b.gif", "c.webp"} {
		if !ValidateType(name) {
			t.Errorf("expected %q to be valid", name)
		}
	}
	for _, name := range []string{"doc.pdf", "script.sh", "noext", "archive.zip"} {
		if ValidateType(name) {
			t.Errorf("expected %q to be invalid", name)
		}
	}
}

func TestCoverPaths(t *testing.T) {
	campaignID := uuid.New()
	original, thumb := CoverPaths(campaignID, "photo.JPG")

	prefix := "covers/" + campaignID.String() + "/"
	if !strings.HasPrefix(original, prefix) || !strings.HasPrefix(thumb, prefix) {
		t.Fatalf("expected keys under %s, got %s and %s", prefix, original, thumb)
	}
	if !strings.HasSuffix(original, ".jpg") {
		t.Fatalf("expected lowercased extension, got %s", original)
	}
	if !strings.HasSuffix(thumb, "_thumb.jpg") {
		t.Fatalf("expected _thumb suffix, got %s", thumb)
	}
}
