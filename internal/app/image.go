package app

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
)

// LoadImage reads an image file and returns it as a base64 data URI.
// Files over maxBytes or without image content are rejected.
func LoadImage(path string, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = model.MaxImageBytes
	}

	f, err := os.Open(path)
	if err != nil {
		return "", invalid("image", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", invalid("image", err)
	}
	if info.Size() > maxBytes {
		return "", invalid("image", fmt.Errorf("%w: %d bytes exceeds the %s limit", ErrImageTooLarge, info.Size(), sizeLabel(maxBytes)))
	}

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return "", invalid("image", err)
	}

	return EncodeImage(data, maxBytes)
}

// EncodeImage validates raw image bytes and returns a base64 data URI
func EncodeImage(data []byte, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = model.MaxImageBytes
	}
	if int64(len(data)) > maxBytes {
		return "", invalid("image", fmt.Errorf("%w: exceeds the %s limit", ErrImageTooLarge, sizeLabel(maxBytes)))
	}
	if len(data) == 0 {
		return "", invalid("image", ErrNotAnImage)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", invalid("image", fmt.Errorf("%w (detected %s)", ErrNotAnImage, mime))
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func sizeLabel(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
