package services

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// UploadDir returns the base directory for stored images.
func UploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "./web/static/uploads"
}

// SaveImage stores an uploaded image under UPLOAD_DIR/<kind>/ with a
// random name and returns the public URL. kind is "posts" or "avatars".
// Resizing is intentionally not done here.
func SaveImage(header *multipart.FileHeader, kind string) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		return "", Validationf("image", "unsupported image type %q", ext)
	}

	dir := filepath.Join(UploadDir(), kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return "/static/uploads/" + kind + "/" + name, nil
}
