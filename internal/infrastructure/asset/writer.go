package asset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedImage = errors.New("only jpg/png allowed")

type FSWriter struct {
	AssetsDir     string
	PublicBaseURL string
}

func NewFSWriter(assetsDir string, publicBaseURL string) *FSWriter {
	return &FSWriter{AssetsDir: assetsDir, PublicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// WriteMenuImage stores an uploaded product photo and returns the URL it is served from.
func (w *FSWriter) WriteMenuImage(filename string, data []byte) (string, error) {
	name := filepath.Base(filename)
	if !ValidImageName(name) {
		return "", ErrUnsupportedImage
	}
	outName := uuid.NewString() + "_" + strings.ReplaceAll(name, " ", "_")
	return w.WriteFile("menu", outName, data)
}

func (w *FSWriter) WriteFile(dir, filename string, data []byte) (string, error) {
	full := filepath.Join(w.AssetsDir, dir)
	if err := os.MkdirAll(full, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(full, filename), data, 0o644); err != nil {
		return "", err
	}
	return w.buildURL("/assets/" + dir + "/" + filename), nil
}

func (w *FSWriter) buildURL(path string) string {
	if w.PublicBaseURL == "" {
		return path
	}
	return w.PublicBaseURL + path
}

func ValidImageName(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".jpg") || strings.HasSuffix(n, ".jpeg") || strings.HasSuffix(n, ".png")
}
