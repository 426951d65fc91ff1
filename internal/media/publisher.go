package media

import (
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Publisher copies export images into the served media directory,
// downscaling anything wider than maxWidth.
type Publisher struct {
	mediaDir  string
	urlPrefix string
	maxWidth  int
}

// NewPublisher creates a publisher writing below mediaDir. Files are served
// at urlPrefix.
func NewPublisher(mediaDir, urlPrefix string, maxWidth int) (*Publisher, error) {
	if err := os.MkdirAll(mediaDir, 0755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}

	return &Publisher{
		mediaDir:  mediaDir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		maxWidth:  maxWidth,
	}, nil
}

// Publish copies sourcePath into the edition's media folder and returns the
// public URL. An already published file is reused.
func (p *Publisher) Publish(editionID uint, sourcePath string) (string, error) {
	filename := filepath.Base(sourcePath)
	dir := filepath.Join(p.mediaDir, editionFolder(editionID))
	target := filepath.Join(dir, filename)
	url := path.Join(p.urlPrefix, editionFolder(editionID), filename)

	if _, err := os.Stat(target); err == nil {
		return url, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create edition media dir: %w", err)
	}

	resized, err := p.resizeIfWide(sourcePath, target)
	if err != nil {
		return "", err
	}
	if !resized {
		if err := copyFile(sourcePath, target, dir); err != nil {
			return "", err
		}
	}

	return url, nil
}

// InvalidateEdition removes everything published for an edition.
func (p *Publisher) InvalidateEdition(editionID uint) error {
	return os.RemoveAll(filepath.Join(p.mediaDir, editionFolder(editionID)))
}

// MediaDir returns the media directory path.
func (p *Publisher) MediaDir() string {
	return p.mediaDir
}

// resizeIfWide writes a downscaled copy when the image is wider than
// maxWidth. Images that cannot be decoded are left to a plain copy.
func (p *Publisher) resizeIfWide(sourcePath, target string) (bool, error) {
	if p.maxWidth <= 0 {
		return false, nil
	}

	f, err := os.Open(sourcePath)
	if err != nil {
		return false, fmt.Errorf("open image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(f)
	f.Close()
	if err != nil || cfg.Width <= p.maxWidth {
		return false, nil
	}

	img, err := imaging.Open(sourcePath, imaging.AutoOrientation(true))
	if err != nil {
		log.Printf("[MEDIA] Could not decode %s, copying as is: %v", sourcePath, err)
		return false, nil
	}

	resized := imaging.Resize(img, p.maxWidth, 0, imaging.Lanczos)
	if err := imaging.Save(resized, target); err != nil {
		os.Remove(target)
		return false, fmt.Errorf("save resized image: %w", err)
	}
	log.Printf("[MEDIA] Resized %s from %dpx to %dpx wide", filepath.Base(sourcePath), cfg.Width, p.maxWidth)
	return true, nil
}

func copyFile(src, dst, tmpDir string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer in.Close()

	// Create temp file in same directory for atomic write
	tmpFile, err := os.CreateTemp(tmpDir, "media_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	if _, err := io.Copy(tmpFile, in); err != nil {
		return err
	}
	tmpFile.Close()

	return os.Rename(tmpPath, dst)
}

func editionFolder(editionID uint) string {
	return fmt.Sprintf("edition-%d", editionID)
}
