package indesign

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

const (
	defaultMinImageBytes = 4 * 1024
	defaultMinImageSide  = 64
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".svg": true, ".tif": true, ".tiff": true,
}

// ImageClassifier decides which bucket an exported image belongs in.
type ImageClassifier struct {
	// ResourceDirs are directory names (lowercase) holding placed images.
	// A "-web-resources" suffix always qualifies.
	ResourceDirs []string
	// AuthorKeywords matched against the lowercased relative path.
	AuthorKeywords []string
	// DecorativeKeywords matched against the lowercased filename.
	DecorativeKeywords []string
	// Images smaller than MinBytes are decoration. Zero disables the check.
	MinBytes int64
	// Images whose width and height are both below MinSide are decoration.
	MinSide int
}

// DefaultImageClassifier returns the heuristics tuned for the export tool's
// default resource layout.
func DefaultImageClassifier() ImageClassifier {
	return ImageClassifier{
		ResourceDirs:       []string{"resources", "images", "image", "afbeeldingen", "links"},
		AuthorKeywords:     []string{"auteur", "author", "portret", "portrait"},
		DecorativeKeywords: []string{"logo", "icon", "ornament", "lijn", "bullet", "achtergrond", "background", "deco", "kader"},
		MinBytes:           defaultMinImageBytes,
		MinSide:            defaultMinImageSide,
	}
}

// Index scans the resource folders under root and builds the image index.
// Unreadable entries and duplicate filenames are reported, not fatal.
func (c ImageClassifier) Index(root string) (ImageIndex, []string) {
	idx := ImageIndex{Files: make(map[string]string)}
	var errs []string

	entries, err := os.ReadDir(root)
	if err != nil {
		return idx, []string{fmt.Sprintf("resources: %v", err)}
	}

	var relPaths []string
	for _, entry := range entries {
		if !entry.IsDir() || !c.isResourceDir(entry.Name()) {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		walkErr := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				errs = append(errs, fmt.Sprintf("resources: %v", err))
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(p))] {
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				errs = append(errs, fmt.Sprintf("resources: %v", err))
				return nil
			}
			relPaths = append(relPaths, filepath.ToSlash(rel))
			return nil
		})
		if walkErr != nil {
			errs = append(errs, fmt.Sprintf("resources: %v", walkErr))
		}
	}

	sort.Strings(relPaths)
	for _, rel := range relPaths {
		name := path.Base(rel)
		if prev, dup := idx.Files[name]; dup {
			errs = append(errs, fmt.Sprintf("image %s: duplicate filename, keeping %s", rel, prev))
			continue
		}
		idx.Files[name] = rel

		switch {
		case c.isAuthorPhoto(rel):
			idx.AuthorPhotos = append(idx.AuthorPhotos, name)
		case c.isDecorative(filepath.Join(root, filepath.FromSlash(rel)), name):
			idx.DecorativeImages = append(idx.DecorativeImages, name)
		default:
			idx.ArticleImages = append(idx.ArticleImages, name)
		}
	}

	return idx, errs
}

func (c ImageClassifier) isResourceDir(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, "-web-resources") {
		return true
	}
	for _, d := range c.ResourceDirs {
		if lower == d {
			return true
		}
	}
	return false
}

func (c ImageClassifier) isAuthorPhoto(rel string) bool {
	return containsAny(strings.ToLower(rel), c.AuthorKeywords)
}

func (c ImageClassifier) isDecorative(fullPath, name string) bool {
	lower := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	if containsAny(lower, c.DecorativeKeywords) {
		return true
	}

	info, err := os.Stat(fullPath)
	if err == nil && c.MinBytes > 0 && info.Size() < c.MinBytes {
		return true
	}

	if c.MinSide <= 0 {
		return false
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return false
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		// Formats we cannot decode (svg, webp, tiff) are judged by name and size only
		return false
	}
	return cfg.Width < c.MinSide && cfg.Height < c.MinSide
}
