// Package source discovers meal images on disk and reads and writes JSONL
// exports of the food log.
package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
}

// MimeType returns the image MIME type for a path, or "" if the extension
// is not a supported image format.
func MimeType(path string) string {
	return imageTypes[strings.ToLower(filepath.Ext(path))]
}

// IsImage reports whether the path has a supported image extension.
func IsImage(path string) bool {
	return MimeType(path) != ""
}

// ScanImages walks dir and returns every supported image, sorted by
// modification time (oldest first) so batch logs keep capture order.
// A missing directory yields no images and no error.
func ScanImages(dir string) ([]DiscoveredImage, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var images []DiscoveredImage

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			// Skip hidden directories such as .thumbnails
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		mime := MimeType(path)
		if mime == "" {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // file vanished between listing and stat
		}

		images = append(images, DiscoveredImage{
			Path:     path,
			Name:     d.Name(),
			MimeType: mime,
			Size:     fi.Size(),
			ModTime:  fi.ModTime(),
		})
		return nil
	})

	sort.SliceStable(images, func(i, j int) bool {
		if images[i].ModTime.Equal(images[j].ModTime) {
			return images[i].Path < images[j].Path
		}
		return images[i].ModTime.Before(images[j].ModTime)
	})

	return images, err
}
