package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// AssetsDir is the discovered asset root. Empty means the working directory.
var AssetsDir string

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ResolveAssetPath returns the first existing location of relPath, trying the
// path as given, the discovered asset root, then a local assets/ directory.
// The asset-root candidate is returned when nothing exists so callers can
// report a meaningful path.
func ResolveAssetPath(relPath string) string {
	if relPath == "" {
		return ""
	}
	if filepath.IsAbs(relPath) {
		return relPath
	}

	candidates := []string{relPath}
	if AssetsDir != "" {
		candidates = append(candidates, filepath.Join(AssetsDir, relPath))
	}
	candidates = append(candidates, filepath.Join("assets", relPath), filepath.Join("static", relPath))

	for _, p := range candidates {
		if fileExists(p) {
			return p
		}
	}

	if AssetsDir != "" {
		return filepath.Join(AssetsDir, relPath)
	}
	return relPath
}

// FindTextureFile locates a texture by base name, accepting any of the
// supported extensions when the name carries none or the exact file is absent.
func FindTextureFile(name string) string {
	if name == "" {
		return ""
	}

	if p := ResolveAssetPath(name); fileExists(p) {
		return p
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	for _, ext := range []string{".tex", ".png", ".jpg", ".jpeg", ".webp"} {
		if p := ResolveAssetPath(base + ext); fileExists(p) {
			return p
		}
	}
	return ""
}
