package shortcuts

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

var (
	iconSizes = []string{"scalable", "512x512", "256x256", "128x128", "96x96", "64x64", "48x48", "32x32"}
	iconExts  = []string{".svg", ".png"}
)

// iconDirs lists the base directories searched for themed icons, most
// specific first.
func iconDirs() []string {
	dirs := []string{filepath.Join(xdg.DataHome, "icons")}
	if xdg.Home != "" {
		dirs = append(dirs, filepath.Join(xdg.Home, ".icons"))
	}
	for _, d := range xdg.DataDirs {
		dirs = append(dirs, filepath.Join(d, "icons"))
	}
	return dirs
}

// resolveIcon turns an Icon value into a file path. Absolute paths are used
// as they are; names are looked up in the hicolor theme and then in the
// pixmaps directory next to each icon root. ok is false if nothing exists.
func resolveIcon(value string, dirs []string) (string, bool) {
	if filepath.IsAbs(value) {
		return value, exists(value)
	}
	if strings.ContainsRune(value, os.PathSeparator) {
		return "", false
	}

	for _, dir := range dirs {
		for _, size := range iconSizes {
			for _, ext := range iconExts {
				p := filepath.Join(dir, "hicolor", size, "apps", value+ext)
				if exists(p) {
					return p, true
				}
			}
		}
	}
	for _, dir := range dirs {
		for _, ext := range iconExts {
			p := filepath.Join(filepath.Dir(dir), "pixmaps", value+ext)
			if exists(p) {
				return p, true
			}
		}
	}
	return "", false
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
