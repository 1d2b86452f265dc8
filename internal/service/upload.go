package service

import (
	"path"
	"path/filepath"
	"strings"
	"time"
)

// buildFilename expands the configured destination template for an uploaded
// payload. Supported tokens: [date] (YYYYMMDD), [datetime] (YYYYMMDD-HHMMSS)
// and [filename] (original name, spaces replaced by underscores). The original
// extension is preserved even when the template omits [filename].
//
// Collisions between expanded names are not detected; the newest write wins.
func buildFilename(format, originalName string, now time.Time) string {
	name := strings.ReplaceAll(originalName, " ", "_")

	expanded := strings.NewReplacer(
		"[date]", now.Format("20060102"),
		"[datetime]", now.Format("20060102-150405"),
		"[filename]", name,
	).Replace(format)

	if ext := filepath.Ext(name); ext != "" && !strings.HasSuffix(expanded, ext) {
		expanded += ext
	}

	return expanded
}

// assetPath joins the configured sub-path with the expanded filename using
// forward slashes, the form every storage backend expects.
func assetPath(subPath, filename string) string {
	return path.Join(subPath, filename)
}
