// Package contenttype maps file extensions to MIME types for upload metadata.
package contenttype

import "strings"

var byExtension = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
	"pdf":  "application/pdf",
	"heic": "image/heic",
}

// Resolve returns the MIME type for an extension, case-insensitively and
// with or without a leading dot. Unknown extensions resolve to
// application/octet-stream.
func Resolve(extension string) string {
	ext := strings.ToLower(strings.TrimPrefix(extension, "."))
	if mime, ok := byExtension[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}
