package httpclient

import "strings"

// FullURL returns the absolute URL a call will hit, for logging. Absolute paths
// are returned as-is; otherwise base and path are joined with exactly one slash.
func FullURL(base, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
