// Package datauri converts raw image bytes to and from self-contained data URIs.
package datauri

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/vincent-petithory/dataurl"
)

// Encode returns a base64 data URI for data. An empty or unparseable
// contentType is replaced by the type sniffed from data.
func Encode(data []byte, contentType string) string {
	mediaType := MediaType(contentType)
	if mediaType == "" {
		mediaType, _, _ = strings.Cut(http.DetectContentType(data), ";")
	}
	return dataurl.New(data, mediaType).String()
}

// Decode returns the bytes and media type carried by a data URI
func Decode(uri string) ([]byte, string, error) {
	du, err := dataurl.DecodeString(uri)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode data URI: %w", err)
	}
	return du.Data, du.ContentType(), nil
}

// MediaType strips parameters from a Content-Type header value
func MediaType(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.Contains(mediaType, "/") {
		return ""
	}
	return mediaType
}

// Extension returns a file extension (with dot) for a media type
func Extension(mediaType string) string {
	switch mediaType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
